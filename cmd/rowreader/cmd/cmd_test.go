package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/rowreader/pkg/api"
	"github.com/ssargent/rowreader/pkg/codec"
	"github.com/ssargent/rowreader/pkg/config"
	"github.com/ssargent/rowreader/pkg/di"
	"github.com/ssargent/rowreader/pkg/logging"
	"github.com/ssargent/rowreader/pkg/storage"
)

func setup(t *testing.T) string {
	t.Helper()

	// Keep the default config path out of the real home directory
	t.Setenv("HOME", t.TempDir())
	SetContainer(di.NewContainer())
	return t.TempDir()
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestEncodeDecode(t *testing.T) {
	dir := setup(t)

	rowsJSON := writeFile(t, filepath.Join(dir, "rows.json"), []byte(`[[1, 1.5, 2.5], [2, -1, 0]]`))
	bin := filepath.Join(dir, "rows.bin")

	_, err := run(t, "encode", rowsJSON, "--type", "F32", "--variants", "a,b", "-o", bin)
	require.NoError(t, err)

	buf, err := os.ReadFile(bin)
	require.NoError(t, err)
	require.Len(t, buf, 24)

	// Trailing bytes are ignored
	writeFile(t, bin, append(buf, 1, 2, 3))

	t.Run("json", func(t *testing.T) {
		out, err := run(t, "decode", bin, "--type", "F32", "--variants", "a,b", "--format", "json")
		require.NoError(t, err)

		var resp api.DecodeResponse
		require.NoError(t, json.Unmarshal([]byte(out), &resp))
		assert.Equal(t, []string{"a", "b"}, resp.Variants)
		assert.Equal(t, codec.Layout{RowWidth: 12, Rows: 2, DroppedBytes: 3}, resp.Layout)
		assert.Equal(t, []codec.Record{{1, 1.5, 2.5}, {2, -1, 0}}, resp.Rows)
	})

	t.Run("csv", func(t *testing.T) {
		out, err := run(t, "decode", bin, "--type", "F32", "--variants", "a,b", "--format", "csv")
		require.NoError(t, err)
		assert.Equal(t, "index,a,b\n1,1.5,2.5\n2,-1,0\n", out)
	})

	t.Run("map", func(t *testing.T) {
		out, err := run(t, "decode", bin, "--type", "F32", "--variants", "a,b", "--map", "sum", "--format", "csv")
		require.NoError(t, err)
		assert.Equal(t, "index,sum\n1,4\n2,-1\n", out)
	})

	t.Run("table", func(t *testing.T) {
		out, err := run(t, "decode", bin, "--type", "F32", "--variants", "a,b")
		require.NoError(t, err)
		assert.Contains(t, out, "INDEX")
		assert.Contains(t, out, "1970-01-01T00:01:00Z")
		assert.Contains(t, out, "2 rows (row width 12 bytes, 3 trailing bytes dropped)")
	})

	t.Run("index only", func(t *testing.T) {
		out, err := run(t, "decode", bin, "--type", "I32", "--variants", "", "--format", "csv")
		require.NoError(t, err)
		// 27 bytes of 4-byte rows
		assert.Equal(t, "index\n1\n1069547520\n1075838976\n2\n-1082130432\n0\n", out)
	})

	t.Run("several files", func(t *testing.T) {
		out, err := run(t, "decode", bin, bin, "--type", "F32", "--variants", "a,b")
		require.NoError(t, err)
		assert.Contains(t, out, "==> "+bin+" <==")
	})
}

func TestDecode_Errors(t *testing.T) {
	dir := setup(t)
	bin := writeFile(t, filepath.Join(dir, "rows.bin"), make([]byte, 8))

	_, err := run(t, "decode", bin, "--type", "F64", "--variants", "a")
	assert.ErrorIs(t, err, codec.ErrUnsupportedType)

	_, err = run(t, "decode", bin, "--type", "I32")
	assert.ErrorIs(t, err, codec.ErrInvalidFieldCount)

	_, err = run(t, "decode", bin, "--variants", "a", "--format", "xml")
	assert.Error(t, err)

	_, err = run(t, "decode", filepath.Join(dir, "missing.bin"), "--variants", "a")
	assert.Error(t, err)

	_, err = run(t, "decode", bin, "--variants", "a", "--filter", "top-0")
	assert.Error(t, err)
}

func TestEncode_Errors(t *testing.T) {
	dir := setup(t)

	short := writeFile(t, filepath.Join(dir, "short.json"), []byte(`[[1, 2]]`))
	_, err := run(t, "encode", short, "--type", "I32", "--variants", "a,b")
	assert.ErrorIs(t, err, codec.ErrFieldCountMismatch)

	fraction := writeFile(t, filepath.Join(dir, "fraction.json"), []byte(`[[1, 2.5]]`))
	_, err = run(t, "encode", fraction, "--type", "I32", "--variants", "a")
	assert.ErrorIs(t, err, codec.ErrValueOutOfRange)

	invalid := writeFile(t, filepath.Join(dir, "invalid.json"), []byte(`{`))
	_, err = run(t, "encode", invalid, "--variants", "a")
	assert.Error(t, err)
}

func TestDatasetLifecycle(t *testing.T) {
	dir := setup(t)
	dataDir := filepath.Join(dir, "data")

	rowsJSON := writeFile(t, filepath.Join(dir, "rows.json"), []byte(`[[10, 1, 2], [20, 3, 4]]`))
	bin := filepath.Join(dir, "iops.bin")
	_, err := run(t, "encode", rowsJSON, "--type", "I32", "--variants", "r,w", "-o", bin)
	require.NoError(t, err)

	out, err := run(t, "put", bin, "-d", dataDir, "--type", "I32", "--variants", "r,w", "--units", "ops", "--format", "json")
	require.NoError(t, err)

	var meta storage.DatasetMeta
	require.NoError(t, json.Unmarshal([]byte(out), &meta))
	require.NotEmpty(t, meta.ID)
	assert.Equal(t, "iops", meta.Name)
	assert.Equal(t, codec.Int32, meta.Type)
	assert.Equal(t, 2, meta.Layout.Rows)

	out, err = run(t, "list", "-d", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, meta.ID)
	assert.Contains(t, out, "r, w")

	out, err = run(t, "list", "-d", dataDir, "--name", "iops")
	require.NoError(t, err)
	assert.Contains(t, out, meta.ID)

	out, err = run(t, "list", "-d", dataDir, "--name", "latency")
	require.NoError(t, err)
	assert.Contains(t, out, "No datasets found")

	out, err = run(t, "get", meta.ID, "-d", dataDir, "--map", "avg", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "index,avg\n10,1.5\n20,3.5\n", out)

	out, err = run(t, "get", meta.ID, "-d", dataDir, "--from", "15", "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "index,r,w\n20,3,4\n", out)

	copyPath := filepath.Join(dir, "copy.bin")
	_, err = run(t, "get", meta.ID, "-d", dataDir, "--raw", "-o", copyPath)
	require.NoError(t, err)
	original, err := os.ReadFile(bin)
	require.NoError(t, err)
	copied, err := os.ReadFile(copyPath)
	require.NoError(t, err)
	assert.Equal(t, original, copied)

	out, err = run(t, "delete", meta.ID, "-d", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted dataset "+meta.ID)

	_, err = run(t, "get", meta.ID, "-d", dataDir)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	out, err = run(t, "list", "-d", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "No datasets found")
}

func TestPut_Errors(t *testing.T) {
	dir := setup(t)
	bin := writeFile(t, filepath.Join(dir, "rows.bin"), make([]byte, 8))

	_, err := run(t, "put", bin, "-d", filepath.Join(dir, "data"), "--type", "I32")
	assert.ErrorIs(t, err, codec.ErrInvalidFieldCount)

	SetContainer(nil)
	_, err = run(t, "put", bin, "-d", filepath.Join(dir, "data"), "--variants", "a")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "dependency container not initialized")
}

func TestInitCommand(t *testing.T) {
	dir := setup(t)
	configPath := filepath.Join(dir, "config.yaml")
	dataDir := filepath.Join(dir, "data")

	out, err := run(t, "init", "--config", configPath, "-d", dataDir)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration created at "+configPath)

	cfg, err := config.LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Len(t, cfg.Security.APIKey, 64)
	assert.Contains(t, out, cfg.Security.APIKey)

	out, err = run(t, "init", "--config", configPath)
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	_, err = run(t, "init", "--config", configPath, "--force")
	require.NoError(t, err)
	reloaded, err := config.LoadConfig(configPath)
	require.NoError(t, err)
	assert.NotEqual(t, cfg.Security.APIKey, reloaded.Security.APIKey)
}

func TestRoot_Config(t *testing.T) {
	dir := setup(t)
	bin := writeFile(t, filepath.Join(dir, "rows.bin"), make([]byte, 8))

	_, err := run(t, "decode", bin, "--variants", "a", "--config", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, err = run(t, "decode", bin, "--variants", "a", "--log-level", "loud")
	assert.Error(t, err)

	// Default type comes from the configuration file
	cfg := config.DefaultConfig()
	cfg.Decoder.DefaultType = "I32"
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.SaveConfig(cfg, configPath))

	out, err := run(t, "decode", bin, "--variants", "a", "--config", configPath, "--format", "csv")
	require.NoError(t, err)
	assert.Equal(t, "index,a\n0,0\n", out)
}

type stubStarter struct {
	config api.ServerConfig
}

func (s *stubStarter) StartServer(ctx context.Context, store api.DatasetStore, config api.ServerConfig, logger *logging.Logger) error {
	s.config = config
	return nil
}

type stubServerFactory struct {
	starter *stubStarter
}

func (f stubServerFactory) CreateServerStarter() api.ServerStarter { return f.starter }

func TestServeCommand(t *testing.T) {
	dir := setup(t)
	dataDir := filepath.Join(dir, "data")

	_, err := run(t, "serve", "-d", dataDir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no API key configured")

	starter := &stubStarter{}
	container := di.NewContainer()
	container.SetServerFactory(stubServerFactory{starter: starter})
	SetContainer(container)

	_, err = run(t, "serve", "-d", dataDir, "--api-key", "secret", "--port", "9100")
	require.NoError(t, err)
	assert.Equal(t, "secret", starter.config.APIKey)
	assert.Equal(t, 9100, starter.config.Port)
	assert.Equal(t, "127.0.0.1", starter.config.Bind)
	assert.Equal(t, codec.Float32, starter.config.DefaultType)
	assert.Equal(t, int64(32<<20), starter.config.CacheBytes)
}
