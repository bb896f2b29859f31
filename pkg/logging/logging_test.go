package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "", want: slog.LevelInfo},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "trace", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	f, err = ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("logfmt")
	assert.Error(t, err)
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("info", "json", &buf)
	require.NoError(t, err)

	ctx := context.Background()
	logger.LogPut(ctx, "abc", 3, 36, 20, nil)
	logger.LogDecode(ctx, "F32", 2, 3, 0, nil) // debug, filtered

	out := buf.String()
	assert.Contains(t, out, `"msg":"dataset stored"`)
	assert.Contains(t, out, `"dataset":"abc"`)
	assert.Contains(t, out, `"rows":3`)
	assert.NotContains(t, out, "decode completed")
}

func TestNew_TextDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("debug", "text", &buf)
	require.NoError(t, err)

	logger.WithDataset("xyz").LogDecode(context.Background(), "I32", 1, 2, 3, nil)

	out := buf.String()
	assert.Contains(t, out, "decode completed")
	assert.Contains(t, out, "dataset=xyz")
	assert.Contains(t, out, "dropped_bytes=3")
}

func TestNew_Errors(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("warn", "text", &buf)
	require.NoError(t, err)

	ctx := context.Background()
	logger.LogDecode(ctx, "F64", 1, 0, 0, errors.New("unsupported element type"))
	logger.LogDelete(ctx, "gone", errors.New("dataset not found"))

	out := buf.String()
	assert.Contains(t, out, "decode failed")
	assert.Contains(t, out, "type=F64")
	assert.Contains(t, out, "dataset delete failed")

	_, err = New("loud", "text", &buf)
	assert.Error(t, err)
	_, err = New("info", "xml", &buf)
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	logger := Noop()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelError))
	logger.LogPut(context.Background(), "id", 0, 0, 0, nil)
}
