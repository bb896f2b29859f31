package di

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ssargent/rowreader/pkg/api"
)

type stubServerFactory struct{}

func (stubServerFactory) CreateServerStarter() api.ServerStarter { return nil }

func TestContainer(t *testing.T) {
	c := NewContainer()
	assert.IsType(t, &api.DefaultStorageFactory{}, c.GetStorageFactory())
	assert.IsType(t, &api.DefaultServerFactory{}, c.GetServerFactory())

	c.SetServerFactory(stubServerFactory{})
	assert.IsType(t, stubServerFactory{}, c.GetServerFactory())
}
