package lifecycle_test

import (
	"context"
	"testing"

	"github.com/gnames/lnsdesign/pkg/config"
	"github.com/gnames/lnsdesign/pkg/lifecycle"
	"github.com/gnames/lnsdesign/pkg/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopWorker struct{ id int }

func (nopWorker) Initialize(
	context.Context, *config.Config, message.Channel, message.Init,
) error {
	return nil
}

func (nopWorker) StartLoading(
	context.Context, *config.Config, message.Channel, message.Load,
) error {
	return nil
}

func (nopWorker) StartExecution(
	context.Context, *config.Config, message.Channel, message.Execute,
) error {
	return nil
}

func TestRegistry(t *testing.T) {
	reg := lifecycle.NewRegistry()
	assert.Empty(t, reg.Names())

	var created int
	reg.Register("designer", func() lifecycle.Worker {
		created++
		return nopWorker{id: created}
	})
	reg.Register("baseline", func() lifecycle.Worker { return nopWorker{} })
	assert.Equal(t, []string{"baseline", "designer"}, reg.Names())

	w1, err := reg.New("designer")
	require.NoError(t, err)
	w2, err := reg.New("designer")
	require.NoError(t, err)
	assert.Equal(t, 2, created, "every call builds a fresh worker")
	assert.NotEqual(t, w1, w2)

	_, err = reg.New("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"unknown"`)
}

func TestRegistryReplace(t *testing.T) {
	reg := lifecycle.NewRegistry()
	reg.Register("designer", func() lifecycle.Worker { return nopWorker{id: 1} })
	reg.Register("designer", func() lifecycle.Worker { return nopWorker{id: 2} })

	w, err := reg.New("designer")
	require.NoError(t, err)
	assert.Equal(t, nopWorker{id: 2}, w)
	assert.Len(t, reg.Names(), 1)
}
