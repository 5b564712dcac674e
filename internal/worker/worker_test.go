package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"
)

func TestStartStopsOnCancel(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)

	var running atomic.Int32
	block := func(ctx context.Context) error {
		running.Add(1)
		<-ctx.Done()
		return ctx.Err()
	}
	Start(gctx, g, zap.New(core),
		Task{Name: "a", Run: block},
		Task{Name: "b", Run: block},
		Task{Name: "skipped"},
	)

	require.Eventually(t, func() bool { return running.Load() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, g.Wait())
	assert.Equal(t, 2, logs.FilterMessage("worker stopped").Len())
}

func TestStartPropagatesFailure(t *testing.T) {
	g, gctx := errgroup.WithContext(context.Background())
	boom := errors.New("boom")

	Start(gctx, g, nil,
		Task{Name: "fails", Run: func(context.Context) error { return boom }},
		Task{Name: "waits", Run: func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		}},
	)

	assert.ErrorIs(t, g.Wait(), boom)
}
