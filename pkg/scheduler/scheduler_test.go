package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInvokesJob(t *testing.T) {
	var calls int32
	s := New("materialize", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	}, Options{Spec: "5 0 * * *"}, nil)

	assert.True(t, s.Run(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRunSkipsOverlap(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	s := New("materialize", func(ctx context.Context) error {
		close(started)
		<-release
		return nil
	}, Options{Spec: "5 0 * * *"}, nil)

	done := make(chan bool)
	go func() { done <- s.Run(context.Background()) }()
	<-started

	assert.False(t, s.Run(context.Background()))
	close(release)
	assert.True(t, <-done)
}

func TestRunRecoversFromErrorsAndPanics(t *testing.T) {
	s := New("failing", func(ctx context.Context) error { return errors.New("db down") }, Options{Spec: "@daily"}, nil)
	assert.True(t, s.Run(context.Background()))

	s = New("panicking", func(ctx context.Context) error { panic("boom") }, Options{Spec: "@daily"}, nil)
	assert.NotPanics(t, func() { s.Run(context.Background()) })
	assert.True(t, s.Run(context.Background()), "a panicking pass must release the overlap guard")
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New("bad", func(ctx context.Context) error { return nil }, Options{Spec: "not a spec"}, nil)
	assert.Error(t, s.Start())
}

func TestStartRunsOnStartupAndSchedulesInLocation(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)

	ran := make(chan struct{}, 1)
	s := New("materialize", func(ctx context.Context) error {
		ran <- struct{}{}
		return nil
	}, Options{Spec: "5 0 * * *", Location: jakarta, RunOnStartup: true}, nil)

	require.NoError(t, s.Start())
	defer s.Stop(context.Background())

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("startup run did not happen")
	}

	next := s.Next().In(jakarta)
	assert.Equal(t, 0, next.Hour())
	assert.Equal(t, 5, next.Minute())
}
