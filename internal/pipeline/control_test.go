package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestControl_PauseResume(t *testing.T) {
	c := NewControl()
	assert.False(t, c.Paused())

	c.Pause()
	assert.True(t, c.Paused())

	done := make(chan bool, 1)
	go func() {
		done <- c.WaitWhilePaused(context.Background())
	}()

	select {
	case <-done:
		t.Fatal("wait returned while still paused")
	case <-time.After(150 * time.Millisecond):
	}

	c.Resume()
	select {
	case ok := <-done:
		assert.True(t, ok, "resume should let the run continue")
	case <-time.After(time.Second):
		t.Fatal("wait did not return after resume")
	}
}

func TestControl_StopWinsOverPause(t *testing.T) {
	c := NewControl()
	c.Pause()

	done := make(chan bool, 1)
	go func() {
		done <- c.WaitWhilePaused(context.Background())
	}()

	c.Stop()
	select {
	case ok := <-done:
		assert.False(t, ok, "stop during pause must terminate the run")
	case <-time.After(time.Second):
		t.Fatal("wait did not observe stop")
	}
	assert.True(t, c.Stopped())
}

func TestControl_ContextCancelEndsWait(t *testing.T) {
	c := NewControl()
	c.Pause()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan bool, 1)
	go func() {
		done <- c.WaitWhilePaused(ctx)
	}()

	cancel()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("wait did not observe cancellation")
	}
}

func TestControl_NotPausedReturnsImmediately(t *testing.T) {
	c := NewControl()
	assert.True(t, c.WaitWhilePaused(context.Background()))
}

func TestControl_Reset(t *testing.T) {
	c := NewControl()
	c.Pause()
	c.Stop()

	c.Reset()
	assert.False(t, c.Paused())
	assert.False(t, c.Stopped())
}
