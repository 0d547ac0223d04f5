package cleanup_test

import (
	"context"
	"testing"
	"time"

	"github.com/myhoard/backend/internal/auth/cleanup"
	"github.com/myhoard/backend/internal/common/logger"
)

type countingDeleter struct {
	calls int
}

func (d *countingDeleter) DeleteExpired(ctx context.Context) (int64, error) {
	d.calls++
	return 0, nil
}

func TestStartTokenCleanup_StopsOnContextCancel(t *testing.T) {
	log, err := logger.New("", "test", "error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	deleter := &countingDeleter{}

	done := make(chan struct{})
	go func() {
		cleanup.StartTokenCleanup(ctx, deleter, log)
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected cleanup loop to stop after context cancellation")
	}

	if deleter.calls != 0 {
		t.Errorf("expected no sweep before the first tick, got %d", deleter.calls)
	}
}
