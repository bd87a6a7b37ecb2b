package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskflow/pkg/utils/async"
)

func TestDispatch(t *testing.T) {
	done := make(chan struct{})
	async.Dispatch(context.Background(), func(ctx context.Context) error {
		close(done)
		return nil
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was not executed")
	}
}

func TestDispatchRecoversPanic(t *testing.T) {
	done := make(chan struct{})
	async.Dispatch(context.Background(), func(ctx context.Context) error {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler was not executed")
	}
}

func TestFanout(t *testing.T) {
	var count atomic.Int32
	errFailed := errors.New("failed")

	err := async.Fanout(context.Background(),
		func(ctx context.Context) error { count.Add(1); return nil },
		nil,
		func(ctx context.Context) error { count.Add(1); return errFailed },
		func(ctx context.Context) error { count.Add(1); return nil },
	)

	gt.Error(t, err).Is(errFailed)
	gt.Number(t, count.Load()).Equal(3)
}
