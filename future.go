package fetch

import (
	"context"
	"sync/atomic"
)

// Stage is the last stage an exchange reached.
type Stage uint32

const (
	Resolving Stage = iota
	Connecting
	Writing
	Reading
	Parsed
	Failed
)

func (s Stage) String() string {
	switch s {
	case Resolving:
		return "resolving"
	case Connecting:
		return "connecting"
	case Writing:
		return "writing"
	case Reading:
		return "reading"
	case Parsed:
		return "parsed"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Future is the pending result of an exchange. It is resolved exactly once, either with
// a response or with an *Error.
type Future struct {
	done     chan struct{}
	cancel   context.CancelCauseFunc
	stage    atomic.Uint32
	response *Response
	err      error
}

func newFuture(cancel context.CancelCauseFunc) *Future {
	return &Future{
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

func failedFuture(err error) *Future {
	f := newFuture(func(error) {})
	f.setStage(Failed)
	f.resolve(nil, err)

	return f
}

// Done returns a channel closed once the future is resolved.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Get blocks until the future is resolved.
func (f *Future) Get() (*Response, error) {
	<-f.done
	return f.response, f.err
}

// Wait blocks until the future is resolved or the context is done. In the latter case
// the exchange is canceled and waited for, so once Wait returns the connection is
// guaranteed to be closed.
func (f *Future) Wait(ctx context.Context) (*Response, error) {
	select {
	case <-f.done:
	case <-ctx.Done():
		f.cancel(ctx.Err())
		<-f.done
	}

	return f.response, f.err
}

// Cancel aborts the exchange without waiting for it. Resolved futures are unaffected.
func (f *Future) Cancel() {
	f.cancel(context.Canceled)
}

// Stage returns the last stage the exchange reached.
func (f *Future) Stage() Stage {
	return Stage(f.stage.Load())
}

func (f *Future) setStage(stage Stage) {
	f.stage.Store(uint32(stage))
}

func (f *Future) resolve(response *Response, err error) {
	f.response, f.err = response, err
	close(f.done)
}
