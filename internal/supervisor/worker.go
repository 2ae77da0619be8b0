package supervisor

import "context"

// Worker is the handle for a supervised start with auto-reconnect. It
// wraps the goroutine running Start so callers can cancel it and wait
// for the lock-marker cleanup to finish before exiting.
type Worker struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Watch runs Start with auto-reconnect in a goroutine and returns a
// handle to it. The worker stops when ctx is canceled or Cancel is
// called; Wait blocks until it has fully unwound.
func (s *Supervisor) Watch(ctx context.Context, name string) *Worker {
	ctx, cancel := context.WithCancel(ctx)
	w := &Worker{
		name:   name,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(w.done)
		w.err = s.Start(ctx, name, StartOptions{AutoReconnect: true})
	}()

	return w
}

// Name returns the server name the worker supervises.
func (w *Worker) Name() string {
	return w.name
}

// Cancel signals the worker to stop. It does not wait; pair with Wait.
func (w *Worker) Cancel() {
	w.cancel()
}

// Done returns a channel closed when the worker has fully unwound.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Wait blocks until the worker has stopped and returns the error from
// the underlying Start call, if any.
func (w *Worker) Wait() error {
	<-w.done
	return w.err
}
