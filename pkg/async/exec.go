package async

import "context"

// ExecFuture is a Future for computations that only return an error.
type ExecFuture struct {
	f *Future[struct{}]
}

// Exec runs fn(ctx, param) asynchronously.
func Exec[T any](ctx context.Context, param T, fn func(context.Context, T) error) *ExecFuture {
	return &ExecFuture{f: Async(ctx, param, func(ctx context.Context, p T) (struct{}, error) {
		return struct{}{}, fn(ctx, p)
	})}
}

// Await waits for the function to complete and returns its error.
func (e *ExecFuture) Await() error {
	_, err := e.f.Await()
	return err
}

// Done returns a channel closed when the function completes.
func (e *ExecFuture) Done() <-chan struct{} {
	return e.f.Done()
}
