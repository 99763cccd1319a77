// Package async implements a Future for one-shot asynchronous computations.
//
// Async starts a function in its own goroutine and returns a Future that
// can be awaited once or many times:
//
//	future := async.Async(ctx, markup, decodeSVG)
//
//	icon, err := future.AwaitContext(ctx)
//	if err != nil {
//		return err
//	}
//
// AwaitContext bounds the wait without canceling the computation. Exec is
// the variant for functions that only return an error; its Done channel
// fits a select loop.
//
// A context that is already canceled completes the future immediately with
// the context error. Panics inside the function are recovered and reported
// as errors.
package async
