// Package async provides a small generic Future used to share the result of a
// single in-flight computation between any number of waiters.
//
// Async starts the supplied function in its own goroutine and returns a
// *Future immediately. Every caller holding the Future can then block on
// Await, bound the wait with its own context through AwaitContext, or select
// on Done. Abandoning a wait never cancels the computation: the function keeps
// running until its own context ends, and later waiters still observe the
// result.
//
// # Usage
//
//	f := async.Async(ctx, refreshToken, func(ctx context.Context, rt string) (string, error) {
//	    return backend.Refresh(ctx, rt)
//	})
//
//	token, err := f.AwaitContext(requestCtx)
//	if errors.Is(err, context.Canceled) {
//	    // this caller gave up; f is still running for everyone else
//	}
//
// # Error Handling
//
// Await returns the error produced by the function. AwaitContext additionally
// returns the waiter's context error when that context ends first.
package async
