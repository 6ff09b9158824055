package testutil

import (
	"errors"
	"sync"
	"sync/atomic"

	dErrors "privid/pkg/domain-errors"
	"privid/pkg/platform/sentinel"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes int32
	Errors    int32
	Conflicts int32
	NotFounds int32
	Denied    int32
}

// Total returns the total number of operations executed.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Errors + r.Conflicts + r.NotFounds + r.Denied
}

// RunConcurrent executes fn in parallel goroutines and collects results.
// Errors are categorized as conflict (state category or sentinel.ErrConflict),
// not_found (lookup category or sentinel.ErrNotFound), denied (authorization
// category) or generic error.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var wg sync.WaitGroup
	var successes, errs, conflicts, notFounds, denied atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			err := fn(idx)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, sentinel.ErrConflict), categoryOf(err) == dErrors.CategoryState:
				conflicts.Add(1)
			case errors.Is(err, sentinel.ErrNotFound), categoryOf(err) == dErrors.CategoryLookup:
				notFounds.Add(1)
			case categoryOf(err) == dErrors.CategoryAuthorization:
				denied.Add(1)
			default:
				errs.Add(1)
			}
		}(i)
	}

	wg.Wait()

	return &ConcurrentResult{
		Successes: successes.Load(),
		Errors:    errs.Load(),
		Conflicts: conflicts.Load(),
		NotFounds: notFounds.Load(),
		Denied:    denied.Load(),
	}
}

// RunConcurrentCollect executes fn in parallel and collects all errors.
// Use this when you need to inspect individual error types beyond the standard categories.
func RunConcurrentCollect(goroutines int, fn func(idx int) error) (successes int32, errs []error) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var successCount atomic.Int32
	collectedErrs := make([]error, 0)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if err := fn(idx); err != nil {
				mu.Lock()
				collectedErrs = append(collectedErrs, err)
				mu.Unlock()
			} else {
				successCount.Add(1)
			}
		}(i)
	}

	wg.Wait()
	return successCount.Load(), collectedErrs
}

// categoryOf returns the category of a domain error, or "" for anything else.
func categoryOf(err error) dErrors.Category {
	var de *dErrors.Error
	if errors.As(err, &de) {
		return de.Code.Category()
	}
	return ""
}
