package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"moneytrack/internal/log"
)

// FanOutResult is the outcome of a bulk delivery.
type FanOutResult struct {
	Attempted int
	Succeeded int
	Failed    []string // in recipient order
}

// FanOut calls send once per recipient, at most limit at a time.
// A failing recipient is logged and never stops the others.
func FanOut(ctx context.Context, recipients []string, limit int, send func(ctx context.Context, recipient string) error, logger *log.Logger) FanOutResult {
	if limit < 1 {
		limit = 1
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	sem := semaphore.NewWeighted(int64(limit))
	errs := make([]error, len(recipients))
	attempted := make([]bool, len(recipients))
	var wg sync.WaitGroup

	for i, r := range recipients {
		// Once ctx ends the remaining recipients are not attempted.
		if ctx.Err() != nil {
			break
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		attempted[i] = true
		wg.Add(1)
		go func(i int, r string) {
			defer wg.Done()
			defer sem.Release(1)
			defer func() {
				if p := recover(); p != nil {
					errs[i] = panicError{p}
				}
			}()
			errs[i] = send(ctx, r)
		}(i, r)
	}
	wg.Wait()

	var res FanOutResult
	for i, r := range recipients {
		if !attempted[i] {
			continue
		}
		res.Attempted++
		if errs[i] != nil {
			res.Failed = append(res.Failed, r)
			logger.ErrorContext(ctx, "Delivery failed",
				log.FieldRecipient, r,
				log.FieldError, errs[i])
			continue
		}
		res.Succeeded++
	}
	return res
}

type panicError struct{ v any }

func (p panicError) Error() string {
	return fmt.Sprintf("panic during delivery: %v", p.v)
}
