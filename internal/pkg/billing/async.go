package billing

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// runAsync is swapped for a synchronous runner in tests.
var runAsync = safeAsync

// safeAsync runs fn in a goroutine with a timeout and logs failures. Callers
// never see the error.
func safeAsync(op string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Errorf("[Billing] async %s failed: %v", op, err)
		}
	}()
}
