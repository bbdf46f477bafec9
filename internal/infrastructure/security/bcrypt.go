package security

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
)

// Runner executes fn off the calling goroutine and waits for it.
// *queue.Pool satisfies it.
type Runner interface {
	Do(ctx context.Context, fn func()) error
}

// BcryptHasher implements ports.PasswordHasher with bcrypt. When a Runner is
// set, the CPU-bound work is handed to it instead of running inline.
type BcryptHasher struct {
	cost     int
	runner   Runner
	duration *prometheus.HistogramVec
}

// NewBcryptHasher returns a hasher using cost. Out-of-range costs fall back to
// bcrypt.DefaultCost. runner and duration may be nil.
func NewBcryptHasher(cost int, runner Runner, duration *prometheus.HistogramVec) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost, runner: runner, duration: duration}
}

func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	var (
		hash []byte
		err  error
	)
	runErr := h.run(ctx, "hash", func() {
		hash, err = bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	})
	if runErr != nil {
		return "", runErr
	}
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash. Malformed hashes, a
// cancelled context and a stopped runner all count as a mismatch.
func (h *BcryptHasher) Verify(ctx context.Context, plaintext, hash string) bool {
	var err error
	if runErr := h.run(ctx, "verify", func() {
		err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	}); runErr != nil {
		return false
	}
	return err == nil
}

func (h *BcryptHasher) run(ctx context.Context, op string, fn func()) error {
	timed := func() {
		start := time.Now()
		fn()
		if h.duration != nil {
			h.duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		}
	}
	if h.runner == nil {
		timed()
		return nil
	}
	return h.runner.Do(ctx, timed)
}
