package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/Shimmur/logspammer/reporter"
	limiter "github.com/sethvargo/go-limiter"
	"github.com/sethvargo/go-limiter/memorystore"
	log "github.com/sirupsen/logrus"
)

// A RateLimitedSender wraps another Sender, holding sends back once the
// token budget for the current interval is spent. Nothing is dropped: a
// throttled send waits for the next interval.
type RateLimitedSender struct {
	limitStore    limiter.Store
	limitReporter *reporter.SendReporter
	output        Sender
	limitKey      string

	sleep func(context.Context, time.Duration) error
	now   func() time.Time
}

// NewRateLimitedSender allows tokenLimit sends per interval to reach output.
// limitReporter may be nil.
func NewRateLimitedSender(
	limitReporter *reporter.SendReporter, tokenLimit int,
	interval time.Duration, key string, output Sender) (*RateLimitedSender, error) {

	store, err := memorystore.New(&memorystore.Config{
		// Number of tokens allowed per interval.
		Tokens: uint64(tokenLimit),

		// Interval until tokens reset.
		Interval: interval,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to create memory store: %w", err)
	}

	return &RateLimitedSender{
		limitStore:    store,
		limitReporter: limitReporter,
		output:        output,
		limitKey:      key,
		sleep:         sleepContext,
		now:           time.Now,
	}, nil
}

// waitForToken blocks until the store hands out a token or ctx is done
func (s *RateLimitedSender) waitForToken(ctx context.Context) error {
	for {
		limit, remaining, reset, ok, err := s.limitStore.Take(ctx, s.limitKey)
		log.Debugf("Checking rate limit: %d %d %d %t", limit, remaining, reset, ok)
		if err != nil {
			return fmt.Errorf("unable to fetch rate limit for %s: %w", s.limitKey, err)
		}

		if ok {
			return nil
		}

		if s.limitReporter != nil {
			s.limitReporter.Throttled()
		}

		wait := time.Unix(0, int64(reset)).Sub(s.now())
		if wait <= 0 {
			wait = time.Millisecond
		}
		if err := s.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// Send is a pass-through to the wrapped Sender once a token is available
func (s *RateLimitedSender) Send(ctx context.Context, payload []byte) error {
	if err := s.waitForToken(ctx); err != nil {
		return err
	}

	return s.output.Send(ctx, payload)
}

// Close releases the limiter and closes the wrapped Sender
func (s *RateLimitedSender) Close() error {
	if err := s.limitStore.Close(context.Background()); err != nil {
		log.Warnf("Unable to close rate limit store: %s", err)
	}

	return s.output.Close()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
