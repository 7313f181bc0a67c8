// Package poller polls an upstream payment status until it settles or the
// attempt budget runs out. It is deliberately separate from the statement
// pipeline: status checks are bounded and time-driven, statement fetches
// are demand-driven and cached.
package poller

import (
	"context"
	"time"

	"github.com/glowdesk/walletd/internal/apperrors"
	"github.com/glowdesk/walletd/internal/gateway/salonapi"
	"github.com/glowdesk/walletd/pkg/logger"
)

// Defaults for the polling loop
const (
	DefaultInterval    = 3 * time.Second
	DefaultMaxAttempts = 10
)

// StatusFetcher retrieves the current status of one payment.
type StatusFetcher interface {
	GetPaymentStatus(ctx context.Context, paymentID string) (*salonapi.PaymentStatus, error)
}

// Poller checks a payment's status at a fixed interval, a bounded number
// of times.
type Poller struct {
	fetcher     StatusFetcher
	interval    time.Duration
	maxAttempts int
	logger      *logger.Logger
}

// New creates a poller with the given cadence. Non-positive interval or
// attempt count falls back to the defaults.
func New(fetcher StatusFetcher, interval time.Duration, maxAttempts int, log *logger.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Poller{
		fetcher:     fetcher,
		interval:    interval,
		maxAttempts: maxAttempts,
		logger:      log.WithField("component", "poller"),
	}
}

// Wait polls until the payment reaches a terminal status. The first check
// happens immediately, the rest at the configured interval. Transport
// errors consume an attempt like any other non-terminal result; when the
// budget is exhausted the last error wins, otherwise a timeout is
// returned. Context cancellation stops the loop between attempts.
func (p *Poller) Wait(ctx context.Context, paymentID string) (*salonapi.PaymentStatus, error) {
	var lastErr error

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		status, err := p.fetcher.GetPaymentStatus(ctx, paymentID)
		switch {
		case err != nil:
			if apperrors.IsKind(err, apperrors.KindSessionExpired) ||
				apperrors.IsKind(err, apperrors.KindNotFound) {
				// Not going to change on the next tick
				return nil, err
			}
			p.logger.Warn("payment status check failed",
				"payment_id", paymentID, "attempt", attempt, "error", err)
			lastErr = err
		case status.IsTerminal():
			p.logger.Info("payment settled",
				"payment_id", paymentID, "status", status.Status, "attempts", attempt)
			return status, nil
		default:
			p.logger.Debug("payment still pending",
				"payment_id", paymentID, "status", status.Status, "attempt", attempt)
			lastErr = nil
		}

		if attempt == p.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.interval):
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, apperrors.Timeout("payment did not settle within the polling window")
}
