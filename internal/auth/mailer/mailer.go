// Package mailer delivers one-time codes to account email addresses.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/voxauth/pkg/retryx"
	"github.com/aussiebroadwan/voxauth/pkg/slogx"
)

// ErrDelivery is returned when a code could not be handed to the mail relay.
var ErrDelivery = errors.New("mailer: delivery failed")

const (
	Subject    = "Verify your email"
	bodyPrefix = "Your OTP is "
)

// Sender sends a one-time code to a single recipient.
type Sender interface {
	SendOTP(ctx context.Context, to, code string) error
}

// Body renders the plain-text message carrying code.
func Body(code string) string {
	return bodyPrefix + code
}

// LogSender writes the code to the log instead of sending it. Development only.
type LogSender struct {
	Log *slog.Logger
}

func (s LogSender) SendOTP(ctx context.Context, to, code string) error {
	log := s.Log
	if log == nil {
		log = slogx.FromContext(ctx)
	}
	log.InfoContext(ctx, "otp delivery (log only)",
		slogx.Email("to", to),
		slog.String("code", code),
	)
	return nil
}

// Retrying retries a Sender under a bounded policy. Any failure left after the
// last attempt is reported as ErrDelivery.
type Retrying struct {
	Next   Sender
	Policy retryx.Policy
}

func (r Retrying) SendOTP(ctx context.Context, to, code string) error {
	err := retryx.Do(ctx, r.Policy, func(ctx context.Context) error {
		return r.Next.SendOTP(ctx, to, code)
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDelivery) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrDelivery, err)
}
