// Package mail renders and delivers transactional email.
package mail

import (
	"context"

	"github.com/juju/errors"
)

// ErrDelivery marks a transport failure. Callers that batch deliveries
// treat it as recoverable.
const ErrDelivery = errors.ConstError("delivery failed")

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Result struct {
	MessageID string
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) (Result, error)
}

func deliveryError(err error, to string) error {
	return errors.WithType(errors.Annotatef(err, "sending to %s", to), ErrDelivery)
}
