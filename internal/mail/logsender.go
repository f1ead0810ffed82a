package mail

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/eleven-am/hiretrack/internal/logger"
)

// LogSender writes messages to the log instead of delivering them. It is
// used when no SMTP relay is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) (Result, error) {
	id := fmt.Sprintf("<%s@hiretrack.local>", uuid.NewString())
	logger.Mail().WithFields(logger.Fields{
		"to":         msg.To,
		"subject":    msg.Subject,
		"message_id": id,
		"bytes":      len(msg.HTML),
	}).Info("email not delivered, no SMTP host configured")
	return Result{MessageID: id}, nil
}
