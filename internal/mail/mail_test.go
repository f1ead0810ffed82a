package mail

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	sent []Message
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg Message) (Result, error) {
	r.sent = append(r.sent, msg)
	if r.err != nil {
		return Result{}, r.err
	}
	return Result{MessageID: fmt.Sprintf("<%d@test>", len(r.sent))}, nil
}

func TestSendReminder(t *testing.T) {
	sender := &recordingSender{}
	mailer := NewMailer(sender, "https://app.example.com/")

	res, err := mailer.SendReminder(context.Background(), "ada@example.com", ReminderAlert{
		Title:         "Follow up <call>",
		Description:   "Ask about next steps",
		Due:           time.Date(2026, 4, 2, 15, 0, 0, 0, time.UTC),
		JobTitle:      "Backend Engineer",
		Company:       "Acme",
		ApplicationID: "app-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "<1@test>", res.MessageID)

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "ada@example.com", msg.To)
	assert.Equal(t, "Reminder: Follow up <call>", msg.Subject)
	assert.Contains(t, msg.HTML, "Backend Engineer at Acme")
	assert.Contains(t, msg.HTML, "Ask about next steps")
	assert.Contains(t, msg.HTML, `href="https://app.example.com/applications/app-1"`)
	assert.Contains(t, msg.HTML, "Follow up &lt;call&gt;")
}

func TestSendReminderWithoutDescription(t *testing.T) {
	sender := &recordingSender{}
	_, err := NewMailer(sender, "").SendReminder(context.Background(), "a@b.c", ReminderAlert{Title: "t", ApplicationID: "x"})
	require.NoError(t, err)
	assert.NotContains(t, sender.sent[0].HTML, "<p></p>")
	assert.Contains(t, sender.sent[0].HTML, "http://localhost:3000/applications/x")
}

func TestSendWeeklySummary(t *testing.T) {
	sender := &recordingSender{}
	mailer := NewMailer(sender, "https://app.example.com")

	_, err := mailer.SendWeeklySummary(context.Background(), "ada@example.com", WeeklySummary{
		Name: "Ada", Total: 12, NewThisWeek: 3, Interviews: 2, Offers: 1,
	})
	require.NoError(t, err)

	msg := sender.sent[0]
	assert.Contains(t, msg.Subject, "Weekly Application Summary")
	assert.Contains(t, msg.HTML, "Hi Ada,")
	assert.Contains(t, msg.HTML, ">12<")
	assert.Contains(t, msg.HTML, "https://app.example.com/analytics")
}

func TestDeliveryError(t *testing.T) {
	err := deliveryError(fmt.Errorf("421 try later"), "ada@example.com")
	assert.True(t, errors.Is(err, ErrDelivery))
	assert.Contains(t, err.Error(), "421 try later")
}

func TestLogSender(t *testing.T) {
	res, err := LogSender{}.Send(context.Background(), Message{To: "a@b.c", Subject: "s"})
	require.NoError(t, err)
	assert.Contains(t, res.MessageID, "@hiretrack.local>")
}

func TestNewSMTPSender(t *testing.T) {
	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "u", Password: "p", From: "HireTrack <noreply@example.com>"})
	require.NoError(t, err)
	assert.NotNil(t, s)

	_, err = NewSMTPSender(SMTPConfig{Port: 25})
	assert.Error(t, err)
}
