package mail

import (
	"bytes"
	"context"
	"html/template"
	"strings"
	"time"

	"github.com/juju/errors"
)

const layout = `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
{{template "content" .}}
<p style="color: #6b7280; font-size: 12px; margin-top: 30px;">{{template "footer" .}}</p>
</div>`

const reminderBody = `{{define "content"}}<h2 style="color: #2563eb;">Reminder from HireTrack</h2>
<div style="background: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0;">
<h3 style="margin-top: 0;">{{.Title}}</h3>
<p><strong>Application:</strong> {{.Application}}</p>
{{if .Description}}<p>{{.Description}}</p>{{end}}
<p><strong>Reminder Date:</strong> {{.Due.Format "Mon, 02 Jan 2006 15:04 MST"}}</p>
</div>
<p>Don't forget to follow up on your application!</p>
<a href="{{.Link}}" style="display: inline-block; background: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px;">View Application</a>
{{end}}{{define "footer"}}This is an automated reminder from HireTrack{{end}}`

const summaryBody = `{{define "content"}}<h2 style="color: #2563eb;">Weekly Summary</h2>
<p>Hi {{.Name}},</p>
<p>Here's your job application summary for this week:</p>
<table style="width: 100%; border-collapse: collapse; background: #f3f4f6;">
<tr><td style="padding: 10px;"><strong>Total Applications:</strong></td><td style="padding: 10px; text-align: right;">{{.Total}}</td></tr>
<tr><td style="padding: 10px;"><strong>New This Week:</strong></td><td style="padding: 10px; text-align: right;">{{.NewThisWeek}}</td></tr>
<tr><td style="padding: 10px;"><strong>Interviews:</strong></td><td style="padding: 10px; text-align: right;">{{.Interviews}}</td></tr>
<tr><td style="padding: 10px;"><strong>Offers:</strong></td><td style="padding: 10px; text-align: right;">{{.Offers}}</td></tr>
</table>
<a href="{{.Link}}" style="display: inline-block; background: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px;">View Full Analytics</a>
{{end}}{{define "footer"}}You're receiving this because you have weekly summaries enabled in your settings.{{end}}`

var (
	reminderTemplate = template.Must(template.Must(template.New("reminder").Parse(layout)).Parse(reminderBody))
	summaryTemplate  = template.Must(template.Must(template.New("summary").Parse(layout)).Parse(summaryBody))
)

// ReminderAlert is the content of a single due-reminder email.
type ReminderAlert struct {
	Title         string
	Description   string
	Due           time.Time
	JobTitle      string
	Company       string
	ApplicationID string
}

type WeeklySummary struct {
	Name        string
	Total       int64
	NewThisWeek int64
	Interviews  int64
	Offers      int64
}

// Mailer renders the transactional templates and hands them to a Sender.
type Mailer struct {
	sender      Sender
	frontendURL string
}

func NewMailer(sender Sender, frontendURL string) *Mailer {
	if frontendURL == "" {
		frontendURL = "http://localhost:3000"
	}
	return &Mailer{sender: sender, frontendURL: strings.TrimRight(frontendURL, "/")}
}

func (m *Mailer) SendReminder(ctx context.Context, to string, alert ReminderAlert) (Result, error) {
	data := struct {
		ReminderAlert
		Application string
		Link        string
	}{
		ReminderAlert: alert,
		Application:   alert.JobTitle + " at " + alert.Company,
		Link:          m.frontendURL + "/applications/" + alert.ApplicationID,
	}

	body, err := render(reminderTemplate, data)
	if err != nil {
		return Result{}, err
	}
	return m.sender.Send(ctx, Message{To: to, Subject: "Reminder: " + alert.Title, HTML: body})
}

func (m *Mailer) SendWeeklySummary(ctx context.Context, to string, summary WeeklySummary) (Result, error) {
	data := struct {
		WeeklySummary
		Link string
	}{
		WeeklySummary: summary,
		Link:          m.frontendURL + "/analytics",
	}

	body, err := render(summaryTemplate, data)
	if err != nil {
		return Result{}, err
	}
	return m.sender.Send(ctx, Message{To: to, Subject: "Your Weekly Application Summary", HTML: body})
}

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", errors.Annotatef(err, "rendering %s email", t.Name())
	}
	return buf.String(), nil
}
