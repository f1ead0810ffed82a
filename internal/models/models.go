// Package models holds the persisted records and their table metadata.
package models

import "time"

// ApplicationStatus is the free-form pipeline stage of an application.
type ApplicationStatus string

const (
	StatusApplied   ApplicationStatus = "APPLIED"
	StatusInterview ApplicationStatus = "INTERVIEW"
	StatusOffer     ApplicationStatus = "OFFER"
	StatusRejected  ApplicationStatus = "REJECTED"
)

// Statuses lists the known stages in pipeline order.
var Statuses = []ApplicationStatus{StatusApplied, StatusInterview, StatusOffer, StatusRejected}

// Valid reports whether s is one of the known stages.
func (s ApplicationStatus) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

type User struct {
	ID             string     `db:"id" json:"id"`
	Email          string     `db:"email" json:"email"`
	PasswordHash   string     `db:"password_hash" json:"-"`
	FirstName      *string    `db:"first_name" json:"firstName"`
	LastName       *string    `db:"last_name" json:"lastName"`
	Picture        *string    `db:"picture" json:"picture"`
	EmailReminders bool       `db:"email_reminders" json:"emailReminders"`
	WeeklySummary  bool       `db:"weekly_summary" json:"weeklySummary"`
	LastLoginAt    *time.Time `db:"last_login_at" json:"lastLoginAt"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

// DisplayName is the greeting name used in emails.
func (u User) DisplayName() string {
	if u.FirstName != nil && *u.FirstName != "" {
		return *u.FirstName
	}
	return u.Email
}

type Application struct {
	ID              string            `db:"id" json:"id"`
	UserID          string            `db:"user_id" json:"userId"`
	CVID            *string           `db:"cv_id" json:"cvId"`
	JobTitle        string            `db:"job_title" json:"jobTitle"`
	Company         string            `db:"company" json:"company"`
	Location        *string           `db:"location" json:"location"`
	Salary          *string           `db:"salary" json:"salary"`
	JobURL          *string           `db:"job_url" json:"jobUrl"`
	Notes           *string           `db:"notes" json:"notes"`
	Status          ApplicationStatus `db:"status" json:"status"`
	AppliedAt       time.Time         `db:"applied_at" json:"appliedAt"`
	InterviewDate   *time.Time        `db:"interview_date" json:"interviewDate"`
	OfferReceivedAt *time.Time        `db:"offer_received_at" json:"offerReceivedAt"`
	RejectedAt      *time.Time        `db:"rejected_at" json:"rejectedAt"`
	CreatedAt       time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updatedAt"`
}

type CV struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"userId"`
	FileName   string    `db:"file_name" json:"fileName"`
	FileURL    string    `db:"file_url" json:"fileUrl"`
	FileSize   int64     `db:"file_size" json:"fileSize"`
	S3Key      string    `db:"s3_key" json:"s3Key"`
	Version    string    `db:"version" json:"version"`
	IsDefault  bool      `db:"is_default" json:"isDefault"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploadedAt"`
}

// Reminder is a dated follow-up on an application. IsSent is only ever
// set by the sweep after a successful delivery; IsCompleted only by the
// owner.
type Reminder struct {
	ID            string     `db:"id" json:"id"`
	UserID        string     `db:"user_id" json:"userId"`
	ApplicationID string     `db:"application_id" json:"applicationId"`
	Title         string     `db:"title" json:"title"`
	Description   string     `db:"description" json:"description"`
	ReminderDate  time.Time  `db:"reminder_date" json:"reminderDate"`
	IsSent        bool       `db:"is_sent" json:"isSent"`
	SentAt        *time.Time `db:"sent_at" json:"sentAt"`
	IsCompleted   bool       `db:"is_completed" json:"isCompleted"`
	CompletedAt   *time.Time `db:"completed_at" json:"completedAt"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
}

// ApplicationRef is the slice of an application shown next to a reminder.
type ApplicationRef struct {
	JobTitle string `db:"job_title" json:"jobTitle"`
	Company  string `db:"company" json:"company"`
}

// OwnerRef carries the delivery address of a reminder's owner.
type OwnerRef struct {
	Email     string  `db:"email" json:"email"`
	FirstName *string `db:"first_name" json:"firstName"`
}

// ReminderDetail is a reminder joined with its application.
type ReminderDetail struct {
	Reminder
	Application ApplicationRef `db:"application" json:"application"`
}

// DueReminder is a reminder selected by the sweep, joined with everything
// the alert email needs.
type DueReminder struct {
	Reminder
	Application ApplicationRef `db:"application"`
	Owner       OwnerRef       `db:"owner"`
}

// ApplicationDetail is an application with its reminders.
type ApplicationDetail struct {
	Application
	Reminders []Reminder `json:"reminders"`
}
