package models

import (
	"time"

	"github.com/eleven-am/hiretrack/internal/orm"
)

const (
	UsersTable        = "users"
	ApplicationsTable = "applications"
	CVsTable          = "cvs"
	RemindersTable    = "reminders"
)

func qualify(table string, names ...string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = table + "." + n
	}
	return out
}

func str(table, name string) orm.StringColumn {
	return orm.StringColumn{ComparableColumn: orm.ComparableColumn[string]{Column: orm.Column[string]{Name: name, Table: table}}}
}

func ts(table, name string) orm.TimeColumn {
	return orm.TimeColumn{ComparableColumn: orm.ComparableColumn[time.Time]{Column: orm.Column[time.Time]{Name: name, Table: table}}}
}

func flag(table, name string) orm.BoolColumn {
	return orm.BoolColumn{Column: orm.Column[bool]{Name: name, Table: table}}
}

var userFields = []string{
	"id", "email", "password_hash", "first_name", "last_name", "picture",
	"email_reminders", "weekly_summary", "last_login_at", "created_at", "updated_at",
}

var UserMetadata = orm.Metadata{
	TableName:     UsersTable,
	PrimaryKey:    "id",
	Columns:       qualify(UsersTable, userFields...),
	InsertColumns: userFields,
}

var Users = struct {
	ID             orm.StringColumn
	Email          orm.StringColumn
	EmailReminders orm.BoolColumn
	WeeklySummary  orm.BoolColumn
	CreatedAt      orm.TimeColumn
}{
	ID:             str(UsersTable, "id"),
	Email:          str(UsersTable, "email"),
	EmailReminders: flag(UsersTable, "email_reminders"),
	WeeklySummary:  flag(UsersTable, "weekly_summary"),
	CreatedAt:      ts(UsersTable, "created_at"),
}

var applicationFields = []string{
	"id", "user_id", "cv_id", "job_title", "company", "location", "salary",
	"job_url", "notes", "status", "applied_at", "interview_date",
	"offer_received_at", "rejected_at", "created_at", "updated_at",
}

var ApplicationMetadata = orm.Metadata{
	TableName:     ApplicationsTable,
	PrimaryKey:    "id",
	Columns:       qualify(ApplicationsTable, applicationFields...),
	InsertColumns: applicationFields,
}

var Applications = struct {
	ID        orm.StringColumn
	UserID    orm.StringColumn
	Company   orm.StringColumn
	Status    orm.StringColumn
	AppliedAt orm.TimeColumn
	CreatedAt orm.TimeColumn
}{
	ID:        str(ApplicationsTable, "id"),
	UserID:    str(ApplicationsTable, "user_id"),
	Company:   str(ApplicationsTable, "company"),
	Status:    str(ApplicationsTable, "status"),
	AppliedAt: ts(ApplicationsTable, "applied_at"),
	CreatedAt: ts(ApplicationsTable, "created_at"),
}

var cvFields = []string{
	"id", "user_id", "file_name", "file_url", "file_size", "s3_key",
	"version", "is_default", "uploaded_at",
}

var CVMetadata = orm.Metadata{
	TableName:     CVsTable,
	PrimaryKey:    "id",
	Columns:       qualify(CVsTable, cvFields...),
	InsertColumns: cvFields,
}

var CVs = struct {
	ID         orm.StringColumn
	UserID     orm.StringColumn
	IsDefault  orm.BoolColumn
	UploadedAt orm.TimeColumn
}{
	ID:         str(CVsTable, "id"),
	UserID:     str(CVsTable, "user_id"),
	IsDefault:  flag(CVsTable, "is_default"),
	UploadedAt: ts(CVsTable, "uploaded_at"),
}

var reminderFields = []string{
	"id", "user_id", "application_id", "title", "description", "reminder_date",
	"is_sent", "sent_at", "is_completed", "completed_at", "created_at",
}

var ReminderMetadata = orm.Metadata{
	TableName:     RemindersTable,
	PrimaryKey:    "id",
	Columns:       qualify(RemindersTable, reminderFields...),
	InsertColumns: reminderFields,
}

var applicationRefColumns = []string{
	`applications.job_title AS "application.job_title"`,
	`applications.company AS "application.company"`,
}

// ReminderDetailMetadata selects reminders with their application. Queries
// must join applications.
var ReminderDetailMetadata = orm.Metadata{
	TableName:  RemindersTable,
	PrimaryKey: "id",
	Columns:    append(qualify(RemindersTable, reminderFields...), applicationRefColumns...),
}

// DueReminderMetadata additionally selects the owner. Queries must join
// applications and users.
var DueReminderMetadata = orm.Metadata{
	TableName:  RemindersTable,
	PrimaryKey: "id",
	Columns: append(append(qualify(RemindersTable, reminderFields...), applicationRefColumns...),
		`users.email AS "owner.email"`,
		`users.first_name AS "owner.first_name"`,
	),
}

// JoinApplication is the join condition from reminders to applications.
const JoinApplication = "applications.id = reminders.application_id"

// JoinOwner is the join condition from reminders to users.
const JoinOwner = "users.id = reminders.user_id"

var Reminders = struct {
	ID            orm.StringColumn
	UserID        orm.StringColumn
	ApplicationID orm.StringColumn
	ReminderDate  orm.TimeColumn
	IsSent        orm.BoolColumn
	IsCompleted   orm.BoolColumn
}{
	ID:            str(RemindersTable, "id"),
	UserID:        str(RemindersTable, "user_id"),
	ApplicationID: str(RemindersTable, "application_id"),
	ReminderDate:  ts(RemindersTable, "reminder_date"),
	IsSent:        flag(RemindersTable, "is_sent"),
	IsCompleted:   flag(RemindersTable, "is_completed"),
}

// Schema lists the metadata of every table the services write to.
var Schema = []orm.Metadata{UserMetadata, ApplicationMetadata, CVMetadata, ReminderMetadata}
