package api

import (
	"context"
	"io"

	"github.com/juju/errors"

	"github.com/eleven-am/hiretrack/internal/applications"
	"github.com/eleven-am/hiretrack/internal/auth"
	"github.com/eleven-am/hiretrack/internal/cvs"
	"github.com/eleven-am/hiretrack/internal/models"
	"github.com/eleven-am/hiretrack/internal/reminders"
	"github.com/eleven-am/hiretrack/internal/users"
)

const (
	validToken = "good-token"

	reminderID    = "7d1c1f9e-5b1a-4c53-9e0e-2f1f0c7b6a01"
	missingID     = "00000000-0000-4000-8000-000000000000"
	applicationID = "3b8f4c2e-0a6d-4f7e-b1c9-5d2e8a7f6c02"
	cvID          = "c4a7e9d1-2b3f-4a5c-8d6e-9f0a1b2c3d03"
)

type fakeTokens struct{}

func (fakeTokens) VerifyAccess(token string) (auth.Identity, error) {
	if token != validToken {
		return auth.Identity{}, errors.Unauthorizedf("invalid token")
	}
	return auth.Identity{UserID: "u1", Email: "ada@example.com"}, nil
}

type fakeUsers struct {
	lastSignup users.SignupParams
}

func (f *fakeUsers) Signup(_ context.Context, params users.SignupParams) (*users.Session, error) {
	f.lastSignup = params
	if params.Email == "taken@example.com" {
		return nil, errors.AlreadyExistsf("user with email %s", params.Email)
	}
	return &users.Session{
		Tokens: auth.Tokens{AccessToken: "a", RefreshToken: "r"},
		User:   &models.User{ID: "u1", Email: params.Email},
	}, nil
}

func (f *fakeUsers) Login(_ context.Context, email, password string) (*users.Session, error) {
	return nil, errors.Unauthorizedf("invalid credentials")
}

func (f *fakeUsers) Refresh(_ context.Context, id auth.Identity) (auth.Tokens, error) {
	return auth.Tokens{AccessToken: "new-" + id.UserID}, nil
}

func (f *fakeUsers) Profile(_ context.Context, userID string) (*models.User, error) {
	return &models.User{ID: userID, Email: "ada@example.com"}, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, userID string, params users.ProfileParams) (*models.User, error) {
	return &models.User{ID: userID, FirstName: params.FirstName}, nil
}

func (f *fakeUsers) UpdateNotifications(_ context.Context, userID string, params users.NotificationParams) (*models.User, error) {
	u := &models.User{ID: userID, EmailReminders: true}
	if params.EmailReminders != nil {
		u.EmailReminders = *params.EmailReminders
	}
	return u, nil
}

type fakeApplications struct {
	lastFilter applications.Filter
}

func (f *fakeApplications) Create(_ context.Context, ownerID string, params applications.Params) (*models.Application, error) {
	if params.Company == nil {
		return nil, errors.NotValidf("empty company")
	}
	return &models.Application{ID: "a1", UserID: ownerID, Company: *params.Company}, nil
}

func (f *fakeApplications) List(_ context.Context, ownerID string, filter applications.Filter) ([]models.Application, error) {
	f.lastFilter = filter
	return []models.Application{}, nil
}

func (f *fakeApplications) Get(_ context.Context, id, ownerID string) (*models.ApplicationDetail, error) {
	return nil, errors.NotFoundf("application")
}

func (f *fakeApplications) Update(_ context.Context, id, ownerID string, params applications.Params) (*models.Application, error) {
	return &models.Application{ID: id, UserID: ownerID}, nil
}

func (f *fakeApplications) Delete(context.Context, string, string) error { return nil }

func (f *fakeApplications) Stats(context.Context, string) (*applications.Stats, error) {
	return &applications.Stats{Total: 2, ResponseRate: "50.00", InterviewRate: "0.00"}, nil
}

type fakeReminders struct {
	lastPage  reminders.Page
	completed []string
	failWith  error
}

func (f *fakeReminders) Create(_ context.Context, ownerID string, params reminders.CreateParams) (*models.ReminderDetail, error) {
	if params.Title == "" {
		return nil, errors.NotValidf("empty title")
	}
	return &models.ReminderDetail{Reminder: models.Reminder{ID: "r1", UserID: ownerID, Title: params.Title}}, nil
}

func (f *fakeReminders) ListAll(_ context.Context, ownerID string, page reminders.Page) ([]models.ReminderDetail, error) {
	f.lastPage = page
	return []models.ReminderDetail{}, f.failWith
}

func (f *fakeReminders) ListUpcoming(context.Context, string) ([]models.ReminderDetail, error) {
	return []models.ReminderDetail{}, nil
}

func (f *fakeReminders) MarkComplete(_ context.Context, id, ownerID string) (*models.ReminderDetail, error) {
	if id == missingID {
		return nil, errors.NotFoundf("reminder")
	}
	f.completed = append(f.completed, id)
	return &models.ReminderDetail{Reminder: models.Reminder{ID: id, UserID: ownerID, IsCompleted: true}}, nil
}

func (f *fakeReminders) Delete(context.Context, string, string) error { return nil }

type fakeCVs struct {
	uploaded []byte
	params   cvs.UploadParams
}

func (f *fakeCVs) Upload(_ context.Context, ownerID string, params cvs.UploadParams) (*models.CV, error) {
	data, err := io.ReadAll(params.Content)
	if err != nil {
		return nil, err
	}
	f.uploaded = data
	f.params = params
	return &models.CV{ID: "cv1", UserID: ownerID, FileName: params.FileName, IsDefault: params.IsDefault}, nil
}

func (f *fakeCVs) List(context.Context, string) ([]models.CV, error) { return []models.CV{}, nil }

func (f *fakeCVs) SetDefault(_ context.Context, id, ownerID string) (*models.CV, error) {
	return &models.CV{ID: id, UserID: ownerID, IsDefault: true}, nil
}

func (f *fakeCVs) Delete(_ context.Context, id, ownerID string) (*models.CV, error) {
	return &models.CV{ID: id, UserID: ownerID}, nil
}
