package reminders

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/juju/errors"

	"github.com/eleven-am/hiretrack/internal/mail"
	"github.com/eleven-am/hiretrack/internal/models"
)

type fakeApp struct {
	owner string
	ref   models.ApplicationRef
}

type fakeUser struct {
	email          string
	emailReminders bool
}

type fakeStore struct {
	mu        sync.Mutex
	apps      map[string]fakeApp
	users     map[string]fakeUser
	reminders map[string]*models.Reminder

	dueErr  error
	markErr error
	// sentElsewhere simulates an overlapping sweep that marked the
	// reminder between our query and our update.
	sentElsewhere map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		apps:          map[string]fakeApp{},
		users:         map[string]fakeUser{},
		reminders:     map[string]*models.Reminder{},
		sentElsewhere: map[string]bool{},
	}
}

func (f *fakeStore) addUser(id, email string, emailReminders bool) {
	f.users[id] = fakeUser{email: email, emailReminders: emailReminders}
}

func (f *fakeStore) addApp(id, owner, title, company string) {
	f.apps[id] = fakeApp{owner: owner, ref: models.ApplicationRef{JobTitle: title, Company: company}}
}

func (f *fakeStore) put(r models.Reminder) {
	f.reminders[r.ID] = &r
}

func (f *fakeStore) reminder(id string) models.Reminder {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.reminders[id]
}

func (f *fakeStore) ApplicationRef(_ context.Context, applicationID, userID string) (*models.ApplicationRef, error) {
	app, ok := f.apps[applicationID]
	if !ok || app.owner != userID {
		return nil, errors.NotFoundf("application")
	}
	ref := app.ref
	return &ref, nil
}

func (f *fakeStore) Create(_ context.Context, r *models.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.put(*r)
	return nil
}

func (f *fakeStore) detail(r models.Reminder) models.ReminderDetail {
	return models.ReminderDetail{Reminder: r, Application: f.apps[r.ApplicationID].ref}
}

func (f *fakeStore) Get(_ context.Context, id, userID string) (*models.ReminderDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reminders[id]
	if !ok || r.UserID != userID {
		return nil, errors.NotFoundf("reminder")
	}
	d := f.detail(*r)
	return &d, nil
}

func (f *fakeStore) sorted(keep func(models.Reminder) bool) []models.ReminderDetail {
	out := []models.ReminderDetail{}
	for _, r := range f.reminders {
		if keep(*r) {
			out = append(out, f.detail(*r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReminderDate.Before(out[j].ReminderDate) })
	return out
}

func (f *fakeStore) List(_ context.Context, userID string, page Page) ([]models.ReminderDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.sorted(func(r models.Reminder) bool { return r.UserID == userID })
	if page.Offset > 0 {
		if int(page.Offset) >= len(out) {
			return []models.ReminderDetail{}, nil
		}
		out = out[page.Offset:]
	}
	if page.Limit > 0 && int(page.Limit) < len(out) {
		out = out[:page.Limit]
	}
	return out, nil
}

func (f *fakeStore) ListPendingBetween(_ context.Context, userID string, from, to time.Time) ([]models.ReminderDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(func(r models.Reminder) bool {
		return r.UserID == userID && !r.ReminderDate.Before(from) && !r.ReminderDate.After(to) && !r.IsSent && !r.IsCompleted
	}), nil
}

func (f *fakeStore) Complete(_ context.Context, id, userID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reminders[id]
	if !ok || r.UserID != userID {
		return errors.NotFoundf("reminder")
	}
	r.IsCompleted = true
	r.CompletedAt = &at
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reminders[id]
	if !ok || r.UserID != userID {
		return errors.NotFoundf("reminder")
	}
	delete(f.reminders, id)
	return nil
}

func (f *fakeStore) Due(_ context.Context, now time.Time) ([]models.DueReminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dueErr != nil {
		return nil, f.dueErr
	}
	details := f.sorted(func(r models.Reminder) bool {
		return !r.ReminderDate.After(now) && !r.IsSent && !r.IsCompleted && f.users[r.UserID].emailReminders
	})
	out := make([]models.DueReminder, len(details))
	for i, d := range details {
		out[i] = models.DueReminder{
			Reminder:    d.Reminder,
			Application: d.Application,
			Owner:       models.OwnerRef{Email: f.users[d.UserID].email},
		}
	}
	return out, nil
}

func (f *fakeStore) MarkSent(_ context.Context, id string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return false, f.markErr
	}
	if f.sentElsewhere[id] {
		f.reminders[id].IsSent = true
	}
	r, ok := f.reminders[id]
	if !ok || r.IsSent {
		return false, nil
	}
	r.IsSent = true
	r.SentAt = &at
	return true, nil
}

// outbox records every attempted delivery and fails those addressed to
// entries in failFor.
type outbox struct {
	mu      sync.Mutex
	sent    []mail.Message
	failFor map[string]bool
}

func (o *outbox) Send(_ context.Context, msg mail.Message) (mail.Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sent = append(o.sent, msg)
	if o.failFor[msg.To] {
		return mail.Result{}, errors.WithType(errors.New("relay refused"), mail.ErrDelivery)
	}
	return mail.Result{MessageID: "<id@test>"}, nil
}

func (o *outbox) messages() []mail.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]mail.Message(nil), o.sent...)
}
