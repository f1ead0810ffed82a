package reminders

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/juju/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/hiretrack/internal/mail"
	"github.com/eleven-am/hiretrack/internal/metrics"
	"github.com/eleven-am/hiretrack/internal/models"
)

var epoch = time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store   *fakeStore
	outbox  *outbox
	clock   *testclock.Clock
	metrics *metrics.Metrics
	svc     *Service
}

func newFixture(t *testing.T, concurrency int) *fixture {
	t.Helper()
	f := &fixture{
		store:   newFakeStore(),
		outbox:  &outbox{failFor: map[string]bool{}},
		clock:   testclock.NewClock(epoch),
		metrics: metrics.New(prometheus.NewRegistry()),
	}
	f.store.addUser("alice", "alice@example.com", true)
	f.store.addUser("bob", "bob@example.com", true)
	f.store.addApp("app-a", "alice", "Backend Engineer", "Acme")
	f.store.addApp("app-b", "bob", "Designer", "Globex")

	svc, err := NewService(Config{
		Store:       f.store,
		Notifier:    mail.NewMailer(f.outbox, "https://hiretrack.test"),
		Clock:       f.clock,
		Metrics:     f.metrics,
		Concurrency: concurrency,
	})
	require.NoError(t, err)
	f.svc = svc
	return f
}

func (f *fixture) reminder(id, owner, app string, due time.Time) {
	f.store.put(models.Reminder{ID: id, UserID: owner, ApplicationID: app, Title: "Follow up " + id, ReminderDate: due})
}

func TestNewServiceValidates(t *testing.T) {
	_, err := NewService(Config{})
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		f := newFixture(t, 1)
		got, err := f.svc.Create(ctx, "alice", CreateParams{
			ApplicationID: "app-a",
			Title:         " Call recruiter ",
			ReminderDate:  "2026-06-12T15:00:00Z",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, "Call recruiter", got.Title)
		assert.Equal(t, "Acme", got.Application.Company)
		assert.False(t, got.IsSent)
		assert.Equal(t, epoch, got.CreatedAt)
	})

	t.Run("past date accepted", func(t *testing.T) {
		f := newFixture(t, 1)
		_, err := f.svc.Create(ctx, "alice", CreateParams{
			ApplicationID: "app-a", Title: "late", ReminderDate: "2020-01-01",
		})
		assert.NoError(t, err)
	})

	t.Run("invalid date", func(t *testing.T) {
		f := newFixture(t, 1)
		_, err := f.svc.Create(ctx, "alice", CreateParams{
			ApplicationID: "app-a", Title: "t", ReminderDate: "not a date",
		})
		assert.True(t, errors.Is(err, errors.NotValid))
		assert.Empty(t, f.store.reminders)
	})

	t.Run("missing title", func(t *testing.T) {
		f := newFixture(t, 1)
		_, err := f.svc.Create(ctx, "alice", CreateParams{ApplicationID: "app-a", ReminderDate: "2026-06-12"})
		assert.True(t, errors.Is(err, errors.NotValid))
	})

	t.Run("application of another owner", func(t *testing.T) {
		f := newFixture(t, 1)
		_, err := f.svc.Create(ctx, "alice", CreateParams{
			ApplicationID: "app-b", Title: "snoop", ReminderDate: "2026-06-12",
		})
		assert.True(t, errors.Is(err, errors.NotFound))
		assert.Empty(t, f.store.reminders)
	})
}

func TestListAllIsOwnerScopedAndOrdered(t *testing.T) {
	f := newFixture(t, 1)
	f.reminder("r2", "alice", "app-a", epoch.Add(48*time.Hour))
	f.reminder("r1", "alice", "app-a", epoch.Add(-time.Hour))
	f.reminder("rb", "bob", "app-b", epoch)

	list, err := f.svc.ListAll(context.Background(), "alice", Page{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "r1", list[0].ID)
	assert.Equal(t, "r2", list[1].ID)
	assert.Equal(t, "Backend Engineer", list[0].Application.JobTitle)

	page, err := f.svc.ListAll(context.Background(), "alice", Page{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "r2", page[0].ID)
}

func TestListUpcomingWindow(t *testing.T) {
	f := newFixture(t, 1)
	day := 24 * time.Hour
	f.reminder("six-days", "alice", "app-a", epoch.Add(6*day))
	f.reminder("eight-days", "alice", "app-a", epoch.Add(8*day))
	f.reminder("past", "alice", "app-a", epoch.Add(-time.Minute))
	f.reminder("tomorrow", "alice", "app-a", epoch.Add(day))
	f.reminder("done", "alice", "app-a", epoch.Add(2*day))
	f.store.reminders["done"].IsCompleted = true
	f.reminder("sent", "alice", "app-a", epoch.Add(3*day))
	f.store.reminders["sent"].IsSent = true

	list, err := f.svc.ListUpcoming(context.Background(), "alice")
	require.NoError(t, err)

	ids := make([]string, len(list))
	for i, r := range list {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"tomorrow", "six-days"}, ids)
}

func TestMarkComplete(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	f.reminder("r1", "alice", "app-a", epoch)

	first, err := f.svc.MarkComplete(ctx, "r1", "alice")
	require.NoError(t, err)
	assert.True(t, first.IsCompleted)
	assert.Equal(t, epoch, *first.CompletedAt)

	f.clock.Advance(time.Hour)
	second, err := f.svc.MarkComplete(ctx, "r1", "alice")
	require.NoError(t, err)
	assert.True(t, second.IsCompleted)
	assert.Equal(t, epoch.Add(time.Hour), *second.CompletedAt)

	assert.False(t, f.store.reminder("r1").IsSent)

	_, err = f.svc.MarkComplete(ctx, "r1", "bob")
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestDelete(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()
	f.reminder("r1", "alice", "app-a", epoch)

	err := f.svc.Delete(ctx, "r1", "bob")
	assert.True(t, errors.Is(err, errors.NotFound))

	require.NoError(t, f.svc.Delete(ctx, "r1", "alice"))

	err = f.svc.Delete(ctx, "r1", "alice")
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestSweepDueEndToEnd(t *testing.T) {
	f := newFixture(t, 1)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, "alice", CreateParams{
		ApplicationID: "app-a",
		Title:         "Send thank-you note",
		Description:   "Mention the system design round",
		ReminderDate:  epoch.Add(-time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)

	processed, err := f.svc.SweepDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	stored := f.store.reminder(created.ID)
	assert.True(t, stored.IsSent)
	require.NotNil(t, stored.SentAt)
	assert.Equal(t, epoch, *stored.SentAt)

	msgs := f.outbox.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "alice@example.com", msgs[0].To)
	assert.Contains(t, msgs[0].Subject, "Reminder:")
	assert.Contains(t, msgs[0].Subject, "Send thank-you note")
	assert.Contains(t, msgs[0].HTML, "Backend Engineer at Acme")
	assert.Contains(t, msgs[0].HTML, "https://hiretrack.test/applications/app-a")

	processed, err = f.svc.SweepDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, processed)
	assert.Len(t, f.outbox.messages(), 1)
}

func TestSweepDueSkipsIneligible(t *testing.T) {
	f := newFixture(t, 1)
	f.reminder("future", "alice", "app-a", epoch.Add(time.Minute))
	f.reminder("done", "alice", "app-a", epoch.Add(-time.Minute))
	f.store.reminders["done"].IsCompleted = true
	f.reminder("exact", "alice", "app-a", epoch)

	f.store.addUser("carol", "carol@example.com", false)
	f.store.addApp("app-c", "carol", "PM", "Initech")
	f.reminder("muted", "carol", "app-c", epoch.Add(-time.Hour))

	processed, err := f.svc.SweepDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	assert.True(t, f.store.reminder("exact").IsSent)
	assert.False(t, f.store.reminder("future").IsSent)
	assert.False(t, f.store.reminder("done").IsSent)
	assert.False(t, f.store.reminder("muted").IsSent)
}

func TestSweepDuePartialFailure(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		t.Run(fmt.Sprintf("concurrency=%d", concurrency), func(t *testing.T) {
			f := newFixture(t, concurrency)
			f.outbox.failFor["bob@example.com"] = true
			f.reminder("a1", "alice", "app-a", epoch.Add(-3*time.Hour))
			f.reminder("b1", "bob", "app-b", epoch.Add(-2*time.Hour))
			f.reminder("a2", "alice", "app-a", epoch.Add(-time.Hour))

			processed, err := f.svc.SweepDue(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 3, processed, "processed counts attempts, not successes")

			assert.True(t, f.store.reminder("a1").IsSent)
			assert.True(t, f.store.reminder("a2").IsSent)
			assert.False(t, f.store.reminder("b1").IsSent)
			assert.Nil(t, f.store.reminder("b1").SentAt)
			assert.Len(t, f.outbox.messages(), 3)

			assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.RemindersSwept.WithLabelValues(metrics.ResultSent)))
			assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RemindersSwept.WithLabelValues(metrics.ResultFailed)))

			// the failed reminder is retried by the next sweep
			delete(f.outbox.failFor, "bob@example.com")
			processed, err = f.svc.SweepDue(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 1, processed)
			assert.True(t, f.store.reminder("b1").IsSent)
		})
	}
}

func TestSweepDueQueryFailure(t *testing.T) {
	f := newFixture(t, 1)
	f.reminder("a1", "alice", "app-a", epoch.Add(-time.Hour))
	f.store.dueErr = errors.New("connection reset by peer")

	processed, err := f.svc.SweepDue(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading due reminders")
	assert.Zero(t, processed)
	assert.Empty(t, f.outbox.messages())
	assert.False(t, f.store.reminder("a1").IsSent)
}

func TestSweepDueMarkFailureDoesNotAbort(t *testing.T) {
	f := newFixture(t, 1)
	f.reminder("a1", "alice", "app-a", epoch.Add(-2*time.Hour))
	f.reminder("a2", "alice", "app-a", epoch.Add(-time.Hour))
	f.store.markErr = errors.New("write failed")

	processed, err := f.svc.SweepDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, processed)
	assert.Len(t, f.outbox.messages(), 2)
	assert.False(t, f.store.reminder("a1").IsSent)
}

func TestSweepDueOverlappingSweep(t *testing.T) {
	f := newFixture(t, 1)
	f.reminder("a1", "alice", "app-a", epoch.Add(-time.Hour))
	f.store.sentElsewhere["a1"] = true

	processed, err := f.svc.SweepDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Nil(t, f.store.reminder("a1").SentAt)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.RemindersSwept.WithLabelValues(metrics.ResultSkipped)))
}
