// Package applications tracks job applications and their pipeline stats.
package applications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"

	"github.com/eleven-am/hiretrack/internal/logger"
	"github.com/eleven-am/hiretrack/internal/models"
)

type Service struct {
	store Store
	clock clock.Clock
	log   logger.Logger
}

func NewService(store Store, clk clock.Clock) *Service {
	return &Service{store: store, clock: clk, log: logger.WithField("component", "applications")}
}

// Params carries the writable fields. Nil pointers are left unchanged on
// update.
type Params struct {
	JobTitle        *string `json:"jobTitle"`
	Company         *string `json:"company"`
	Location        *string `json:"location"`
	Salary          *string `json:"salary"`
	JobURL          *string `json:"jobUrl"`
	Notes           *string `json:"notes"`
	Status          *string `json:"status"`
	CVID            *string `json:"cvId"`
	AppliedAt       *string `json:"appliedAt"`
	InterviewDate   *string `json:"interviewDate"`
	OfferReceivedAt *string `json:"offerReceivedAt"`
	RejectedAt      *string `json:"rejectedAt"`
}

func optionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	t, err := models.ParseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func required(field string, value *string) (string, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return "", errors.NotValidf("empty %s", field)
	}
	return strings.TrimSpace(*value), nil
}

func (s *Service) checkCV(ctx context.Context, cvID *string, ownerID string) error {
	if cvID == nil || *cvID == "" {
		return nil
	}
	ok, err := s.store.CVOwned(ctx, *cvID, ownerID)
	if err != nil {
		return errors.Trace(err)
	}
	if !ok {
		return errors.NotFoundf("cv")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, ownerID string, p Params) (*models.Application, error) {
	jobTitle, err := required("job title", p.JobTitle)
	if err != nil {
		return nil, err
	}
	company, err := required("company", p.Company)
	if err != nil {
		return nil, err
	}
	if err := s.checkCV(ctx, p.CVID, ownerID); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	app := models.Application{
		ID:        uuid.NewString(),
		UserID:    ownerID,
		JobTitle:  jobTitle,
		Company:   company,
		Location:  p.Location,
		Salary:    p.Salary,
		JobURL:    p.JobURL,
		Notes:     p.Notes,
		Status:    models.StatusApplied,
		AppliedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if p.CVID != nil && *p.CVID != "" {
		app.CVID = p.CVID
	}
	if p.Status != nil && *p.Status != "" {
		app.Status = models.ApplicationStatus(strings.ToUpper(*p.Status))
	}

	dates := []struct {
		field  string
		value  *string
		target **time.Time
	}{
		{"interview date", p.InterviewDate, &app.InterviewDate},
		{"offer date", p.OfferReceivedAt, &app.OfferReceivedAt},
		{"rejection date", p.RejectedAt, &app.RejectedAt},
	}
	for _, d := range dates {
		t, err := optionalDate(d.field, d.value)
		if err != nil {
			return nil, err
		}
		*d.target = t
	}
	applied, err := optionalDate("applied date", p.AppliedAt)
	if err != nil {
		return nil, err
	}
	if applied != nil {
		app.AppliedAt = *applied
	}
	backfill(&app, now)

	if err := s.store.Create(ctx, &app); err != nil {
		return nil, errors.Trace(err)
	}
	return &app, nil
}

// backfill stamps the stage timestamp the first time a stage is reached.
// Moving back to an earlier stage never clears it.
func backfill(app *models.Application, now time.Time) {
	stamp := func(t **time.Time) {
		if *t == nil {
			v := now
			*t = &v
		}
	}
	switch app.Status {
	case models.StatusInterview:
		stamp(&app.InterviewDate)
	case models.StatusOffer:
		stamp(&app.OfferReceivedAt)
	case models.StatusRejected:
		stamp(&app.RejectedAt)
	}
}

func (s *Service) List(ctx context.Context, ownerID string, filter Filter) ([]models.Application, error) {
	filter.Status = strings.ToUpper(strings.TrimSpace(filter.Status))
	filter.Company = strings.TrimSpace(filter.Company)
	list, err := s.store.List(ctx, ownerID, filter)
	return list, errors.Trace(err)
}

// Get returns the application with its reminders.
func (s *Service) Get(ctx context.Context, id, ownerID string) (*models.ApplicationDetail, error) {
	app, err := s.store.Get(ctx, id, ownerID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	reminders, err := s.store.Reminders(ctx, id, ownerID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &models.ApplicationDetail{Application: *app, Reminders: reminders}, nil
}

func (s *Service) Update(ctx context.Context, id, ownerID string, p Params) (*models.Application, error) {
	current, err := s.store.Get(ctx, id, ownerID)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err := s.checkCV(ctx, p.CVID, ownerID); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	updates := map[string]interface{}{"updated_at": now}
	next := *current

	text := []struct {
		column   string
		value    *string
		required bool
	}{
		{"job_title", p.JobTitle, true},
		{"company", p.Company, true},
		{"location", p.Location, false},
		{"salary", p.Salary, false},
		{"job_url", p.JobURL, false},
		{"notes", p.Notes, false},
	}
	for _, f := range text {
		if f.value == nil {
			continue
		}
		if f.required && strings.TrimSpace(*f.value) == "" {
			return nil, errors.NotValidf("empty %s", strings.ReplaceAll(f.column, "_", " "))
		}
		updates[f.column] = *f.value
	}
	if p.CVID != nil {
		if *p.CVID == "" {
			updates["cv_id"] = nil
		} else {
			updates["cv_id"] = *p.CVID
		}
	}
	if p.Status != nil {
		if strings.TrimSpace(*p.Status) == "" {
			return nil, errors.NotValidf("empty status")
		}
		next.Status = models.ApplicationStatus(strings.ToUpper(*p.Status))
		updates["status"] = string(next.Status)
	}

	dates := []struct {
		column string
		value  *string
		target **time.Time
	}{
		{"interview_date", p.InterviewDate, &next.InterviewDate},
		{"offer_received_at", p.OfferReceivedAt, &next.OfferReceivedAt},
		{"rejected_at", p.RejectedAt, &next.RejectedAt},
	}
	for _, d := range dates {
		t, err := optionalDate(strings.ReplaceAll(d.column, "_", " "), d.value)
		if err != nil {
			return nil, err
		}
		if t != nil {
			*d.target = t
			updates[d.column] = *t
		}
	}
	if p.AppliedAt != nil {
		t, err := optionalDate("applied date", p.AppliedAt)
		if err != nil {
			return nil, err
		}
		if t != nil {
			updates["applied_at"] = *t
		}
	}

	if p.Status != nil {
		before := next
		backfill(&next, now)
		if before.InterviewDate == nil && next.InterviewDate != nil {
			updates["interview_date"] = *next.InterviewDate
		}
		if before.OfferReceivedAt == nil && next.OfferReceivedAt != nil {
			updates["offer_received_at"] = *next.OfferReceivedAt
		}
		if before.RejectedAt == nil && next.RejectedAt != nil {
			updates["rejected_at"] = *next.RejectedAt
		}
	}

	if err := s.store.Update(ctx, id, ownerID, updates); err != nil {
		return nil, errors.Trace(err)
	}
	updated, err := s.store.Get(ctx, id, ownerID)
	return updated, errors.Trace(err)
}

func (s *Service) Delete(ctx context.Context, id, ownerID string) error {
	return errors.Trace(s.store.Delete(ctx, id, ownerID))
}

type Stats struct {
	Total         int64            `json:"total"`
	ByStatus      map[string]int64 `json:"byStatus"`
	ResponseRate  string           `json:"responseRate"`
	InterviewRate string           `json:"interviewRate"`
}

// Stats summarises the owner's pipeline. Rates are percentages of all
// applications with two decimals.
func (s *Service) Stats(ctx context.Context, ownerID string) (*Stats, error) {
	counts, err := s.store.StatusCounts(ctx, ownerID)
	if err != nil {
		return nil, errors.Trace(err)
	}

	stats := &Stats{ByStatus: make(map[string]int64, len(models.Statuses))}
	for _, status := range models.Statuses {
		stats.ByStatus[string(status)] = counts[status]
	}
	for _, n := range counts {
		stats.Total += n
	}

	interview, offer, rejected := counts[models.StatusInterview], counts[models.StatusOffer], counts[models.StatusRejected]
	stats.ResponseRate = percent(interview+offer+rejected, stats.Total)
	stats.InterviewRate = percent(interview+offer, stats.Total)
	return stats, nil
}

func percent(part, total int64) string {
	if total == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", float64(part)/float64(total)*100)
}
