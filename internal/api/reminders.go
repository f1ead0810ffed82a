package api

import (
	"net/http"
	"strconv"

	"github.com/juju/errors"

	"github.com/eleven-am/hiretrack/internal/reminders"
)

// pageFrom reads optional limit and offset query parameters. Absent
// values leave the listing unbounded.
func pageFrom(r *http.Request) (reminders.Page, error) {
	var page reminders.Page
	query := r.URL.Query()
	for _, p := range []struct {
		name   string
		target *uint64
	}{
		{"limit", &page.Limit},
		{"offset", &page.Offset},
	} {
		raw := query.Get(p.name)
		if raw == "" {
			continue
		}
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return page, errors.NotValidf("%s %q", p.name, raw)
		}
		*p.target = n
	}
	return page, nil
}

func (s *server) createReminder(w http.ResponseWriter, r *http.Request) {
	var params reminders.CreateParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, r, err)
		return
	}
	reminder, err := s.config.Reminders.Create(r.Context(), owner(r), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, reminder)
}

func (s *server) listReminders(w http.ResponseWriter, r *http.Request) {
	page, err := pageFrom(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := s.config.Reminders.ListAll(r.Context(), owner(r), page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *server) upcomingReminders(w http.ResponseWriter, r *http.Request) {
	list, err := s.config.Reminders.ListUpcoming(r.Context(), owner(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *server) completeReminder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "reminder")
	if err != nil {
		writeError(w, r, err)
		return
	}
	reminder, err := s.config.Reminders.MarkComplete(r.Context(), id, owner(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reminder)
}

func (s *server) deleteReminder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "reminder")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.config.Reminders.Delete(r.Context(), id, owner(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
