package api

import (
	"net/http"

	"github.com/eleven-am/hiretrack/internal/applications"
)

func (s *server) createApplication(w http.ResponseWriter, r *http.Request) {
	var params applications.Params
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, r, err)
		return
	}
	app, err := s.config.Applications.Create(r.Context(), owner(r), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (s *server) listApplications(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	list, err := s.config.Applications.List(r.Context(), owner(r), applications.Filter{
		Status:  query.Get("status"),
		Company: query.Get("company"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *server) applicationStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.config.Applications.Stats(r.Context(), owner(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *server) getApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "application")
	if err != nil {
		writeError(w, r, err)
		return
	}
	app, err := s.config.Applications.Get(r.Context(), id, owner(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *server) updateApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "application")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var params applications.Params
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, r, err)
		return
	}
	app, err := s.config.Applications.Update(r.Context(), id, owner(r), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (s *server) deleteApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "application")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.config.Applications.Delete(r.Context(), id, owner(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
