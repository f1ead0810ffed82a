package api

import (
	"net/http"

	"github.com/eleven-am/hiretrack/internal/auth"
	"github.com/eleven-am/hiretrack/internal/users"
)

func (s *server) signup(w http.ResponseWriter, r *http.Request) {
	var params users.SignupParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, r, err)
		return
	}
	session, err := s.config.Users.Signup(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	session, err := s.config.Users.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (s *server) refresh(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.IdentityFrom(r.Context())
	tokens, err := s.config.Users.Refresh(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (s *server) profile(w http.ResponseWriter, r *http.Request) {
	user, err := s.config.Users.Profile(r.Context(), owner(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var params users.ProfileParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := s.config.Users.UpdateProfile(r.Context(), owner(r), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *server) updateNotifications(w http.ResponseWriter, r *http.Request) {
	var params users.NotificationParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := s.config.Users.UpdateNotifications(r.Context(), owner(r), params)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
