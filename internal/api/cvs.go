package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/juju/errors"

	"github.com/eleven-am/hiretrack/internal/cvs"
)

// multipartMemory is how much of an upload is buffered before spilling to
// temporary files.
const multipartMemory = 1 << 20

func (s *server) uploadCV(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, cvs.MaxUploadSize+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, errors.NotValidf("file larger than %d bytes", cvs.MaxUploadSize))
			return
		}
		writeError(w, r, errors.NotValidf("multipart form: %v", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, errors.NotValidf("no file uploaded"))
		return
	}
	defer file.Close()
	if header.Size > cvs.MaxUploadSize {
		writeError(w, r, errors.NotValidf("file larger than %d bytes", cvs.MaxUploadSize))
		return
	}

	isDefault, _ := strconv.ParseBool(strings.TrimSpace(r.FormValue("isDefault")))
	cv, err := s.config.CVs.Upload(r.Context(), owner(r), cvs.UploadParams{
		FileName:  header.Filename,
		Content:   file,
		Version:   r.FormValue("version"),
		IsDefault: isDefault,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cv)
}

func (s *server) listCVs(w http.ResponseWriter, r *http.Request) {
	list, err := s.config.CVs.List(r.Context(), owner(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *server) setDefaultCV(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "cv")
	if err != nil {
		writeError(w, r, err)
		return
	}
	cv, err := s.config.CVs.SetDefault(r.Context(), id, owner(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cv)
}

func (s *server) deleteCV(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "cv")
	if err != nil {
		writeError(w, r, err)
		return
	}
	cv, err := s.config.CVs.Delete(r.Context(), id, owner(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cv)
}
