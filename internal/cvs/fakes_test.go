package cvs

import (
	"context"
	"sort"
	"sync"

	"github.com/juju/errors"

	"github.com/eleven-am/hiretrack/internal/models"
)

// memStore keeps CVs in memory. InTx snapshots the table and restores it
// when fn fails.
type memStore struct {
	mu        *sync.Mutex
	rows      map[string]models.CV
	failClear error
}

func newMemStore() *memStore {
	return &memStore{mu: &sync.Mutex{}, rows: map[string]models.CV{}}
}

func (m *memStore) Create(_ context.Context, cv *models.CV) error {
	if _, dup := m.rows[cv.ID]; dup {
		return errors.AlreadyExistsf("cv")
	}
	m.rows[cv.ID] = *cv
	return nil
}

func (m *memStore) List(_ context.Context, userID string) ([]models.CV, error) {
	out := []models.CV{}
	for _, cv := range m.rows {
		if cv.UserID == userID {
			out = append(out, cv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (m *memStore) Get(_ context.Context, id, userID string) (*models.CV, error) {
	cv, ok := m.rows[id]
	if !ok || cv.UserID != userID {
		return nil, errors.NotFoundf("cv")
	}
	return &cv, nil
}

func (m *memStore) SetDefault(_ context.Context, id, userID string) error {
	cv, ok := m.rows[id]
	if !ok || cv.UserID != userID {
		return errors.NotFoundf("cv")
	}
	cv.IsDefault = true
	m.rows[id] = cv
	return nil
}

func (m *memStore) ClearDefaults(_ context.Context, userID, exceptID string) error {
	if m.failClear != nil {
		return m.failClear
	}
	for id, cv := range m.rows {
		if cv.UserID == userID && id != exceptID {
			cv.IsDefault = false
			m.rows[id] = cv
		}
	}
	return nil
}

func (m *memStore) Delete(_ context.Context, id, userID string) error {
	cv, ok := m.rows[id]
	if !ok || cv.UserID != userID {
		return errors.NotFoundf("cv")
	}
	delete(m.rows, id)
	return nil
}

func (m *memStore) InTx(_ context.Context, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make(map[string]models.CV, len(m.rows))
	for k, v := range m.rows {
		snapshot[k] = v
	}
	if err := fn(m); err != nil {
		m.rows = snapshot
		return err
	}
	return nil
}

func (m *memStore) defaults(userID string) []string {
	var ids []string
	for id, cv := range m.rows {
		if cv.UserID == userID && cv.IsDefault {
			ids = append(ids, id)
		}
	}
	return ids
}

func newTestCV() *models.CV {
	return &models.CV{ID: "cv-1", UserID: "ghost", FileName: "a.pdf", FileURL: "/uploads/cvs/a.pdf", S3Key: "a.pdf", Version: "1"}
}
