package models

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/hiretrack/internal/orm"
)

func TestApplicationStatusValid(t *testing.T) {
	for _, s := range Statuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, ApplicationStatus("GHOSTED").Valid())
	assert.False(t, ApplicationStatus("applied").Valid())
}

func TestDisplayName(t *testing.T) {
	first := "Ada"
	assert.Equal(t, "Ada", User{Email: "ada@example.com", FirstName: &first}.DisplayName())
	assert.Equal(t, "ada@example.com", User{Email: "ada@example.com"}.DisplayName())
}

func TestStoreError(t *testing.T) {
	assert.NoError(t, StoreError(nil, "reminder"))

	err := StoreError(&orm.Error{Op: "first", Table: "reminders", Err: orm.ErrNotFound}, "reminder")
	assert.True(t, errors.Is(err, errors.NotFound))
	assert.Contains(t, err.Error(), "reminder not found")

	err = StoreError(&orm.Error{Op: "create", Table: "users", Err: orm.ErrDuplicateKey}, "user")
	assert.True(t, errors.Is(err, errors.AlreadyExists))

	err = StoreError(&orm.Error{Op: "create", Table: "reminders", Err: orm.ErrForeignKey}, "reminder")
	assert.True(t, errors.Is(err, errors.NotFound))

	err = StoreError(&orm.Error{Op: "create", Table: "reminders", Err: orm.ErrNotNull, Column: "title"}, "reminder")
	assert.True(t, errors.Is(err, errors.NotValid))

	err = StoreError(&orm.Error{Op: "update", Table: "reminders", Err: orm.ErrInvalidText}, "reminder")
	assert.True(t, errors.Is(err, errors.NotFound))
	assert.Contains(t, err.Error(), "reminder not found")

	raw := fmt.Errorf("connection reset")
	err = StoreError(raw, "cv")
	assert.False(t, errors.Is(err, errors.NotFound))
	assert.ErrorIs(t, err, raw)
}

func TestDetailMetadataAliasesNestedFields(t *testing.T) {
	joined := strings.Join(DueReminderMetadata.Columns, ", ")
	assert.Contains(t, joined, `applications.company AS "application.company"`)
	assert.Contains(t, joined, `users.email AS "owner.email"`)
	assert.Len(t, ReminderMetadata.Columns, len(ReminderMetadata.InsertColumns))

	// the shared reminder column slice must not be aliased between metadata values
	assert.NotContains(t, strings.Join(ReminderDetailMetadata.Columns, ", "), "owner.email")
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-06-11T10:30:00Z", time.Date(2026, 6, 11, 10, 30, 0, 0, time.UTC)},
		{"2026-06-11T12:30:00+02:00", time.Date(2026, 6, 11, 10, 30, 0, 0, time.UTC)},
		{"2026-06-11T10:30", time.Date(2026, 6, 11, 10, 30, 0, 0, time.UTC)},
		{"2026-06-11", time.Date(2026, 6, 11, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate("date", tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	for _, bad := range []string{"", "tomorrow", "2026-13-45"} {
		_, err := ParseDate("date", bad)
		assert.True(t, errors.Is(err, errors.NotValid), bad)
	}
}
