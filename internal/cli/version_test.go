package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/hiretrack/pkg/hiretrack"
)

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "HireTrack "+hiretrack.Version)
	assert.Contains(t, out, "API Version: v1")
}
