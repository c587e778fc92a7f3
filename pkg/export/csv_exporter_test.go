package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderPreservesColumnOrder(t *testing.T) {
	data := Dataset{
		Headers: []string{"ID", "Type", "Severity"},
		Rows: [][]string{
			{"c-1", "TEACHER_DOUBLE_BOOKING", "HIGH"},
			{"c-2", "CAPACITY_EXCEEDED", "MEDIUM"},
		},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Type,Severity", lines[0])
	assert.Equal(t, "c-1,TEACHER_DOUBLE_BOOKING,HIGH", lines[1])
	assert.Equal(t, "c-2,CAPACITY_EXCEEDED,MEDIUM", lines[2])
}

func TestCSVRenderRejectsRaggedRows(t *testing.T) {
	data := Dataset{
		Headers: []string{"ID", "Type"},
		Rows:    [][]string{{"c-1"}},
	}

	_, err := NewCSVExporter().Render(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 0")
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFRenderProducesDocument(t *testing.T) {
	data := Dataset{
		Headers: []string{"ID", "Type", "Severity", "Status", "Description", "Detected At"},
		Rows: [][]string{
			{"c-1", "STUDENT_CONFLICT", "MEDIUM", "PENDING", strings.Repeat("long description ", 10), "2026-08-29T10:00:00Z"},
		},
	}

	out, err := NewPDFExporter().Render(data, "Schedule Conflicts")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}
