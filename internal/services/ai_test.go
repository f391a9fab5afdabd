package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-tracker-api/internal/models"
)

func TestParseGeneratedTasks(t *testing.T) {
	content := "```json\n[{\"name\":\"Fix login\",\"description\":\"500 on submit\",\"priority\":\"HIGH\",\"label\":\"BUG\",\"due_date\":\"2025-10-28T23:59:59Z\"},{\"name\":\"Docs\",\"priority\":\"LOW\",\"label\":\"DOCUMENTATION\",\"due_date\":null}]\n```"

	tasks, err := parseGeneratedTasks(content)
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	assert.Equal(t, "Fix login", tasks[0].Name)
	assert.Equal(t, models.TaskPriorityHigh, tasks[0].Priority)
	assert.Equal(t, models.TaskLabelBug, tasks[0].Label)
	require.NotNil(t, tasks[0].DueDate)
	assert.True(t, tasks[0].DueDate.Equal(time.Date(2025, 10, 28, 23, 59, 59, 0, time.UTC)))
	assert.Nil(t, tasks[1].DueDate)
}

func TestParseGeneratedTasks_Invalid(t *testing.T) {
	_, err := parseGeneratedTasks("Sure! Here are your tasks.")
	require.Error(t, err)
}

func TestBuildTaskPrompt(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	prompt := buildTaskPrompt(now, "ship the release")

	assert.True(t, strings.Contains(prompt, "2025-01-02T03:04:05Z"))
	assert.True(t, strings.Contains(prompt, "ship the release"))
	assert.True(t, strings.Contains(prompt, "BUG | FEATURE | DOCUMENTATION"))
}
