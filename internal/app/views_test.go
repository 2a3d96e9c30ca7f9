package app

import (
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saeidmoini/TeleDo/internal/model"
)

func TestRenderTaskDetail(t *testing.T) {
	task := &model.Task{
		ID:          1,
		Title:       "Ship release",
		Description: "cut the branch",
		Status:      model.TaskStatusInProgress,
		EndDate:     time.Date(2024, 12, 30, 0, 0, 0, 0, time.Local),
	}
	out := renderTaskDetail(task, []model.User{{Username: "alice"}, {Username: "bob"}})

	assert.Contains(t, out, "Ship release")
	assert.Contains(t, out, "cut the branch")
	assert.Contains(t, out, "In Progress")
	assert.Contains(t, out, "1403-10-10")
	assert.Contains(t, out, "N/A") // start date unset
	assert.Contains(t, out, "@alice, @bob")
}

func TestRenderTaskDetailMinimal(t *testing.T) {
	task := &model.Task{Title: "Bare", Status: model.TaskStatusPending}
	out := renderTaskDetail(task, nil)

	assert.Contains(t, out, "Bare")
	assert.Contains(t, out, "Pending")
	assert.NotContains(t, out, "Assignees")
}

func TestChunk(t *testing.T) {
	mk := func(n int) []tgbotapi.InlineKeyboardButton {
		buttons := make([]tgbotapi.InlineKeyboardButton, n)
		for i := range buttons {
			buttons[i] = tgbotapi.NewInlineKeyboardButtonData("b", "noop")
		}
		return buttons
	}

	assert.Nil(t, chunk(nil, 2))
	assert.Len(t, chunk(mk(1), 2), 1)

	rows := chunk(mk(5), 2)
	require.Len(t, rows, 3)
	assert.Len(t, rows[0], 2)
	assert.Len(t, rows[2], 1)
}

func TestAssigneeTaskKeyboardSkipsCurrentStatus(t *testing.T) {
	task := &model.Task{ID: 3, Status: model.TaskStatusPending}
	kb := assigneeTaskKeyboard(task)

	for _, row := range kb.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData == nil {
				continue
			}
			assert.NotEqual(t, "change_status|3|pending", *btn.CallbackData)
		}
	}
}

func TestTaskListKeyboardShowsDeadline(t *testing.T) {
	tasks := []model.Task{
		{ID: 1, Title: "dated", EndDate: time.Date(2024, 12, 30, 0, 0, 0, 0, time.Local)},
		{ID: 2, Title: "undated"},
	}
	kb := taskListKeyboard(tasks, "view_task", BuildCallback("back"))

	require.Len(t, kb.InlineKeyboard, 3) // two tasks plus back row
	assert.Equal(t, "dated (1403-10-10)", kb.InlineKeyboard[0][0].Text)
	assert.Equal(t, "undated", kb.InlineKeyboard[1][0].Text)
	require.NotNil(t, kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "view_task|1", *kb.InlineKeyboard[0][0].CallbackData)
}
