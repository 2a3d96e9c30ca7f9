package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTask(t *testing.T) {
	task := NewTask("  fix the build  ", 7)
	assert.Equal(t, "fix the build", task.Title)
	assert.Equal(t, TaskStatusPending, task.Status)
	assert.Equal(t, 7, task.AdminID)
}

func TestTaskStatusValid(t *testing.T) {
	for _, st := range AllTaskStatuses {
		assert.True(t, st.Valid(), string(st))
	}
	assert.False(t, TaskStatus("").Valid())
	assert.False(t, TaskStatus("finished").Valid())
}

func TestTaskStatusString(t *testing.T) {
	assert.Equal(t, "in progress", TaskStatusInProgress.String())
	assert.Equal(t, "pending", TaskStatusPending.String())
}

func TestTextAttachmentHelpers(t *testing.T) {
	ref := NewTextAttachment("call the client")
	assert.True(t, IsTextAttachment(ref))
	assert.Equal(t, "call the client", TextAttachmentPayload(ref))

	assert.False(t, IsTextAttachment("AgACfilelike"))
}
