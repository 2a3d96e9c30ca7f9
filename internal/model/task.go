package model

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Task is the core work item. GroupID and TopicID are zero when the task is
// not bound to a chat; a task with a topic always belongs to that topic's
// group.
type Task struct {
	ID          int
	Title       string
	Description string
	Status      TaskStatus
	StartDate   time.Time
	EndDate     time.Time
	AdminID     int
	GroupID     int
	TopicID     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewTask(title string, adminID int) *Task {
	return &Task{
		Title:   strings.TrimSpace(title),
		Status:  TaskStatusPending,
		AdminID: adminID,
	}
}

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusBlocked    TaskStatus = "blocked"
)

// AllTaskStatuses lists the valid statuses in display order.
var AllTaskStatuses = []TaskStatus{
	TaskStatusPending,
	TaskStatusInProgress,
	TaskStatusDone,
	TaskStatusBlocked,
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusDone, TaskStatusBlocked:
		return true
	}
	return false
}

// String renders the status for views: underscores become spaces.
func (s TaskStatus) String() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrEmptyTitle         = errors.New("task title is empty")
	ErrInvalidStatus      = errors.New("invalid task status")
	ErrAssignmentNotFound = errors.New("assignment not found")
)

// TaskUpdate carries a partial edit. Nil fields are left untouched so callers
// never overwrite omitted values with defaults.
type TaskUpdate struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Status      *TaskStatus
}

// TaskFilter selects tasks for list views. WithoutGroup and WithoutTopic
// restrict to tasks with no group or topic binding respectively; combining
// GroupID with WithoutTopic yields tasks posted directly to a group outside
// any thread.
type TaskFilter struct {
	GroupID      int
	TopicID      int
	WithoutGroup bool
	WithoutTopic bool
}

type TaskRepository interface {
	CreateTask(ctx context.Context, task *Task) error
	FetchTaskByID(ctx context.Context, id int) (*Task, error)
	UpdateTask(ctx context.Context, id int, upd TaskUpdate) error
	UpdateStatus(ctx context.Context, id int, status TaskStatus) error
	DeleteTask(ctx context.Context, id int) error
	ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error)
	ListTasksByAdmin(ctx context.Context, adminID int) ([]Task, error)
	ListTasksForUser(ctx context.Context, userID int) ([]Task, error)
	ListTasksDueBetween(ctx context.Context, from, to time.Time) ([]Task, error)

	AssignUser(ctx context.Context, userID, taskID int) error
	RemoveAssignment(ctx context.Context, taskID, userID int) error
	IsAssigned(ctx context.Context, taskID, userID int) (bool, error)
	ListTaskUsers(ctx context.Context, taskID int) ([]User, error)
}
