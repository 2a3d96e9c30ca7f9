package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/agalitsyn/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saeidmoini/TeleDo/internal/model"
	"github.com/saeidmoini/TeleDo/internal/storage/sqlite/migrations"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)"
	db, err := sqlite.Connect(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.MigrateUp(db, migrations.FS))
	return db
}

func createTestUser(t *testing.T, users *UserStorage, username string, tgID int64, isAdmin bool) *model.User {
	t.Helper()
	user, err := users.GetOrCreateUser(context.Background(), username, tgID, isAdmin)
	require.NoError(t, err)
	return user
}

func createTestTask(t *testing.T, tasks *TaskStorage, title string, adminID int) *model.Task {
	t.Helper()
	task := model.NewTask(title, adminID)
	require.NoError(t, tasks.CreateTask(context.Background(), task))
	return task
}

func TestUserStorageGetOrCreate(t *testing.T) {
	db := testDB(t)
	users := NewUserStorage(db)
	ctx := context.Background()

	// Pre-registered by username only, Telegram id unknown.
	created := createTestUser(t, users, "alice", 0, false)
	require.NotZero(t, created.ID)
	assert.Zero(t, created.TgUserID)

	// First real contact fills in the Telegram id without a new record.
	seen, err := users.GetOrCreateUser(ctx, "alice", 100, false)
	require.NoError(t, err)
	assert.Equal(t, created.ID, seen.ID)
	assert.Equal(t, int64(100), seen.TgUserID)

	// Same user found by Telegram id even after a username change.
	renamed, err := users.GetOrCreateUser(ctx, "alice_new", 100, false)
	require.NoError(t, err)
	assert.Equal(t, created.ID, renamed.ID)
	assert.Equal(t, "alice_new", renamed.Username)

	// Unknown identity creates a fresh record.
	other, err := users.GetOrCreateUser(ctx, "bob", 200, false)
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, other.ID)
}

func TestUserStorageAdminPromoteOnly(t *testing.T) {
	db := testDB(t)
	users := NewUserStorage(db)
	ctx := context.Background()

	admin := createTestUser(t, users, "boss", 1, true)
	require.True(t, admin.IsAdmin)

	// Re-registering without the flag must not demote.
	again, err := users.GetOrCreateUser(ctx, "boss", 1, false)
	require.NoError(t, err)
	assert.True(t, again.IsAdmin)

	// And a plain user can be promoted.
	createTestUser(t, users, "worker", 2, false)
	promoted, err := users.GetOrCreateUser(ctx, "worker", 2, true)
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin)
}

func TestUserStorageToggleAndDelete(t *testing.T) {
	db := testDB(t)
	users := NewUserStorage(db)
	ctx := context.Background()

	user := createTestUser(t, users, "carol", 3, false)

	require.NoError(t, users.ToggleAdmin(ctx, user.ID))
	toggled, err := users.FetchUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsAdmin)

	require.NoError(t, users.ToggleAdmin(ctx, user.ID))
	toggled, err = users.FetchUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsAdmin)

	require.NoError(t, users.DeleteUser(ctx, user.ID))
	_, err = users.FetchUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	assert.ErrorIs(t, users.DeleteUser(ctx, user.ID), model.ErrUserNotFound)
	assert.ErrorIs(t, users.ToggleAdmin(ctx, user.ID), model.ErrUserNotFound)
}

func TestUserStorageListFilters(t *testing.T) {
	db := testDB(t)
	users := NewUserStorage(db)
	tasks := NewTaskStorage(db)
	ctx := context.Background()

	admin := createTestUser(t, users, "boss", 1, true)
	assigned := createTestUser(t, users, "assigned", 2, false)
	free := createTestUser(t, users, "free", 3, false)

	task := createTestTask(t, tasks, "job", admin.ID)
	require.NoError(t, tasks.AssignUser(ctx, assigned.ID, task.ID))

	all, err := users.ListUsers(ctx, model.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	withoutBoss, err := users.ListUsers(ctx, model.UserFilter{ExcludeTgUserID: 1})
	require.NoError(t, err)
	assert.Len(t, withoutBoss, 2)

	candidates, err := users.ListUsers(ctx, model.UserFilter{NotAssignedToTask: task.ID})
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	for _, u := range candidates {
		assert.NotEqual(t, assigned.ID, u.ID)
	}
	_ = free
}

func TestTaskStorageCreateDefaults(t *testing.T) {
	db := testDB(t)
	users := NewUserStorage(db)
	tasks := NewTaskStorage(db)
	ctx := context.Background()

	admin := createTestUser(t, users, "boss", 1, true)

	task := model.NewTask("  padded title  ", admin.ID)
	require.NoError(t, tasks.CreateTask(ctx, task))
	assert.Equal(t, "padded title", task.Title)

	fetched, err := tasks.FetchTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusPending, fetched.Status)
	assert.True(t, fetched.StartDate.IsZero())
	assert.True(t, fetched.EndDate.IsZero())
	assert.Zero(t, fetched.GroupID)
	assert.Zero(t, fetched.TopicID)

	err = tasks.CreateTask(ctx, model.NewTask("   ", admin.ID))
	assert.ErrorIs(t, err, model.ErrEmptyTitle)
}

func TestTaskStoragePartialUpdate(t *testing.T) {
	db := testDB(t)
	users := NewUserStorage(db)
	tasks := NewTaskStorage(db)
	ctx := context.Background()

	admin := createTestUser(t, users, "boss", 1, true)
	task := createTestTask(t, tasks, "original", admin.ID)

	desc := "some details"
	require.NoError(t, tasks.UpdateTask(ctx, task.ID, model.TaskUpdate{Description: &desc}))

	fetched, err := tasks.FetchTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", fetched.Title)
	assert.Equal(t, "some details", fetched.Description)
	assert.Equal(t, model.TaskStatusPending, fetched.Status)

	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, tasks.UpdateTask(ctx, task.ID, model.TaskUpdate{EndDate: &end}))

	fetched, err = tasks.FetchTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "some details", fetched.Description)
	assert.True(t, fetched.EndDate.Equal(end))

	empty := "   "
	err = tasks.UpdateTask(ctx, task.ID, model.TaskUpdate{Title: &empty})
	assert.ErrorIs(t, err, model.ErrEmptyTitle)
}

func TestTaskStorageInvalidStatus(t *testing.T) {
	db := testDB(t)
	users := NewUserStorage(db)
	tasks := NewTaskStorage(db)
	ctx := context.Background()

	admin := createTestUser(t, users, "boss", 1, true)
	task := createTestTask(t, tasks, "job", admin.ID)

	err := tasks.UpdateStatus(ctx, task.ID, model.TaskStatus("nonsense"))
	assert.ErrorIs(t, err, model.ErrInvalidStatus)

	fetched, err := tasks.FetchTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusPending, fetched.Status)

	require.NoError(t, tasks.UpdateStatus(ctx, task.ID, model.TaskStatusInProgress))
	fetched, err = tasks.FetchTaskByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TaskStatusInProgress, fetched.Status)
}

func TestTaskStorageNotFound(t *testing.T) {
	db := testDB(t)
	tasks := NewTaskStorage(db)
	ctx := context.Background()

	_, err := tasks.FetchTaskByID(ctx, 999)
	assert.ErrorIs(t, err, model.ErrTaskNotFound)

	title := "x"
	assert.ErrorIs(t, tasks.UpdateTask(ctx, 999, model.TaskUpdate{Title: &title}), model.ErrTaskNotFound)
	assert.ErrorIs(t, tasks.DeleteTask(ctx, 999), model.ErrTaskNotFound)
}

func TestTaskStorageAssignment(t *testing.T) {
	db := testDB(t)
	users := NewUserStorage(db)
	tasks := NewTaskStorage(db)
	ctx := context.Background()

	admin := createTestUser(t, users, "boss", 1, true)
	worker := createTestUser(t, users, "worker", 2, false)
	task := createTestTask(t, tasks, "job", admin.ID)

	// Assigning twice is a no-op, not a duplicate row.
	require.NoError(t, tasks.AssignUser(ctx, worker.ID, task.ID))
	require.NoError(t, tasks.AssignUser(ctx, worker.ID, task.ID))

	assignees, err := tasks.ListTaskUsers(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, assignees, 1)
	assert.Equal(t, worker.ID, assignees[0].ID)

	assigned, err := tasks.IsAssigned(ctx, task.ID, worker.ID)
	require.NoError(t, err)
	assert.True(t, assigned)

	mine, err := tasks.ListTasksForUser(ctx, worker.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, task.ID, mine[0].ID)

	require.NoError(t, tasks.RemoveAssignment(ctx, task.ID, worker.ID))
	assert.ErrorIs(t, tasks.RemoveAssignment(ctx, task.ID, worker.ID), model.ErrAssignmentNotFound)

	assigned, err = tasks.IsAssigned(ctx, task.ID, worker.ID)
	require.NoError(t, err)
	assert.False(t, assigned)
}

func TestTaskStorageScopeFilters(t *testing.T) {
	db := testDB(t)
	users := NewUserStorage(db)
	groups := NewGroupStorage(db)
	tasks := NewTaskStorage(db)
	ctx := context.Background()

	admin := createTestUser(t, users, "boss", 1, true)

	group, err := groups.GetOrCreateGroup(ctx, -100123, "Team")
	require.NoError(t, err)
	topic, err := groups.GetOrCreateTopic(ctx, 42, group.ID, "Sprint", "https://t.me/c/123/42")
	require.NoError(t, err)

	inTopic := model.NewTask("in topic", admin.ID)
	inTopic.GroupID = group.ID
	inTopic.TopicID = topic.ID
	require.NoError(t, tasks.CreateTask(ctx, inTopic))

	inGroup := model.NewTask("in group", admin.ID)
	inGroup.GroupID = group.ID
	require.NoError(t, tasks.CreateTask(ctx, inGroup))

	loose := createTestTask(t, tasks, "loose", admin.ID)

	byTopic, err := tasks.ListTasks(ctx, model.TaskFilter{TopicID: topic.ID})
	require.NoError(t, err)
	require.Len(t, byTopic, 1)
	assert.Equal(t, inTopic.ID, byTopic[0].ID)

	groupOnly, err := tasks.ListTasks(ctx, model.TaskFilter{GroupID: group.ID, WithoutTopic: true})
	require.NoError(t, err)
	require.Len(t, groupOnly, 1)
	assert.Equal(t, inGroup.ID, groupOnly[0].ID)

	ungrouped, err := tasks.ListTasks(ctx, model.TaskFilter{WithoutGroup: true})
	require.NoError(t, err)
	require.Len(t, ungrouped, 1)
	assert.Equal(t, loose.ID, ungrouped[0].ID)
}

func TestTaskStorageDeleteCascades(t *testing.T) {
	db := testDB(t)
	users := NewUserStorage(db)
	tasks := NewTaskStorage(db)
	attachments := NewAttachmentStorage(db)
	ctx := context.Background()

	admin := createTestUser(t, users, "boss", 1, true)
	worker := createTestUser(t, users, "worker", 2, false)
	task := createTestTask(t, tasks, "doomed", admin.ID)

	require.NoError(t, tasks.AssignUser(ctx, worker.ID, task.ID))
	require.NoError(t, attachments.AddAttachment(ctx, task.ID, "file-1"))

	require.NoError(t, tasks.DeleteTask(ctx, task.ID))

	_, err := tasks.FetchTaskByID(ctx, task.ID)
	assert.ErrorIs(t, err, model.ErrTaskNotFound)

	refs, err := attachments.ListAttachments(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, refs)

	// The user outlives the task.
	_, err = users.FetchUserByID(ctx, worker.ID)
	require.NoError(t, err)
}

func TestTaskStorageDueBetween(t *testing.T) {
	db := testDB(t)
	users := NewUserStorage(db)
	tasks := NewTaskStorage(db)
	ctx := context.Background()

	admin := createTestUser(t, users, "boss", 1, true)
	now := time.Now()

	soon := model.NewTask("due soon", admin.ID)
	soon.EndDate = now.Add(6 * time.Hour)
	require.NoError(t, tasks.CreateTask(ctx, soon))

	later := model.NewTask("due later", admin.ID)
	later.EndDate = now.Add(48 * time.Hour)
	require.NoError(t, tasks.CreateTask(ctx, later))

	finished := model.NewTask("already done", admin.ID)
	finished.EndDate = now.Add(6 * time.Hour)
	require.NoError(t, tasks.CreateTask(ctx, finished))
	require.NoError(t, tasks.UpdateStatus(ctx, finished.ID, model.TaskStatusDone))

	undated := createTestTask(t, tasks, "no deadline", admin.ID)
	_ = undated

	due, err := tasks.ListTasksDueBetween(ctx, now, now.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, soon.ID, due[0].ID)
}

func TestAttachmentStorageDedupAndOrder(t *testing.T) {
	db := testDB(t)
	users := NewUserStorage(db)
	tasks := NewTaskStorage(db)
	attachments := NewAttachmentStorage(db)
	ctx := context.Background()

	admin := createTestUser(t, users, "boss", 1, true)
	task := createTestTask(t, tasks, "job", admin.ID)

	require.NoError(t, attachments.AddAttachment(ctx, task.ID, "file-a"))
	require.NoError(t, attachments.AddAttachment(ctx, task.ID, "file-b"))
	assert.ErrorIs(t, attachments.AddAttachment(ctx, task.ID, "file-a"), model.ErrDuplicateAttachment)
	require.NoError(t, attachments.AddAttachment(ctx, task.ID, "text:note"))

	refs, err := attachments.ListAttachments(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"file-a", "file-b", "text:note"}, refs)
}

func TestGroupStorage(t *testing.T) {
	db := testDB(t)
	groups := NewGroupStorage(db)
	ctx := context.Background()

	group, err := groups.GetOrCreateGroup(ctx, -100555, "Ops")
	require.NoError(t, err)
	require.NotZero(t, group.ID)

	// Same chat id resolves to the same record.
	again, err := groups.GetOrCreateGroup(ctx, -100555, "Ops")
	require.NoError(t, err)
	assert.Equal(t, group.ID, again.ID)

	// A renamed chat refreshes the stored title.
	renamed, err := groups.GetOrCreateGroup(ctx, -100555, "Operations")
	require.NoError(t, err)
	assert.Equal(t, group.ID, renamed.ID)
	assert.Equal(t, "Operations", renamed.Title)

	stored, err := groups.FetchGroupByChatID(ctx, -100555)
	require.NoError(t, err)
	assert.Equal(t, "Operations", stored.Title)

	_, err = groups.FetchGroupByChatID(ctx, -100999)
	assert.ErrorIs(t, err, model.ErrGroupNotFound)

	topic, err := groups.GetOrCreateTopic(ctx, 7, group.ID, "Incidents", "https://t.me/c/555/7")
	require.NoError(t, err)

	fetched, err := groups.FetchTopicByThreadID(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, topic.ID, fetched.ID)
	assert.Equal(t, "Incidents", fetched.Title)

	_, err = groups.FetchTopicByThreadID(ctx, 8)
	assert.ErrorIs(t, err, model.ErrTopicNotFound)

	topics, err := groups.ListTopics(ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, topics, 1)
}
