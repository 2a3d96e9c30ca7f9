package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saeidmoini/TeleDo/internal/model"
)

type TaskStorage struct {
	db *sql.DB
}

func NewTaskStorage(db *sql.DB) *TaskStorage {
	return &TaskStorage{db: db}
}

const taskColumns = `id, title, description, status, start_date, end_date, admin_id, group_id, topic_id, created_at, updated_at`

func (s *TaskStorage) CreateTask(ctx context.Context, task *model.Task) error {
	task.Title = strings.TrimSpace(task.Title)
	if task.Title == "" {
		return model.ErrEmptyTitle
	}
	if task.Status == "" {
		task.Status = model.TaskStatusPending
	}

	const q = `
		INSERT INTO tasks (title, description, status, start_date, end_date, admin_id, group_id, topic_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`
	result, err := s.db.ExecContext(ctx, q,
		task.Title,
		task.Description,
		string(task.Status),
		nullTime(task.StartDate),
		nullTime(task.EndDate),
		task.AdminID,
		nullInt(task.GroupID),
		nullInt(task.TopicID),
	)
	if err != nil {
		return fmt.Errorf("could not create task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get last insert id: %w", err)
	}
	task.ID = int(id)
	return nil
}

func (s *TaskStorage) FetchTaskByID(ctx context.Context, id int) (*model.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks WHERE id = ?`
	task, err := scanTask(s.db.QueryRowContext(ctx, q, id).Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrTaskNotFound
		}
		return nil, fmt.Errorf("could not get task: %w", err)
	}
	return task, nil
}

// UpdateTask applies only the fields set in upd. Returns ErrTaskNotFound when
// the id does not resolve and ErrInvalidStatus before touching the row when
// upd carries an unknown status.
func (s *TaskStorage) UpdateTask(ctx context.Context, id int, upd model.TaskUpdate) error {
	if upd.Status != nil && !upd.Status.Valid() {
		return model.ErrInvalidStatus
	}

	var sets []string
	var args []interface{}
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return model.ErrEmptyTitle
		}
		sets = append(sets, "title = ?")
		args = append(args, title)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.StartDate != nil {
		sets = append(sets, "start_date = ?")
		args = append(args, nullTime(*upd.StartDate))
	}
	if upd.EndDate != nil {
		sets = append(sets, "end_date = ?")
		args = append(args, nullTime(*upd.EndDate))
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*upd.Status))
	}
	if len(sets) == 0 {
		return nil
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")

	query := "UPDATE tasks SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	args = append(args, id)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("could not update task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrTaskNotFound
	}
	return nil
}

func (s *TaskStorage) UpdateStatus(ctx context.Context, id int, status model.TaskStatus) error {
	if !status.Valid() {
		return model.ErrInvalidStatus
	}
	return s.UpdateTask(ctx, id, model.TaskUpdate{Status: &status})
}

// DeleteTask removes the task together with its assignments and attachments.
// The schema cascades too, but the sweep keeps the contract independent of
// the connection's foreign_keys pragma.
func (s *TaskStorage) DeleteTask(ctx context.Context, id int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_tasks WHERE task_id = ?`, id); err != nil {
		return fmt.Errorf("could not remove task assignments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM task_attachments WHERE task_id = ?`, id); err != nil {
		return fmt.Errorf("could not remove task attachments: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("could not remove task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrTaskNotFound
	}
	return tx.Commit()
}

func (s *TaskStorage) ListTasks(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE 1=1`
	args := []interface{}{}

	if filter.GroupID != 0 {
		query += " AND group_id = ?"
		args = append(args, filter.GroupID)
	} else if filter.WithoutGroup {
		query += " AND group_id IS NULL"
	}
	if filter.TopicID != 0 {
		query += " AND topic_id = ?"
		args = append(args, filter.TopicID)
	} else if filter.WithoutTopic {
		query += " AND topic_id IS NULL"
	}
	query += " ORDER BY id ASC"

	return s.queryTasks(ctx, query, args...)
}

func (s *TaskStorage) ListTasksByAdmin(ctx context.Context, adminID int) ([]model.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks WHERE admin_id = ? ORDER BY id ASC`
	return s.queryTasks(ctx, q, adminID)
}

func (s *TaskStorage) ListTasksForUser(ctx context.Context, userID int) ([]model.Task, error) {
	const q = `SELECT ` + taskColumnsPrefixed + ` FROM tasks t
		JOIN user_tasks ut ON ut.task_id = t.id
		WHERE ut.user_id = ?
		ORDER BY t.id ASC`
	return s.queryTasks(ctx, q, userID)
}

func (s *TaskStorage) ListTasksDueBetween(ctx context.Context, from, to time.Time) ([]model.Task, error) {
	const q = `SELECT ` + taskColumns + ` FROM tasks
		WHERE end_date IS NOT NULL AND end_date > ? AND end_date <= ? AND status != 'done'
		ORDER BY end_date ASC`
	return s.queryTasks(ctx, q, from, to)
}

const taskColumnsPrefixed = `t.id, t.title, t.description, t.status, t.start_date, t.end_date, t.admin_id, t.group_id, t.topic_id, t.created_at, t.updated_at`

func (s *TaskStorage) queryTasks(ctx context.Context, query string, args ...interface{}) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("could not scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate tasks: %w", err)
	}
	return tasks, nil
}

func scanTask(scan func(dest ...interface{}) error) (*model.Task, error) {
	var task model.Task
	var startDate, endDate sql.NullTime
	var groupID, topicID sql.NullInt64
	err := scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Status,
		&startDate,
		&endDate,
		&task.AdminID,
		&groupID,
		&topicID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if startDate.Valid {
		task.StartDate = startDate.Time
	}
	if endDate.Valid {
		task.EndDate = endDate.Time
	}
	if groupID.Valid {
		task.GroupID = int(groupID.Int64)
	}
	if topicID.Valid {
		task.TopicID = int(topicID.Int64)
	}
	return &task, nil
}

func (s *TaskStorage) AssignUser(ctx context.Context, userID, taskID int) error {
	// Idempotent: re-assigning an already assigned user is a no-op.
	const q = `INSERT INTO user_tasks (user_id, task_id) VALUES (?, ?)
		ON CONFLICT (user_id, task_id) DO NOTHING`
	_, err := s.db.ExecContext(ctx, q, userID, taskID)
	if err != nil {
		return fmt.Errorf("could not assign user to task: %w", err)
	}
	return nil
}

func (s *TaskStorage) RemoveAssignment(ctx context.Context, taskID, userID int) error {
	const q = `DELETE FROM user_tasks WHERE task_id = ? AND user_id = ?`
	result, err := s.db.ExecContext(ctx, q, taskID, userID)
	if err != nil {
		return fmt.Errorf("could not remove assignment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrAssignmentNotFound
	}
	return nil
}

func (s *TaskStorage) IsAssigned(ctx context.Context, taskID, userID int) (bool, error) {
	const q = `SELECT COUNT(*) FROM user_tasks WHERE task_id = ? AND user_id = ?`
	var count int
	if err := s.db.QueryRowContext(ctx, q, taskID, userID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *TaskStorage) ListTaskUsers(ctx context.Context, taskID int) ([]model.User, error) {
	const q = `SELECT u.id, u.tg_user_id, u.username, u.is_admin FROM users u
		JOIN user_tasks ut ON ut.user_id = u.id
		WHERE ut.task_id = ?
		ORDER BY u.id ASC`
	rows, err := s.db.QueryContext(ctx, q, taskID)
	if err != nil {
		return nil, fmt.Errorf("could not list task users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var user model.User
		var tgUserID sql.NullInt64
		if err := rows.Scan(&user.ID, &tgUserID, &user.Username, &user.IsAdmin); err != nil {
			return nil, fmt.Errorf("could not scan user: %w", err)
		}
		if tgUserID.Valid {
			user.TgUserID = tgUserID.Int64
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate task users: %w", err)
	}
	return users, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}

func nullInt(v int) sql.NullInt64 {
	if v == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(v), Valid: true}
}
