package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/saeidmoini/TeleDo/internal/model"
)

type UserStorage struct {
	db *sql.DB
}

func NewUserStorage(db *sql.DB) *UserStorage {
	return &UserStorage{db: db}
}

const userColumns = `id, tg_user_id, username, is_admin`

func scanUser(row *sql.Row) (*model.User, error) {
	var user model.User
	var tgUserID sql.NullInt64
	err := row.Scan(&user.ID, &tgUserID, &user.Username, &user.IsAdmin)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	if tgUserID.Valid {
		user.TgUserID = tgUserID.Int64
	}
	return &user, nil
}

func (s *UserStorage) FetchUserByID(ctx context.Context, id int) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(s.db.QueryRowContext(ctx, q, id))
}

func (s *UserStorage) FetchUserByTgID(ctx context.Context, tgUserID int64) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE tg_user_id = ?`
	return scanUser(s.db.QueryRowContext(ctx, q, tgUserID))
}

func (s *UserStorage) FetchUserByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE username = ?`
	return scanUser(s.db.QueryRowContext(ctx, q, username))
}

func (s *UserStorage) createUser(ctx context.Context, user *model.User) error {
	const q = `INSERT INTO users (tg_user_id, username, is_admin) VALUES (?, ?, ?)`
	var tgUserID sql.NullInt64
	if user.TgUserID != 0 {
		tgUserID.Int64 = user.TgUserID
		tgUserID.Valid = true
	}
	result, err := s.db.ExecContext(ctx, q, tgUserID, user.Username, user.IsAdmin)
	if err != nil {
		return fmt.Errorf("could not create user: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("could not get last insert id: %w", err)
	}
	user.ID = int(id)
	return nil
}

func (s *UserStorage) GetOrCreateUser(ctx context.Context, username string, tgUserID int64, isAdmin bool) (*model.User, error) {
	var user *model.User
	var err error

	if tgUserID != 0 {
		user, err = s.FetchUserByTgID(ctx, tgUserID)
		if err != nil && err != model.ErrUserNotFound {
			return nil, err
		}
	}
	if user == nil && username != "" {
		user, err = s.FetchUserByUsername(ctx, username)
		if err != nil && err != model.ErrUserNotFound {
			return nil, err
		}
	}

	if user == nil {
		user = model.NewUser(username, tgUserID)
		user.IsAdmin = isAdmin
		if err := s.createUser(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	// Refresh identity fields and promote if requested; never demote.
	if tgUserID != 0 {
		user.TgUserID = tgUserID
	}
	if username != "" {
		user.Username = username
	}
	user.IsAdmin = user.IsAdmin || isAdmin
	if err := s.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserStorage) UpdateUser(ctx context.Context, user *model.User) error {
	const q = `UPDATE users SET tg_user_id = ?, username = ?, is_admin = ? WHERE id = ?`
	var tgUserID sql.NullInt64
	if user.TgUserID != 0 {
		tgUserID.Int64 = user.TgUserID
		tgUserID.Valid = true
	}
	_, err := s.db.ExecContext(ctx, q, tgUserID, user.Username, user.IsAdmin, user.ID)
	if err != nil {
		return fmt.Errorf("could not update user: %w", err)
	}
	return nil
}

func (s *UserStorage) ToggleAdmin(ctx context.Context, id int) error {
	const q = `UPDATE users SET is_admin = NOT is_admin WHERE id = ?`
	result, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("could not toggle admin flag: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (s *UserStorage) DeleteUser(ctx context.Context, id int) error {
	const q = `DELETE FROM users WHERE id = ?`
	result, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return fmt.Errorf("could not delete user: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (s *UserStorage) ListUsers(ctx context.Context, filter model.UserFilter) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE 1=1`
	args := []interface{}{}

	if filter.ExcludeTgUserID != 0 {
		query += " AND (tg_user_id IS NULL OR tg_user_id != ?)"
		args = append(args, filter.ExcludeTgUserID)
	}
	if filter.ExcludeUsername != "" {
		query += " AND username != ?"
		args = append(args, filter.ExcludeUsername)
	}
	if filter.NotAssignedToTask != 0 {
		query += " AND id NOT IN (SELECT user_id FROM user_tasks WHERE task_id = ?)"
		args = append(args, filter.NotAssignedToTask)
	}
	query += " ORDER BY id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("could not list users: %w", err)
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
		return nil, fmt.Errorf("could not iterate users: %w", err)
	}
	return users, nil
}
