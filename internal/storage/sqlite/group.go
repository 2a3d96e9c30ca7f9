package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/saeidmoini/TeleDo/internal/model"
)

type GroupStorage struct {
	db *sql.DB
}

func NewGroupStorage(db *sql.DB) *GroupStorage {
	return &GroupStorage{db: db}
}

func (s *GroupStorage) GetOrCreateGroup(ctx context.Context, tgChatID int64, title string) (*model.Group, error) {
	group, err := s.FetchGroupByChatID(ctx, tgChatID)
	if err == nil {
		// Keep the stored title in sync with the live chat title.
		if title != "" && title != group.Title {
			const upd = `UPDATE groups SET title = ? WHERE id = ?`
			if _, err := s.db.ExecContext(ctx, upd, title, group.ID); err != nil {
				return nil, fmt.Errorf("could not update group title: %w", err)
			}
			group.Title = title
		}
		return group, nil
	}
	if err != model.ErrGroupNotFound {
		return nil, err
	}

	const q = `INSERT INTO groups (tg_chat_id, title) VALUES (?, ?)`
	result, err := s.db.ExecContext(ctx, q, tgChatID, title)
	if err != nil {
		return nil, fmt.Errorf("could not create group: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get last insert id: %w", err)
	}
	return &model.Group{ID: int(id), TgChatID: tgChatID, Title: title}, nil
}

func (s *GroupStorage) FetchGroupByID(ctx context.Context, id int) (*model.Group, error) {
	const q = `SELECT id, tg_chat_id, title FROM groups WHERE id = ?`
	var group model.Group
	err := s.db.QueryRowContext(ctx, q, id).Scan(&group.ID, &group.TgChatID, &group.Title)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (s *GroupStorage) FetchGroupByChatID(ctx context.Context, tgChatID int64) (*model.Group, error) {
	const q = `SELECT id, tg_chat_id, title FROM groups WHERE tg_chat_id = ?`
	var group model.Group
	err := s.db.QueryRowContext(ctx, q, tgChatID).Scan(&group.ID, &group.TgChatID, &group.Title)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (s *GroupStorage) ListGroups(ctx context.Context) ([]model.Group, error) {
	const q = `SELECT id, tg_chat_id, title FROM groups ORDER BY id ASC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("could not list groups: %w", err)
	}
	defer rows.Close()

	var groups []model.Group
	for rows.Next() {
		var group model.Group
		if err := rows.Scan(&group.ID, &group.TgChatID, &group.Title); err != nil {
			return nil, fmt.Errorf("could not scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate groups: %w", err)
	}
	return groups, nil
}

func (s *GroupStorage) GetOrCreateTopic(ctx context.Context, tgThreadID int, groupID int, title, link string) (*model.Topic, error) {
	const fetch = `SELECT id, tg_thread_id, group_id, title, link FROM topics WHERE tg_thread_id = ? AND group_id = ?`
	var topic model.Topic
	err := s.db.QueryRowContext(ctx, fetch, tgThreadID, groupID).Scan(
		&topic.ID, &topic.TgThreadID, &topic.GroupID, &topic.Title, &topic.Link,
	)
	if err == nil {
		return &topic, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}

	const q = `INSERT INTO topics (tg_thread_id, group_id, title, link) VALUES (?, ?, ?, ?)`
	result, err := s.db.ExecContext(ctx, q, tgThreadID, groupID, title, link)
	if err != nil {
		return nil, fmt.Errorf("could not create topic: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("could not get last insert id: %w", err)
	}
	return &model.Topic{
		ID:         int(id),
		TgThreadID: tgThreadID,
		GroupID:    groupID,
		Title:      title,
		Link:       link,
	}, nil
}

func (s *GroupStorage) FetchTopicByID(ctx context.Context, id int) (*model.Topic, error) {
	const q = `SELECT id, tg_thread_id, group_id, title, link FROM topics WHERE id = ?`
	var topic model.Topic
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&topic.ID, &topic.TgThreadID, &topic.GroupID, &topic.Title, &topic.Link,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrTopicNotFound
		}
		return nil, err
	}
	return &topic, nil
}

func (s *GroupStorage) FetchTopicByThreadID(ctx context.Context, tgThreadID int) (*model.Topic, error) {
	const q = `SELECT id, tg_thread_id, group_id, title, link FROM topics WHERE tg_thread_id = ?`
	var topic model.Topic
	err := s.db.QueryRowContext(ctx, q, tgThreadID).Scan(
		&topic.ID, &topic.TgThreadID, &topic.GroupID, &topic.Title, &topic.Link,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrTopicNotFound
		}
		return nil, err
	}
	return &topic, nil
}

func (s *GroupStorage) ListTopics(ctx context.Context, groupID int) ([]model.Topic, error) {
	const q = `SELECT id, tg_thread_id, group_id, title, link FROM topics WHERE group_id = ? ORDER BY id ASC`
	rows, err := s.db.QueryContext(ctx, q, groupID)
	if err != nil {
		return nil, fmt.Errorf("could not list topics: %w", err)
	}
	defer rows.Close()

	var topics []model.Topic
	for rows.Next() {
		var topic model.Topic
		if err := rows.Scan(&topic.ID, &topic.TgThreadID, &topic.GroupID, &topic.Title, &topic.Link); err != nil {
			return nil, fmt.Errorf("could not scan topic: %w", err)
		}
		topics = append(topics, topic)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not iterate topics: %w", err)
	}
	return topics, nil
}
