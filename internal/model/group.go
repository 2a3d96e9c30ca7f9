package model

import (
	"context"
	"errors"
)

// Group mirrors a Telegram group or supergroup the bot has been set up in.
type Group struct {
	ID       int
	TgChatID int64
	Title    string
}

// Topic is a forum thread inside a supergroup. Unique per (thread id, group).
type Topic struct {
	ID         int
	TgThreadID int
	GroupID    int
	Title      string
	Link       string
}

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrTopicNotFound = errors.New("topic not found")
)

type GroupRepository interface {
	GetOrCreateGroup(ctx context.Context, tgChatID int64, title string) (*Group, error)
	FetchGroupByID(ctx context.Context, id int) (*Group, error)
	FetchGroupByChatID(ctx context.Context, tgChatID int64) (*Group, error)
	ListGroups(ctx context.Context) ([]Group, error)

	GetOrCreateTopic(ctx context.Context, tgThreadID int, groupID int, title, link string) (*Topic, error)
	FetchTopicByID(ctx context.Context, id int) (*Topic, error)
	FetchTopicByThreadID(ctx context.Context, tgThreadID int) (*Topic, error)
	ListTopics(ctx context.Context, groupID int) ([]Topic, error)
}
