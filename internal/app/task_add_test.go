package app

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestReplyTitleUsable(t *testing.T) {
	super := &tgbotapi.Chat{ID: -100123, Type: "supergroup"}
	human := &tgbotapi.User{ID: 7, UserName: "alice"}
	bot := &tgbotapi.User{ID: 99, UserName: "teledo_bot", IsBot: true}

	// A human-authored text reply sources the title.
	assert.True(t, replyTitleUsable(&tgbotapi.Message{
		Chat:           super,
		ReplyToMessage: &tgbotapi.Message{MessageID: 10, Chat: super, From: human, Text: "fix the build"},
	}))

	// Bot-authored replies never do, so replying to one of this bot's own
	// cards cannot turn its text into a task title.
	assert.False(t, replyTitleUsable(&tgbotapi.Message{
		Chat:           super,
		ReplyToMessage: &tgbotapi.Message{MessageID: 10, Chat: super, From: bot, Text: "📋 Title: fix the build"},
	}))

	// Missing author is treated the same as a bot author.
	assert.False(t, replyTitleUsable(&tgbotapi.Message{
		Chat:           super,
		ReplyToMessage: &tgbotapi.Message{MessageID: 10, Chat: super, Text: "orphan"},
	}))

	// The topic root service message is not a title source either.
	assert.False(t, replyTitleUsable(&tgbotapi.Message{
		Chat:           super,
		ReplyToMessage: &tgbotapi.Message{MessageID: 42, Chat: super, From: human},
	}))

	assert.False(t, replyTitleUsable(&tgbotapi.Message{Chat: super}))
}
