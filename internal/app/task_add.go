package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/saeidmoini/TeleDo/internal/model"
	"github.com/saeidmoini/TeleDo/internal/texts"
)

// cmdAdd creates a task. The title comes from the command argument or from a
// replied-to text message; in private chats with neither, a conversational
// flow collects it. Group usage is always immediate, and the created task is
// scoped to the group and, when applicable, the topic of the trigger message.
func (b *Bot) cmdAdd(ctx context.Context, msg *tgbotapi.Message) error {
	admin, ok, err := b.requireAdmin(ctx, MessageEvent{Message: msg})
	if err != nil || !ok {
		return err
	}

	title := strings.TrimSpace(msg.CommandArguments())
	if title == "" && msg.ReplyToMessage != nil {
		replied := strings.TrimSpace(msg.ReplyToMessage.Text)
		if replied == "" {
			response, err := b.reply(MessageEvent{Message: msg}, texts.T("reply_not_text"), nil)
			if err == nil {
				b.deleteLater(msg.Chat.ID, response.MessageID, msg.MessageID)
			}
			return err
		}
		if replyTitleUsable(msg) {
			title = replied
		}
	}

	if !msg.Chat.IsPrivate() {
		if title == "" {
			response, err := b.reply(MessageEvent{Message: msg}, texts.T("add_usage"), nil)
			if err == nil {
				b.deleteLater(msg.Chat.ID, response.MessageID, msg.MessageID)
			}
			return err
		}
		if _, err := b.createScopedTask(ctx, msg, admin, title); err != nil {
			if errors.Is(err, model.ErrEmptyTitle) {
				response, replyErr := b.reply(MessageEvent{Message: msg}, texts.T("add_invalid_title"), nil)
				if replyErr == nil {
					b.deleteLater(msg.Chat.ID, response.MessageID, msg.MessageID)
				}
				return replyErr
			}
			return err
		}
		response, err := b.reply(MessageEvent{Message: msg}, texts.T("task_created"), nil)
		if err == nil {
			b.deleteLater(msg.Chat.ID, response.MessageID, msg.MessageID)
		}
		return err
	}

	if title != "" {
		task, err := b.createScopedTask(ctx, msg, admin, title)
		if err != nil {
			return err
		}
		users, err := b.tasks.ListTaskUsers(ctx, task.ID)
		if err != nil {
			return err
		}
		_, err = b.reply(MessageEvent{Message: msg}, renderTaskDetail(task, users), adminTaskKeyboard(task.ID))
		return err
	}

	conv := b.conv.Begin(msg.Chat.ID, msg.From.ID, StateWaitingTitle)
	conv.UserID = admin.ID
	response, err := b.reply(MessageEvent{Message: msg}, texts.T("add_title_prompt"), cancelKeyboard())
	if err != nil {
		return err
	}
	conv.MessageIDs = append(conv.MessageIDs, msg.MessageID, response.MessageID)
	b.conv.Put(msg.Chat.ID, msg.From.ID, conv)
	return nil
}

// replyTitleUsable reports whether the replied-to message may source a task
// title. The thread root service message and any message authored by a bot
// (including this one's own cards and prompts) are excluded.
func replyTitleUsable(msg *tgbotapi.Message) bool {
	reply := msg.ReplyToMessage
	if reply == nil {
		return false
	}
	if reply.From == nil || reply.From.IsBot {
		return false
	}
	return topicThreadID(msg) != reply.MessageID
}

// createScopedTask persists a task bound to the trigger's group and topic
// when the command came from a group chat.
func (b *Bot) createScopedTask(ctx context.Context, msg *tgbotapi.Message, admin *model.User, title string) (*model.Task, error) {
	task := model.NewTask(title, admin.ID)

	if !msg.Chat.IsPrivate() {
		group, err := b.groups.GetOrCreateGroup(ctx, msg.Chat.ID, msg.Chat.Title)
		if err != nil {
			return nil, fmt.Errorf("could not resolve group: %w", err)
		}
		task.GroupID = group.ID

		if threadID := topicThreadID(msg); threadID != 0 {
			topic, err := b.groups.FetchTopicByThreadID(ctx, threadID)
			switch {
			case err == nil:
				task.TopicID = topic.ID
			case errors.Is(err, model.ErrTopicNotFound):
				// Unregistered topic: the task stays group-scoped.
			default:
				return nil, fmt.Errorf("could not resolve topic: %w", err)
			}
		}
	}

	if err := b.tasks.CreateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (b *Bot) processTaskTitle(ctx context.Context, msg *tgbotapi.Message, conv Conversation) error {
	title := strings.TrimSpace(msg.Text)
	if title == "" {
		response, err := b.reply(MessageEvent{Message: msg}, texts.T("add_invalid_title"), nil)
		if err == nil {
			conv.MessageIDs = append(conv.MessageIDs, msg.MessageID, response.MessageID)
			b.conv.Put(msg.Chat.ID, msg.From.ID, conv)
		}
		return err
	}

	conv.State = StateConfirmingTask
	conv.Title = title
	response, err := b.reply(MessageEvent{Message: msg}, texts.T("add_confirm_prompt", title), confirmTaskKeyboard())
	if err != nil {
		return err
	}
	conv.MessageIDs = append(conv.MessageIDs, msg.MessageID, response.MessageID)
	b.conv.Put(msg.Chat.ID, msg.From.ID, conv)
	return nil
}

// handleConfirmTask finishes the conversational add. The "detail" mode opens
// the freshly created task's management card right away.
func (b *Bot) handleConfirmTask(ctx context.Context, cb CallbackEvent, parsed Callback) error {
	mode, err := parsed.StrArg(0)
	if err != nil {
		return err
	}

	conv, ok := b.conv.Get(cb.Chat().ID, cb.From().ID)
	if !ok || conv.State != StateConfirmingTask || conv.Title == "" {
		b.acknowledge(cb, texts.T("task_create_error"), true)
		b.deleteNow(cb.Chat().ID, cb.MessageID())
		return nil
	}

	admin, ok, err := b.requireAdmin(ctx, cb)
	if err != nil || !ok {
		return err
	}

	task := model.NewTask(conv.Title, admin.ID)
	if err := b.tasks.CreateTask(ctx, task); err != nil {
		b.acknowledge(cb, texts.T("task_create_error"), true)
		return fmt.Errorf("could not create task: %w", err)
	}

	b.conv.Clear(cb.Chat().ID, cb.From().ID)
	b.deleteNow(cb.Chat().ID, append(conv.MessageIDs, cb.MessageID())...)
	b.acknowledge(cb, texts.T("task_created"), false)

	if _, err := b.reply(cb, texts.T("task_created"), mainMenuKeyboard("private", true)); err != nil {
		return err
	}
	if mode == "detail" {
		_, err := b.reply(cb, renderTaskDetail(task, nil), adminTaskKeyboard(task.ID))
		return err
	}
	return nil
}

// cancelConversation aborts the active flow, sweeps its transient messages
// and restores the role keyboard.
func (b *Bot) cancelConversation(ctx context.Context, msg *tgbotapi.Message, conv Conversation) error {
	b.conv.Clear(msg.Chat.ID, msg.From.ID)
	b.deleteNow(msg.Chat.ID, append(conv.MessageIDs, msg.MessageID)...)

	chatType := "private"
	if !msg.Chat.IsPrivate() {
		chatType = "group"
	}
	isAdmin := b.actorIsAdmin(ctx, MessageEvent{Message: msg})
	_, err := b.reply(MessageEvent{Message: msg}, texts.T("add_cancelled"), mainMenuKeyboard(chatType, isAdmin))
	return err
}
