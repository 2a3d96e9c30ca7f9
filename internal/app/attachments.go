package app

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/saeidmoini/TeleDo/internal/model"
	"github.com/saeidmoini/TeleDo/internal/texts"
)

// handleAddAttachmentMode switches the admin's chat into collection mode:
// every file sent until Done is stored on the task.
func (b *Bot) handleAddAttachmentMode(ctx context.Context, cb CallbackEvent, parsed Callback) error {
	_, ok, err := b.requireAdmin(ctx, cb)
	if err != nil || !ok {
		return err
	}
	taskID, err := parsed.IntArg(0)
	if err != nil {
		return err
	}
	if _, err := b.tasks.FetchTaskByID(ctx, taskID); err != nil {
		if errors.Is(err, model.ErrTaskNotFound) {
			b.acknowledge(cb, texts.T("task_not_found"), true)
			return nil
		}
		return fmt.Errorf("could not fetch task: %w", err)
	}

	conv := b.conv.Begin(cb.Chat().ID, cb.From().ID, StateNone)
	conv.CollectingAttachments = true
	conv.TaskID = taskID
	conv.PromptMessageID = cb.MessageID()
	b.conv.Put(cb.Chat().ID, cb.From().ID, conv)

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(texts.T("btn_done"), BuildCallback("attach_done", itoa(taskID))),
		),
	)
	b.acknowledge(cb, "", false)
	return b.editMessage(cb, texts.T("attach_mode_on"), kb)
}

// captureAttachment stores one incoming file while collection mode is on.
func (b *Bot) captureAttachment(ctx context.Context, msg *tgbotapi.Message, conv Conversation) error {
	refs := attachmentRefs(msg)
	if len(refs) == 0 {
		return nil
	}

	notice := texts.T("attachment_added")
	for _, ref := range refs {
		err := b.attachments.AddAttachment(ctx, conv.TaskID, ref)
		if errors.Is(err, model.ErrDuplicateAttachment) {
			notice = texts.T("attachment_duplicate")
			continue
		}
		if err != nil {
			if errors.Is(err, model.ErrTaskNotFound) {
				b.conv.Clear(msg.Chat.ID, msg.From.ID)
				response, replyErr := b.reply(MessageEvent{Message: msg}, texts.T("task_not_found"), nil)
				if replyErr == nil {
					b.deleteLater(msg.Chat.ID, response.MessageID)
				}
				return replyErr
			}
			return fmt.Errorf("could not add attachment: %w", err)
		}
		conv.CapturedCount++
	}

	// Keep collection mode alive for the next file.
	b.conv.Put(msg.Chat.ID, msg.From.ID, conv)

	response, err := b.reply(MessageEvent{Message: msg}, notice, nil)
	if err == nil {
		b.deleteLater(msg.Chat.ID, response.MessageID)
	}
	return err
}

// handleAttachDone leaves collection mode and restores the task card.
func (b *Bot) handleAttachDone(ctx context.Context, cb CallbackEvent, parsed Callback) error {
	taskID, err := parsed.IntArg(0)
	if err != nil {
		return err
	}
	conv, active := b.conv.Get(cb.Chat().ID, cb.From().ID)
	b.conv.Clear(cb.Chat().ID, cb.From().ID)

	task, err := b.tasks.FetchTaskByID(ctx, taskID)
	if errors.Is(err, model.ErrTaskNotFound) {
		b.acknowledge(cb, texts.T("task_not_found"), true)
		b.deleteNow(cb.Chat().ID, cb.MessageID())
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not fetch task: %w", err)
	}
	assignees, err := b.tasks.ListTaskUsers(ctx, taskID)
	if err != nil {
		return fmt.Errorf("could not list assignees: %w", err)
	}

	// Pressing Done without sending anything is a no-op for assignees.
	if active && conv.CapturedCount > 0 {
		b.notifyAssignees(ctx, taskID, texts.T("notify_attachment", task.Title), 0)
	}
	b.acknowledge(cb, texts.T("attach_mode_off"), false)
	return b.editMessage(cb, renderTaskDetail(task, assignees), adminTaskKeyboard(taskID))
}

// handleGetAttachments re-sends every stored attachment into the chat.
func (b *Bot) handleGetAttachments(ctx context.Context, cb CallbackEvent, parsed Callback) error {
	taskID, err := parsed.IntArg(0)
	if err != nil {
		return err
	}

	refs, err := b.attachments.ListAttachments(ctx, taskID)
	if err != nil {
		return fmt.Errorf("could not list attachments: %w", err)
	}
	if len(refs) == 0 {
		b.acknowledge(cb, texts.T("attachments_none"), true)
		return nil
	}

	for _, ref := range refs {
		if err := b.sendAttachmentTo(cb.Chat().ID, ref); err != nil {
			return fmt.Errorf("could not send attachment: %w", err)
		}
	}
	b.acknowledge(cb, texts.T("attachments_sent"), false)
	return nil
}
