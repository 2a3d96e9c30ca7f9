package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/saeidmoini/TeleDo/internal/dates"
	"github.com/saeidmoini/TeleDo/internal/model"
	"github.com/saeidmoini/TeleDo/internal/texts"
)

// handleEditField opens a one-field edit flow from the task card. The card
// message itself becomes the prompt and is restored with the result once the
// admin replies.
func (b *Bot) handleEditField(ctx context.Context, cb CallbackEvent, parsed Callback) error {
	_, ok, err := b.requireAdmin(ctx, cb)
	if err != nil || !ok {
		return err
	}
	taskID, err := parsed.IntArg(0)
	if err != nil {
		return err
	}
	task, err := b.tasks.FetchTaskByID(ctx, taskID)
	if errors.Is(err, model.ErrTaskNotFound) {
		b.acknowledge(cb, texts.T("task_not_found"), true)
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not fetch task: %w", err)
	}

	var state ConvState
	var prompt string
	switch parsed.Action {
	case "edit_name":
		state = StateWaitingName
		prompt = texts.T("edit_name_prompt", task.Title)
	case "edit_desc":
		state = StateWaitingDesc
		prompt = texts.T("edit_desc_prompt", task.Title)
	case "edit_end":
		state = StateWaitingEnd
		prompt = texts.T("edit_end_prompt", task.Title)
	default:
		return errMalformedCallback
	}

	conv := b.conv.Begin(cb.Chat().ID, cb.From().ID, state)
	conv.TaskID = taskID
	conv.PromptMessageID = cb.MessageID()
	b.conv.Put(cb.Chat().ID, cb.From().ID, conv)

	b.acknowledge(cb, "", false)
	return b.editMessage(cb, prompt, backKeyboard(BuildCallback("view_task", itoa(taskID))))
}

// processEditField applies the admin's reply to the pending field. The flow
// ends after one reply either way: a failed validation restores the card and
// the admin re-opens the edit to retry.
func (b *Bot) processEditField(ctx context.Context, msg *tgbotapi.Message, conv Conversation) error {
	b.conv.Clear(msg.Chat.ID, msg.From.ID)

	value := strings.TrimSpace(msg.Text)

	var upd model.TaskUpdate
	var result, change string
	switch conv.State {
	case StateWaitingName:
		if value == "" {
			return b.failEdit(ctx, msg, conv, texts.T("invalid_value"))
		}
		upd.Title = &value
		result = texts.T("edit_name_done", value)
		change = result
	case StateWaitingDesc:
		if value == "" {
			return b.failEdit(ctx, msg, conv, texts.T("invalid_value"))
		}
		upd.Description = &value
		result = texts.T("edit_desc_done")
		change = result
	case StateWaitingEnd:
		deadline, err := dates.ParseDeadline(value, time.Now())
		switch {
		case errors.Is(err, dates.ErrPastDate):
			return b.failEdit(ctx, msg, conv, texts.T("date_in_past"))
		case err != nil:
			return b.failEdit(ctx, msg, conv, texts.T("bad_date_format"))
		}
		upd.EndDate = &deadline
		result = texts.T("edit_end_done")
		change = texts.T("edit_end_done") + " " + dates.FormatJalali(deadline)
	default:
		return nil
	}

	if err := b.tasks.UpdateTask(ctx, conv.TaskID, upd); err != nil {
		if errors.Is(err, model.ErrTaskNotFound) {
			return b.failEdit(ctx, msg, conv, texts.T("task_not_found"))
		}
		return fmt.Errorf("could not update task: %w", err)
	}

	b.deleteNow(msg.Chat.ID, msg.MessageID)

	task, err := b.tasks.FetchTaskByID(ctx, conv.TaskID)
	if err != nil {
		return fmt.Errorf("could not fetch task: %w", err)
	}
	assignees, err := b.tasks.ListTaskUsers(ctx, task.ID)
	if err != nil {
		return fmt.Errorf("could not list assignees: %w", err)
	}

	b.notifyAssignees(ctx, task.ID, texts.T("notify_task_changed", task.Title, change), 0)

	edit := tgbotapi.NewEditMessageTextAndMarkup(msg.Chat.ID, conv.PromptMessageID,
		result+"\n\n"+renderTaskDetail(task, assignees), adminTaskKeyboard(task.ID))
	_, err = b.api.Send(edit)
	return err
}

// failEdit restores the task card and leaves a transient error notice.
func (b *Bot) failEdit(ctx context.Context, msg *tgbotapi.Message, conv Conversation, notice string) error {
	b.deleteNow(msg.Chat.ID, msg.MessageID)

	response, err := b.reply(MessageEvent{Message: msg}, notice, nil)
	if err == nil {
		b.deleteLater(msg.Chat.ID, response.MessageID)
	}

	task, taskErr := b.tasks.FetchTaskByID(ctx, conv.TaskID)
	if taskErr == nil {
		assignees, _ := b.tasks.ListTaskUsers(ctx, task.ID)
		edit := tgbotapi.NewEditMessageTextAndMarkup(msg.Chat.ID, conv.PromptMessageID,
			renderTaskDetail(task, assignees), adminTaskKeyboard(task.ID))
		if _, editErr := b.api.Send(edit); editErr != nil {
			return editErr
		}
	}
	return err
}

// handleDeleteTask removes the task along with its assignments and
// attachments, then tells the former assignees.
func (b *Bot) handleDeleteTask(ctx context.Context, cb CallbackEvent, parsed Callback) error {
	_, ok, err := b.requireAdmin(ctx, cb)
	if err != nil || !ok {
		return err
	}
	taskID, err := parsed.IntArg(0)
	if err != nil {
		return err
	}

	task, err := b.tasks.FetchTaskByID(ctx, taskID)
	if errors.Is(err, model.ErrTaskNotFound) {
		b.acknowledge(cb, texts.T("task_not_found"), true)
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not fetch task: %w", err)
	}

	// Snapshot assignees before the cascade wipes the link rows.
	assignees, err := b.tasks.ListTaskUsers(ctx, taskID)
	if err != nil {
		return fmt.Errorf("could not list assignees: %w", err)
	}

	if err := b.tasks.DeleteTask(ctx, taskID); err != nil {
		if errors.Is(err, model.ErrTaskNotFound) {
			b.acknowledge(cb, texts.T("task_not_found"), true)
			return nil
		}
		b.acknowledge(cb, texts.T("task_delete_error"), true)
		return fmt.Errorf("could not delete task: %w", err)
	}

	b.notifyUsers(assignees, texts.T("notify_deleted", task.Title), 0)
	b.acknowledge(cb, texts.T("task_deleted"), false)
	return b.editMessage(cb, texts.T("task_deleted"), backKeyboard(BuildCallback("back")))
}
