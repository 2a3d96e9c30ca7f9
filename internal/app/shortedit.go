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

// cmdShortEdit implements the quick-edit commands: /name, /des and /time set
// one field, /attach stores the replied message's files or text. The value is
// staged in the media cache and the user picks the target task from buttons;
// callback payloads carry only the opaque cache key, never the value itself.
func (b *Bot) cmdShortEdit(ctx context.Context, msg *tgbotapi.Message) error {
	command := strings.ToLower(msg.Command())
	switch command {
	case "desc":
		command = "des"
	case "title":
		command = "name"
	}

	ev := MessageEvent{Message: msg}

	if command == "attach" {
		return b.cmdAttach(ctx, msg)
	}

	admin, ok, err := b.requireAdmin(ctx, ev)
	if err != nil || !ok {
		return err
	}

	value := strings.TrimSpace(msg.CommandArguments())
	if value == "" {
		response, err := b.reply(ev, texts.T("invalid_value"), nil)
		if err == nil {
			b.deleteLater(msg.Chat.ID, response.MessageID, msg.MessageID)
		}
		return err
	}

	if command == "time" {
		if _, err := dates.ParseDeadline(value, time.Now()); err != nil {
			notice := texts.T("bad_date_format")
			if errors.Is(err, dates.ErrPastDate) {
				notice = texts.T("date_in_past")
			}
			response, replyErr := b.reply(ev, notice, nil)
			if replyErr == nil {
				b.deleteLater(msg.Chat.ID, response.MessageID, msg.MessageID)
			}
			return replyErr
		}
	}

	tasks, err := b.scopedTasks(ctx, msg, admin)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		response, err := b.reply(ev, texts.T("no_tasks"), nil)
		if err == nil {
			b.deleteLater(msg.Chat.ID, response.MessageID, msg.MessageID)
		}
		return err
	}

	key := b.media.Put([]string{value})
	b.deleteLater(msg.Chat.ID, msg.MessageID)
	_, err = b.reply(ev, texts.T("pick_task"), shortEditKeyboard(tasks, command, key))
	return err
}

func (b *Bot) cmdAttach(ctx context.Context, msg *tgbotapi.Message) error {
	ev := MessageEvent{Message: msg}

	user, err := b.resolveUser(ctx, msg.From)
	if err != nil {
		b.sendDenial(ev)
		return nil
	}
	isAdmin := b.actorIsAdmin(ctx, ev)

	refs := attachmentRefs(msg.ReplyToMessage)
	if len(refs) == 0 {
		response, err := b.reply(ev, texts.T("attach_reply_required"), nil)
		if err == nil {
			b.deleteLater(msg.Chat.ID, response.MessageID, msg.MessageID)
		}
		return err
	}

	var tasks []model.Task
	if isAdmin {
		tasks, err = b.scopedTasks(ctx, msg, user)
	} else {
		// Non-admins may only attach to tasks assigned to them.
		tasks, err = b.tasks.ListTasksForUser(ctx, user.ID)
	}
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		response, err := b.reply(ev, texts.T("no_tasks"), nil)
		if err == nil {
			b.deleteLater(msg.Chat.ID, response.MessageID, msg.MessageID)
		}
		return err
	}

	key := b.media.Put(refs)
	b.deleteLater(msg.Chat.ID, msg.MessageID)
	_, err = b.reply(ev, texts.T("pick_task"), shortEditKeyboard(tasks, "attach", key))
	return err
}

// scopedTasks narrows the pickable tasks to the command's context: inside a
// group only that group's (and topic's) tasks, in private everything the
// admin owns.
func (b *Bot) scopedTasks(ctx context.Context, msg *tgbotapi.Message, user *model.User) ([]model.Task, error) {
	if msg.Chat.IsPrivate() {
		return b.tasks.ListTasksByAdmin(ctx, user.ID)
	}

	group, err := b.groups.FetchGroupByChatID(ctx, msg.Chat.ID)
	if errors.Is(err, model.ErrGroupNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not fetch group: %w", err)
	}

	if threadID := topicThreadID(msg); threadID != 0 {
		topic, err := b.groups.FetchTopicByThreadID(ctx, threadID)
		if err == nil {
			return b.tasks.ListTasks(ctx, model.TaskFilter{TopicID: topic.ID})
		}
		if !errors.Is(err, model.ErrTopicNotFound) {
			return nil, fmt.Errorf("could not fetch topic: %w", err)
		}
	}
	return b.tasks.ListTasks(ctx, model.TaskFilter{GroupID: group.ID})
}

func shortEditKeyboard(tasks []model.Task, editType, key string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range tasks {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t.Title, BuildCallback("short_edit", editType, key, itoa(t.ID))),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(texts.T("btn_cancel"), BuildCallback("end_short_edit")),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// attachmentRefs extracts storable references from a replied-to message:
// file ids for media, a prefixed literal for plain text.
func attachmentRefs(msg *tgbotapi.Message) []string {
	if msg == nil {
		return nil
	}
	var refs []string
	if msg.Document != nil {
		refs = append(refs, msg.Document.FileID)
	}
	if len(msg.Photo) > 0 {
		// The last size is the largest rendition.
		refs = append(refs, msg.Photo[len(msg.Photo)-1].FileID)
	}
	if msg.Video != nil {
		refs = append(refs, msg.Video.FileID)
	}
	if msg.Audio != nil {
		refs = append(refs, msg.Audio.FileID)
	}
	if msg.Voice != nil {
		refs = append(refs, msg.Voice.FileID)
	}
	if len(refs) == 0 && strings.TrimSpace(msg.Text) != "" {
		refs = append(refs, model.NewTextAttachment(strings.TrimSpace(msg.Text)))
	}
	return refs
}

// handleShortEditConfirm applies a staged quick edit to the picked task. The
// staged value is consumed on first use; a second press of any button from
// the same picker gets an expiry toast.
func (b *Bot) handleShortEditConfirm(ctx context.Context, cb CallbackEvent, parsed Callback) error {
	editType, err := parsed.StrArg(0)
	if err != nil {
		return err
	}
	key, err := parsed.StrArg(1)
	if err != nil {
		return err
	}
	taskID, err := parsed.IntArg(2)
	if err != nil {
		return err
	}

	user, err := b.resolveUser(ctx, cb.From())
	if err != nil {
		b.acknowledge(cb, texts.T("no_permission"), true)
		return nil
	}
	isAdmin := b.actorIsAdmin(ctx, cb)
	if editType != "attach" && !isAdmin {
		b.acknowledge(cb, texts.T("no_permission"), true)
		return nil
	}
	if editType == "attach" && !isAdmin {
		assigned, err := b.tasks.IsAssigned(ctx, taskID, user.ID)
		if err != nil {
			return fmt.Errorf("could not check assignment: %w", err)
		}
		if !assigned {
			b.acknowledge(cb, texts.T("no_permission"), true)
			return nil
		}
	}

	values, ok := b.media.Take(key)
	if !ok || len(values) == 0 {
		b.acknowledge(cb, texts.T("generic_error"), true)
		b.deleteNow(cb.Chat().ID, cb.MessageID())
		return nil
	}

	task, err := b.tasks.FetchTaskByID(ctx, taskID)
	if errors.Is(err, model.ErrTaskNotFound) {
		b.acknowledge(cb, texts.T("task_not_found"), true)
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not fetch task: %w", err)
	}

	var result string
	switch editType {
	case "name":
		title := values[0]
		if err := b.tasks.UpdateTask(ctx, taskID, model.TaskUpdate{Title: &title}); err != nil {
			return fmt.Errorf("could not update title: %w", err)
		}
		result = texts.T("edit_name_done", title)
		b.notifyAssignees(ctx, taskID, texts.T("notify_task_changed", task.Title, result), user.ID)
	case "des":
		desc := values[0]
		if err := b.tasks.UpdateTask(ctx, taskID, model.TaskUpdate{Description: &desc}); err != nil {
			return fmt.Errorf("could not update description: %w", err)
		}
		result = texts.T("edit_desc_done")
		b.notifyAssignees(ctx, taskID, texts.T("notify_task_changed", task.Title, result), user.ID)
	case "time":
		deadline, err := dates.ParseDeadline(values[0], time.Now())
		if err != nil {
			notice := texts.T("bad_date_format")
			if errors.Is(err, dates.ErrPastDate) {
				notice = texts.T("date_in_past")
			}
			b.acknowledge(cb, notice, true)
			return nil
		}
		if err := b.tasks.UpdateTask(ctx, taskID, model.TaskUpdate{EndDate: &deadline}); err != nil {
			return fmt.Errorf("could not update deadline: %w", err)
		}
		result = texts.T("edit_end_done")
		b.notifyAssignees(ctx, taskID,
			texts.T("notify_task_changed", task.Title, result+" "+dates.FormatJalali(deadline)), user.ID)
	case "attach":
		added := 0
		for _, ref := range values {
			err := b.attachments.AddAttachment(ctx, taskID, ref)
			if errors.Is(err, model.ErrDuplicateAttachment) {
				continue
			}
			if err != nil {
				return fmt.Errorf("could not add attachment: %w", err)
			}
			added++
		}
		if added == 0 {
			result = texts.T("attach_none_added")
		} else {
			result = texts.T("attach_count_done", added)
			if isAdmin {
				b.notifyAssignees(ctx, taskID, texts.T("notify_attachment", task.Title), user.ID)
			} else {
				b.notifyAdmin(ctx, task, texts.T("notify_attachment", task.Title), user.ID)
			}
		}
	default:
		return errMalformedCallback
	}

	viewAction := "view_task"
	if !isAdmin {
		viewAction = "show_task"
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(texts.T("btn_view_task"), BuildCallback(viewAction, itoa(taskID))),
			tgbotapi.NewInlineKeyboardButtonData(texts.T("btn_done"), BuildCallback("end_short_edit")),
		),
	)

	b.acknowledge(cb, "", false)
	return b.editMessage(cb, result, kb)
}

// cmdUser opens the assign-user flow: pick a task, then pick the user.
func (b *Bot) cmdUser(ctx context.Context, msg *tgbotapi.Message) error {
	admin, ok, err := b.requireAdmin(ctx, MessageEvent{Message: msg})
	if err != nil || !ok {
		return err
	}

	tasks, err := b.scopedTasks(ctx, msg, admin)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		response, err := b.reply(MessageEvent{Message: msg}, texts.T("no_tasks"), nil)
		if err == nil {
			b.deleteLater(msg.Chat.ID, response.MessageID, msg.MessageID)
		}
		return err
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range tasks {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t.Title, BuildCallback("add_user", itoa(t.ID))),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(texts.T("btn_cancel"), BuildCallback("end_short_edit")),
	))

	b.deleteLater(msg.Chat.ID, msg.MessageID)
	_, err = b.reply(MessageEvent{Message: msg}, texts.T("pick_task"), tgbotapi.NewInlineKeyboardMarkup(rows...))
	return err
}
