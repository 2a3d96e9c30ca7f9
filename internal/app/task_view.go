package app

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/saeidmoini/TeleDo/internal/model"
	"github.com/saeidmoini/TeleDo/internal/texts"
)

// showManageTasks opens the admin task browser: groups first, then topics,
// then tasks. Always sends a fresh message.
func (b *Bot) showManageTasks(ctx context.Context, ev Event) error {
	_, ok, err := b.requireAdmin(ctx, ev)
	if err != nil || !ok {
		return err
	}
	groups, err := b.groups.ListGroups(ctx)
	if err != nil {
		return fmt.Errorf("could not list groups: %w", err)
	}
	b.acknowledge(ev, "", false)
	_, err = b.reply(ev, texts.T("manage_tasks_title"), groupListKeyboard(groups))
	return err
}

// showManageTasksEdit is the "back" target inside the browser: same root
// view, rendered in place.
func (b *Bot) showManageTasksEdit(ctx context.Context, cb CallbackEvent) error {
	_, ok, err := b.requireAdmin(ctx, cb)
	if err != nil || !ok {
		return err
	}
	groups, err := b.groups.ListGroups(ctx)
	if err != nil {
		return fmt.Errorf("could not list groups: %w", err)
	}
	b.acknowledge(cb, "", false)
	return b.editMessage(cb, texts.T("manage_tasks_title"), groupListKeyboard(groups))
}

func (b *Bot) handleViewGroup(ctx context.Context, cb CallbackEvent, parsed Callback) error {
	_, ok, err := b.requireAdmin(ctx, cb)
	if err != nil || !ok {
		return err
	}
	arg, err := parsed.StrArg(0)
	if err != nil {
		return err
	}

	// "OTHER" is the bucket for tasks created outside any group.
	if arg == "OTHER" {
		tasks, err := b.tasks.ListTasks(ctx, model.TaskFilter{WithoutGroup: true})
		if err != nil {
			return fmt.Errorf("could not list tasks: %w", err)
		}
		title := texts.T("pick_task")
		if len(tasks) == 0 {
			title = texts.T("no_tasks")
		}
		b.acknowledge(cb, "", false)
		return b.editMessage(cb, title, taskListKeyboard(tasks, "view_task", BuildCallback("back")))
	}

	groupID, err := parsed.IntArg(0)
	if err != nil {
		return err
	}
	topics, err := b.groups.ListTopics(ctx, groupID)
	if err != nil {
		return fmt.Errorf("could not list topics: %w", err)
	}
	b.acknowledge(cb, "", false)
	return b.editMessage(cb, texts.T("manage_tasks_title"), topicListKeyboard(groupID, topics))
}

func (b *Bot) handleViewTopic(ctx context.Context, cb CallbackEvent, parsed Callback) error {
	_, ok, err := b.requireAdmin(ctx, cb)
	if err != nil || !ok {
		return err
	}
	arg, err := parsed.StrArg(0)
	if err != nil {
		return err
	}
	groupID, err := parsed.IntArg(1)
	if err != nil {
		return err
	}

	var filter model.TaskFilter
	empty := texts.T("no_tasks_topic")
	if arg == "OTHER" {
		// Tasks posted straight to the group, outside any thread.
		filter = model.TaskFilter{GroupID: groupID, WithoutTopic: true}
		empty = texts.T("no_tasks_group")
	} else {
		topicID, err := parsed.IntArg(0)
		if err != nil {
			return err
		}
		filter = model.TaskFilter{TopicID: topicID}
	}

	tasks, err := b.tasks.ListTasks(ctx, filter)
	if err != nil {
		return fmt.Errorf("could not list tasks: %w", err)
	}
	title := texts.T("pick_task")
	if len(tasks) == 0 {
		title = empty
	}
	b.acknowledge(cb, "", false)
	return b.editMessage(cb, title, taskListKeyboard(tasks, "view_task", BuildCallback("view_group", itoa(groupID))))
}

// handleViewTask renders the task card. adminView gates on the admin role and
// shows the management keyboard; otherwise the actor must be assigned and
// gets the status keyboard.
func (b *Bot) handleViewTask(ctx context.Context, cb CallbackEvent, parsed Callback, adminView bool) error {
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

	assignees, err := b.tasks.ListTaskUsers(ctx, task.ID)
	if err != nil {
		return fmt.Errorf("could not list assignees: %w", err)
	}

	if adminView {
		_, ok, err := b.requireAdmin(ctx, cb)
		if err != nil || !ok {
			return err
		}
		b.acknowledge(cb, "", false)
		return b.editMessage(cb, renderTaskDetail(task, assignees), adminTaskKeyboard(task.ID))
	}

	user, err := b.resolveUser(ctx, cb.From())
	if err != nil {
		b.acknowledge(cb, texts.T("not_registered"), true)
		return nil
	}
	assigned, err := b.tasks.IsAssigned(ctx, task.ID, user.ID)
	if err != nil {
		return fmt.Errorf("could not check assignment: %w", err)
	}
	if !assigned {
		b.acknowledge(cb, texts.T("no_permission"), true)
		return nil
	}
	b.acknowledge(cb, "", false)
	return b.editMessage(cb, renderTaskDetail(task, assignees), assigneeTaskKeyboard(task))
}

// showMyTasks lists tasks assigned to the actor. Sends a new message when
// triggered by command or keyboard, edits in place when used as a back
// target.
func (b *Bot) showMyTasks(ctx context.Context, ev Event) error {
	user, err := b.resolveUser(ctx, ev.From())
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			b.acknowledge(ev, texts.T("not_registered"), true)
			if _, ok := ev.(MessageEvent); ok {
				response, replyErr := b.reply(ev, texts.T("not_registered"), nil)
				if replyErr == nil {
					b.deleteLater(ev.Chat().ID, response.MessageID, ev.MessageID())
				}
				return replyErr
			}
			return nil
		}
		return fmt.Errorf("could not resolve user: %w", err)
	}

	tasks, err := b.tasks.ListTasksForUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("could not list tasks: %w", err)
	}

	title := texts.T("my_tasks_title")
	if len(tasks) == 0 {
		title = texts.T("my_tasks_empty")
	}
	kb := myTasksKeyboard(tasks)

	b.acknowledge(ev, "", false)
	if cb, ok := ev.(CallbackEvent); ok {
		return b.editMessage(cb, title, kb)
	}
	_, err = b.reply(ev, title, kb)
	return err
}

func myTasksKeyboard(tasks []model.Task) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range tasks {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t.Title, BuildCallback("show_task", itoa(t.ID))),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(texts.T("btn_finish"), BuildCallback("end_short_edit")),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// handleChangeStatus lets an assignee move their task through the workflow
// and tells the owning admin about it.
func (b *Bot) handleChangeStatus(ctx context.Context, cb CallbackEvent, parsed Callback) error {
	taskID, err := parsed.IntArg(0)
	if err != nil {
		return err
	}
	statusArg, err := parsed.StrArg(1)
	if err != nil {
		return err
	}
	status := model.TaskStatus(statusArg)
	if !status.Valid() {
		b.acknowledge(cb, texts.T("status_invalid"), true)
		return nil
	}

	user, err := b.resolveUser(ctx, cb.From())
	if err != nil {
		b.acknowledge(cb, texts.T("not_registered"), true)
		return nil
	}
	assigned, err := b.tasks.IsAssigned(ctx, taskID, user.ID)
	if err != nil {
		return fmt.Errorf("could not check assignment: %w", err)
	}
	if !assigned {
		b.acknowledge(cb, texts.T("no_permission"), true)
		return nil
	}

	if err := b.tasks.UpdateStatus(ctx, taskID, status); err != nil {
		if errors.Is(err, model.ErrTaskNotFound) {
			b.acknowledge(cb, texts.T("task_not_found"), true)
			return nil
		}
		return fmt.Errorf("could not update status: %w", err)
	}

	task, err := b.tasks.FetchTaskByID(ctx, taskID)
	if err != nil {
		return fmt.Errorf("could not fetch task: %w", err)
	}
	assignees, err := b.tasks.ListTaskUsers(ctx, taskID)
	if err != nil {
		return fmt.Errorf("could not list assignees: %w", err)
	}

	b.acknowledge(cb, texts.T("status_updated", status.String()), false)
	b.notifyAdmin(ctx, task, texts.T("notify_status", task.Title, status.String(), "@"+user.Username), user.ID)
	return b.editMessage(cb, renderTaskDetail(task, assignees), assigneeTaskKeyboard(task))
}

// handleCloseMessage removes the interactive message the button lives on.
func (b *Bot) handleCloseMessage(cb CallbackEvent) error {
	b.acknowledge(cb, "", false)
	b.deleteNow(cb.Chat().ID, cb.MessageID())
	return nil
}
