package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/saeidmoini/TeleDo/internal/model"
	"github.com/saeidmoini/TeleDo/internal/texts"
)

var usernameRe = regexp.MustCompile(`^@?(\w+)$`)

// showManageUsers renders the user administration panel: one row per user
// with a role-toggle button and a delete button. The requesting admin is
// excluded from the list so they cannot demote or delete themselves.
func (b *Bot) showManageUsers(ctx context.Context, ev Event, _ int) error {
	_, ok, err := b.requireAdmin(ctx, ev)
	if err != nil || !ok {
		return err
	}

	users, err := b.users.ListUsers(ctx, model.UserFilter{ExcludeTgUserID: ev.From().ID})
	if err != nil {
		return fmt.Errorf("could not list users: %w", err)
	}

	title := texts.T("manage_users_title", len(users))
	if len(users) == 0 {
		title = texts.T("no_users")
	}
	kb := manageUsersKeyboard(users)

	if cb, isCallback := ev.(CallbackEvent); isCallback {
		return b.editMessage(cb, title, kb)
	}
	_, err = b.reply(ev, title, kb)
	return err
}

func manageUsersKeyboard(users []model.User) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, u := range users {
		label := "@" + u.Username
		if u.IsAdmin {
			label = "👑 " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, BuildCallback("toggle_user", itoa(u.ID))),
			tgbotapi.NewInlineKeyboardButtonData("🗑", BuildCallback("del_user", itoa(u.ID))),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(texts.T("btn_add_user"), BuildCallback("add_user")),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(texts.T("btn_refresh"), BuildCallback("refresh_operation")),
			tgbotapi.NewInlineKeyboardButtonData(texts.T("btn_finish"), BuildCallback("finish_operation")),
		),
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// handleToggleUser flips the admin flag of the targeted user.
func (b *Bot) handleToggleUser(ctx context.Context, cb CallbackEvent, parsed Callback) error {
	_, ok, err := b.requireAdmin(ctx, cb)
	if err != nil || !ok {
		return err
	}
	userID, err := parsed.IntArg(0)
	if err != nil {
		return err
	}

	if err := b.users.ToggleAdmin(ctx, userID); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			b.acknowledge(cb, texts.T("user_not_found"), true)
			return b.showManageUsers(ctx, cb, 0)
		}
		b.acknowledge(cb, texts.T("user_toggle_error"), true)
		return fmt.Errorf("could not toggle admin: %w", err)
	}

	b.acknowledge(cb, texts.T("user_toggle_done"), false)
	return b.showManageUsers(ctx, cb, 0)
}

func (b *Bot) handleDeleteUser(ctx context.Context, cb CallbackEvent, parsed Callback) error {
	_, ok, err := b.requireAdmin(ctx, cb)
	if err != nil || !ok {
		return err
	}
	userID, err := parsed.IntArg(0)
	if err != nil {
		return err
	}

	if err := b.users.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			b.acknowledge(cb, texts.T("user_not_found"), true)
			return b.showManageUsers(ctx, cb, 0)
		}
		b.acknowledge(cb, texts.T("user_delete_error"), true)
		return fmt.Errorf("could not delete user: %w", err)
	}

	b.acknowledge(cb, texts.T("user_deleted"), false)
	return b.showManageUsers(ctx, cb, 0)
}

func (b *Bot) handleRefreshUsers(ctx context.Context, cb CallbackEvent, _ Callback) error {
	b.acknowledge(cb, texts.T("refresh_done"), false)
	return b.showManageUsers(ctx, cb, 0)
}

func (b *Bot) handleFinishUsers(_ context.Context, cb CallbackEvent, _ Callback) error {
	b.acknowledge(cb, texts.T("operation_done"), false)
	b.deleteNow(cb.Chat().ID, cb.MessageID())
	return nil
}

// handleAddUser serves two buttons. Without arguments it starts the
// register-by-username flow from the user panel; with a task id it opens the
// assignment picker on the task card.
func (b *Bot) handleAddUser(ctx context.Context, cb CallbackEvent, parsed Callback) error {
	_, ok, err := b.requireAdmin(ctx, cb)
	if err != nil || !ok {
		return err
	}

	if len(parsed.Args) == 0 {
		conv := b.conv.Begin(cb.Chat().ID, cb.From().ID, StateWaitingUsername)
		conv.ManageMessageID = cb.MessageID()
		response, err := b.reply(cb, texts.T("username_prompt"), cancelKeyboard())
		if err != nil {
			return err
		}
		conv.MessageIDs = append(conv.MessageIDs, response.MessageID)
		b.conv.Put(cb.Chat().ID, cb.From().ID, conv)
		b.acknowledge(cb, "", false)
		return nil
	}

	taskID, err := parsed.IntArg(0)
	if err != nil {
		return err
	}
	candidates, err := b.users.ListUsers(ctx, model.UserFilter{NotAssignedToTask: taskID})
	if err != nil {
		return fmt.Errorf("could not list users: %w", err)
	}
	if len(candidates) == 0 {
		b.acknowledge(cb, texts.T("no_users"), true)
		return nil
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, u := range candidates {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("@"+u.Username, BuildCallback("select_user", itoa(u.ID), itoa(taskID))),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(texts.T("btn_back"), BuildCallback("view_task", itoa(taskID))),
	))

	b.acknowledge(cb, "", false)
	return b.editMessage(cb, texts.T("pick_task"), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

// processNewUsername registers a user record by username alone. The Telegram
// id stays unknown until the person contacts the bot themselves.
func (b *Bot) processNewUsername(ctx context.Context, msg *tgbotapi.Message, conv Conversation) error {
	m := usernameRe.FindStringSubmatch(strings.TrimSpace(msg.Text))
	if m == nil {
		response, err := b.reply(MessageEvent{Message: msg}, texts.T("username_invalid"), nil)
		if err == nil {
			conv.MessageIDs = append(conv.MessageIDs, msg.MessageID, response.MessageID)
			b.conv.Put(msg.Chat.ID, msg.From.ID, conv)
		}
		return err
	}
	username := m[1]

	if _, err := b.users.FetchUserByUsername(ctx, username); err == nil {
		b.conv.Clear(msg.Chat.ID, msg.From.ID)
		b.deleteNow(msg.Chat.ID, append(conv.MessageIDs, msg.MessageID)...)
		_, replyErr := b.reply(MessageEvent{Message: msg}, texts.T("user_exists"), mainMenuKeyboard("private", true))
		return replyErr
	} else if !errors.Is(err, model.ErrUserNotFound) {
		return fmt.Errorf("could not check username: %w", err)
	}

	if _, err := b.users.GetOrCreateUser(ctx, username, 0, false); err != nil {
		b.conv.Clear(msg.Chat.ID, msg.From.ID)
		_, replyErr := b.reply(MessageEvent{Message: msg}, texts.T("user_add_error"), mainMenuKeyboard("private", true))
		if replyErr != nil {
			return replyErr
		}
		return fmt.Errorf("could not create user: %w", err)
	}

	b.conv.Clear(msg.Chat.ID, msg.From.ID)
	b.deleteNow(msg.Chat.ID, append(conv.MessageIDs, msg.MessageID)...)
	if _, err := b.reply(MessageEvent{Message: msg}, texts.T("user_added"), mainMenuKeyboard("private", true)); err != nil {
		return err
	}
	return b.showManageUsers(ctx, MessageEvent{Message: msg}, 0)
}

// handleSelectUser assigns the picked user and notifies them privately.
func (b *Bot) handleSelectUser(ctx context.Context, cb CallbackEvent, parsed Callback) error {
	_, ok, err := b.requireAdmin(ctx, cb)
	if err != nil || !ok {
		return err
	}
	userID, err := parsed.IntArg(0)
	if err != nil {
		return err
	}
	taskID, err := parsed.IntArg(1)
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

	if err := b.tasks.AssignUser(ctx, userID, taskID); err != nil {
		b.acknowledge(cb, texts.T("user_assign_error"), true)
		return fmt.Errorf("could not assign user: %w", err)
	}

	if user, err := b.users.FetchUserByID(ctx, userID); err == nil {
		b.notifyUsers([]model.User{*user}, texts.T("notify_assigned", task.Title), 0)
	}

	assignees, err := b.tasks.ListTaskUsers(ctx, taskID)
	if err != nil {
		return fmt.Errorf("could not list assignees: %w", err)
	}
	b.acknowledge(cb, texts.T("user_assigned"), false)
	return b.editMessage(cb, renderTaskDetail(task, assignees), adminTaskKeyboard(taskID))
}

func (b *Bot) handleViewTaskUsers(ctx context.Context, cb CallbackEvent, parsed Callback) error {
	_, ok, err := b.requireAdmin(ctx, cb)
	if err != nil || !ok {
		return err
	}
	taskID, err := parsed.IntArg(0)
	if err != nil {
		return err
	}

	assignees, err := b.tasks.ListTaskUsers(ctx, taskID)
	if err != nil {
		return fmt.Errorf("could not list assignees: %w", err)
	}

	var sb strings.Builder
	if len(assignees) == 0 {
		sb.WriteString(texts.T("no_users"))
	} else {
		sb.WriteString("👥\n")
		for _, u := range assignees {
			sb.WriteString("• @" + u.Username + "\n")
		}
	}

	b.acknowledge(cb, "", false)
	return b.editMessage(cb, sb.String(), backKeyboard(BuildCallback("view_task", itoa(taskID))))
}

// handleRemoveUserMenu lists current assignees as unassign buttons.
func (b *Bot) handleRemoveUserMenu(ctx context.Context, cb CallbackEvent, parsed Callback) error {
	_, ok, err := b.requireAdmin(ctx, cb)
	if err != nil || !ok {
		return err
	}
	taskID, err := parsed.IntArg(0)
	if err != nil {
		return err
	}

	assignees, err := b.tasks.ListTaskUsers(ctx, taskID)
	if err != nil {
		return fmt.Errorf("could not list assignees: %w", err)
	}
	if len(assignees) == 0 {
		b.acknowledge(cb, texts.T("no_users"), true)
		return nil
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, u := range assignees {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➖ @"+u.Username, BuildCallback("delete_user_final", itoa(taskID), itoa(u.ID))),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(texts.T("btn_back"), BuildCallback("view_task", itoa(taskID))),
	))

	b.acknowledge(cb, "", false)
	return b.editMessage(cb, texts.T("pick_task"), tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (b *Bot) handleRemoveAssignment(ctx context.Context, cb CallbackEvent, parsed Callback) error {
	_, ok, err := b.requireAdmin(ctx, cb)
	if err != nil || !ok {
		return err
	}
	taskID, err := parsed.IntArg(0)
	if err != nil {
		return err
	}
	userID, err := parsed.IntArg(1)
	if err != nil {
		return err
	}

	if err := b.tasks.RemoveAssignment(ctx, taskID, userID); err != nil {
		if errors.Is(err, model.ErrAssignmentNotFound) {
			b.acknowledge(cb, texts.T("assignment_not_found"), true)
			return nil
		}
		return fmt.Errorf("could not remove assignment: %w", err)
	}

	task, err := b.tasks.FetchTaskByID(ctx, taskID)
	if errors.Is(err, model.ErrTaskNotFound) {
		b.acknowledge(cb, texts.T("task_not_found"), true)
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not fetch task: %w", err)
	}
	assignees, err := b.tasks.ListTaskUsers(ctx, taskID)
	if err != nil {
		return fmt.Errorf("could not list assignees: %w", err)
	}

	b.acknowledge(cb, texts.T("assignment_removed"), false)
	return b.editMessage(cb, renderTaskDetail(task, assignees), adminTaskKeyboard(taskID))
}
