package app

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/saeidmoini/TeleDo/internal/dates"
	"github.com/saeidmoini/TeleDo/internal/model"
	"github.com/saeidmoini/TeleDo/internal/texts"
)

var statusTitle = cases.Title(language.English)

// renderTaskDetail builds the full task card shown both to admins and
// assignees. It is a pure text builder so the same rendering serves message
// sends and in-place edits.
func renderTaskDetail(task *model.Task, assignees []model.User) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 %s\n\n", task.Title)
	if task.Description != "" {
		fmt.Fprintf(&sb, "📝 %s\n\n", task.Description)
	}
	fmt.Fprintf(&sb, "📊 Status: %s\n", statusTitle.String(task.Status.String()))
	fmt.Fprintf(&sb, "📅 Start: %s\n", dates.FormatJalali(task.StartDate))
	fmt.Fprintf(&sb, "⏰ Deadline: %s\n", dates.FormatJalali(task.EndDate))
	if len(assignees) > 0 {
		names := make([]string, 0, len(assignees))
		for _, u := range assignees {
			names = append(names, "@"+u.Username)
		}
		fmt.Fprintf(&sb, "👥 Assignees: %s\n", strings.Join(names, ", "))
	}
	return sb.String()
}

func adminTaskKeyboard(taskID int) tgbotapi.InlineKeyboardMarkup {
	id := itoa(taskID)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Rename", BuildCallback("edit_name", id)),
			tgbotapi.NewInlineKeyboardButtonData("📝 Description", BuildCallback("edit_desc", id)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ Deadline", BuildCallback("edit_end", id)),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", BuildCallback("delete_task", id)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Assign user", BuildCallback("add_user", id)),
			tgbotapi.NewInlineKeyboardButtonData("➖ Unassign", BuildCallback("del_users", id)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👥 Assignees", BuildCallback("view_task_users", id)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📎 Add attachments", BuildCallback("add_attachment", id)),
			tgbotapi.NewInlineKeyboardButtonData("📥 Get attachments", BuildCallback("get_attachments", id)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(texts.T("btn_back"), BuildCallback("back")),
		),
	)
}

// assigneeTaskKeyboard offers status transitions plus attachment download.
// The current status is omitted from the row since picking it is a no-op.
func assigneeTaskKeyboard(task *model.Task) tgbotapi.InlineKeyboardMarkup {
	id := itoa(task.ID)
	var statusButtons []tgbotapi.InlineKeyboardButton
	for _, st := range model.AllTaskStatuses {
		if st == task.Status {
			continue
		}
		statusButtons = append(statusButtons, tgbotapi.NewInlineKeyboardButtonData(
			statusTitle.String(st.String()),
			BuildCallback("change_status", id, string(st)),
		))
	}
	rows := chunk(statusButtons, 2)
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📥 Get attachments", BuildCallback("get_attachments", id)),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(texts.T("btn_back"), BuildCallback("back_show")),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// chunk splits buttons into rows of at most n per row.
func chunk(buttons []tgbotapi.InlineKeyboardButton, n int) [][]tgbotapi.InlineKeyboardButton {
	var rows [][]tgbotapi.InlineKeyboardButton
	for len(buttons) > n {
		rows = append(rows, buttons[:n])
		buttons = buttons[n:]
	}
	if len(buttons) > 0 {
		rows = append(rows, buttons)
	}
	return rows
}

// groupListKeyboard lists registered groups plus an "Other" bucket for tasks
// outside any group.
func groupListKeyboard(groups []model.Group) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, g := range groups {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(g.Title, BuildCallback("view_group", itoa(g.ID))),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(texts.T("btn_other"), BuildCallback("view_group", "OTHER")),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(texts.T("btn_finish"), BuildCallback("finish_task_manage")),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func topicListKeyboard(groupID int, topics []model.Topic) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range topics {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(t.Title, BuildCallback("view_topic", itoa(t.ID), itoa(groupID))),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(texts.T("btn_other"), BuildCallback("view_topic", "OTHER", itoa(groupID))),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(texts.T("btn_back"), BuildCallback("back")),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// taskListKeyboard renders one button per task. The action distinguishes the
// admin management view from the assignee view.
func taskListKeyboard(tasks []model.Task, action, backData string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, t := range tasks {
		label := t.Title
		if !t.EndDate.IsZero() {
			label = fmt.Sprintf("%s (%s)", t.Title, dates.FormatJalali(t.EndDate))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, BuildCallback(action, itoa(t.ID))),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(texts.T("btn_back"), backData),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
