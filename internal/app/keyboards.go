package app

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/saeidmoini/TeleDo/internal/texts"
)

// mainMenuKeyboard builds the persistent reply keyboard. Admins see the
// management entries, regular users only their own tasks.
func mainMenuKeyboard(chatType string, isAdmin bool) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	switch {
	case chatType == "private" && isAdmin:
		rows = append(rows,
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(texts.T("btn_my_tasks"))),
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(texts.T("btn_manage_tasks")),
				tgbotapi.NewKeyboardButton(texts.T("btn_manage_users")),
			),
		)
	case chatType != "private" && isAdmin:
		rows = append(rows,
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(texts.T("btn_manage_tasks"))),
			tgbotapi.NewKeyboardButtonRow(
				tgbotapi.NewKeyboardButton(texts.T("btn_add_task")),
				tgbotapi.NewKeyboardButton(texts.T("btn_manage_users")),
			),
		)
	default:
		rows = append(rows,
			tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(texts.T("btn_my_tasks"))),
		)
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

// cancelKeyboard is shown during conversational input so the user can back
// out at any step.
func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(texts.T("btn_cancel"))),
	)
	kb.ResizeKeyboard = true
	return kb
}

func backKeyboard(data string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(texts.T("btn_back"), data),
		),
	)
}

func confirmTaskKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(texts.T("btn_create"), BuildCallback("confirm_task", "plain")),
			tgbotapi.NewInlineKeyboardButtonData(texts.T("btn_create_detailed"), BuildCallback("confirm_task", "detail")),
		),
	)
}
