package app

import (
	"context"
	"strings"

	"github.com/go-pkgz/lgr"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/saeidmoini/TeleDo/internal/model"
)

// notifyUsers pushes a direct message to each user individually. Delivery is
// best-effort per recipient: one blocked chat must not starve the rest.
func (b *Bot) notifyUsers(users []model.User, text string, exceptUserID int) {
	for _, user := range users {
		if user.ID == exceptUserID || user.TgUserID == 0 {
			continue
		}
		if _, err := b.api.Send(tgbotapi.NewMessage(user.TgUserID, text)); err != nil {
			lgr.Printf("WARN could not notify user %d: %v", user.ID, err)
		}
	}
}

// notifyAssignees tells everyone assigned to the task about an admin-side
// change.
func (b *Bot) notifyAssignees(ctx context.Context, taskID int, text string, exceptUserID int) {
	users, err := b.tasks.ListTaskUsers(ctx, taskID)
	if err != nil {
		lgr.Printf("WARN could not list assignees of task %d: %v", taskID, err)
		return
	}
	b.notifyUsers(users, text, exceptUserID)
}

// notifyAdmin tells the task's owning admin about an assignee-side change.
func (b *Bot) notifyAdmin(ctx context.Context, task *model.Task, text string, exceptUserID int) {
	admin, err := b.users.FetchUserByID(ctx, task.AdminID)
	if err != nil {
		lgr.Printf("WARN could not fetch admin of task %d: %v", task.ID, err)
		return
	}
	b.notifyUsers([]model.User{*admin}, text, exceptUserID)
}

// sendAttachmentTo re-sends an attachment reference into a chat, branching on
// the encoding: literal text payloads go out as messages, photo-looking file
// ids as photos, everything else as documents.
func (b *Bot) sendAttachmentTo(chatID int64, ref string) error {
	if model.IsTextAttachment(ref) {
		_, err := b.api.Send(tgbotapi.NewMessage(chatID, model.TextAttachmentPayload(ref)))
		return err
	}
	// Telegram photo file ids start with this prefix.
	if strings.HasPrefix(ref, "AgAC") {
		_, err := b.api.Send(tgbotapi.NewPhoto(chatID, tgbotapi.FileID(ref)))
		return err
	}
	_, err := b.api.Send(tgbotapi.NewDocument(chatID, tgbotapi.FileID(ref)))
	return err
}
