package app

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/saeidmoini/TeleDo/internal/model"
	"github.com/saeidmoini/TeleDo/internal/texts"
)

// requireAdmin decides whether the event's actor may run admin operations.
// In group chats the live chat-platform role is authoritative; in private
// chats the stored admin flag is. A false return means the handler must stop:
// the denial notice has already been sent and scheduled for cleanup.
//
// The lookup is not read-only: group actors unknown to the store are created
// as regular users, and the stored username is refreshed with the latest
// observed one.
func (b *Bot) requireAdmin(ctx context.Context, ev Event) (*model.User, bool, error) {
	chat := ev.Chat()
	from := ev.From()

	if chat.IsGroup() || chat.IsSuperGroup() {
		member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
				ChatID: chat.ID,
				UserID: from.ID,
			},
		})
		if err != nil {
			return nil, false, fmt.Errorf("could not get chat member: %w", err)
		}
		if member.Status != "administrator" && member.Status != "creator" {
			b.sendDenial(ev)
			return nil, false, nil
		}
		user, err := b.users.GetOrCreateUser(ctx, from.UserName, from.ID, false)
		if err != nil {
			return nil, false, fmt.Errorf("could not resolve user: %w", err)
		}
		return user, true, nil
	}

	user, err := b.users.FetchUserByTgID(ctx, from.ID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			b.sendDenial(ev)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("could not fetch user: %w", err)
	}
	if !user.IsAdmin {
		b.sendDenial(ev)
		return nil, false, nil
	}
	if from.UserName != "" && from.UserName != user.Username {
		user.Username = from.UserName
		if err := b.users.UpdateUser(ctx, user); err != nil {
			return nil, false, fmt.Errorf("could not refresh username: %w", err)
		}
	}
	return user, true, nil
}

func (b *Bot) sendDenial(ev Event) {
	if _, ok := ev.(CallbackEvent); ok {
		b.acknowledge(ev, texts.T("no_permission"), true)
		return
	}
	response, err := b.reply(ev, texts.T("no_permission"), nil)
	if err != nil {
		return
	}
	b.deleteLater(ev.Chat().ID, response.MessageID, ev.MessageID())
}

// resolveUser fetches the actor's record, syncing the stored username with
// the latest observed one.
func (b *Bot) resolveUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	user, err := b.users.FetchUserByTgID(ctx, from.ID)
	if err != nil {
		return nil, err
	}
	if from.UserName != "" && from.UserName != user.Username {
		user.Username = from.UserName
		if err := b.users.UpdateUser(ctx, user); err != nil {
			return nil, err
		}
	}
	return user, nil
}
