package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-pkgz/lgr"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/saeidmoini/TeleDo/internal/texts"
)

// topicThreadID recovers the forum thread id of a message. Messages posted
// inside a topic arrive as replies to the topic's root service message, which
// carries no text or media; its message id doubles as the thread id. Messages
// in the general chat return 0.
func topicThreadID(msg *tgbotapi.Message) int {
	if !msg.Chat.IsSuperGroup() || msg.ReplyToMessage == nil {
		return 0
	}
	root := msg.ReplyToMessage
	if root.Text == "" && !hasMedia(root) {
		return root.MessageID
	}
	return 0
}

// topicLink builds the t.me deep link for a thread. Supergroup chat ids carry
// a -100 prefix on the wire that the link format drops.
func topicLink(chatID int64, threadID int) string {
	internal := strings.TrimPrefix(fmt.Sprintf("%d", chatID), "-100")
	return fmt.Sprintf("https://t.me/c/%s/%d", internal, threadID)
}

// cmdStart greets private users and registers groups and topics. Group
// registration is admin-only; a topic seen for the first time opens a naming
// flow so lists can show something better than a numeric thread id.
func (b *Bot) cmdStart(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.Chat.IsPrivate() {
		return b.startPrivate(ctx, msg)
	}
	return b.startGroup(ctx, msg)
}

func (b *Bot) startPrivate(ctx context.Context, msg *tgbotapi.Message) error {
	if b.cfg.DevMode {
		// Dev installs have no admin bootstrap; first contact becomes admin.
		if _, err := b.users.GetOrCreateUser(ctx, msg.From.UserName, msg.From.ID, true); err != nil {
			return fmt.Errorf("could not register dev user: %w", err)
		}
		lgr.Printf("WARN dev mode: user %q registered as admin", msg.From.UserName)
	}

	user, err := b.resolveUser(ctx, msg.From)
	if err != nil {
		response, replyErr := b.reply(MessageEvent{Message: msg}, texts.T("not_registered"), nil)
		if replyErr == nil {
			b.deleteLater(msg.Chat.ID, response.MessageID)
		}
		return replyErr
	}

	name := user.Username
	if name == "" {
		name = msg.From.FirstName
	}
	_, err = b.reply(MessageEvent{Message: msg}, texts.T("welcome_private", name), mainMenuKeyboard("private", user.IsAdmin))
	return err
}

func (b *Bot) startGroup(ctx context.Context, msg *tgbotapi.Message) error {
	_, ok, err := b.requireAdmin(ctx, MessageEvent{Message: msg})
	if err != nil || !ok {
		return err
	}

	group, err := b.groups.GetOrCreateGroup(ctx, msg.Chat.ID, msg.Chat.Title)
	if err != nil {
		return fmt.Errorf("could not register group: %w", err)
	}

	threadID := topicThreadID(msg)
	if threadID == 0 {
		response, err := b.reply(MessageEvent{Message: msg}, texts.T("group_registered", group.Title), nil)
		if err == nil {
			b.deleteLater(msg.Chat.ID, response.MessageID, msg.MessageID)
		}
		return err
	}

	if topic, err := b.groups.FetchTopicByThreadID(ctx, threadID); err == nil {
		response, err := b.reply(MessageEvent{Message: msg}, texts.T("topic_registered", topic.Title, topic.Link), nil)
		if err == nil {
			b.deleteLater(msg.Chat.ID, response.MessageID, msg.MessageID)
		}
		return err
	}

	link := topicLink(msg.Chat.ID, threadID)
	conv := b.conv.Begin(msg.Chat.ID, msg.From.ID, StateWaitingTopicName)
	conv.GroupID = group.ID
	conv.TopicThreadID = threadID
	conv.TopicLink = link

	response, err := b.reply(MessageEvent{Message: msg}, texts.T("topic_name_prompt", link), nil)
	if err != nil {
		return err
	}
	conv.MessageIDs = append(conv.MessageIDs, msg.MessageID, response.MessageID)
	b.conv.Put(msg.Chat.ID, msg.From.ID, conv)
	return nil
}

func (b *Bot) processTopicName(ctx context.Context, msg *tgbotapi.Message, conv Conversation) error {
	title := strings.TrimSpace(msg.Text)
	if title == "" {
		response, err := b.reply(MessageEvent{Message: msg}, texts.T("add_invalid_title"), nil)
		if err == nil {
			conv.MessageIDs = append(conv.MessageIDs, msg.MessageID, response.MessageID)
			b.conv.Put(msg.Chat.ID, msg.From.ID, conv)
		}
		return err
	}

	topic, err := b.groups.GetOrCreateTopic(ctx, conv.TopicThreadID, conv.GroupID, title, conv.TopicLink)
	b.conv.Clear(msg.Chat.ID, msg.From.ID)
	b.deleteNow(msg.Chat.ID, append(conv.MessageIDs, msg.MessageID)...)
	if err != nil {
		response, replyErr := b.reply(MessageEvent{Message: msg}, texts.T("topic_save_error"), nil)
		if replyErr == nil {
			b.deleteLater(msg.Chat.ID, response.MessageID)
		}
		return fmt.Errorf("could not save topic: %w", err)
	}

	response, err := b.reply(MessageEvent{Message: msg}, texts.T("topic_registered", topic.Title, topic.Link), nil)
	if err == nil {
		b.deleteLater(msg.Chat.ID, response.MessageID)
	}
	return err
}

// showMainMenu refreshes the persistent reply keyboard for the actor's role.
func (b *Bot) showMainMenu(ctx context.Context, ev Event) error {
	isAdmin := b.actorIsAdmin(ctx, ev)
	chatType := "private"
	if !ev.Chat().IsPrivate() {
		chatType = "group"
	}
	b.acknowledge(ev, "", false)
	_, err := b.reply(ev, texts.T("menu_hint"), mainMenuKeyboard(chatType, isAdmin))
	return err
}

// actorIsAdmin answers the role question without sending a denial. Used for
// choosing which menu to render, not for gating operations.
func (b *Bot) actorIsAdmin(ctx context.Context, ev Event) bool {
	chat := ev.Chat()
	if chat.IsGroup() || chat.IsSuperGroup() {
		member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
			ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
				ChatID: chat.ID,
				UserID: ev.From().ID,
			},
		})
		if err != nil {
			lgr.Printf("WARN could not get chat member: %v", err)
			return false
		}
		return member.Status == "administrator" || member.Status == "creator"
	}
	user, err := b.users.FetchUserByTgID(ctx, ev.From().ID)
	return err == nil && user.IsAdmin
}
