package app

import (
	"github.com/go-pkgz/lgr"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Event unifies the two inbound shapes a handler can serve: a plain message
// and an inline-button press. Handlers that work for both (permission gate,
// list views) take an Event instead of type-switching on the update.
type Event interface {
	Chat() *tgbotapi.Chat
	From() *tgbotapi.User
	MessageID() int
}

type MessageEvent struct {
	Message *tgbotapi.Message
}

func (e MessageEvent) Chat() *tgbotapi.Chat { return e.Message.Chat }
func (e MessageEvent) From() *tgbotapi.User { return e.Message.From }
func (e MessageEvent) MessageID() int       { return e.Message.MessageID }

type CallbackEvent struct {
	Query *tgbotapi.CallbackQuery
}

func (e CallbackEvent) Chat() *tgbotapi.Chat { return e.Query.Message.Chat }
func (e CallbackEvent) From() *tgbotapi.User { return e.Query.From }
func (e CallbackEvent) MessageID() int       { return e.Query.Message.MessageID }

// reply sends a new message to the event's chat. markup may be nil.
func (b *Bot) reply(ev Event, text string, markup interface{}) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(ev.Chat().ID, text)
	if markup != nil {
		msg.ReplyMarkup = markup
	}
	return b.api.Send(msg)
}

// editMessage rewrites the callback's own message in place, keeping list
// navigation inside a single message instead of stacking new ones.
func (b *Bot) editMessage(cb CallbackEvent, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(cb.Chat().ID, cb.MessageID(), text, markup)
	_, err := b.api.Send(edit)
	return err
}

// acknowledge answers a callback query; for message events it is a no-op so
// shared handlers can call it unconditionally.
func (b *Bot) acknowledge(ev Event, text string, alert bool) {
	cb, ok := ev.(CallbackEvent)
	if !ok {
		return
	}
	var callback tgbotapi.CallbackConfig
	if alert {
		callback = tgbotapi.NewCallbackWithAlert(cb.Query.ID, text)
	} else {
		callback = tgbotapi.NewCallback(cb.Query.ID, text)
	}
	if _, err := b.api.Request(callback); err != nil {
		lgr.Printf("WARN could not answer callback query: %v", err)
	}
}
