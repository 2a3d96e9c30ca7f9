package app

import (
	"time"

	"github.com/go-pkgz/lgr"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// deleteLater schedules best-effort deletion of transient messages after the
// configured delay. Failures (message already gone, no rights) are logged and
// swallowed: cleanup never interrupts a flow.
func (b *Bot) deleteLater(chatID int64, messageIDs ...int) {
	ids := append([]int(nil), messageIDs...)
	time.AfterFunc(b.cfg.CleanupDelay, func() {
		b.deleteNow(chatID, ids...)
	})
}

func (b *Bot) deleteNow(chatID int64, messageIDs ...int) {
	errs := 0
	for _, id := range messageIDs {
		if id == 0 {
			continue
		}
		if _, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, id)); err != nil {
			errs++
		}
	}
	if errs != 0 {
		lgr.Printf("WARN could not delete %d message(s) in chat %d", errs, chatID)
	}
}
