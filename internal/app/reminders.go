package app

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/saeidmoini/TeleDo/internal/dates"
	"github.com/saeidmoini/TeleDo/internal/texts"
)

// RemindDeadlines pings the assignees of every unfinished task due within the
// next day. Meant to be driven by a scheduler.
func (b *Bot) RemindDeadlines(ctx context.Context) error {
	now := time.Now()
	due, err := b.tasks.ListTasksDueBetween(ctx, now, now.Add(24*time.Hour))
	if err != nil {
		return fmt.Errorf("could not list due tasks: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	for _, task := range due {
		users, err := b.tasks.ListTaskUsers(ctx, task.ID)
		if err != nil {
			lgr.Printf("WARN could not list assignees of task %d: %v", task.ID, err)
			continue
		}
		b.notifyUsers(users, texts.T("notify_deadline", task.Title, dates.FormatJalali(task.EndDate)), 0)
	}
	lgr.Printf("DEBUG sent deadline reminders for %d task(s)", len(due))
	return nil
}
