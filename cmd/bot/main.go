package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/agalitsyn/sqlite"
	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"

	"github.com/saeidmoini/TeleDo/internal/app"
	"github.com/saeidmoini/TeleDo/internal/reminder"
	sqliteStorage "github.com/saeidmoini/TeleDo/internal/storage/sqlite"
	"github.com/saeidmoini/TeleDo/internal/storage/sqlite/migrations"
	"github.com/saeidmoini/TeleDo/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := ParseFlags()
	setupLogger(cfg.Debug)

	color.Cyan("TeleDo %s", version.String())
	if cfg.Debug {
		lgr.Printf("DEBUG running with config")
		fmt.Fprintln(os.Stdout, cfg.String())
	}

	db, err := sqlite.Connect(cfg.DBPath + "?_pragma=foreign_keys(1)")
	if err != nil {
		lgr.Printf("FATAL could not connect to database: %v", err)
	}
	defer db.Close()

	if err := sqlite.MigrateUp(db, migrations.FS); err != nil {
		lgr.Printf("FATAL could not apply migrations: %v", err)
	}

	userStorage := sqliteStorage.NewUserStorage(db)
	groupStorage := sqliteStorage.NewGroupStorage(db)
	taskStorage := sqliteStorage.NewTaskStorage(db)
	attachmentStorage := sqliteStorage.NewAttachmentStorage(db)

	// Bootstrap admin from config; promote-only, an existing record is never
	// demoted on restart.
	if cfg.InitialAdmin.Username != "" || cfg.InitialAdmin.TgUserID != 0 {
		admin, err := userStorage.GetOrCreateUser(ctx, cfg.InitialAdmin.Username, cfg.InitialAdmin.TgUserID, true)
		if err != nil {
			lgr.Printf("FATAL could not bootstrap admin: %v", err)
		}
		lgr.Printf("INFO bootstrap admin %q id=%d", admin.Username, admin.ID)
	}

	bot, err := app.NewBot(
		app.BotConfig{
			UpdateTimeout: cfg.UpdateTimeout,
			DevMode:       cfg.Mode == "dev",
		},
		cfg.Token.Unmask(),
		botDebugLogger{},
		userStorage,
		groupStorage,
		taskStorage,
		attachmentStorage,
	)
	if err != nil {
		lgr.Printf("FATAL could not init bot: %v", err)
	}
	bot.SetDebug(cfg.Debug)
	lgr.Printf("INFO authorized on account %q", bot.GetSelf().UserName)

	scheduler := reminderService(ctx, bot, cfg.ReminderSchedule)
	scheduler.Start(ctx)

	bot.Start(ctx)
}

func reminderService(ctx context.Context, bot *app.Bot, schedule string) *reminder.Service {
	svc := reminder.New()
	if err := svc.Add(ctx, schedule, bot.RemindDeadlines); err != nil {
		lgr.Printf("FATAL could not schedule reminders: %v", err)
	}
	return svc
}

func setupLogger(debug bool) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces, lgr.StackTraceOnError}
	if debug {
		logOpts = append(logOpts, lgr.Debug, lgr.CallerFile, lgr.CallerFunc)
	}
	lgr.Setup(logOpts...)
	lgr.SetupStdLogger(logOpts...)
}

type botDebugLogger struct{}

func (l botDebugLogger) Printf(msg string, args ...interface{}) {
	lgr.Printf("DEBUG %s", fmt.Sprintf(msg, args...))
}

func (l botDebugLogger) Println(v ...interface{}) {
	lgr.Printf("DEBUG %s", fmt.Sprintln(v...))
}
