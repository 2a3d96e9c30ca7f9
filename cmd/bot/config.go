package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/agalitsyn/flagutils"
	"github.com/agalitsyn/secret"

	"github.com/saeidmoini/TeleDo/version"
)

const EnvPrefix = "TELEDO"

type Config struct {
	Debug bool

	Log struct {
		Level string
	}

	Token secret.String

	DBPath string

	UpdateTimeout int
	Mode          string

	InitialAdmin struct {
		TgUserID int64
		Username string
	}

	ReminderSchedule string
}

func (c Config) String() string {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stdout, err)
		os.Exit(0)
	}
	return string(b)
}

func ParseFlags() Config {
	var cfg Config

	printVersion := flag.Bool("version", false, "Show version.")
	logLevel := flag.String("log-level", "info", "Log level (debug | info).")
	token := flag.String("token", "", "Telegram bot token.")
	dbPath := flag.String("db-path", "teledo.db", "Path to the sqlite database file.")
	updateTimeout := flag.Int("update-timeout", 60, "Long-polling timeout in seconds.")
	mode := flag.String("mode", "prod", "Run mode (dev | prod). Dev mode auto-registers admins on /start.")
	adminID := flag.Int64("initial-admin-id", 0, "Telegram user id of the bootstrap admin.")
	adminUsername := flag.String("initial-admin-username", "", "Username of the bootstrap admin.")
	reminderSchedule := flag.String("reminder-schedule", "0 9 * * *", "Cron schedule for deadline reminders.")

	flagutils.Prefix = EnvPrefix
	flagutils.Parse()
	flag.Parse()

	cfg.Log.Level = *logLevel
	if *logLevel == "debug" {
		cfg.Debug = true
	}

	cfg.Token = secret.NewString(*token)
	cfg.DBPath = *dbPath
	cfg.UpdateTimeout = *updateTimeout
	cfg.Mode = *mode
	cfg.InitialAdmin.TgUserID = *adminID
	cfg.InitialAdmin.Username = *adminUsername
	cfg.ReminderSchedule = *reminderSchedule

	if *printVersion {
		fmt.Fprintln(os.Stdout, version.String())
		os.Exit(0)
	}

	return cfg
}
