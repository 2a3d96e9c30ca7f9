package app

import (
	"context"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/saeidmoini/TeleDo/internal/model"
	"github.com/saeidmoini/TeleDo/internal/texts"
)

type BotConfig struct {
	UpdateTimeout int
	// DevMode auto-registers anyone running /start as an admin.
	DevMode bool
	// CleanupDelay is how long transient notices stay before deletion.
	CleanupDelay time.Duration
	// ConversationTTL bounds how long a stalled flow keeps its state.
	ConversationTTL time.Duration
}

type Bot struct {
	api *tgbotapi.BotAPI
	cfg BotConfig

	users       model.UserRepository
	groups      model.GroupRepository
	tasks       model.TaskRepository
	attachments model.AttachmentRepository

	conv  *ConversationStore
	media *MediaCache
}

func NewBot(
	cfg BotConfig,
	token string,
	logger tgbotapi.BotLogger,
	users model.UserRepository,
	groups model.GroupRepository,
	tasks model.TaskRepository,
	attachments model.AttachmentRepository,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	tgbotapi.SetLogger(logger)

	if cfg.CleanupDelay == 0 {
		cfg.CleanupDelay = 3 * time.Second
	}
	if cfg.ConversationTTL == 0 {
		cfg.ConversationTTL = 30 * time.Minute
	}

	return &Bot{
		api:         api,
		cfg:         cfg,
		users:       users,
		groups:      groups,
		tasks:       tasks,
		attachments: attachments,
		conv:        NewConversationStore(cfg.ConversationTTL),
		media:       NewMediaCache(128, 15*time.Minute),
	}, nil
}

func (b *Bot) SetDebug(debug bool) {
	b.api.Debug = debug
}

func (b *Bot) GetSelf() tgbotapi.User {
	return b.api.Self
}

// Start consumes updates until ctx is done. Updates are handled one at a
// time; only transient-message cleanup runs on timers.
func (b *Bot) Start(ctx context.Context) {
	b.conv.StartSweeper(ctx, time.Minute)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case update := <-updates:
			if update.CallbackQuery != nil {
				b.dispatchCallback(ctx, update.CallbackQuery)
				continue
			}
			if update.Message == nil { // ignore any non-Message updates
				continue
			}
			b.dispatchMessage(ctx, update.Message)

		case <-ctx.Done():
			lgr.Printf("DEBUG bot stopped: %v", ctx.Err())
			return
		}
	}
}

func (b *Bot) dispatchMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.From.IsBot {
		return
	}

	// An active conversation intercepts free text before command matching.
	if conv, ok := b.conv.Get(msg.Chat.ID, msg.From.ID); ok && conv.State != StateNone {
		if err := b.handleConversationMessage(ctx, msg, conv); err != nil {
			b.reportHandlerError(msg, err)
		}
		return
	} else if ok && conv.CollectingAttachments && hasMedia(msg) {
		if err := b.captureAttachment(ctx, msg, conv); err != nil {
			b.reportHandlerError(msg, err)
		}
		return
	}

	text := strings.TrimSpace(msg.Text)

	if !msg.IsCommand() {
		// "@botname /cmd" is accepted as a command too.
		if command, ok := parseMentionedCommand(text, b.api.Self.UserName); ok {
			msg.Text = "/" + command
			msg.Entities = []tgbotapi.MessageEntity{{
				Type:   "bot_command",
				Offset: 0,
				Length: len(strings.SplitN(command, " ", 2)[0]) + 1,
			}}
		}
	}

	var err error
	switch {
	case msg.IsCommand():
		err = b.handleCommand(ctx, msg)
	case text == texts.T("btn_my_tasks"):
		err = b.showMyTasks(ctx, MessageEvent{Message: msg})
	case text == texts.T("btn_manage_tasks"):
		err = b.showManageTasks(ctx, MessageEvent{Message: msg})
	case text == texts.T("btn_manage_users"):
		err = b.showManageUsers(ctx, MessageEvent{Message: msg}, 0)
	case text == texts.T("btn_add_task"):
		err = b.cmdAdd(ctx, msg)
	default:
		// Free text outside any flow is ignored.
	}
	if err != nil {
		b.reportHandlerError(msg, err)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch strings.ToLower(msg.Command()) {
	case "start":
		return b.cmdStart(ctx, msg)
	case "add":
		return b.cmdAdd(ctx, msg)
	case "tasks":
		return b.showManageTasks(ctx, MessageEvent{Message: msg})
	case "my_tasks":
		return b.showMyTasks(ctx, MessageEvent{Message: msg})
	case "user":
		return b.cmdUser(ctx, msg)
	case "name", "title", "des", "desc", "time", "attach":
		return b.cmdShortEdit(ctx, msg)
	case "teledo", "menu", "commands":
		return b.showMainMenu(ctx, MessageEvent{Message: msg})
	case "help":
		_, err := b.reply(MessageEvent{Message: msg}, texts.T("help"), nil)
		return err
	default:
		response, err := b.reply(MessageEvent{Message: msg}, texts.T("unknown_command"), nil)
		if err == nil {
			b.deleteLater(msg.Chat.ID, response.MessageID, msg.MessageID)
		}
		return err
	}
}

func (b *Bot) handleConversationMessage(ctx context.Context, msg *tgbotapi.Message, conv Conversation) error {
	if strings.TrimSpace(msg.Text) == texts.T("btn_cancel") {
		return b.cancelConversation(ctx, msg, conv)
	}

	switch conv.State {
	case StateWaitingTitle:
		return b.processTaskTitle(ctx, msg, conv)
	case StateConfirmingTask:
		// Waiting on a button press; free text just refreshes the prompt.
		response, err := b.reply(MessageEvent{Message: msg}, texts.T("add_confirm_prompt", conv.Title), confirmTaskKeyboard())
		if err == nil {
			conv.MessageIDs = append(conv.MessageIDs, msg.MessageID, response.MessageID)
			b.conv.Put(msg.Chat.ID, msg.From.ID, conv)
		}
		return err
	case StateWaitingName, StateWaitingDesc, StateWaitingEnd:
		return b.processEditField(ctx, msg, conv)
	case StateWaitingTopicName:
		return b.processTopicName(ctx, msg, conv)
	case StateWaitingUsername:
		return b.processNewUsername(ctx, msg, conv)
	default:
		b.conv.Clear(msg.Chat.ID, msg.From.ID)
		return nil
	}
}

func (b *Bot) dispatchCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	if query.Message == nil {
		return
	}
	cb := CallbackEvent{Query: query}

	parsed, err := ParseCallback(query.Data)
	if err != nil {
		lgr.Printf("WARN malformed callback payload %q from user %d: %v", query.Data, query.From.ID, err)
		b.acknowledge(cb, texts.T("generic_error"), true)
		return
	}

	switch parsed.Action {
	case "teledo":
		err = b.showMainMenu(ctx, cb)
	case "back":
		err = b.showManageTasksEdit(ctx, cb)
	case "back_show":
		err = b.showMyTasks(ctx, cb)
	case "view_group":
		err = b.handleViewGroup(ctx, cb, parsed)
	case "view_topic":
		err = b.handleViewTopic(ctx, cb, parsed)
	case "view_task":
		err = b.handleViewTask(ctx, cb, parsed, true)
	case "show_task":
		err = b.handleViewTask(ctx, cb, parsed, false)
	case "finish_task_manage", "end_short_edit":
		err = b.handleCloseMessage(cb)
	case "confirm_task":
		err = b.handleConfirmTask(ctx, cb, parsed)
	case "delete_task":
		err = b.handleDeleteTask(ctx, cb, parsed)
	case "edit_name", "edit_desc", "edit_end":
		err = b.handleEditField(ctx, cb, parsed)
	case "add_user":
		err = b.handleAddUser(ctx, cb, parsed)
	case "select_user":
		err = b.handleSelectUser(ctx, cb, parsed)
	case "view_task_users":
		err = b.handleViewTaskUsers(ctx, cb, parsed)
	case "del_users":
		err = b.handleRemoveUserMenu(ctx, cb, parsed)
	case "delete_user_final":
		err = b.handleRemoveAssignment(ctx, cb, parsed)
	case "change_status":
		err = b.handleChangeStatus(ctx, cb, parsed)
	case "add_attachment":
		err = b.handleAddAttachmentMode(ctx, cb, parsed)
	case "attach_done":
		err = b.handleAttachDone(ctx, cb, parsed)
	case "get_attachments":
		err = b.handleGetAttachments(ctx, cb, parsed)
	case "short_edit":
		err = b.handleShortEditConfirm(ctx, cb, parsed)
	case "toggle_user":
		err = b.handleToggleUser(ctx, cb, parsed)
	case "del_user":
		err = b.handleDeleteUser(ctx, cb, parsed)
	case "refresh_operation":
		err = b.handleRefreshUsers(ctx, cb, parsed)
	case "finish_operation":
		err = b.handleFinishUsers(ctx, cb, parsed)
	default:
		b.acknowledge(cb, "", false)
		return
	}

	if err != nil {
		lgr.Printf("ERROR handling callback %q: %v", parsed.Action, err)
		b.acknowledge(cb, texts.T("generic_error"), true)
	}
}

// reportHandlerError is the message-side error boundary: log with context and
// make sure the user sees an acknowledgment.
func (b *Bot) reportHandlerError(msg *tgbotapi.Message, err error) {
	lgr.Printf("ERROR handling message in chat %d: %v", msg.Chat.ID, err)
	if _, sendErr := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, texts.T("generic_error"))); sendErr != nil {
		lgr.Printf("ERROR could not send error notice: %v", sendErr)
	}
}

func parseMentionedCommand(text string, botUsername string) (string, bool) {
	prefix := "@" + botUsername + " /"
	if strings.HasPrefix(text, prefix) {
		return strings.TrimPrefix(text, prefix), true
	}
	return "", false
}

func hasMedia(msg *tgbotapi.Message) bool {
	return msg.Document != nil || len(msg.Photo) > 0 || msg.Video != nil ||
		msg.Audio != nil || msg.Voice != nil
}
