package telegram

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/dskvich/networker-bot/pkg/domain"
	"github.com/dskvich/networker-bot/pkg/logger"
)

const startCommand = "start"

type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard *domain.Keyboard) (int, error)
	EditMessage(ctx context.Context, chatID int64, messageID int, text string, keyboard *domain.Keyboard) error
	AnswerCallback(ctx context.Context, callbackQueryID string)
	OpenFile(ctx context.Context, fileID string) (io.ReadCloser, error)
}

type Pipeline interface {
	Process(ctx context.Context, sub domain.Submission) domain.Outcome
}

type StateRepository interface {
	Save(userID int64, state domain.State)
	Get(userID int64) (domain.State, bool)
	Clear(userID int64)
}

type HandlerConfig struct {
	EventName string
	Organizer string
}

type handler struct {
	cfg       HandlerConfig
	messenger Messenger
	pipeline  Pipeline
	states    StateRepository
	locks     *userLocks
	now       func() time.Time
}

func NewHandler(
	cfg HandlerConfig,
	messenger Messenger,
	pipeline Pipeline,
	states StateRepository,
) *handler {
	return &handler{
		cfg:       cfg,
		messenger: messenger,
		pipeline:  pipeline,
		states:    states,
		locks:     newUserLocks(),
		now:       time.Now,
	}
}

func (h *handler) HandleUpdate(ctx context.Context, update *tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)

	case update.Message != nil:
		h.handleMessage(ctx, update.Message)
	}
}

func (h *handler) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	h.messenger.AnswerCallback(ctx, callback.ID)

	if callback.Message == nil {
		slog.WarnContext(ctx, "Callback without message", "data", callback.Data)
		return
	}
	chatID, messageID := callback.Message.Chat.ID, callback.Message.MessageID

	text := domain.UnknownActionMessage
	switch callback.Data {
	case domain.StartRecordingCallback:
		if callback.From != nil {
			h.states.Save(callback.From.ID, domain.StateAwaitingVoice)
		}
		text = domain.RecordingInstructionsMessage
	default:
		slog.WarnContext(ctx, "Unhandled callback", "data", callback.Data)
	}

	if err := h.messenger.EditMessage(ctx, chatID, messageID, text, nil); err != nil {
		slog.ErrorContext(ctx, "Editing callback message", "chatID", chatID, logger.Err(err))
	}
}

func (h *handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	chatID, userID := msg.Chat.ID, msg.From.ID

	switch {
	case msg.Voice != nil:
		h.handleVoice(ctx, msg)

	case msg.IsCommand() && msg.Command() == startCommand:
		h.states.Clear(userID)
		h.reply(ctx, chatID, domain.WelcomeMessage(h.cfg.Organizer, h.cfg.EventName), domain.WelcomeKeyboard())
		slog.InfoContext(ctx, "User started the bot", "userID", userID)

	case h.awaitingVoice(userID):
		h.reply(ctx, chatID, domain.AwaitingVoiceReminderMessage, nil)

	case strings.TrimSpace(msg.Text) != "":
		h.reply(ctx, chatID, domain.StartHintMessage, nil)
	}
}

// handleVoice runs the voice note through the pipeline. Voice notes of one
// user are processed one at a time; their order is not guaranteed.
func (h *handler) handleVoice(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	sub := domain.Submission{
		ID:         uuid.NewString(),
		UserID:     userID,
		ChatID:     msg.Chat.ID,
		Username:   msg.From.UserName,
		ReceivedAt: h.now(),
		Audio:      &voiceSource{files: h.messenger, fileID: msg.Voice.FileID},
	}

	unlock := h.locks.lock(userID)
	defer unlock()

	h.states.Clear(userID)

	slog.InfoContext(ctx, "Voice note received", "userID", userID, "duration", msg.Voice.Duration, "submissionID", sub.ID)
	h.pipeline.Process(ctx, sub)
}

func (h *handler) awaitingVoice(userID int64) bool {
	state, ok := h.states.Get(userID)
	return ok && state == domain.StateAwaitingVoice
}

func (h *handler) reply(ctx context.Context, chatID int64, text string, keyboard *domain.Keyboard) {
	if _, err := h.messenger.SendMessage(ctx, chatID, text, keyboard); err != nil {
		slog.ErrorContext(ctx, "Sending reply", "chatID", chatID, logger.Err(err))
	}
}

type FileOpener interface {
	OpenFile(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// voiceSource reads a voice note from Telegram on demand.
type voiceSource struct {
	files  FileOpener
	fileID string
}

func (v *voiceSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return v.files.OpenFile(ctx, v.fileID)
}
