package workers

import (
	"context"
	"log/slog"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dskvich/networker-bot/pkg/logger"
)

type Handler interface {
	HandleUpdate(ctx context.Context, update *tgbotapi.Update)
}

type TelegramClient interface {
	GetUpdates() tgbotapi.UpdatesChannel
	StopUpdates()
}

type telegramUpdateListener struct {
	client  TelegramClient
	handler Handler
	wg      sync.WaitGroup
}

func NewTelegramUpdateListener(
	client TelegramClient,
	handler Handler,
) (*telegramUpdateListener, error) {
	return &telegramUpdateListener{
		client:  client,
		handler: handler,
	}, nil
}

func (t *telegramUpdateListener) Name() string { return "telegram_listener_worker" }

// Start handles every update in its own goroutine. On shutdown it stops
// polling and waits for the updates in progress, which run to completion.
func (t *telegramUpdateListener) Start(ctx context.Context) error {
	slog.Info("Starting worker", "name", t.Name())
	defer slog.Info("Worker stopped", "name", t.Name())

	updates := t.client.GetUpdates()

	for {
		select {
		case <-ctx.Done():
			t.client.StopUpdates()
			t.wg.Wait()
			return nil
		case update, ok := <-updates:
			if !ok {
				t.wg.Wait()
				return nil
			}
			t.wg.Add(1)
			go func(update tgbotapi.Update) {
				defer t.wg.Done()
				t.processUpdate(context.WithoutCancel(ctx), &update)
			}(update)
		}
	}
}

func (t *telegramUpdateListener) processUpdate(ctx context.Context, update *tgbotapi.Update) {
	ctx = logger.ContextWithUpdateID(ctx, update.UpdateID)

	var chatID, userID int64
	switch {
	case update.Message != nil && update.Message.From != nil:
		chatID, userID = update.Message.Chat.ID, update.Message.From.ID
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		userID = update.CallbackQuery.From.ID
		if update.CallbackQuery.Message != nil {
			chatID = update.CallbackQuery.Message.Chat.ID
		}
	default:
		slog.WarnContext(ctx, "Received unknown update type")
		return
	}

	slog.InfoContext(ctx, "Processing update", "chatID", chatID, "userID", userID)

	t.handler.HandleUpdate(ctx, update)
}
