package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dskvich/networker-bot/pkg/domain"
	"github.com/dskvich/networker-bot/pkg/logger"
	"github.com/dskvich/networker-bot/pkg/render"
)

const updatesTimeout = 60

// AllowedUpdates are the update kinds the bot reacts to.
var AllowedUpdates = []string{"message", "callback_query"}

type client struct {
	bot     *tgbotapi.BotAPI
	fileURL func(file tgbotapi.File) string

	updatesOnce sync.Once
	updatesCh   tgbotapi.UpdatesChannel
}

func NewClient(token string) (*client, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating bot api instance: %w", err)
	}

	slog.Info("authorized on telegram", "account", bot.Self.UserName)

	return newClient(bot), nil
}

func newClient(bot *tgbotapi.BotAPI) *client {
	return &client{
		bot: bot,
		fileURL: func(file tgbotapi.File) string {
			return file.Link(bot.Token)
		},
	}
}

// GetUpdates starts long polling on first use.
func (c *client) GetUpdates() tgbotapi.UpdatesChannel {
	c.updatesOnce.Do(func() {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = updatesTimeout
		u.AllowedUpdates = AllowedUpdates
		c.updatesCh = c.bot.GetUpdatesChan(u)
	})
	return c.updatesCh
}

func (c *client) StopUpdates() {
	c.bot.StopReceivingUpdates()
}

// SendMessage renders the markdown text as Telegram HTML and sends it.
func (c *client) SendMessage(ctx context.Context, chatID int64, text string, keyboard *domain.Keyboard) (int, error) {
	msg := tgbotapi.NewMessage(chatID, render.ToHTML(text))
	msg.ParseMode = tgbotapi.ModeHTML
	if keyboard != nil {
		msg.ReplyMarkup = inlineKeyboard(keyboard)
	}

	sent, err := c.bot.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("sending message: %w", err)
	}

	slog.DebugContext(ctx, "Message sent", "chatID", chatID, "messageID", sent.MessageID)
	return sent.MessageID, nil
}

func (c *client) EditMessage(ctx context.Context, chatID int64, messageID int, text string, keyboard *domain.Keyboard) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, render.ToHTML(text))
	edit.ParseMode = tgbotapi.ModeHTML
	if keyboard != nil {
		markup := inlineKeyboard(keyboard)
		edit.ReplyMarkup = &markup
	}

	if _, err := c.bot.Send(edit); err != nil {
		if isNotModified(err) {
			slog.DebugContext(ctx, "Message already up to date", "chatID", chatID, "messageID", messageID)
			return nil
		}
		return fmt.Errorf("editing message: %w", err)
	}

	return nil
}

func (c *client) SendStatus(ctx context.Context, chatID int64, text string) (int, error) {
	return c.SendMessage(ctx, chatID, text, nil)
}

func (c *client) EditStatus(ctx context.Context, chatID int64, messageID int, text string) error {
	return c.EditMessage(ctx, chatID, messageID, text, nil)
}

func (c *client) AnswerCallback(ctx context.Context, callbackQueryID string) {
	if _, err := c.bot.Request(tgbotapi.NewCallback(callbackQueryID, "")); err != nil {
		slog.WarnContext(ctx, "Answering callback", "callbackQueryID", callbackQueryID, logger.Err(err))
	}
}

// OpenFile streams a file uploaded to Telegram. The caller closes it.
func (c *client) OpenFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	file, err := c.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("getting file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.fileURL(file), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.bot.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.ErrorContext(ctx, "closing body", logger.Err(closeErr))
		}
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}

func inlineKeyboard(keyboard *domain.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard.Rows))
	for _, row := range keyboard.Rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.CallbackData))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}
