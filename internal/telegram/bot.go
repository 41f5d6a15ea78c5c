// Package telegram exposes learning sessions through a Telegram bot. The
// chat id doubles as the learner's user id.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vytor/flashqueue/internal/logger"
	"github.com/vytor/flashqueue/internal/services"
	"github.com/vytor/flashqueue/internal/worker"
)

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Bot struct {
	api      API
	sessions services.SessionService
	decks    services.DeckService
	pool     *worker.Pool
	log      *logger.Logger
}

// Connect authorizes against the Telegram API with token.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	logger.Default().WithPrefix("telegram").Info("authorized on account %s", api.Self.UserName)
	return api, nil
}

func New(api API, sessions services.SessionService, decks services.DeckService, pool *worker.Pool) *Bot {
	return &Bot{
		api:      api,
		sessions: sessions,
		decks:    decks,
		pool:     pool,
		log:      logger.Default().WithPrefix("telegram"),
	}
}

// updateJob handles one update on the worker that owns its chat, so a
// learner's clicks are processed in the order they arrived.
type updateJob struct {
	bot    *Bot
	update tgbotapi.Update
}

func (j updateJob) Name() string { return "telegram_update" }

func (j updateJob) Key() int64 { return chatID(j.update) }

func (j updateJob) Run(ctx context.Context) error {
	return j.bot.HandleUpdate(ctx, j.update)
}

// Run long-polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60
	updates := b.api.GetUpdatesChan(cfg)

	b.pool.Start(ctx)
	defer b.pool.Stop()
	b.log.Info("listening for updates")

	for {
		select {
		case <-ctx.Done():
			b.log.Info("stopping update polling")
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if err := b.pool.Submit(ctx, updateJob{bot: b, update: update}); err != nil {
				b.log.Warn("dropping update %d: %v", update.UpdateID, err)
			}
		}
	}
}

func chatID(u tgbotapi.Update) int64 {
	switch {
	case u.Message != nil && u.Message.Chat != nil:
		return u.Message.Chat.ID
	case u.CallbackQuery != nil && u.CallbackQuery.Message != nil && u.CallbackQuery.Message.Chat != nil:
		return u.CallbackQuery.Message.Chat.ID
	case u.CallbackQuery != nil && u.CallbackQuery.From != nil:
		return u.CallbackQuery.From.ID
	}
	return 0
}
