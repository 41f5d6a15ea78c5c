package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vytor/flashqueue/internal/errors"
	"github.com/vytor/flashqueue/internal/logger"
	"github.com/vytor/flashqueue/internal/models"
)

// reply targets a chat and, for callbacks, the message holding the button
// that was pressed. A zero messageID sends a new message.
type reply struct {
	chatID    int64
	messageID int
}

// HandleUpdate dispatches a single message or button press.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	id := chatID(update)
	ctx = logger.NewContext(ctx, b.log.WithUser(id))

	switch {
	case update.Message != nil:
		return b.handleMessage(ctx, update.Message)
	case update.CallbackQuery != nil:
		return b.handleCallback(ctx, update.CallbackQuery)
	}
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	to := reply{chatID: msg.Chat.ID}
	if !msg.IsCommand() {
		return b.send(to, unknownCommandText, nil)
	}

	logger.FromContext(ctx).Debug("command: /%s", msg.Command())
	switch msg.Command() {
	case "start":
		name := ""
		if msg.From != nil {
			name = msg.From.FirstName
		}
		kb := welcomeKeyboard()
		return b.send(to, welcomeText(name), &kb)
	case "help":
		return b.send(to, helpText, nil)
	case "decks", "showallpackages":
		return b.listDecks(ctx, to)
	case "stop":
		return b.stop(ctx, to)
	case "status":
		return b.status(ctx, to)
	default:
		return b.send(to, unknownCommandText, nil)
	}
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	log := logger.FromContext(ctx)
	if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
		log.Warn("failed to acknowledge callback: %v", err)
	}

	to := reply{}
	if q.Message != nil {
		to = reply{chatID: q.Message.Chat.ID, messageID: q.Message.MessageID}
	} else if q.From != nil {
		to.chatID = q.From.ID
	}
	userID := to.chatID
	log.Debug("callback: %s", q.Data)

	prefix, value, hasValue := parseCallback(q.Data)
	switch {
	case prefix == cbGuide:
		return b.send(reply{chatID: to.chatID}, guideText, nil)
	case prefix == cbDeck && hasValue:
		return b.showDeck(ctx, to, value)
	case prefix == cbStart && hasValue:
		view, err := b.sessions.StartSession(ctx, userID, value)
		return b.showCard(ctx, to, view, err)
	case prefix == cbShowAnswer, prefix == cbRepetitionAnswer:
		view, err := b.sessions.RevealAnswer(ctx, userID)
		return b.showCard(ctx, to, view, err)
	case prefix == cbRate && hasValue:
		rating, ok := models.RatingFromPercent(int(value))
		if !ok {
			return b.send(to, genericErrorText, nil)
		}
		step, err := b.sessions.RateCard(ctx, userID, rating)
		return b.showStep(ctx, to, step, err)
	case prefix == cbRepetitionNext:
		step, err := b.sessions.AdvanceRepetition(ctx, userID)
		return b.showStep(ctx, to, step, err)
	}

	log.Warn("unknown callback data: %q", q.Data)
	return nil
}

func (b *Bot) listDecks(ctx context.Context, to reply) error {
	decks, err := b.decks.ListDecks(ctx)
	if err != nil {
		return b.fail(ctx, to, err)
	}
	if len(decks) == 0 {
		return b.send(to, noDecksText, nil)
	}
	kb := deckListKeyboard(decks)
	return b.send(to, "Choose deck:", &kb)
}

func (b *Bot) showDeck(ctx context.Context, to reply, deckID int64) error {
	deck, err := b.decks.GetDeck(ctx, deckID)
	if err != nil {
		return b.fail(ctx, to, err)
	}
	kb := deckKeyboard(deck.ID)
	return b.send(to, deckText(deck), &kb)
}

func (b *Bot) showCard(ctx context.Context, to reply, view *models.CardView, err error) error {
	if err != nil {
		return b.fail(ctx, to, err)
	}
	text, kb := cardMessage(view)
	return b.send(to, text, &kb)
}

func (b *Bot) showStep(ctx context.Context, to reply, step *models.Step, err error) error {
	if err != nil {
		return b.fail(ctx, to, err)
	}
	if step.Completed() {
		text, kb := summaryMessage(step.Summary)
		return b.send(to, text, &kb)
	}
	return b.showCard(ctx, to, step.Card, nil)
}

func (b *Bot) stop(ctx context.Context, to reply) error {
	result, err := b.sessions.StopSession(ctx, to.chatID)
	if err != nil {
		return b.fail(ctx, to, err)
	}
	if !result.Stopped {
		return b.send(to, notInSessionText, nil)
	}
	return b.send(to, sessionStoppedText, nil)
}

func (b *Bot) status(ctx context.Context, to reply) error {
	status, err := b.sessions.Status(ctx, to.chatID)
	if err != nil {
		return b.fail(ctx, to, err)
	}
	return b.send(to, statusText(status), nil)
}

// fail turns a service error into guidance for the learner. Only
// unexpected errors are returned to the caller for logging.
func (b *Bot) fail(ctx context.Context, to reply, err error) error {
	log := logger.FromContext(ctx)
	appErr := errors.AsAppError(err)
	var text string
	switch appErr.Code {
	case errors.ErrCodeNoActiveSession:
		text = notInSessionText
	case errors.ErrCodeSessionActive:
		text = alreadyInSession
	case errors.ErrCodeEmptyDeck:
		text = emptyDeckText
	case errors.ErrCodeWrongPhase, errors.ErrCodeNotFound:
		text = strings.TrimSpace(appErr.Message)
	default:
		text = genericErrorText
	}

	if sendErr := b.send(to, text, nil); sendErr != nil {
		return sendErr
	}
	if appErr.Status < 500 {
		log.Debug("reported to user: %v", err)
		return nil
	}
	return err
}

// send edits the message behind a pressed button, or sends a new one.
func (b *Bot) send(to reply, text string, kb *tgbotapi.InlineKeyboardMarkup) error {
	if to.messageID != 0 {
		edit := tgbotapi.NewEditMessageText(to.chatID, to.messageID, text)
		edit.ReplyMarkup = kb
		_, err := b.api.Send(edit)
		return err
	}

	msg := tgbotapi.NewMessage(to.chatID, text)
	if kb != nil {
		msg.ReplyMarkup = *kb
	}
	_, err := b.api.Send(msg)
	return err
}
