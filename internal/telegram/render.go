package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/vytor/flashqueue/internal/models"
)

// Callback data. Parameterised callbacks are "<prefix>:<value>".
const (
	cbGuide            = "guide"
	cbDeck             = "deck"
	cbStart            = "start"
	cbShowAnswer       = "answer"
	cbRate             = "rate"
	cbRepetitionAnswer = "rep_answer"
	cbRepetitionNext   = "rep_next"
)

const (
	helpText = `Flashcards Bot - User Manual

Available Commands:

/start - Get a welcome message and start using the bot
/decks - Browse all available decks, view their descriptions, and start learning by selecting a deck
/status - Show where you are in the current learning session
/stop - Stop your current learning session without saving progress
/help - Display this help message

How to use:
1. Use /decks to browse and select a deck to start learning
2. Click on a deck to view its description
3. Click "Start learning" to begin your session
4. Answer each flashcard and rate your knowledge (0% - 100%)
5. Cards you find difficult will be repeated for better learning
6. Complete all cards to finish your learning session
7. Use /stop anytime to stop learning (progress will not be saved)

Tips:
- Rate 0% for cards you did not know at all (they repeat twice)
- Rate 25-50% for moderately difficult cards (they repeat once)
- Rate 75-100% for easy cards, reviewed once more at the end`

	guideText = `Quick Start Guide

Step 1: Browse decks
Use /decks to see all available decks.

Step 2: Start learning
Open a deck and click "Start learning".

Step 3: Answer cards
Read the question, click "Show answer", then rate how well you knew it.

Step 4: Complete your session
Cards you find difficult will repeat. Easy cards come back once in a final repetition round.

Other commands:
/help - View all available commands
/stop - Stop your current learning session`

	notInSessionText   = "You are not currently in a learning session.\n\nPlease use /decks to start learning."
	alreadyInSession   = "You are already in a learning session.\n\nFinish it or use /stop before starting another deck."
	sessionStoppedText = "Your learning session has been stopped.\n\nYour progress was not saved. You can start a new session anytime from /decks."
	emptyDeckText      = "This deck has no cards yet, there is nothing to learn."
	noDecksText        = "No decks are available yet."
	genericErrorText   = "Something went wrong. Please try again."
	unknownCommandText = "Unknown command. Use /help to see what I can do."
)

// percentButtons are the rating buttons shown under a revealed card.
var percentButtons = []struct {
	label   string
	percent int
}{
	{"Idk", 0},
	{"25%", 25},
	{"50%", 50},
	{"75%", 75},
	{"Easy", 100},
}

func callback(prefix string, value any) string {
	return fmt.Sprintf("%s:%v", prefix, value)
}

// parseCallback splits "<prefix>:<int>" callback data.
func parseCallback(data string) (string, int64, bool) {
	prefix, raw, found := strings.Cut(data, ":")
	if !found {
		return data, 0, false
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return prefix, 0, false
	}
	return prefix, value, true
}

func welcomeText(name string) string {
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf("Hi, %s! This bot lets you learn decks of flashcards. Click \"Get guide\" to learn the basics.", name)
}

func welcomeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Get guide", cbGuide)),
	)
}

func deckListKeyboard(decks []models.Deck) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(decks))
	for _, d := range decks {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(d.Title, callback(cbDeck, d.ID)),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func deckText(d *models.Deck) string {
	text := fmt.Sprintf("%s\nNumber of cards: %d", d.Title, d.CardCount)
	if d.Description != "" {
		text += "\n\n" + d.Description
	}
	return text
}

func deckKeyboard(deckID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Start learning", callback(cbStart, deckID))),
	)
}

func cardHeader(v *models.CardView) string {
	if v.Phase == models.PhaseRepetition {
		return fmt.Sprintf("Flashcard (repetition) %d/%d", v.Position, v.Total)
	}
	return fmt.Sprintf("Flashcard %d/%d", v.Position, v.Total)
}

// cardMessage renders a card either face down or with its answer and the
// buttons for the next step.
func cardMessage(v *models.CardView) (string, tgbotapi.InlineKeyboardMarkup) {
	text := fmt.Sprintf("%s\n\nQuestion:\n%s", cardHeader(v), v.Question)

	if !v.Revealed {
		data := cbShowAnswer
		if v.Phase == models.PhaseRepetition {
			data = cbRepetitionAnswer
		}
		return text, tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Show answer", data)),
		)
	}

	text += fmt.Sprintf("\n\nAnswer:\n%s", v.Answer)
	if !v.ExpectsRating {
		return text, tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Next question", cbRepetitionNext)),
		)
	}

	row := make([]tgbotapi.InlineKeyboardButton, 0, len(percentButtons))
	for _, b := range percentButtons {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.label, callback(cbRate, b.percent)))
	}
	return text, tgbotapi.NewInlineKeyboardMarkup(row)
}

// formatClock renders d as HH:MM:SS.
func formatClock(d time.Duration) string {
	d = d.Truncate(time.Second)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func summaryMessage(s *models.Summary) (string, tgbotapi.InlineKeyboardMarkup) {
	text := fmt.Sprintf(`Congratulations!

You have completed all flashcards in the deck.

Statistics:
Study time: %s  Hardest cards: %d  Hard cards: %d

You can choose another deck with /decks or restart this one below.`,
		formatClock(s.Elapsed), s.HardestCount, s.HardCount)

	return text, tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("Learn again", callback(cbStart, s.DeckID))),
	)
}

func statusText(s *models.SessionStatus) string {
	switch s.Phase {
	case models.PhaseLearning:
		return fmt.Sprintf("Learning: card %d of %d.\nHardest cards: %d  Hard cards: %d",
			s.Position, s.LearningTotal, s.HardestCount, s.HardCount)
	case models.PhaseRepetition:
		return fmt.Sprintf("Repetition: card %d of %d.\nHardest cards: %d  Hard cards: %d",
			s.Position, s.RepetitionTotal, s.HardestCount, s.HardCount)
	default:
		return notInSessionText
	}
}
