package logger_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vytor/flashqueue/internal/logger"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(logger.WARN), logger.WithColors(false))

	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("card %d missing", 7)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "card 7 missing")
}

func TestLogger_FieldsAreSorted(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithColors(false)).
		WithPrefix("session").
		WithFields(map[string]any{"position": 3, "card_id": 11}).
		WithUser(42)

	log.Info("rated")

	line := strings.TrimSpace(buf.String())
	assert.Contains(t, line, "[session]")
	assert.True(t, strings.HasSuffix(line, "card_id=11 position=3 user_id=42"), line)
}

func TestLogger_Context(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithColors(false))

	ctx := logger.NewContext(context.Background(), log)
	assert.Same(t, log, logger.FromContext(ctx))
	assert.Same(t, logger.Default(), logger.FromContext(context.Background()))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logger.DEBUG, logger.ParseLevel("debug"))
	assert.Equal(t, logger.WARN, logger.ParseLevel("warning"))
	assert.Equal(t, logger.ERROR, logger.ParseLevel("ERROR"))
	assert.Equal(t, logger.INFO, logger.ParseLevel("nonsense"))
}

func TestLogger_DerivedLoggersShareOutput(t *testing.T) {
	var buf bytes.Buffer
	root := logger.New(logger.WithOutput(&buf), logger.WithColors(false))
	child := root.WithPrefix("repo").WithField("deck", "Spanish verbs")

	root.Info("one")
	child.Info("two")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[1], `two deck="Spanish verbs"`), lines[1])
	assert.NotContains(t, lines[0], "deck=")
}

func TestLogger_Enabled(t *testing.T) {
	log := logger.New(logger.WithLevel(logger.WARN))
	assert.False(t, log.Enabled(logger.INFO))
	assert.True(t, log.Enabled(logger.ERROR))
}
