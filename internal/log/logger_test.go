package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestLogger_ComponentNotDuplicated(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentApp, Output: &buf})

	l.WithComponent(ComponentBot).Info("hello", FieldUserID, "42")

	line := buf.String()
	assert.Equal(t, 1, strings.Count(line, "component="))
	assert.Contains(t, line, "component=bot")
	assert.Contains(t, line, "user_id=42")
}

func TestLogger_ComponentSwitchedTwice(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Output: &buf})

	l.WithComponent(ComponentBot).With(FieldEventID, "e1").WithComponent(ComponentScheduler).Info("tick")

	line := buf.String()
	assert.Equal(t, 1, strings.Count(line, "component="))
	assert.Contains(t, line, "component=scheduler")
	assert.NotContains(t, line, "event_id=")
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelWarn, Output: &buf})
	l.Info("dropped")
	l.Warn("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestContextRoundTrip(t *testing.T) {
	l := New(DefaultConfig()).WithComponent(ComponentScheduler)
	ctx := NewContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
	assert.Equal(t, "unknown", FromContext(context.Background()).Component())
}

func TestLogFields(t *testing.T) {
	f := NewFields().WithUser("7").WithError(errors.New("boom")).WithError(nil).WithExpense("x", 1000, "makanan")
	assert.Equal(t, "7", f[FieldUserID])
	assert.Equal(t, "boom", f[FieldError])
	assert.Equal(t, int64(1000), f[FieldAmount])
	assert.Len(t, f.ToSlice(), len(f)*2)
}

func TestLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentExpense, Output: &buf})

	l.WithFields(NewFields().WithUser("42").WithExpense("e1", 15000, "makanan")).Info("Expense committed")

	line := buf.String()
	assert.Contains(t, line, "component=expense")
	assert.Contains(t, line, "user_id=42")
	assert.Contains(t, line, "expense_id=e1")
	assert.Contains(t, line, "amount=15000")
	assert.Contains(t, line, "category=makanan")
}
