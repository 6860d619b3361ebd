package gormlogger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	gormLog "gorm.io/gorm/logger"
)

func newTestLogger(buf *bytes.Buffer) *GormLogger {
	l := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewGormLogger(l, time.Millisecond*10, true)
}

func TestTrace(t *testing.T) {
	query := func() (string, int64) { return "SELECT * FROM form_definitions", 1 }

	t.Run("error", func(t *testing.T) {
		var buf bytes.Buffer
		newTestLogger(&buf).Trace(context.Background(), time.Now(), query, errors.New("no such table"))
		assert.Contains(t, buf.String(), "level=ERROR")
		assert.Contains(t, buf.String(), "no such table")
	})

	t.Run("not found is not an error", func(t *testing.T) {
		var buf bytes.Buffer
		newTestLogger(&buf).Trace(context.Background(), time.Now(), query, gorm.ErrRecordNotFound)
		assert.NotContains(t, buf.String(), "level=ERROR")
		assert.Contains(t, buf.String(), "SQL trace")
	})

	t.Run("slow", func(t *testing.T) {
		var buf bytes.Buffer
		newTestLogger(&buf).Trace(context.Background(), time.Now().Add(-time.Second), query, nil)
		assert.Contains(t, buf.String(), "SLOW SQL")
	})

	t.Run("silent", func(t *testing.T) {
		var buf bytes.Buffer
		newTestLogger(&buf).LogMode(gormLog.Silent).Trace(context.Background(), time.Now(), query, errors.New("x"))
		assert.Empty(t, buf.String())
	})
}

func TestParamsFilter(t *testing.T) {
	var buf bytes.Buffer
	l := newTestLogger(&buf)
	_, params := l.ParamsFilter(context.Background(), "SELECT ?", "secret")
	assert.Nil(t, params)

	l.ParameterizedQueries = false
	_, params = l.ParamsFilter(context.Background(), "SELECT ?", "secret")
	assert.Equal(t, []interface{}{"secret"}, params)
}
