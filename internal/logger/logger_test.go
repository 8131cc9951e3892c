package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal(line, &entry))
		out = append(out, entry)
	}
	return out
}

func TestContextFieldsAreCarried(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "api", Output: &buf})

	ctx := logg.WithRequestID(context.Background(), "req-1")
	ctx = logg.WithFields(ctx, map[string]any{"product_id": "P1"})
	logg.Info(ctx, "sale.recorded")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "api", lines[0]["service"])
	assert.Equal(t, "req-1", lines[0]["request_id"])
	assert.Equal(t, "P1", lines[0]["product_id"])
	assert.Equal(t, "sale.recorded", lines[0]["message"])
}

func TestErrorIncludesCauseAndStack(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "api", Output: &buf})

	logg.Error(context.Background(), "journal.append_failed", errors.New("disk full"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "error", lines[0]["level"])
	assert.Equal(t, "disk full", lines[0]["error"])
	assert.NotEmpty(t, lines[0]["stack"])
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "api", Output: &buf, Level: zerolog.WarnLevel})

	logg.Debug(context.Background(), "hidden")
	logg.Info(context.Background(), "hidden")
	logg.Warn(context.Background(), "shown")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "shown", lines[0]["message"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("chatty"))
}

func TestDomainFieldsStackOnContext(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "api", Output: &buf})

	ctx := logg.WithManagerID(context.Background(), "M1")
	ctx = logg.WithProductID(ctx, "P1")
	logg.Warn(logg.WithError(ctx, errors.New("insufficient stock")), "sales.record_failed")
	logg.Info(logg.WithOrderID(logg.WithConsumerID(context.Background(), "c-1"), "o-1"), "order.stage")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "M1", lines[0]["manager_id"])
	assert.Equal(t, "P1", lines[0]["product_id"])
	assert.Equal(t, "insufficient stock", lines[0]["error"])
	assert.NotContains(t, lines[0], "stack")
	assert.Equal(t, "c-1", lines[1]["consumer_id"])
	assert.Equal(t, "o-1", lines[1]["order_id"])
	assert.NotContains(t, lines[1], "manager_id")
}

func TestWithErrorIgnoresNil(t *testing.T) {
	logg := Nop()
	ctx := context.Background()
	assert.Equal(t, ctx, logg.WithError(ctx, nil))
}
