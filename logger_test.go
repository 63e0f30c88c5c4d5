package colbuf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/colbuf/blob"
)

type nopSink struct{}

func (nopSink) Deliver(_ context.Context, b *blob.Blob) error {
	b.Release()
	return nil
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(line, &m))
		out = append(out, m)
	}
	return out
}

func TestLogger(t *testing.T) {
	ctx := context.Background()

	t.Run("FlushAndDeliver", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		l.WithColumn("a").LogFlush(ctx, 10, 20, 7, nil)
		l.WithColumn("a").LogDeliver(ctx, 10, 20, errors.New("boom"))

		lines := decodeLines(t, &buf)
		require.Len(t, lines, 2)
		assert.Equal(t, "column flushed", lines[0]["msg"])
		assert.Equal(t, "a", lines[0]["column"])
		assert.InDelta(t, 10, lines[0]["rows"], 0)
		assert.Equal(t, "ERROR", lines[1]["level"])
		assert.Equal(t, "a", lines[1]["column"])
		assert.Equal(t, "boom", lines[1]["error"])
	})

	t.Run("Fields", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(slog.NewJSONHandler(&buf, nil)).WithColumn("c").WithRowID(42)
		l.Info("hello")

		lines := decodeLines(t, &buf)
		require.Len(t, lines, 1)
		assert.Equal(t, "c", lines[0]["column"])
		assert.InDelta(t, 42, lines[0]["row_id"], 0)
	})

	t.Run("WriterLogsAbandon", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(slog.NewJSONHandler(&buf, nil))

		w, err := New(nopSink{}, []Schema{{Name: "a", ElemBits: 8}}, WithLogger(l))
		require.NoError(t, err)

		_, err = w.Append(ctx, Row{})
		require.ErrorIs(t, err, ErrIncompleteRow)

		lines := decodeLines(t, &buf)
		require.Len(t, lines, 1)
		assert.Equal(t, "row abandoned", lines[0]["msg"])
		assert.InDelta(t, 0, lines[0]["row_id"], 0)
	})

	t.Run("WriterLogsNullFill", func(t *testing.T) {
		var buf bytes.Buffer
		l := NewLogger(slog.NewJSONHandler(&buf, nil))

		w, err := New(nopSink{}, []Schema{{Name: "a", ElemBits: 8}},
			WithLogger(l), WithIncompleteRowPolicy(NullIncompleteRow))
		require.NoError(t, err)

		_, err = w.Append(ctx, Row{})
		require.NoError(t, err)

		lines := decodeLines(t, &buf)
		require.Len(t, lines, 1)
		assert.Equal(t, "WARN", lines[0]["level"])
		assert.Equal(t, "incomplete row completed as NULL", lines[0]["msg"])
		assert.Equal(t, "a", lines[0]["column"])
	})

	t.Run("Noop", func(t *testing.T) {
		assert.NotPanics(t, func() {
			NoopLogger().WithRowID(1).LogAbandon(ctx, errors.New("x"))
		})
	})
}
