package output

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

type item struct {
	Name  string  `json:"name" yaml:"name"`
	Score float64 `json:"score" yaml:"score"`
}

func renderItem(w io.Writer, it item) error {
	_, err := io.WriteString(w, it.Name+"\n")
	return err
}

func TestJSONHandler(t *testing.T) {
	t.Parallel()

	t.Run("result", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		h := NewJSONHandler[item](&buf, 2)

		require.NoError(t, h.HandleResult(item{Name: "time", Score: 0.9}))
		require.JSONEq(t, `{"result": {"name": "time", "score": 0.9}}`, buf.String())
	})

	t.Run("results", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		h := NewJSONHandler[item](&buf, 2)

		require.NoError(t, h.HandleResults(item{Name: "a"}, item{Name: "b"}))
		require.JSONEq(t, `{"results": [{"name": "a", "score": 0}, {"name": "b", "score": 0}]}`, buf.String())
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		h := NewJSONHandler[item](&buf, 2)

		require.NoError(t, h.HandleError(errors.New("boom")))
		require.JSONEq(t, `{"error": "boom"}`, buf.String())
	})
}

func TestYAMLHandler(t *testing.T) {
	t.Parallel()

	t.Run("result", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		h := NewYAMLHandler[item](&buf, 2)

		require.NoError(t, h.HandleResult(item{Name: "time", Score: 0.9}))
		require.Equal(t, "result:\n  name: time\n  score: 0.9\n", buf.String())
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		h := NewYAMLHandler[item](&buf, 2)

		require.NoError(t, h.HandleError(errors.New("boom")))
		require.Equal(t, "error: boom\n", buf.String())
	})
}

func TestTextHandler(t *testing.T) {
	t.Parallel()

	t.Run("result uses the render function", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		h := NewTextHandler(&buf, renderItem)

		require.NoError(t, h.HandleResult(item{Name: "time"}))
		require.Equal(t, "time\n", buf.String())
	})

	t.Run("results renders every item", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		h := NewTextHandler(&buf, renderItem)

		require.NoError(t, h.HandleResults(item{Name: "a"}, item{Name: "b"}))
		require.Equal(t, "a\nb\n", buf.String())
	})

	t.Run("empty results prints placeholder", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		h := NewTextHandler(&buf, renderItem)

		require.NoError(t, h.HandleResults())
		require.Equal(t, "No items found\n", buf.String())
	})

	t.Run("error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		h := NewTextHandler(&buf, renderItem)

		require.NoError(t, h.HandleError(errors.New("boom")))
		require.Equal(t, "Error: boom\n", buf.String())
	})
}
