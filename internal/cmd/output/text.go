package output

import (
	"fmt"
	"io"
)

// RenderFunc writes one item as human-readable text.
type RenderFunc[T any] func(w io.Writer, item T) error

// TextHandler writes human-readable text using a per-item render function.
type TextHandler[T any] struct {
	out    io.Writer
	render RenderFunc[T]
}

func NewTextHandler[T any](w io.Writer, render RenderFunc[T]) *TextHandler[T] {
	return &TextHandler[T]{
		out:    w,
		render: render,
	}
}

// Writer returns the underlying io.Writer where text will be written.
func (h *TextHandler[T]) Writer() io.Writer {
	return h.out
}

func (h *TextHandler[T]) HandleResult(item T) error {
	return h.render(h.out, item)
}

func (h *TextHandler[T]) HandleResults(items ...T) error {
	if len(items) == 0 {
		_, _ = io.WriteString(h.out, "No items found\n")
		return nil
	}

	for _, it := range items {
		if err := h.render(h.out, it); err != nil {
			return err
		}
	}

	return nil
}

func (h *TextHandler[T]) HandleError(err error) error {
	_, werr := fmt.Fprintf(h.out, "Error: %v\n", err)
	return werr
}
