package output

import "io"

// Handler renders results or errors for CLI consumption in one output format.
type Handler[T any] interface {
	// Writer returns the io.Writer this Handler will write to.
	Writer() io.Writer

	// HandleResult renders one item.
	HandleResult(item T) error

	// HandleResults renders a collection of items.
	HandleResults(items ...T) error

	// HandleError renders the error.
	HandleError(err error) error
}

// ResultPayload wraps a single item under a stable top-level key.
type ResultPayload[T any] struct {
	Result T `json:"result" yaml:"result"`
}

// ResultsPayload wraps a collection of items under a stable top-level key.
type ResultsPayload[T any] struct {
	Results []T `json:"results" yaml:"results"`
}

// ErrorPayload wraps an error message under a stable top-level key.
type ErrorPayload struct {
	Error string `json:"error" yaml:"error"`
}
