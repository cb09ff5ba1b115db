// Package output renders lookup results for the terminal.
package output

import (
	"io"

	"github.com/spiffcs/codewatch/internal/model"
)

// Format represents the output format
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Result is the outcome of one lookup. Exactly one of User, Repo, Search
// and Err is set.
type Result struct {
	Subject string               `json:"subject"`
	User    *model.UserInfo      `json:"user,omitempty"`
	Repo    *model.Repo          `json:"repo,omitempty"`
	Search  *model.SearchResults `json:"search,omitempty"`
	Err     error                `json:"-"`
}

// Failed reports whether the lookup failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Formatter writes results in order.
type Formatter interface {
	Format(results []Result, w io.Writer) error
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	default:
		return NewTextFormatter()
	}
}
