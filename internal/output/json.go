package output

import (
	"encoding/json"
	"io"

	"github.com/spiffcs/codewatch/internal/model"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

// jsonResult adds the error fields a Result cannot marshal itself.
type jsonResult struct {
	Result
	Error string `json:"error,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// Format outputs the results as one JSON array
func (f *JSONFormatter) Format(results []Result, w io.Writer) error {
	out := make([]jsonResult, 0, len(results))
	for _, r := range results {
		jr := jsonResult{Result: r}
		if r.Err != nil {
			jr.Error = r.Err.Error()
			jr.Kind = model.KindOf(r.Err).String()
		}
		out = append(out, jr)
	}

	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(out)
}
