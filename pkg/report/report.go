// Package report renders path query results.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/DrSkyle/chainpath/pkg/graph"
)

// Formats accepted by Render.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Result is one answered query.
type Result struct {
	From  string       `json:"from"`
	To    string       `json:"to"`
	Paths []graph.Path `json:"paths"`
}

// Render writes r in the named format.
func Render(w io.Writer, format string, r Result) error {
	switch format {
	case FormatText, "":
		return RenderText(w, r)
	case FormatJSON:
		return RenderJSON(w, r)
	case FormatCSV:
		return RenderCSV(w, r)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// RenderText writes a header line followed by one path per line, prefixed
// with its degree.
func RenderText(w io.Writer, r Result) error {
	if len(r.Paths) == 0 {
		_, err := fmt.Fprintf(w, "%s -> %s: no paths within %d hops\n", r.From, r.To, graph.MaxDegree)
		return err
	}

	noun := "paths"
	if len(r.Paths) == 1 {
		noun = "path"
	}
	if _, err := fmt.Fprintf(w, "%s -> %s: %d %s\n", r.From, r.To, len(r.Paths), noun); err != nil {
		return err
	}
	for _, p := range r.Paths {
		if _, err := fmt.Fprintf(w, "  [%d] %s\n", p.Degree(), p); err != nil {
			return err
		}
	}
	return nil
}

// RenderJSON writes r as indented JSON. An empty result is "paths": [].
func RenderJSON(w io.Writer, r Result) error {
	if r.Paths == nil {
		r.Paths = []graph.Path{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// RenderCSV writes one row per path: degree followed by the node sequence.
func RenderCSV(w io.Writer, r Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"from", "to", "degree", "path"}); err != nil {
		return err
	}
	for _, p := range r.Paths {
		if err := cw.Write([]string{r.From, r.To, strconv.Itoa(p.Degree()), p.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
