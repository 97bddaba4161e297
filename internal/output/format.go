package output

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/qmd-engine/qmd/internal/search"
)

// Format selects one of the CLI's result renderers (--files|--json|--csv|--md|--xml).
type Format string

const (
	FormatText  Format = "text" // human-readable, the Writer.Status lines
	FormatFiles Format = "files"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatMD    Format = "md"
	FormatXML   Format = "xml"
)

// ParseFormat maps the CLI's output-selector flags to a Format, defaulting
// to FormatText when none is set.
func ParseFormat(files, json, csv, md, xml bool) Format {
	switch {
	case files:
		return FormatFiles
	case json:
		return FormatJSON
	case csv:
		return FormatCSV
	case md:
		return FormatMD
	case xml:
		return FormatXML
	default:
		return FormatText
	}
}

// xmlResults wraps DocResult slices for XML marshaling, since encoding/xml
// can't marshal a bare slice at the top level.
type xmlResults struct {
	XMLName xml.Name          `xml:"results"`
	Results []search.DocResult `xml:"result"`
}

// WriteResults renders docs to out in the selected format.
func WriteResults(out io.Writer, format Format, docs []search.DocResult) error {
	switch format {
	case FormatFiles:
		for _, d := range docs {
			if _, err := fmt.Fprintln(out, d.Filepath); err != nil {
				return err
			}
		}
		return nil

	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)

	case FormatCSV:
		w := csv.NewWriter(out)
		if err := w.Write([]string{"docid", "filepath", "score", "snippet"}); err != nil {
			return err
		}
		for _, d := range docs {
			if err := w.Write([]string{d.Docid, d.Filepath, fmt.Sprintf("%.6f", d.Score), d.Snippet}); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()

	case FormatMD:
		if _, err := fmt.Fprintln(out, "| docid | filepath | score | snippet |"); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(out, "| --- | --- | --- | --- |"); err != nil {
			return err
		}
		for _, d := range docs {
			if _, err := fmt.Fprintf(out, "| %s | %s | %.4f | %s |\n", d.Docid, d.Filepath, d.Score, mdEscape(d.Snippet)); err != nil {
				return err
			}
		}
		return nil

	case FormatXML:
		enc := xml.NewEncoder(out)
		enc.Indent("", "  ")
		return enc.Encode(xmlResults{Results: docs})

	default: // FormatText
		w := New(out)
		if len(docs) == 0 {
			w.Warning("no matches")
			return nil
		}
		for i, d := range docs {
			w.Statusf("🔍", "%2d. %s  (score %.4f)", i+1, d.Filepath, d.Score)
			if d.Snippet != "" {
				w.Status("", d.Snippet)
			}
		}
		return nil
	}
}

func mdEscape(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '|' {
			out = append(out, '\\')
		}
		if r == '\n' {
			r = ' '
		}
		out = append(out, r)
	}
	return string(out)
}
