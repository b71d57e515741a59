package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/star/neocc/internal/table"
)

// objectResult is the outcome of one object query.
type objectResult struct {
	Object   string          `json:"object" yaml:"object"`
	Tab      string          `json:"tab" yaml:"tab"`
	Sections []table.Section `json:"sections,omitempty" yaml:"sections,omitempty"`
	Error    string          `json:"error,omitempty" yaml:"error,omitempty"`
}

func validateOutputFormat(output string) error {
	switch output {
	case "table", "json", "yaml":
		return nil
	}
	return fmt.Errorf("unsupported output format %q: use 'table', 'json' or 'yaml'", output)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// terminalWidth returns the column count of w when it is a terminal, else 0.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// printResults writes query results in the chosen format. In table mode
// failed objects are reported on errw.
func printResults(w, errw io.Writer, format string, results []objectResult) error {
	switch format {
	case "json":
		return printJSON(w, results)
	case "yaml":
		return printYAML(w, results)
	}

	width := terminalWidth(w)
	for i, r := range results {
		if r.Error != "" {
			fmt.Fprintf(errw, "%s: %s\n", r.Object, r.Error)
			continue
		}
		if len(results) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "# %s (%s)\n", r.Object, r.Tab)
		}
		for _, s := range r.Sections {
			if err := table.WriteText(w, s, width); err != nil {
				return err
			}
		}
	}
	return nil
}
