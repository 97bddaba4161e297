package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	qmderrors "github.com/qmd-engine/qmd/internal/errors"
	"github.com/qmd-engine/qmd/internal/output"
)

func newGetCmd() *cobra.Command {
	var full, lineNumbers bool

	cmd := &cobra.Command{
		Use:   "get <path|#docid>",
		Short: "Resolve a single document by path or docid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			doc, notFound, err := engine.Get(args[0], full)
			if err != nil {
				return err
			}
			if doc == nil {
				w := output.New(cmd.OutOrStdout())
				w.Errorf("no document matches %q", args[0])
				if notFound != nil && len(notFound.Suggestions) > 0 {
					w.Status("", "did you mean:")
					for _, s := range notFound.Suggestions {
						w.Status("", "  "+s)
					}
				}
				return qmderrors.NotFoundError(fmt.Sprintf("no document matches %q", args[0]), nil)
			}

			w := output.New(cmd.OutOrStdout())
			w.Statusf("🔍", "%s  (#%s)", doc.Filepath, doc.Docid)
			if full {
				printBody(cmd, doc.Body, lineNumbers)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "include the full document body")
	cmd.Flags().BoolVar(&lineNumbers, "line-numbers", false, "prefix body lines with line numbers")
	return cmd
}

func printBody(cmd *cobra.Command, body string, lineNumbers bool) {
	w := bufio.NewWriter(cmd.OutOrStdout())
	defer w.Flush()

	if !lineNumbers {
		fmt.Fprintln(w)
		fmt.Fprintln(w, body)
		return
	}
	fmt.Fprintln(w)
	for i, line := range strings.Split(body, "\n") {
		fmt.Fprintf(w, "%4d  %s\n", i+1, line)
	}
}
