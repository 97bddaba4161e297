// Package cmd implements qmd's command-line surface: search/vsearch/query,
// get/multi-get, collection/context management, embed/update, status/cleanup,
// and provider selection, all wired onto pkg/qmd.Engine.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	qmderrors "github.com/qmd-engine/qmd/internal/errors"
	"github.com/qmd-engine/qmd/internal/logging"
	"github.com/qmd-engine/qmd/pkg/version"
)

var (
	debugMode      bool
	indexOverride  string
	loggingCleanup func()
)

// NewRootCmd builds qmd's root cobra command.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "qmd",
		Short:         "Hybrid document search for personal markdown corpora",
		Long:          "qmd is an on-device search engine combining BM25 keyword, vector-semantic, and LLM-reranked hybrid search over user-declared document collections.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("qmd version {{.Version}}\n")

	root.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVar(&indexOverride, "index", "", "override the index database path")
	root.PersistentPreRunE = setupLogging
	root.PersistentPostRunE = teardownLogging

	root.AddCommand(
		newSearchCmd(),
		newVSearchCmd(),
		newQueryCmd(),
		newGetCmd(),
		newMultiGetCmd(),
		newCollectionCmd(),
		newContextCmd(),
		newEmbedCmd(),
		newUpdateCmd(),
		newStatusCmd(),
		newCleanupCmd(),
		newProviderCmd(),
	)
	return root
}

// Execute runs the root command, returning the process exit code.
func Execute() int {
	cmd := NewRootCmd()
	runID := uuid.NewString()
	cmd.SetContext(withRunID(cmd.Context(), runID))

	if err := cmd.Execute(); err != nil {
		slog.Error("qmd command failed", slog.String("run_id", runID), slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, "error:", err)
		return exitCodeFor(err)
	}
	return 0
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	cfg := logging.DefaultConfig()
	if debugMode {
		cfg = logging.DebugConfig()
	}
	logger, cleanup, err := logging.Setup(cfg)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

func teardownLogging(*cobra.Command, []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}

// exitCodeFor maps qmd's error taxonomy to the CLI's exit code contract:
// 0 success, 1 user error, 2 I/O/system error.
func exitCodeFor(err error) int {
	switch qmderrors.GetCategory(err) {
	case qmderrors.CategoryValidation:
		return 1
	case qmderrors.CategoryIO:
		if qmderrors.GetCode(err) == qmderrors.ErrCodeCorruptIndex {
			return 2
		}
		return 1
	case qmderrors.CategoryConfig:
		return 1
	default:
		return 2
	}
}
