package cmd

import (
	"github.com/spf13/cobra"

	"github.com/qmd-engine/qmd/internal/output"
)

func newProviderCmd() *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "provider [name]",
		Short: "Show or switch the active embedding provider/model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := openEngine()
			if err != nil {
				return err
			}
			defer engine.Close()

			w := output.New(cmd.OutOrStdout())
			if len(args) == 0 {
				info, err := engine.Provider()
				if err != nil {
					return err
				}
				w.Statusf("", "%s/%s", info.Provider, info.Model)
				return nil
			}

			if err := engine.ProviderSet(args[0], model); err != nil {
				return err
			}
			w.Successf("switched to provider %q", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&model, "model", "", "model id (provider default if unset)")
	return cmd
}
