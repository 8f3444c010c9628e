package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/todoroll/pkg/adapters/notify"
)

var rollForce bool

var rollCmd = &cobra.Command{
	Use:   "roll",
	Short: "Run one rollover check now",
	Long: `Run the rollover once for the current period. Without --force this is a
no-op when the current note already exists. With --force open rows of the
previous note are merged into the existing note.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		v, err := openVault(ctx, cmd, notify.NewTerminal(cmd.ErrOrStderr()))
		if err != nil {
			return fmt.Errorf("failed to open vault: %w", err)
		}
		settings, err := v.Settings.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}

		res, err := v.Service.Roll(ctx, settings, rollForce)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", res.Outcome, res.Target)
		if res.Archive != "" {
			fmt.Fprintf(out, "archived %s, carried %d open rows\n", res.Archive, res.Carried)
		}
		return nil
	},
}

func init() {
	rollCmd.Flags().BoolVarP(&rollForce, "force", "f", false, "Roll over even if the current note exists")
	rootCmd.AddCommand(rollCmd)
}
