package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/aretw0/todoroll/pkg/core"
)

// settingKeys are the names accepted by `config set`, matching the JSON file.
var settingKeys = []string{"generationMode", "nDays", "anchorISODate"}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the rollover settings of the vault",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		v, err := openVault(ctx, cmd, nil)
		if err != nil {
			return fmt.Errorf("failed to open vault: %w", err)
		}
		s, err := v.Settings.Load(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting and persist it",
	Example: `  todoroll config set generationMode everyNDays
  todoroll config set nDays 14
  todoroll config set anchorISODate 2025-01-06`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		v, err := openVault(ctx, cmd, nil)
		if err != nil {
			return fmt.Errorf("failed to open vault: %w", err)
		}
		current, err := v.Settings.Load(ctx)
		if err != nil {
			return err
		}

		next, err := applySetting(current, args[0], args[1])
		if err != nil {
			return err
		}
		if err := v.Settings.Save(ctx, next); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
		return nil
	},
}

// applySetting returns a copy of s with key set to value.
func applySetting(s core.Settings, key, value string) (core.Settings, error) {
	switch key {
	case "generationMode":
		mode, err := core.ParseMode(value)
		if err != nil {
			return s, err
		}
		s.GenerationMode = mode
	case "nDays":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return s, fmt.Errorf("%w: nDays must be a positive integer, got %q", core.ErrInvalidSettings, value)
		}
		s.NDays = n
	case "anchorISODate":
		if _, err := core.ParseDate(value); err != nil {
			return s, fmt.Errorf("%w: anchorISODate: %w", core.ErrInvalidSettings, err)
		}
		s.AnchorISODate = value
	default:
		if matches := fuzzy.Find(key, settingKeys); len(matches) > 0 {
			return s, fmt.Errorf("%w: unknown setting %q (did you mean %q?)", core.ErrInvalidSettings, key, matches[0].Str)
		}
		return s, fmt.Errorf("%w: unknown setting %q", core.ErrInvalidSettings, key)
	}
	return s, nil
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd)
	rootCmd.AddCommand(configCmd)
}
