package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"github.com/aretw0/todoroll/pkg/core"
	"github.com/aretw0/todoroll/pkg/markdown"
)

var statusJSON bool

type statusReport struct {
	Vault     string             `json:"vault"`
	Settings  core.Settings      `json:"settings"`
	Period    string             `json:"period"`
	Target    string             `json:"target"`
	Exists    bool               `json:"exists"`
	Open      int                `json:"open"`
	Done      int                `json:"done"`
	OpenTasks []string           `json:"open_tasks,omitempty"`
	Previous  string             `json:"previous,omitempty"`
	Pending   *core.JournalEntry `json:"pending,omitempty"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current period, its note and the note a rollover would archive",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		v, err := openVault(ctx, cmd, nil)
		if err != nil {
			return fmt.Errorf("failed to open vault: %w", err)
		}
		settings, err := v.Settings.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}

		st := v.Service.Storage()
		r := statusReport{
			Vault:    st.ID(),
			Settings: settings,
			Target:   v.Service.Target(settings),
		}
		r.Period = core.NoteDate(path.Base(r.Target))

		content, err := st.ReadText(ctx, r.Target)
		switch {
		case err == nil:
			r.Exists = true
			sum := markdown.Inspect([]byte(content))
			r.Open, r.Done, r.OpenTasks = sum.Open, sum.Done, sum.OpenTasks
		case errors.Is(err, core.ErrNotFound):
		default:
			return err
		}

		files, err := st.ListMarkdown(ctx)
		if err != nil {
			return err
		}
		if prev, ok := core.LocatePrevious(files, path.Base(r.Target)); ok {
			r.Previous = prev.Path
		}

		if v.Repo != nil {
			if entry, ok, err := v.Repo.Pending(ctx); err == nil && ok {
				r.Pending = &entry
			}
		}

		out := cmd.OutOrStdout()
		if statusJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(r)
		}

		fmt.Fprintf(out, "vault:   %s\n", r.Vault)
		fmt.Fprintf(out, "mode:    %s\n", describeMode(settings))
		fmt.Fprintf(out, "period:  %s\n", r.Period)
		if r.Exists {
			fmt.Fprintf(out, "note:    %s (%d open, %d done)\n", r.Target, r.Open, r.Done)
			for _, task := range r.OpenTasks {
				fmt.Fprintf(out, "  - %s\n", task)
			}
		} else {
			fmt.Fprintf(out, "note:    %s (missing)\n", r.Target)
		}
		if r.Previous != "" {
			fmt.Fprintf(out, "next archive: %s\n", r.Previous)
		}
		if r.Pending != nil {
			fmt.Fprintf(out, "interrupted rollover: %s -> %s\n", r.Pending.Archive, r.Pending.Target)
		}
		return nil
	},
}

func describeMode(s core.Settings) string {
	if s.GenerationMode == core.ModeEveryNDays {
		return fmt.Sprintf("%s (n=%d, anchor %s)", s.GenerationMode, s.NDays, s.AnchorISODate)
	}
	return string(s.GenerationMode)
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(statusCmd)
}
