package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/todoroll"
	"github.com/aretw0/todoroll/pkg/core"
)

// resolveVault returns --vault, or the nearest vault root above the working
// directory, or the working directory itself.
func resolveVault() (string, error) {
	if vaultPath != "" {
		return vaultPath, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	root, err := todoroll.FindVaultRoot(wd)
	if err != nil {
		slog.Debug("no vault root marker found, using working directory", "path", wd)
		return wd, nil
	}
	return root, nil
}

// openVault wires the vault from the persistent flags.
func openVault(ctx context.Context, cmd *cobra.Command, n core.Notifier, extra ...todoroll.Option) (*todoroll.Vault, error) {
	path, err := resolveVault()
	if err != nil {
		return nil, err
	}

	opts := []todoroll.Option{
		todoroll.WithMustExist(true),
		todoroll.WithLogger(slog.Default()),
		todoroll.WithDevSafety(devSafety),
	}
	if cmd.Flags().Changed("versioning") {
		opts = append(opts, todoroll.WithVersioning(versioning))
	}
	if n != nil {
		opts = append(opts, todoroll.WithNotifier(n))
	}
	opts = append(opts, extra...)

	return todoroll.Open(ctx, path, opts...)
}
