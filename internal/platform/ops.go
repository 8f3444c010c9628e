package platform

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/todoroll/pkg/adapters/fs"
)

// Init opens the filesystem vault at path, applying the dev sandbox rules,
// and indexes it. The returned repository is ready for rollovers.
func Init(ctx context.Context, path string, opts ...Option) (*fs.Repository, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	repo := initFS(path, o)
	if err := repo.Initialize(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

// initFS maps the options onto an fs.Config.
func initFS(path string, o *options) *fs.Repository {
	autoInit, _ := o.config["auto_init"].(bool)
	tempDir, _ := o.config["temp_dir"].(bool)
	mustExist, _ := o.config["must_exist"].(bool)
	systemDir, _ := o.config["system_dir"].(string)
	lockTimeout, _ := o.config["lock_timeout"].(time.Duration)
	errorHandler, _ := o.config["watcher_error_handler"].(func(error))
	isReadOnly, _ := o.config["read_only"].(bool)

	// Default to true (safe) if not present.
	devSafety := true
	if val, ok := o.config["dev_safety"].(bool); ok {
		devSafety = val
	}

	// Bypass Safety if:
	// 1. ReadOnly is active (inherently safe)
	// 2. User explicitly disabled DevSafety
	bypassSafety := isReadOnly || !devSafety

	useTemp := tempDir || (IsDevRun() && !bypassSafety)
	resolvedPath := ResolveVaultPath(path, useTemp)

	if IsDevRun() && o.logger != nil {
		if bypassSafety {
			if isReadOnly {
				o.logger.Debug("running in READ-ONLY mode (bypassing dev sandbox)", "path", resolvedPath)
			} else {
				o.logger.Warn("running in UNSAFE mode (bypassing dev sandbox)", "path", resolvedPath)
			}
		} else {
			o.logger.Debug("running in SAFE mode (dev sandbox enabled)", "path", resolvedPath)
		}
	}

	// Without an explicit choice, version only vaults that already are git repositories.
	versioning, explicit := o.config["versioning"].(bool)
	if !explicit {
		if _, err := os.Stat(filepath.Join(resolvedPath, ".git")); err == nil {
			versioning = true
			if o.logger != nil {
				o.logger.Debug("auto-detected versioning", "reason", ".git present")
			}
		}
	}

	if o.logger != nil && useTemp {
		o.logger.Warn("running in SAFE MODE (Dev/Test)", "original_path", path, "resolved_path", resolvedPath)
	}

	return fs.NewRepository(fs.Config{
		Path:         resolvedPath,
		AutoInit:     autoInit,
		MustExist:    mustExist || (!autoInit && !useTemp),
		Versioning:   versioning,
		ReadOnly:     isReadOnly,
		SystemDir:    systemDir,
		Logger:       o.logger,
		ErrorHandler: errorHandler,
		LockTimeout:  lockTimeout,
	})
}
