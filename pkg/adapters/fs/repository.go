package fs

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/todoroll/pkg/core"
	"github.com/aretw0/todoroll/pkg/git"
)

// DefaultSystemDir holds the lock, journal and settings files inside the vault.
const DefaultSystemDir = ".todoroll"

// Repository implements core.Storage on a vault directory.
type Repository struct {
	Path   string
	git    *git.Client
	config Config

	// writeMu serializes mutations issued by this process.
	writeMu sync.Mutex

	mu            sync.RWMutex
	versioned     bool
	notes         int
	watcherActive bool
	lastCommit    *time.Time
	ready         chan struct{}
	readyOnce     sync.Once
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Path       string
	AutoInit   bool // Create the vault directory (and git repo when versioning) if missing.
	MustExist  bool
	Versioning bool // Commit rollovers when the vault is a git repository.
	ReadOnly   bool
	SystemDir  string // e.g. ".todoroll"
	Logger     *slog.Logger

	// ErrorHandler receives watcher errors. When nil they are only logged.
	ErrorHandler func(error)

	// LockTimeout bounds how long Lock waits for another process. Zero means 30s.
	LockTimeout time.Duration
	// StaleLockAge is the age after which a leftover lock file is broken. Zero means 10m.
	StaleLockAge time.Duration
}

// NewRepository creates a new filesystem-backed repository.
// It does no I/O until Initialize is called.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	if config.LockTimeout == 0 {
		config.LockTimeout = 30 * time.Second
	}
	if config.StaleLockAge == 0 {
		config.StaleLockAge = 10 * time.Minute
	}
	return &Repository{
		Path:   config.Path,
		git:    git.NewClient(config.Path, config.Logger),
		config: config,
		ready:  make(chan struct{}),
	}
}

// Initialize performs the necessary setup for the repository (mkdir, git
// detection) and indexes the vault once. Ready is closed afterwards.
func (r *Repository) Initialize(ctx context.Context) error {
	if r.config.MustExist || r.config.ReadOnly {
		info, err := os.Stat(r.Path)
		if os.IsNotExist(err) {
			return fmt.Errorf("vault path does not exist: %s", r.Path)
		}
		if err != nil {
			return fmt.Errorf("failed to stat vault: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", r.Path)
		}
	} else {
		if err := os.MkdirAll(r.Path, 0755); err != nil {
			return fmt.Errorf("failed to create vault directory: %w", err)
		}
	}

	if !r.config.ReadOnly {
		if err := os.MkdirAll(r.systemPath(), 0755); err != nil {
			return fmt.Errorf("failed to create system directory: %w", err)
		}
	}

	if err := r.initVersioning(ctx); err != nil {
		return err
	}

	if _, err := r.ListMarkdown(ctx); err != nil {
		return fmt.Errorf("failed to index vault: %w", err)
	}
	r.readyOnce.Do(func() { close(r.ready) })
	return nil
}

func (r *Repository) initVersioning(ctx context.Context) error {
	if !r.config.Versioning || r.config.ReadOnly {
		return nil
	}
	if !git.IsInstalled() {
		r.config.Logger.Warn("versioning requested but git is not installed")
		return nil
	}

	if !r.git.IsRepo() {
		if !r.config.AutoInit {
			r.config.Logger.Debug("vault is not a git repository, versioning disabled", "path", r.Path)
			return nil
		}
		if err := r.git.Init(ctx); err != nil {
			return fmt.Errorf("failed to git init: %w", err)
		}
	}

	if _, err := r.ensureIgnore(); err != nil {
		return fmt.Errorf("failed to ensure .gitignore: %w", err)
	}

	r.mu.Lock()
	r.versioned = true
	r.mu.Unlock()
	return nil
}

// ensureIgnore keeps the system directory out of version control.
func (r *Repository) ensureIgnore() (bool, error) {
	ignorePath := filepath.Join(r.Path, ".gitignore")
	ignoreEntry := r.config.SystemDir + "/"

	content, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}

	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) == ignoreEntry {
			return false, nil
		}
	}

	f, err := os.OpenFile(ignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return false, err
	}
	defer f.Close()

	if len(content) > 0 && !strings.HasSuffix(string(content), "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return false, err
		}
	}

	if _, err := f.WriteString(ignoreEntry + "\n"); err != nil {
		return false, err
	}

	return true, nil
}

// Ready is closed once Initialize has indexed the vault.
func (r *Repository) Ready() <-chan struct{} {
	return r.ready
}

// ID returns the absolute vault path.
func (r *Repository) ID() string {
	abs, err := filepath.Abs(r.Path)
	if err != nil {
		return filepath.Clean(r.Path)
	}
	return abs
}

// SystemPath returns the absolute path of a file inside the system directory.
func (r *Repository) SystemPath(name string) string {
	return filepath.Join(r.systemPath(), name)
}

func (r *Repository) systemPath() string {
	return filepath.Join(r.Path, r.config.SystemDir)
}

// resolve maps a vault-relative slash path onto the filesystem.
func (r *Repository) resolve(p string) (string, error) {
	local := filepath.FromSlash(p)
	if p == "" || !filepath.IsLocal(local) {
		return "", fmt.Errorf("path %q escapes the vault", p)
	}
	return filepath.Join(r.Path, local), nil
}

func (r *Repository) checkWritable() error {
	if r.config.ReadOnly {
		return core.ErrReadOnly
	}
	return nil
}

// Exists reports whether a file or folder occupies p.
func (r *Repository) Exists(ctx context.Context, p string) (bool, error) {
	full, err := r.resolve(p)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(full)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ReadText returns the content of the note at p.
func (r *Repository) ReadText(ctx context.Context, p string) (string, error) {
	full, err := r.resolve(p)
	if err != nil {
		return "", err
	}
	if err := r.statFile(full, p); err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", p, err)
	}
	return string(data), nil
}

// WriteText replaces the content of the existing note at p.
func (r *Repository) WriteText(ctx context.Context, p, content string) error {
	if err := r.checkWritable(); err != nil {
		return err
	}
	full, err := r.resolve(p)
	if err != nil {
		return err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if err := r.statFile(full, p); err != nil {
		return err
	}
	r.config.Logger.Debug("writing note to disk", "path", p)
	return writeFileAtomic(full, []byte(content), 0644)
}

// CreateFile creates a note at p. An occupied path yields core.AlreadyExisted.
// The name is claimed with O_EXCL before the content is written atomically.
func (r *Repository) CreateFile(ctx context.Context, p, content string) (core.CreateResult, error) {
	if err := r.checkWritable(); err != nil {
		return core.Created, err
	}
	full, err := r.resolve(p)
	if err != nil {
		return core.Created, err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return core.Created, fmt.Errorf("failed to create directories: %w", err)
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if os.IsExist(err) {
		return core.AlreadyExisted, nil
	}
	if err != nil {
		return core.Created, fmt.Errorf("failed to create %s: %w", p, err)
	}
	if err := f.Close(); err != nil {
		return core.Created, fmt.Errorf("failed to close %s: %w", p, err)
	}

	if content != "" {
		if err := writeFileAtomic(full, []byte(content), 0644); err != nil {
			// Do not leave an empty placeholder where the note should be.
			_ = os.Remove(full)
			return core.Created, err
		}
	}

	r.config.Logger.Debug("created note", "path", p, "bytes", len(content))
	return core.Created, nil
}

// CreateFolder creates p and its parents. An existing folder yields core.AlreadyExisted.
func (r *Repository) CreateFolder(ctx context.Context, p string) (core.CreateResult, error) {
	full, err := r.resolve(p)
	if err != nil {
		return core.Created, err
	}

	info, err := os.Stat(full)
	if err == nil {
		if !info.IsDir() {
			return core.Created, fmt.Errorf("%s exists and is not a folder: %w", p, core.ErrAlreadyExists)
		}
		return core.AlreadyExisted, nil
	}
	if !os.IsNotExist(err) {
		return core.Created, err
	}

	if err := r.checkWritable(); err != nil {
		return core.Created, err
	}
	if err := os.MkdirAll(full, 0755); err != nil {
		return core.Created, fmt.Errorf("failed to create folder %s: %w", p, err)
	}
	return core.Created, nil
}

// Move renames the note at from to to. It never overwrites to.
func (r *Repository) Move(ctx context.Context, from, to string) error {
	if err := r.checkWritable(); err != nil {
		return err
	}
	src, err := r.resolve(from)
	if err != nil {
		return err
	}
	dst, err := r.resolve(to)
	if err != nil {
		return err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	if err := r.statFile(src, from); err != nil {
		return err
	}
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("cannot move %s to %s: %w", from, to, core.ErrAlreadyExists)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	r.config.Logger.Debug("moving note", "from", from, "to", to)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to move %s: %w", from, err)
	}
	return nil
}

// ListMarkdown returns every .md note, skipping hidden folders such as
// .git, .obsidian and the system directory.
func (r *Repository) ListMarkdown(ctx context.Context) ([]core.File, error) {
	var files []core.File

	err := doublestar.GlobWalk(os.DirFS(r.Path), "**/*.md", func(p string, d iofs.DirEntry) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || hidden(p) {
			return nil
		}
		files = append(files, core.File{Path: p, Name: path.Base(p)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk vault dir: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	r.mu.Lock()
	r.notes = len(files)
	r.mu.Unlock()

	return files, nil
}

// Commit stages the todo folder and records a commit when versioning is active.
func (r *Repository) Commit(ctx context.Context, msg string) error {
	r.mu.RLock()
	versioned := r.versioned
	r.mu.RUnlock()
	if !versioned {
		return nil
	}

	if err := r.git.Add(ctx, core.TodoFolder); err != nil {
		return fmt.Errorf("failed to git add: %w", err)
	}
	staged, err := r.git.HasStaged(ctx)
	if err != nil {
		return err
	}
	if !staged {
		r.config.Logger.Debug("nothing to commit")
		return nil
	}
	if err := r.git.Commit(ctx, msg); err != nil {
		return fmt.Errorf("failed to git commit: %w", err)
	}

	now := time.Now()
	r.mu.Lock()
	r.lastCommit = &now
	r.mu.Unlock()
	return nil
}

func (r *Repository) statFile(full, p string) error {
	info, err := os.Stat(full)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", p, core.ErrNotFound)
	}
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", p, core.ErrNotAFile)
	}
	return nil
}

func hidden(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

var (
	_ core.Storage   = (*Repository)(nil)
	_ core.Locker    = (*Repository)(nil)
	_ core.Versioned = (*Repository)(nil)
	_ core.Journal   = (*Repository)(nil)
)

// IsNotFound reports whether err means a missing note.
func IsNotFound(err error) bool {
	return errors.Is(err, core.ErrNotFound)
}
