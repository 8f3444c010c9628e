package core_test

import (
	"context"
	"errors"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/todoroll/pkg/core"
)

// MockStorage implements core.Storage in memory.
// It deliberately does NOT implement core.Journal or core.Locker so the
// optional paths can be tested by wrapping it.
type MockStorage struct {
	mu        sync.Mutex
	id        string
	files     map[string]string
	folders   map[string]bool
	mutations int

	createErr map[string]error
	onList    func()
}

func NewMockStorage(id string) *MockStorage {
	return &MockStorage{
		id:        id,
		files:     make(map[string]string),
		folders:   make(map[string]bool),
		createErr: make(map[string]error),
	}
}

func (m *MockStorage) ID() string { return m.id }

func (m *MockStorage) Put(p, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[p] = content
}

func (m *MockStorage) Content(p string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.files[p]
	return c, ok
}

func (m *MockStorage) Mutations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mutations
}

func (m *MockStorage) Exists(ctx context.Context, p string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, file := m.files[p]
	return file || m.folders[p], nil
}

func (m *MockStorage) ReadText(ctx context.Context, p string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.folders[p] {
		return "", core.ErrNotAFile
	}
	c, ok := m.files[p]
	if !ok {
		return "", core.ErrNotFound
	}
	return c, nil
}

func (m *MockStorage) WriteText(ctx context.Context, p, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[p]; !ok {
		return core.ErrNotFound
	}
	m.files[p] = content
	m.mutations++
	return nil
}

func (m *MockStorage) CreateFile(ctx context.Context, p, content string) (core.CreateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.createErr[p]; err != nil {
		return core.Created, err
	}
	if _, ok := m.files[p]; ok || m.folders[p] {
		return core.AlreadyExisted, nil
	}
	m.files[p] = content
	m.mutations++
	return core.Created, nil
}

func (m *MockStorage) CreateFolder(ctx context.Context, p string) (core.CreateResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.folders[p] {
		return core.AlreadyExisted, nil
	}
	if _, ok := m.files[p]; ok {
		return core.Created, errors.New("a file occupies " + p)
	}
	m.folders[p] = true
	m.mutations++
	return core.Created, nil
}

func (m *MockStorage) Move(ctx context.Context, from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.files[from]
	if !ok {
		return core.ErrNotFound
	}
	if _, taken := m.files[to]; taken {
		return core.ErrAlreadyExists
	}
	delete(m.files, from)
	m.files[to] = c
	m.mutations++
	return nil
}

func (m *MockStorage) ListMarkdown(ctx context.Context) ([]core.File, error) {
	m.mu.Lock()
	var files []core.File
	for p := range m.files {
		if strings.HasSuffix(p, ".md") {
			files = append(files, core.File{Path: p, Name: path.Base(p)})
		}
	}
	hook := m.onList
	m.mu.Unlock()

	// Sort for deterministic tests
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	if hook != nil {
		hook()
	}
	return files, nil
}

// MockJournal implements core.Journal in memory.
type MockJournal struct {
	entry   *core.JournalEntry
	records int
}

func (j *MockJournal) Pending(ctx context.Context) (core.JournalEntry, bool, error) {
	if j.entry == nil {
		return core.JournalEntry{}, false, nil
	}
	return *j.entry, true, nil
}

func (j *MockJournal) Record(ctx context.Context, e core.JournalEntry) error {
	j.entry = &e
	j.records++
	return nil
}

func (j *MockJournal) Clear(ctx context.Context) error {
	j.entry = nil
	return nil
}

// lockingStorage adds core.Locker and core.Versioned to MockStorage.
type lockingStorage struct {
	*MockStorage
	locks   int
	commits []string
}

func (l *lockingStorage) Lock(ctx context.Context) (func(), error) {
	l.locks++
	return func() {}, nil
}

func (l *lockingStorage) Commit(ctx context.Context, msg string) error {
	l.commits = append(l.commits, msg)
	return nil
}

// recordingNotifier keeps every message.
type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recordingNotifier) Notify(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingNotifier) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}
