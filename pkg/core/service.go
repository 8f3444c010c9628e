package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Service runs rollovers against a Storage.
//
// A rollover archives the newest previous todo note and starts the note for
// the current period with the previous note's open rows. Runs are serialized
// per vault; a concurrent call returns OutcomeBusy instead of waiting.
type Service struct {
	st       Storage
	logger   *slog.Logger
	notifier Notifier
	journal  Journal
	now      func() time.Time
	newRun   func() string

	mu              sync.RWMutex
	subscribers     map[int]chan Event
	nextSub         int
	eventBufferSize int
	runs            int
	last            *Result
	lastErr         error
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithNotifier sets where user-facing messages go.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) {
		s.notifier = n
	}
}

// WithJournal overrides the journal. By default the storage is used when it implements Journal.
func WithJournal(j Journal) ServiceOption {
	return func(s *Service) {
		s.journal = j
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithEventBuffer sets the buffer size of subscriber channels. Zero means default (16).
func WithEventBuffer(size int) ServiceOption {
	return func(s *Service) {
		if size > 0 {
			s.eventBufferSize = size
		}
	}
}

// NewService creates a new Service.
func NewService(st Storage, opts ...ServiceOption) *Service {
	s := &Service{
		st:              st,
		logger:          slog.New(slog.DiscardHandler),
		now:             time.Now,
		newRun:          uuid.NewString,
		subscribers:     make(map[int]chan Event),
		eventBufferSize: 16,
	}
	if j, ok := st.(Journal); ok {
		s.journal = j
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Storage returns the underlying storage.
func (s *Service) Storage() Storage {
	return s.st
}

// Target returns the note path for the current period.
func (s *Service) Target(settings Settings) string {
	return TargetPath(settings, s.now())
}

// Roll performs one rollover check.
//
// Without force, an existing note for the current period makes the call a no-op.
// With force, the sequence runs anyway and carried rows are appended to the
// existing note. Failures are reported to the notifier and returned; they are
// never retried.
func (s *Service) Roll(ctx context.Context, settings Settings, force bool) (Result, error) {
	res := Result{Run: s.newRun(), At: s.now()}
	log := s.logger.With("run", res.Run, "mode", settings.GenerationMode, "force", force)

	release, ok := acquire(s.st.ID())
	if !ok {
		res.Outcome = OutcomeBusy
		log.Debug("rollover skipped, vault busy", "vault", s.st.ID())
		s.finish(log, res, ErrRolloverInProgress, force)
		return res, ErrRolloverInProgress
	}
	defer release()

	if l, ok := s.st.(Locker); ok {
		unlock, err := l.Lock(ctx)
		if err != nil {
			res.Outcome = OutcomeFailed
			err = fmt.Errorf("acquire vault lock: %w", err)
			s.finish(log, res, err, force)
			return res, err
		}
		defer unlock()
	}

	res, err := s.roll(ctx, log, settings.Normalize(), force, res)
	if err != nil {
		res.Outcome = OutcomeFailed
	} else if res.Outcome.Mutated() {
		s.commit(ctx, log, res)
	}
	s.finish(log, res, err, force)
	return res, err
}

func (s *Service) roll(ctx context.Context, log *slog.Logger, settings Settings, force bool, res Result) (Result, error) {
	if _, err := s.st.CreateFolder(ctx, ArchiveFolder); err != nil {
		return res, fmt.Errorf("ensure archive folder: %w", err)
	}

	res.Target = TargetPath(settings, res.At)
	if done, err := s.repair(ctx, log, &res); err != nil || done {
		return res, err
	}

	exists, err := s.st.Exists(ctx, res.Target)
	if err != nil {
		return res, fmt.Errorf("check %s: %w", res.Target, err)
	}
	if exists && !force {
		res.Outcome = OutcomeUpToDate
		return res, nil
	}

	files, err := s.st.ListMarkdown(ctx)
	if err != nil {
		return res, fmt.Errorf("list notes: %w", err)
	}

	prev, ok := LocatePrevious(files, path.Base(res.Target))
	if !ok {
		created, err := s.st.CreateFile(ctx, res.Target, "")
		if err != nil {
			return res, fmt.Errorf("create %s: %w", res.Target, err)
		}
		res.Outcome = OutcomeCreated
		if created == AlreadyExisted {
			res.Outcome = OutcomeUpToDate
		}
		return res, nil
	}
	res.Previous = prev.Path

	archive, err := ArchivePath(ctx, s.st, prev.Name)
	if err != nil {
		return res, err
	}
	res.Archive = archive

	if s.journal != nil {
		entry := JournalEntry{
			Previous: prev.Path,
			Archive:  archive,
			Target:   res.Target,
			Run:      res.Run,
			Started:  res.At,
		}
		if err := s.journal.Record(ctx, entry); err != nil {
			return res, fmt.Errorf("record journal: %w", err)
		}
	}

	log.Debug("archiving previous note", "from", prev.Path, "to", archive)
	if err := s.st.Move(ctx, prev.Path, archive); err != nil {
		s.clearJournal(ctx, log)
		return res, fmt.Errorf("archive %s: %w", prev.Path, err)
	}

	// From here on a failure leaves the journal entry behind for repair.
	lines, err := s.carried(ctx, archive)
	if err != nil {
		return res, err
	}
	res.Carried = len(DataRows(lines))

	res.Outcome, err = s.write(ctx, res.Target, lines)
	if err != nil {
		return res, err
	}
	s.clearJournal(ctx, log)
	return res, nil
}

// repair completes a rollover that stopped between the move and the write.
// A target that exists but is blank was claimed and never filled, so it is
// completed too. It reports done when the repaired note is the current target.
func (s *Service) repair(ctx context.Context, log *slog.Logger, res *Result) (bool, error) {
	if s.journal == nil {
		return false, nil
	}
	entry, pending, err := s.journal.Pending(ctx)
	if err != nil {
		return false, fmt.Errorf("read journal: %w", err)
	}
	if !pending {
		return false, nil
	}

	targetExists, err := s.st.Exists(ctx, entry.Target)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", entry.Target, err)
	}
	if targetExists {
		content, err := s.st.ReadText(ctx, entry.Target)
		if err != nil {
			return false, fmt.Errorf("read %s: %w", entry.Target, err)
		}
		if strings.TrimSpace(content) != "" {
			log.Debug("clearing stale journal entry", "target", entry.Target)
			s.clearJournal(ctx, log)
			return false, nil
		}
	}

	lines, err := s.carried(ctx, entry.Archive)
	if errors.Is(err, ErrNotFound) {
		log.Warn("journal points at a missing archive, dropping it", "archive", entry.Archive)
		s.clearJournal(ctx, log)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if targetExists {
		if err := s.st.WriteText(ctx, entry.Target, strings.Join(lines, "\n")); err != nil {
			return false, fmt.Errorf("fill %s: %w", entry.Target, err)
		}
	} else if _, err := s.write(ctx, entry.Target, lines); err != nil {
		return false, err
	}
	s.clearJournal(ctx, log)
	log.Info("completed interrupted rollover", "target", entry.Target, "archive", entry.Archive, "interrupted_run", entry.Run)

	if entry.Target != res.Target {
		return false, nil
	}
	res.Outcome = OutcomeRepaired
	res.Previous = entry.Previous
	res.Archive = entry.Archive
	res.Carried = len(DataRows(lines))
	return true, nil
}

func (s *Service) carried(ctx context.Context, archive string) ([]string, error) {
	content, err := s.st.ReadText(ctx, archive)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", archive, err)
	}
	return FilterTable(content), nil
}

// write creates target with lines, or merges them into an existing note.
func (s *Service) write(ctx context.Context, target string, lines []string) (Outcome, error) {
	created, err := s.st.CreateFile(ctx, target, strings.Join(lines, "\n"))
	if err != nil {
		return OutcomeFailed, fmt.Errorf("create %s: %w", target, err)
	}
	if created == Created {
		return OutcomeRolled, nil
	}

	existing, err := s.st.ReadText(ctx, target)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("read %s: %w", target, err)
	}
	if err := s.st.WriteText(ctx, target, MergeRows(existing, lines)); err != nil {
		return OutcomeFailed, fmt.Errorf("merge into %s: %w", target, err)
	}
	return OutcomeMerged, nil
}

func (s *Service) clearJournal(ctx context.Context, log *slog.Logger) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Clear(ctx); err != nil {
		log.Warn("failed to clear journal", "error", err)
	}
}

func (s *Service) commit(ctx context.Context, log *slog.Logger, res Result) {
	v, ok := s.st.(Versioned)
	if !ok {
		return
	}
	if err := v.Commit(ctx, rolloverMessage(res)); err != nil {
		log.Warn("failed to commit rollover", "error", err)
	}
}

// finish records the run, publishes its event and tells the user.
func (s *Service) finish(log *slog.Logger, res Result, err error, force bool) {
	s.mu.Lock()
	s.runs++
	last := res
	s.last = &last
	s.lastErr = err
	s.mu.Unlock()

	s.publish(Event{
		Outcome: res.Outcome,
		Target:  res.Target,
		Archive: res.Archive,
		Run:     res.Run,
		Err:     err,
		Time:    res.At,
	})

	switch res.Outcome {
	case OutcomeBusy:
		return
	case OutcomeFailed:
		log.Error("rollover failed", "target", res.Target, "error", err)
		s.notify("[FAIL] could not roll over todo note: " + err.Error())
	case OutcomeUpToDate:
		log.Debug("todo note is up to date", "target", res.Target)
		if force {
			s.notify("todo note " + res.Target + " already exists")
		}
	case OutcomeCreated:
		log.Info("created todo note", "target", res.Target)
		s.notify("[SUCCESS] created new todo note " + res.Target)
	case OutcomeRolled:
		log.Info("rolled over todo note", "target", res.Target, "archive", res.Archive, "carried", res.Carried)
		s.notify(fmt.Sprintf("[SUCCESS] rolled over to %s, carried %d open rows", res.Target, res.Carried))
	case OutcomeMerged:
		log.Info("merged carried rows", "target", res.Target, "archive", res.Archive, "carried", res.Carried)
		s.notify(fmt.Sprintf("[SUCCESS] carried %d open rows into %s", res.Carried, res.Target))
	case OutcomeRepaired:
		s.notify("[SUCCESS] restored " + res.Target + " from " + res.Archive)
	}
}

func (s *Service) notify(msg string) {
	if s.notifier != nil {
		s.notifier.Notify(msg)
	}
}

// Subscribe returns a channel receiving an Event after every run and a cancel
// func that closes it. Slow subscribers drop events.
func (s *Service) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Event, s.eventBufferSize)
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subscribers, id)
			close(ch)
		})
	}
}

func (s *Service) publish(e Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- e:
		default:
			s.logger.Warn("event buffer full, dropping event", "outcome", e.Outcome, "run", e.Run)
		}
	}
}

// guards serializes rollovers per vault within the process.
var guards sync.Map

func acquire(id string) (release func(), ok bool) {
	v, _ := guards.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	if !mu.TryLock() {
		return nil, false
	}
	return mu.Unlock, true
}
