package engine

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"todoquest/internal/logging"
	"todoquest/internal/storage"
)

// Service owns the singleton profile. Every operation that reads and then writes
// the profile holds mu and runs in a single transaction, so concurrent task
// events are applied one after another and never observe each other half-done.
type Service struct {
	db           *sql.DB
	mu           sync.Mutex
	tasks        *storage.TaskRepo
	profiles     *storage.ProfileRepo
	history      *storage.HistoryRepo
	achievements *storage.AchievementRepo

	notifier *Notifier
	logger   *slog.Logger
	now      func() time.Time
	username string
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithUsername sets the name used when the profile is first created.
func WithUsername(name string) Option {
	return func(s *Service) { s.username = strings.TrimSpace(name) }
}

func WithNotifier(n *Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

func NewService(db *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:           db,
		tasks:        storage.NewTaskRepo(db),
		profiles:     storage.NewProfileRepo(db),
		history:      storage.NewHistoryRepo(db),
		achievements: storage.NewAchievementRepo(db),
		notifier:     NewNotifier(),
		logger:       logging.Discard(),
		now:          time.Now,
		username:     "Player",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) TaskRepo() *storage.TaskRepo               { return s.tasks }
func (s *Service) ProfileRepo() *storage.ProfileRepo         { return s.profiles }
func (s *Service) HistoryRepo() *storage.HistoryRepo         { return s.history }
func (s *Service) AchievementRepo() *storage.AchievementRepo { return s.achievements }
func (s *Service) Notifier() *Notifier                       { return s.notifier }

// repos is the set of stores bound to one transaction.
type repos struct {
	tasks        *storage.TaskRepo
	profiles     *storage.ProfileRepo
	history      *storage.HistoryRepo
	achievements *storage.AchievementRepo
}

func reposFor(tx storage.DBTX) repos {
	return repos{
		tasks:        storage.NewTaskRepo(tx),
		profiles:     storage.NewProfileRepo(tx),
		history:      storage.NewHistoryRepo(tx),
		achievements: storage.NewAchievementRepo(tx),
	}
}

// Bootstrap creates the profile row and seeds the default achievements on first run.
func (s *Service) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		r := reposFor(tx)
		if _, err := r.profiles.GetOrCreateMain(ctx, s.username); err != nil {
			return err
		}
		n, err := r.achievements.SeedIfEmpty(ctx, DefaultAchievements())
		if err != nil {
			return err
		}
		if n > 0 {
			s.logger.Info("seeded achievements", "count", n)
		}
		return nil
	})
}

// Profile returns the committed profile, creating the default one if missing.
func (s *Service) Profile(ctx context.Context) (*storage.Profile, error) {
	p, err := s.profiles.GetOrCreateMain(ctx, s.username)
	if err != nil {
		return nil, err
	}
	ExpireStreak(p, s.now())
	return p, nil
}

// SetUsername renames the profile.
func (s *Service) SetUsername(ctx context.Context, name string) (*storage.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ValidationError{Field: "username", Reason: "must not be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out *storage.Profile
	err := storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		r := reposFor(tx)
		p, err := r.profiles.GetOrCreateMain(ctx, s.username)
		if err != nil {
			return err
		}
		p.Username = name
		ExpireStreak(p, s.now())
		if err := r.profiles.Update(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("set username: %w", err)
	}
	s.notifier.Publish(Event{Kind: EventProfileUpdated, At: s.now()})
	return out, nil
}

func (s *Service) ListAchievements(ctx context.Context) ([]storage.Achievement, error) {
	return s.achievements.ListAll(ctx)
}

// ListHistory returns all history records, or those with the given status.
func (s *Service) ListHistory(ctx context.Context, status HistoryStatus) ([]storage.HistoryEntry, error) {
	if status == "" {
		return s.history.ListAll(ctx)
	}
	if !status.IsValid() {
		return nil, ValidationError{Field: "status", Reason: fmt.Sprintf("unknown history status %q", status)}
	}
	return s.history.ListByStatus(ctx, string(status))
}
