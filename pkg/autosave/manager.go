package autosave

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"github.com/aretw0/canvas/internal/logging"
	"github.com/aretw0/canvas/pkg/constraint"
	"github.com/aretw0/canvas/pkg/domain"
	"github.com/aretw0/canvas/pkg/ports"
	"github.com/aretw0/canvas/pkg/propsource"
	"github.com/aretw0/canvas/pkg/validation"
)

// DefaultLockTTL bounds how long a distributed draft lock is held.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates draft access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	drafts      ports.DraftStore
	hosts       ports.HostProvider
	definitions ports.ComponentDefinitionProvider

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	validator constraint.Validator
	locker    ports.DistributedLocker // Optional distributed locker
	lockTTL   time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the distributed lock TTL (default DefaultLockTTL).
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithValidator replaces the validator run on Publish
// (default: constraint.NewValidComponentTree).
func WithValidator(v constraint.Validator) Option {
	return func(m *Manager) {
		m.validator = v
	}
}

// WithClock overrides the time source used for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a draft Manager.
func NewManager(drafts ports.DraftStore, hosts ports.HostProvider, definitions ports.ComponentDefinitionProvider, opts ...Option) *Manager {
	m := &Manager{
		drafts:      drafts,
		hosts:       hosts,
		definitions: definitions,
		locks:       make(map[string]*lockEntry),
		lockTTL:     DefaultLockTTL,
		now:         time.Now,
		logger:      logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.validator == nil {
		m.validator = constraint.NewValidComponentTree(definitions, constraint.WithLogger(m.logger))
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(key) after unlocking.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// SaveDraft stores tree as the host's draft. Inputs are collapsed first.
// It reports false, and writes nothing, when the stored draft already has
// the same hash.
func (m *Manager) SaveDraft(ctx context.Context, hostType, hostID string, tree domain.ComponentTree) (*domain.Draft, bool, error) {
	key := domain.DraftKey(hostType, hostID)
	var (
		draft   *domain.Draft
		changed bool
	)
	err := m.WithLock(ctx, key, func(ctx context.Context) error {
		collapsed, err := m.collapse(ctx, tree)
		if err != nil {
			return err
		}
		hash, err := propsource.Hash(collapsed)
		if err != nil {
			return err
		}

		existing, err := m.drafts.Load(ctx, key)
		switch {
		case err == nil && existing.Hash == hash:
			draft = existing
			return nil
		case err != nil && !errors.Is(err, domain.ErrDraftNotFound):
			return fmt.Errorf("failed to load draft: %w", err)
		}

		draft = &domain.Draft{
			HostType:  hostType,
			HostID:    hostID,
			Tree:      collapsed,
			Hash:      hash,
			UpdatedAt: m.now().UTC(),
		}
		if err := m.drafts.Save(ctx, key, draft); err != nil {
			return fmt.Errorf("failed to save draft: %w", err)
		}
		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	m.logger.Debug("draft saved", "key", key, "changed", changed)
	return draft, changed, nil
}

// collapse collapses the inputs of every item whose component version is known.
func (m *Manager) collapse(ctx context.Context, tree domain.ComponentTree) (domain.ComponentTree, error) {
	versions := make(map[string]*domain.ComponentVersion, len(tree))
	for _, item := range tree {
		if item.ComponentID == "" {
			continue
		}
		v, err := m.definitions.GetVersion(ctx, item.ComponentID, item.ComponentVersion)
		if errors.Is(err, domain.ErrComponentNotFound) || errors.Is(err, domain.ErrVersionNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		versions[item.UUID] = v
	}
	return propsource.CollapseTree(tree, versions)
}

// Publish validates the host's draft and, when valid, writes it to the host
// and removes the draft. Invalid drafts are kept and a
// *validation.ViolationListError is returned.
func (m *Manager) Publish(ctx context.Context, hostType, hostID string) (ports.HostEntity, error) {
	key := domain.DraftKey(hostType, hostID)
	var host ports.HostEntity
	err := m.WithLock(ctx, key, func(ctx context.Context) error {
		draft, err := m.drafts.Load(ctx, key)
		if err != nil {
			return err
		}
		host, err = m.hosts.Load(ctx, hostType, hostID)
		if err != nil {
			return err
		}

		vctx := validation.NewContext("")
		if err := m.validator.Validate(ctx, draft.Tree, vctx); err != nil {
			return fmt.Errorf("failed to validate draft: %w", err)
		}
		if err := vctx.Err(); err != nil {
			return err
		}

		previous := host.ComponentTree()
		host.SetComponentTree(draft.Tree)
		if err := m.hosts.Save(ctx, host); err != nil {
			host.SetComponentTree(previous)
			return fmt.Errorf("failed to publish draft: %w", err)
		}
		return m.drafts.Delete(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	m.logger.Info("draft published", "key", key)
	return host, nil
}

// Discard removes the host's draft.
func (m *Manager) Discard(ctx context.Context, hostType, hostID string) error {
	key := domain.DraftKey(hostType, hostID)
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		return m.drafts.Delete(ctx, key)
	})
}

// Load retrieves the host's draft.
func (m *Manager) Load(ctx context.Context, hostType, hostID string) (*domain.Draft, error) {
	key := domain.DraftKey(hostType, hostID)
	var draft *domain.Draft
	err := m.WithLock(ctx, key, func(ctx context.Context) error {
		var err error
		draft, err = m.drafts.Load(ctx, key)
		return err
	})
	return draft, err
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.drafts.List(ctx)
}

// WithLock executes a function while holding the lock for the draft key.
func (m *Manager) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()

	// Distributed Locking
	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, key, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
