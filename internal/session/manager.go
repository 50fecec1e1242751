// ABOUTME: Party session manager: login, creation, deletion, and expiration sweep
// ABOUTME: Persists parties and the current user through kv, cascades deletes into the media table

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2389/partycollage/internal/auth"
	"github.com/2389/partycollage/internal/kv"
	"github.com/2389/partycollage/internal/metrics"
	"github.com/2389/partycollage/internal/store"
)

// Slot keys owned by the manager.
const (
	PartiesKey     = "parties"
	CurrentUserKey = "currentUser"
)

// DefaultExpiryDays is used when no expiry is configured or requested.
const DefaultExpiryDays = 7

// Errors returned to callers for display.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("party not found")
	ErrInvalidCredentials = errors.New("invalid password")
	ErrConflict           = errors.New("a party with this name already exists")
)

// Manager owns party and current-user semantics.
type Manager struct {
	kv         *kv.Store
	media      store.MediaStore
	checker    auth.CredentialChecker
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time
	expiryDays int
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithCredentialChecker overrides the plaintext default.
func WithCredentialChecker(c auth.CredentialChecker) Option {
	return func(m *Manager) { m.checker = c }
}

// WithDefaultExpiryDays sets the expiry used when CreateParty gets no expiry option.
func WithDefaultExpiryDays(days int) Option {
	return func(m *Manager) { m.expiryDays = days }
}

// WithMetrics records activity into m.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a manager over the given slots and media table.
func NewManager(slots *kv.Store, media store.MediaStore, opts ...Option) *Manager {
	m := &Manager{
		kv:         slots,
		media:      media,
		checker:    auth.Plaintext{},
		logger:     slog.Default(),
		now:        time.Now,
		expiryDays: DefaultExpiryDays,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "session")
	return m
}

// PartyOption adjusts a single CreateParty/RegisterParty call.
type PartyOption func(*partyOptions)

type partyOptions struct {
	days     int
	noExpiry bool
}

// WithExpiresInDays sets the party to expire days*24h after creation.
// Zero creates a party that is already expired at the next sweep.
func WithExpiresInDays(days int) PartyOption {
	return func(o *partyOptions) { o.days = days }
}

// WithoutExpiry creates a party that never expires.
func WithoutExpiry() PartyOption {
	return func(o *partyOptions) { o.noExpiry = true }
}

// Parties returns the stored party list without sweeping.
func (m *Manager) Parties(ctx context.Context) []Party {
	var parties []Party
	if !m.kv.Get(ctx, PartiesKey, &parties) {
		return []Party{}
	}
	return parties
}

// Party looks an active party up by name, case-insensitively. Expired
// records still awaiting a sweep are not found.
func (m *Manager) Party(ctx context.Context, name string) (*Party, error) {
	name = strings.TrimSpace(name)
	now := m.now()
	for _, p := range m.Parties(ctx) {
		if sameName(p.Name, name) && p.Active(now) {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Login signs the device into an existing party.
func (m *Manager) Login(ctx context.Context, partyName, password string) (*User, error) {
	m.Sweep(ctx)

	partyName = strings.TrimSpace(partyName)
	password = strings.TrimSpace(password)
	if partyName == "" || password == "" {
		m.metrics.ObserveLogin(metrics.LoginInvalid)
		return nil, fmt.Errorf("%w: party name and password are required", ErrValidation)
	}

	party, err := m.Party(ctx, partyName)
	if err != nil {
		m.metrics.ObserveLogin(metrics.LoginNotFound)
		return nil, err
	}

	if !m.checker.Match(party.Password, password) {
		m.metrics.ObserveLogin(metrics.LoginInvalidCredentials)
		m.logger.Info("login rejected", "party", party.Name)
		return nil, ErrInvalidCredentials
	}

	user := m.setCurrentUser(ctx, party.Name)
	m.metrics.ObserveLogin(metrics.LoginSuccess)
	m.logger.Info("logged in", "party", party.Name)
	return user, nil
}

// RegisterParty validates and persists a new party without touching the
// current user.
func (m *Manager) RegisterParty(ctx context.Context, partyName, password string, opts ...PartyOption) (*Party, error) {
	partyName = strings.TrimSpace(partyName)
	password = strings.TrimSpace(password)
	if partyName == "" || password == "" {
		return nil, fmt.Errorf("%w: party name and password are required", ErrValidation)
	}

	o := partyOptions{days: m.expiryDays}
	for _, opt := range opts {
		opt(&o)
	}
	if o.days < 0 {
		return nil, fmt.Errorf("%w: expiration days must not be negative", ErrValidation)
	}

	// Names of expired parties become available again
	m.Sweep(ctx)

	parties := m.Parties(ctx)
	if existing, err := m.Party(ctx, partyName); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrConflict, existing.Name)
	}

	sealed, err := m.checker.Seal(password)
	if err != nil {
		return nil, fmt.Errorf("sealing password: %w", err)
	}

	now := m.now()
	party := Party{
		Name:      partyName,
		Password:  sealed,
		CreatedAt: now,
	}
	if !o.noExpiry {
		expiresAt := now.Add(time.Duration(o.days) * 24 * time.Hour)
		party.ExpiresAt = &expiresAt
	}

	if !m.kv.Save(ctx, PartiesKey, append(parties, party)) {
		m.logger.Warn("party not persisted", "party", party.Name)
	}

	m.metrics.ObserveCreate()
	m.logger.Info("created party", "party", party.Name, "expires_at", party.ExpiresAt)
	return &party, nil
}

// CreateParty registers a new party and signs the device into it.
func (m *Manager) CreateParty(ctx context.Context, partyName, password string, opts ...PartyOption) (*User, error) {
	party, err := m.RegisterParty(ctx, partyName, password, opts...)
	if err != nil {
		return nil, err
	}
	return m.setCurrentUser(ctx, party.Name), nil
}

// DeleteResult reports what DeleteParty removed.
type DeleteResult struct {
	PartyRemoved bool
	MediaRemoved int
}

// DeleteParty removes the party record, then every media item it created,
// then the current user. The steps are ordered but not atomic.
func (m *Manager) DeleteParty(ctx context.Context, partyName string) (DeleteResult, error) {
	partyName = strings.TrimSpace(partyName)
	if partyName == "" {
		return DeleteResult{}, fmt.Errorf("%w: party name is required", ErrValidation)
	}

	var res DeleteResult

	parties := m.Parties(ctx)
	kept := make([]Party, 0, len(parties))
	for _, p := range parties {
		if sameName(p.Name, partyName) {
			res.PartyRemoved = true
			continue
		}
		kept = append(kept, p)
	}
	m.kv.Save(ctx, PartiesKey, kept)

	removed, err := m.deleteMedia(ctx, func(item *store.MediaItem) bool {
		return sameName(item.Creator, partyName)
	})
	res.MediaRemoved = removed
	if err != nil {
		m.logger.Warn("party media only partly removed", "party", partyName, "error", err)
	}

	m.kv.Remove(ctx, CurrentUserKey)

	m.metrics.ObserveDelete(res.MediaRemoved)
	m.logger.Info("deleted party", "party", partyName, "found", res.PartyRemoved, "media_removed", res.MediaRemoved)
	return res, nil
}

// Logout forgets the current user. Parties and media are kept.
func (m *Manager) Logout(ctx context.Context) {
	m.kv.Remove(ctx, CurrentUserKey)
}

// CurrentUser sweeps expired parties and returns the remembered user, or nil.
func (m *Manager) CurrentUser(ctx context.Context) *User {
	m.Sweep(ctx)

	var user User
	if !m.kv.Get(ctx, CurrentUserKey, &user) {
		return nil
	}
	return &user
}

// CurrentParty returns the party of the current user.
func (m *Manager) CurrentParty(ctx context.Context) (*Party, error) {
	user := m.CurrentUser(ctx)
	if user == nil {
		return nil, fmt.Errorf("%w: not signed in", ErrNotFound)
	}
	return m.Party(ctx, user.Username)
}

// SweepResult reports what an expiration sweep removed.
type SweepResult struct {
	Expired      []string
	MediaRemoved int
	// Pending lists expired parties kept because their media could not all
	// be removed. The next sweep retries them.
	Pending []string
}

// Sweep removes expired parties and every media item whose creator is no
// longer an active party. Media goes first; the party list is only rewritten
// once no orphan is left, so a failed sweep is retried by the next one.
// Nothing is written when no party has expired.
func (m *Manager) Sweep(ctx context.Context) SweepResult {
	parties := m.Parties(ctx)
	now := m.now()

	active := make([]Party, 0, len(parties))
	var expired []string
	for _, p := range parties {
		if p.Active(now) {
			active = append(active, p)
		} else {
			expired = append(expired, p.Name)
		}
	}

	var res SweepResult
	if len(expired) == 0 {
		m.metrics.ObserveSweep(0, 0)
		return res
	}

	removed, err := m.deleteMedia(ctx, func(item *store.MediaItem) bool {
		return !slices.ContainsFunc(active, func(p Party) bool {
			return sameName(p.Name, item.Creator)
		})
	})
	res.MediaRemoved = removed
	if err != nil {
		res.Pending = expired
		m.metrics.ObserveSweep(0, removed)
		m.logger.Warn("expired parties kept until their media is removed", "parties", expired, "error", err)
		return res
	}

	if !m.kv.Save(ctx, PartiesKey, active) {
		res.Pending = expired
		m.metrics.ObserveSweep(0, removed)
		return res
	}

	res.Expired = expired
	m.metrics.ObserveSweep(len(res.Expired), res.MediaRemoved)
	m.logger.Info("expired parties removed", "parties", res.Expired, "media_removed", res.MediaRemoved)
	return res
}

// deleteMedia removes every media item matching drop and returns how many
// went. Items that fail are skipped and reported in the joined error.
func (m *Manager) deleteMedia(ctx context.Context, drop func(*store.MediaItem) bool) (int, error) {
	items, err := m.media.ListMedia(ctx)
	if err != nil {
		m.logger.Error("error loading media items", "error", err)
		return 0, fmt.Errorf("listing media: %w", err)
	}

	removed := 0
	var errs []error
	for _, item := range items {
		if !drop(item) {
			continue
		}
		if err := m.media.DeleteMedia(ctx, item.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			m.logger.Error("error deleting media item", "id", item.ID, "error", err)
			errs = append(errs, fmt.Errorf("deleting media %s: %w", item.ID, err))
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

func (m *Manager) setCurrentUser(ctx context.Context, partyName string) *User {
	user := &User{
		ID:       "party-" + uuid.NewString(),
		Username: partyName,
		Email:    partyEmail(partyName),
		Avatar:   partyAvatar(partyName),
	}
	m.kv.Save(ctx, CurrentUserKey, user)
	return user
}
