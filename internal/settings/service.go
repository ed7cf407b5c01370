package settings

import (
	"context"
	"errors"

	"github.com/eyeward-labs/overseer/internal/store"
	"github.com/google/uuid"
)

// ProfileStore is the subset of *store.ProfileRepository Service needs.
type ProfileStore interface {
	GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*store.Profile, error)
	Upsert(ctx context.Context, tenantID uuid.UUID, name string, settings map[string]any) (*store.Profile, error)
}

// SessionSettingsStore is the subset of *store.SessionRepository Service
// needs for per-session override/resolved snapshots.
type SessionSettingsStore interface {
	UpsertSettings(ctx context.Context, sessionID uuid.UUID, overrides, resolved map[string]any) error
	GetSettings(ctx context.Context, sessionID uuid.UUID) (*store.SessionSettings, error)
}

// Service is the settings resolver wired to persistence: it loads a named
// profile (falling back to, and persisting, a built-in preset on first use)
// and layers system defaults -> profile -> session override into the
// effective settings map every Eye call carries in request.context.settings
// (spec.md §4.5).
type Service struct {
	Profiles ProfileStore
	Sessions SessionSettingsStore
}

// NewService constructs a Service.
func NewService(profiles ProfileStore, sessions SessionSettingsStore) *Service {
	return &Service{Profiles: profiles, Sessions: sessions}
}

// LoadProfile returns a tenant's settings for the named profile, persisting
// the built-in preset the first time an unknown name is referenced.
func (s *Service) LoadProfile(ctx context.Context, tenantID uuid.UUID, name string) (map[string]any, error) {
	if name == "" {
		name = DefaultProfile
	}
	p, err := s.Profiles.GetByName(ctx, tenantID, name)
	if errors.Is(err, store.ErrNotFound) {
		preset := BuiltinProfile(name)
		if _, err := s.Profiles.Upsert(ctx, tenantID, name, preset); err != nil {
			return nil, err
		}
		return preset, nil
	}
	if err != nil {
		return nil, err
	}
	return p.Settings, nil
}

// ResolveForSession loads the named profile and layers override on top of
// it and the system defaults, returning the effective settings a new
// session should carry.
func (s *Service) ResolveForSession(ctx context.Context, tenantID uuid.UUID, profileName string, override map[string]any) (map[string]any, error) {
	profileSettings, err := s.LoadProfile(ctx, tenantID, profileName)
	if err != nil {
		return nil, err
	}
	return Resolve(profileSettings, override)
}

// Update replaces a session's override and re-resolves its effective
// settings, persisting both. Callers publish the resulting resolved map to
// the event bus as a settings_update event.
func (s *Service) Update(ctx context.Context, tenantID uuid.UUID, sessionID uuid.UUID, profileName string, override map[string]any) (map[string]any, error) {
	resolved, err := s.ResolveForSession(ctx, tenantID, profileName, override)
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.UpsertSettings(ctx, sessionID, override, resolved); err != nil {
		return nil, err
	}
	return resolved, nil
}

// SnapshotSettings implements eventbus.SettingsSnapshotter: it returns the
// last resolved settings persisted for sessionID, or an empty map if none
// have been persisted yet.
func (s *Service) SnapshotSettings(ctx context.Context, sessionID string) (map[string]any, error) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return nil, err
	}
	snap, err := s.Sessions.GetSettings(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	return snap.Resolved, nil
}
