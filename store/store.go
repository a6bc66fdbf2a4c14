// Package store persists cookie profiles and drift metadata in an
// embedded Badger database. Store implements crumbshare.MetadataStore,
// so it can back a crumbshare.Tracker directly.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/timshannon/badgerhold/v4"

	"github.com/crumbshare/crumbshare"
)

// ErrProfileNotFound is returned when a (domain, name) lookup has no match.
var ErrProfileNotFound = errors.New("store: profile not found")

// ProfileRecord is a saved, named cookie snapshot for one domain.
type ProfileRecord struct {
	ID        string
	Domain    string `badgerhold:"index"`
	Name      string
	Cookies   []crumbshare.Cookie
	CreatedAt time.Time
	UpdatedAt time.Time
}

// metadataRecord wraps drift bookkeeping with its domain key.
type metadataRecord struct {
	Domain string
	Meta   crumbshare.ProfileMetadata
}

// Store is an embedded profile and metadata database.
type Store struct {
	db *badgerhold.Store
}

// Open creates or opens the database under dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: creating database directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil // Badger's default logger is noisy on stderr.

	db, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("store: opening database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveProfile inserts or replaces the named profile for domain. The
// record ID and creation time survive replacement.
func (s *Store) SaveProfile(ctx context.Context, domain, name string, cookies []crumbshare.Cookie) (*ProfileRecord, error) {
	if domain == "" || name == "" {
		return nil, errors.New("store: domain and profile name are required")
	}

	now := time.Now()
	rec := ProfileRecord{
		ID:        uuid.New().String(),
		Domain:    domain,
		Name:      name,
		Cookies:   cookies,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing, err := s.findProfile(domain, name); err == nil {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
	} else if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	if err := s.db.Upsert(rec.ID, &rec); err != nil {
		return nil, fmt.Errorf("store: saving profile: %w", err)
	}
	return &rec, nil
}

// Profile returns the named profile for domain.
func (s *Store) Profile(ctx context.Context, domain, name string) (*ProfileRecord, error) {
	return s.findProfile(domain, name)
}

// ProfileCookies returns the cookie snapshot of the named profile.
func (s *Store) ProfileCookies(ctx context.Context, domain, name string) ([]crumbshare.Cookie, error) {
	rec, err := s.findProfile(domain, name)
	if err != nil {
		return nil, err
	}
	return rec.Cookies, nil
}

// ListProfiles returns domain's profiles ordered by name.
func (s *Store) ListProfiles(ctx context.Context, domain string) ([]ProfileRecord, error) {
	var out []ProfileRecord
	if err := s.db.Find(&out, badgerhold.Where("Domain").Eq(domain)); err != nil {
		return nil, fmt.Errorf("store: listing profiles: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ProfileMap returns domain's profiles keyed by name, the shape
// crumbshare.NewProfileEnvelope takes.
func (s *Store) ProfileMap(ctx context.Context, domain string) (map[string][]crumbshare.Cookie, error) {
	recs, err := s.ListProfiles(ctx, domain)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	out := make(map[string][]crumbshare.Cookie, len(recs))
	for _, rec := range recs {
		out[rec.Name] = rec.Cookies
	}
	return out, nil
}

// DeleteProfile removes the named profile for domain. Callers that track
// drift should also clear the loaded-profile association, see
// crumbshare.Tracker.ClearLoadedProfile.
func (s *Store) DeleteProfile(ctx context.Context, domain, name string) error {
	rec, err := s.findProfile(domain, name)
	if err != nil {
		return err
	}
	if err := s.db.Delete(rec.ID, &ProfileRecord{}); err != nil {
		return fmt.Errorf("store: deleting profile: %w", err)
	}
	return nil
}

// Domains returns every domain with at least one saved profile, sorted.
func (s *Store) Domains(ctx context.Context) ([]string, error) {
	var recs []ProfileRecord
	if err := s.db.Find(&recs, nil); err != nil {
		return nil, fmt.Errorf("store: listing domains: %w", err)
	}
	seen := make(map[string]struct{}, len(recs))
	var out []string
	for _, rec := range recs {
		if _, ok := seen[rec.Domain]; ok {
			continue
		}
		seen[rec.Domain] = struct{}{}
		out = append(out, rec.Domain)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) findProfile(domain, name string) (*ProfileRecord, error) {
	var out []ProfileRecord
	err := s.db.Find(&out, badgerhold.Where("Domain").Eq(domain).And("Name").Eq(name).Limit(1))
	if err != nil {
		return nil, fmt.Errorf("store: finding profile: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrProfileNotFound
	}
	return &out[0], nil
}

// Get implements crumbshare.MetadataStore. A domain with no metadata
// yields (nil, nil).
func (s *Store) Get(ctx context.Context, domain string) (*crumbshare.ProfileMetadata, error) {
	var rec metadataRecord
	err := s.db.Get(domain, &rec)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: reading metadata: %w", err)
	}
	meta := rec.Meta
	return &meta, nil
}

// Put implements crumbshare.MetadataStore.
func (s *Store) Put(ctx context.Context, domain string, meta *crumbshare.ProfileMetadata) error {
	if meta == nil {
		return errors.New("store: nil metadata")
	}
	if err := s.db.Upsert(domain, &metadataRecord{Domain: domain, Meta: *meta}); err != nil {
		return fmt.Errorf("store: writing metadata: %w", err)
	}
	return nil
}
