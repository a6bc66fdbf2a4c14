package crumbshare

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// MetadataStore persists per-domain profile bookkeeping. Get returns
// (nil, nil) when the domain has no metadata; store failures propagate
// as-is.
type MetadataStore interface {
	Get(ctx context.Context, domain string) (*ProfileMetadata, error)
	Put(ctx context.Context, domain string, meta *ProfileMetadata) error
}

// Tracker detects drift between a domain's live cookies and the profile
// last loaded for it. The backing store has no compare-and-swap, so the
// tracker serializes its read-modify-write sequences per domain.
type Tracker struct {
	store MetadataStore

	mu    sync.Mutex
	locks map[string]*semaphore.Weighted
}

// NewTracker wraps store with per-domain write discipline.
func NewTracker(store MetadataStore) *Tracker {
	return &Tracker{
		store: store,
		locks: make(map[string]*semaphore.Weighted),
	}
}

func (t *Tracker) domainLock(domain string) *semaphore.Weighted {
	t.mu.Lock()
	defer t.mu.Unlock()
	lock, ok := t.locks[domain]
	if !ok {
		lock = semaphore.NewWeighted(1)
		t.locks[domain] = lock
	}
	return lock
}

// MarkProfileLoaded records that profileName was just applied to domain
// with the given cookies. It overwrites any previous metadata and resets
// the modified flag.
func (t *Tracker) MarkProfileLoaded(ctx context.Context, domain, profileName string, cookies []Cookie) error {
	lock := t.domainLock(domain)
	if err := lock.Acquire(ctx, 1); err != nil {
		return err
	}
	defer lock.Release(1)

	return t.store.Put(ctx, domain, &ProfileMetadata{
		LastLoadedProfile: profileName,
		LoadedAt:          timeNow().UnixMilli(),
		CookieCountAtLoad: len(cookies),
		FingerprintAtLoad: Fingerprint(cookies),
	})
}

// HasDrifted reports whether current diverges from the cookie set captured
// when the domain's profile was loaded. Without a loaded profile there is
// no baseline and the answer is false with no side effects. On drift the
// stored metadata is marked modified.
func (t *Tracker) HasDrifted(ctx context.Context, domain string, current []Cookie) (bool, error) {
	lock := t.domainLock(domain)
	if err := lock.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer lock.Release(1)

	meta, err := t.store.Get(ctx, domain)
	if err != nil {
		return false, err
	}
	if meta == nil || meta.LastLoadedProfile == "" {
		return false, nil
	}

	// Count first: cheaper than fingerprinting on every cookie-change
	// notification.
	if len(current) != meta.CookieCountAtLoad {
		return true, t.markModified(ctx, domain, meta)
	}
	if !Fingerprint(current).Equal(meta.FingerprintAtLoad) {
		return true, t.markModified(ctx, domain, meta)
	}
	return false, nil
}

func (t *Tracker) markModified(ctx context.Context, domain string, meta *ProfileMetadata) error {
	if meta.Modified {
		return nil
	}
	meta.Modified = true
	return t.store.Put(ctx, domain, meta)
}

// ClearLoadedProfile forgets the loaded-profile association if profileName
// is the one on record for domain. Deleting a profile that is not loaded
// is a no-op. The rest of the metadata stays for inspection.
func (t *Tracker) ClearLoadedProfile(ctx context.Context, domain, profileName string) error {
	lock := t.domainLock(domain)
	if err := lock.Acquire(ctx, 1); err != nil {
		return err
	}
	defer lock.Release(1)

	meta, err := t.store.Get(ctx, domain)
	if err != nil {
		return err
	}
	if meta == nil || meta.LastLoadedProfile != profileName {
		return nil
	}
	meta.LastLoadedProfile = ""
	return t.store.Put(ctx, domain, meta)
}

// Metadata returns the stored bookkeeping for domain, nil when absent.
func (t *Tracker) Metadata(ctx context.Context, domain string) (*ProfileMetadata, error) {
	return t.store.Get(ctx, domain)
}
