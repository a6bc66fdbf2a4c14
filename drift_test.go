package crumbshare

import (
	"context"
	"testing"
	"time"
)

func TestTracker_MarkProfileLoaded(t *testing.T) {
	stubTime(t, time.UnixMilli(1_700_000_000_000))
	store := newMemMetadataStore()
	tracker := NewTracker(store)
	ctx := context.Background()

	cookies := []Cookie{testCookie("sid", "v"), testCookie("csrf", "x")}
	if err := tracker.MarkProfileLoaded(ctx, "example.com", "work", cookies); err != nil {
		t.Fatal(err)
	}

	meta, err := tracker.Metadata(ctx, "example.com")
	if err != nil {
		t.Fatal(err)
	}
	if meta == nil {
		t.Fatal("want metadata got nil")
	}
	if meta.LastLoadedProfile != "work" {
		t.Fatalf("want profile work got %q", meta.LastLoadedProfile)
	}
	if meta.LoadedAt != 1_700_000_000_000 {
		t.Fatalf("unexpected loadedAt %d", meta.LoadedAt)
	}
	if meta.CookieCountAtLoad != 2 {
		t.Fatalf("want count 2 got %d", meta.CookieCountAtLoad)
	}
	if meta.Modified {
		t.Fatal("fresh load must not be modified")
	}
	if !meta.FingerprintAtLoad.Equal(Fingerprint(cookies)) {
		t.Fatal("stored fingerprint does not match the loaded cookies")
	}
}

func TestTracker_HasDriftedWithoutBaseline(t *testing.T) {
	store := newMemMetadataStore()
	tracker := NewTracker(store)
	ctx := context.Background()

	drifted, err := tracker.HasDrifted(ctx, "example.com", []Cookie{testCookie("sid", "v")})
	if err != nil {
		t.Fatal(err)
	}
	if drifted {
		t.Fatal("no metadata: want no drift")
	}
	if store.puts != 0 {
		t.Fatalf("no baseline must not write, got %d puts", store.puts)
	}

	// Metadata whose loaded profile was cleared is also no baseline.
	if err := store.Put(ctx, "example.com", &ProfileMetadata{CookieCountAtLoad: 3}); err != nil {
		t.Fatal(err)
	}
	putsBefore := store.puts
	drifted, err = tracker.HasDrifted(ctx, "example.com", nil)
	if err != nil {
		t.Fatal(err)
	}
	if drifted {
		t.Fatal("cleared profile: want no drift")
	}
	if store.puts != putsBefore {
		t.Fatal("cleared profile must not write")
	}
}

func TestTracker_HasDriftedOnCountChange(t *testing.T) {
	store := newMemMetadataStore()
	tracker := NewTracker(store)
	ctx := context.Background()

	loaded := []Cookie{testCookie("sid", "v")}
	if err := tracker.MarkProfileLoaded(ctx, "example.com", "work", loaded); err != nil {
		t.Fatal(err)
	}

	drifted, err := tracker.HasDrifted(ctx, "example.com", []Cookie{testCookie("sid", "v"), testCookie("extra", "e")})
	if err != nil {
		t.Fatal(err)
	}
	if !drifted {
		t.Fatal("count change: want drift")
	}
	meta, _ := tracker.Metadata(ctx, "example.com")
	if !meta.Modified {
		t.Fatal("drift must mark metadata modified")
	}
}

func TestTracker_HasDriftedOnValueChange(t *testing.T) {
	store := newMemMetadataStore()
	tracker := NewTracker(store)
	ctx := context.Background()

	loaded := []Cookie{testCookie("sid", "v"), testCookie("csrf", "x"), testCookie("theme", "dark")}
	if err := tracker.MarkProfileLoaded(ctx, "example.com", "work", loaded); err != nil {
		t.Fatal(err)
	}

	// Same count, one value rotated.
	current := []Cookie{loaded[0], testCookie("csrf", "rotated"), loaded[2]}
	drifted, err := tracker.HasDrifted(ctx, "example.com", current)
	if err != nil {
		t.Fatal(err)
	}
	if !drifted {
		t.Fatal("value change: want drift")
	}
}

func TestTracker_NoDriftOnIdenticalCookies(t *testing.T) {
	store := newMemMetadataStore()
	tracker := NewTracker(store)
	ctx := context.Background()

	cookies := []Cookie{testCookie("sid", "v"), testCookie("csrf", "x")}
	if err := tracker.MarkProfileLoaded(ctx, "example.com", "work", cookies); err != nil {
		t.Fatal(err)
	}

	reordered := []Cookie{cookies[1], cookies[0]}
	drifted, err := tracker.HasDrifted(ctx, "example.com", reordered)
	if err != nil {
		t.Fatal(err)
	}
	if drifted {
		t.Fatal("identical cookies: want no drift")
	}
	meta, _ := tracker.Metadata(ctx, "example.com")
	if meta.Modified {
		t.Fatal("no drift must not mark modified")
	}
}

func TestTracker_ModifiedIsStickyAndWrittenOnce(t *testing.T) {
	store := newMemMetadataStore()
	tracker := NewTracker(store)
	ctx := context.Background()

	original := []Cookie{testCookie("sid", "v")}
	if err := tracker.MarkProfileLoaded(ctx, "example.com", "work", original); err != nil {
		t.Fatal(err)
	}

	changed := []Cookie{testCookie("sid", "rotated")}
	if drifted, _ := tracker.HasDrifted(ctx, "example.com", changed); !drifted {
		t.Fatal("want drift")
	}
	putsAfterFirst := store.puts

	// A second drifted check must not rewrite the already-set flag.
	if drifted, _ := tracker.HasDrifted(ctx, "example.com", changed); !drifted {
		t.Fatal("want drift on repeat check")
	}
	if store.puts != putsAfterFirst {
		t.Fatalf("repeat drift wrote again: %d -> %d puts", putsAfterFirst, store.puts)
	}

	// Restoring the original cookies makes the comparison clean again,
	// but the modified flag survives until the next load.
	drifted, err := tracker.HasDrifted(ctx, "example.com", original)
	if err != nil {
		t.Fatal(err)
	}
	if drifted {
		t.Fatal("restored cookies: want no drift")
	}
	meta, _ := tracker.Metadata(ctx, "example.com")
	if !meta.Modified {
		t.Fatal("modified flag must stick until the next load")
	}

	if err := tracker.MarkProfileLoaded(ctx, "example.com", "work", original); err != nil {
		t.Fatal(err)
	}
	meta, _ = tracker.Metadata(ctx, "example.com")
	if meta.Modified {
		t.Fatal("reload must reset the modified flag")
	}
}

func TestTracker_ClearLoadedProfile(t *testing.T) {
	store := newMemMetadataStore()
	tracker := NewTracker(store)
	ctx := context.Background()

	if err := tracker.MarkProfileLoaded(ctx, "example.com", "work", []Cookie{testCookie("sid", "v")}); err != nil {
		t.Fatal(err)
	}

	// Clearing a different profile is a no-op.
	putsBefore := store.puts
	if err := tracker.ClearLoadedProfile(ctx, "example.com", "staging"); err != nil {
		t.Fatal(err)
	}
	if store.puts != putsBefore {
		t.Fatal("mismatched clear must not write")
	}
	meta, _ := tracker.Metadata(ctx, "example.com")
	if meta.LastLoadedProfile != "work" {
		t.Fatalf("mismatched clear changed the record: %+v", meta)
	}

	if err := tracker.ClearLoadedProfile(ctx, "example.com", "work"); err != nil {
		t.Fatal(err)
	}
	meta, _ = tracker.Metadata(ctx, "example.com")
	if meta == nil || meta.LastLoadedProfile != "" {
		t.Fatalf("want cleared profile, got %+v", meta)
	}
	if meta.CookieCountAtLoad != 1 {
		t.Fatal("clear must keep the rest of the metadata")
	}

	// With the association gone there is no baseline anymore.
	drifted, err := tracker.HasDrifted(ctx, "example.com", []Cookie{testCookie("sid", "changed")})
	if err != nil {
		t.Fatal(err)
	}
	if drifted {
		t.Fatal("cleared domain: want no drift")
	}

	// Clearing a domain with no metadata at all is fine too.
	if err := tracker.ClearLoadedProfile(ctx, "other.com", "work"); err != nil {
		t.Fatal(err)
	}
}
