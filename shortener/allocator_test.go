package shortener

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"shortearn/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb, mr
}

func TestAllocator_Allocate(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	allocator := NewAllocator(rdb, "http://localhost:8080")
	ctx := context.Background()

	record, err := allocator.Allocate(ctx, "https://cdn.example.com/files/abc123", "user@example_com")
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	if record.FileID != "abc123" {
		t.Errorf("FileID = %q, want %q", record.FileID, "abc123")
	}
	if record.ShortURL != "http://localhost:8080/a/abc123" {
		t.Errorf("ShortURL = %q, want %q", record.ShortURL, "http://localhost:8080/a/abc123")
	}
	if record.Views != 0 {
		t.Errorf("Views = %d, want 0", record.Views)
	}

	// Global record exists and names the owner.
	data, err := mr.Get(model.GlobalLinkKey("abc123"))
	if err != nil {
		t.Fatalf("global record missing: %v", err)
	}
	var global model.GlobalLinkRecord
	if err := json.Unmarshal([]byte(data), &global); err != nil {
		t.Fatalf("unmarshal global record: %v", err)
	}
	if global.Owner != "user@example_com" {
		t.Errorf("Owner = %q, want %q", global.Owner, "user@example_com")
	}
	if global.OriginalURL != "https://cdn.example.com/files/abc123" {
		t.Errorf("OriginalURL = %q", global.OriginalURL)
	}

	// Owner's copy is in the web links hash.
	ownerCopy := mr.HGet(model.WebLinksKey("user@example_com"), "abc123")
	if ownerCopy == "" {
		t.Fatal("owner copy missing from web links hash")
	}

	// Link counter incremented.
	count, err := mr.Get(model.TotalLinksKey("user@example_com"))
	if err != nil {
		t.Fatalf("link counter missing: %v", err)
	}
	if count != "1" {
		t.Errorf("totalLinks = %s, want 1", count)
	}
}

func TestAllocator_Allocate_CodeConflict(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	allocator := NewAllocator(rdb, "http://localhost:8080")
	ctx := context.Background()

	if _, err := allocator.Allocate(ctx, "https://one.example.com/abc123", "alice@example_com"); err != nil {
		t.Fatalf("first Allocate: %v", err)
	}

	// A different URL with the same tail segment contends for the same code.
	_, err := allocator.Allocate(ctx, "https://two.example.com/abc123", "bob@example_com")
	if !errors.Is(err, ErrCodeAlreadyExists) {
		t.Fatalf("expected ErrCodeAlreadyExists, got %v", err)
	}

	// The losing allocation left no partial state behind.
	data, err := mr.Get(model.GlobalLinkKey("abc123"))
	if err != nil {
		t.Fatalf("global record missing: %v", err)
	}
	var global model.GlobalLinkRecord
	if err := json.Unmarshal([]byte(data), &global); err != nil {
		t.Fatalf("unmarshal global record: %v", err)
	}
	if global.Owner != "alice@example_com" {
		t.Errorf("Owner = %q, want the first claimant", global.Owner)
	}
	if mr.Exists(model.WebLinksKey("bob@example_com")) {
		t.Error("loser's web links hash should not exist")
	}
	if mr.Exists(model.TotalLinksKey("bob@example_com")) {
		t.Error("loser's link counter should not exist")
	}
}

func TestAllocator_Allocate_InvalidURL(t *testing.T) {
	rdb, _ := setupTestRedis(t)
	allocator := NewAllocator(rdb, "http://localhost:8080")

	tests := []struct {
		name string
		url  string
	}{
		{"Empty", ""},
		{"No scheme", "example.com/abc"},
		{"FTP", "ftp://example.com/abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := allocator.Allocate(context.Background(), tt.url, "user@example_com")
			if !errors.Is(err, ErrInvalidURL) {
				t.Errorf("Allocate(%q) = %v, want ErrInvalidURL", tt.url, err)
			}
		})
	}
}

func TestAllocator_CounterTracksLinks(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	allocator := NewAllocator(rdb, "http://localhost:8080")
	ctx := context.Background()
	const owner = "user@example_com"

	urls := []string{
		"https://example.com/one",
		"https://example.com/two",
		"https://example.com/three",
	}
	for _, u := range urls {
		if _, err := allocator.Allocate(ctx, u, owner); err != nil {
			t.Fatalf("Allocate(%s): %v", u, err)
		}
	}

	count, err := mr.Get(model.TotalLinksKey(owner))
	if err != nil {
		t.Fatalf("link counter missing: %v", err)
	}
	if count != "3" {
		t.Errorf("totalLinks = %s, want 3", count)
	}
	if n := rdb.HLen(ctx, model.WebLinksKey(owner)).Val(); n != 3 {
		t.Errorf("web links hash holds %d entries, want 3", n)
	}
}

func TestResolver_Resolve(t *testing.T) {
	rdb, _ := setupTestRedis(t)
	allocator := NewAllocator(rdb, "http://localhost:8080")
	resolver := NewResolver(rdb)
	ctx := context.Background()

	if _, err := allocator.Allocate(ctx, "https://example.com/xyz789", "user@example_com"); err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	record, err := resolver.Resolve(ctx, "xyz789")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if record.OriginalURL != "https://example.com/xyz789" {
		t.Errorf("OriginalURL = %q", record.OriginalURL)
	}

	if _, err := resolver.Resolve(ctx, "missing"); !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("Resolve(missing) = %v, want ErrLinkNotFound", err)
	}
}

func TestResolver_RecordView(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	allocator := NewAllocator(rdb, "http://localhost:8080")
	resolver := NewResolver(rdb)
	ctx := context.Background()

	if _, err := allocator.Allocate(ctx, "https://example.com/view1", "user@example_com"); err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := resolver.RecordView(ctx, "view1"); err != nil {
			t.Fatalf("RecordView #%d: %v", i+1, err)
		}
	}

	record, err := resolver.Resolve(ctx, "view1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if record.Views != 3 {
		t.Errorf("Views = %d, want 3", record.Views)
	}

	var dailyTotal int64
	for _, n := range record.DailyViews {
		dailyTotal += n
	}
	if dailyTotal != 3 {
		t.Errorf("daily views total = %d, want 3", dailyTotal)
	}

	// Owner's copy was kept in sync.
	raw := mr.HGet(model.WebLinksKey("user@example_com"), "view1")
	var ownerCopy model.LinkRecord
	if err := json.Unmarshal([]byte(raw), &ownerCopy); err != nil {
		t.Fatalf("unmarshal owner copy: %v", err)
	}
	if ownerCopy.Views != 3 {
		t.Errorf("owner copy Views = %d, want 3", ownerCopy.Views)
	}
}

func TestResolver_RecordView_Concurrent(t *testing.T) {
	rdb, _ := setupTestRedis(t)
	allocator := NewAllocator(rdb, "http://localhost:8080")
	resolver := NewResolver(rdb)
	ctx := context.Background()

	if _, err := allocator.Allocate(ctx, "https://example.com/busy1", "user@example_com"); err != nil {
		t.Fatalf("Allocate: %v", err)
	}

	const workers = 8
	const viewsEach = 5
	var wg sync.WaitGroup
	errs := make(chan error, workers*viewsEach)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < viewsEach; j++ {
				if err := resolver.RecordView(ctx, "busy1"); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("RecordView: %v", err)
	}

	record, err := resolver.Resolve(ctx, "busy1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if record.Views != workers*viewsEach {
		t.Errorf("Views = %d, want %d", record.Views, workers*viewsEach)
	}
}

func TestResolver_RecordView_MissingCode(t *testing.T) {
	rdb, _ := setupTestRedis(t)
	resolver := NewResolver(rdb)

	err := resolver.RecordView(context.Background(), "nope")
	if !errors.Is(err, ErrLinkNotFound) {
		t.Errorf("RecordView(nope) = %v, want ErrLinkNotFound", err)
	}
}
