package screenshot

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func testMeta(id string) Meta {
	return Meta{
		ID:        id,
		SessionID: "chrome_test",
		Format:    "png",
		SizeBytes: 4,
		CreatedAt: time.Now().UTC(),
		URL:       "https://example.com",
		FullPage:  true,
	}
}

func TestSaveGetRoundtrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	id := uuid.New().String()
	path, err := store.Save(testMeta(id), []byte{0x89, 0x50, 0x4e, 0x47})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !strings.HasSuffix(path, id+".png") {
		t.Fatalf("Save() path = %q", path)
	}

	meta, err := store.Get(id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if meta.SessionID != "chrome_test" || meta.Format != "png" {
		t.Fatalf("Get() = %+v", meta)
	}
}

func TestImageReadsBytesAndMime(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	id := uuid.New().String()
	payload := []byte{1, 2, 3}
	meta := testMeta(id)
	meta.Format = "jpg"
	if _, err := store.Save(meta, payload); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, mime, err := store.Image(id)
	if err != nil {
		t.Fatalf("Image() error = %v", err)
	}
	if mime != "image/jpeg" || len(data) != len(payload) {
		t.Fatalf("Image() = %d bytes, %q", len(data), mime)
	}
}

func TestListNewestFirst(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	older := testMeta(uuid.New().String())
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := testMeta(uuid.New().String())

	if _, err := store.Save(older, []byte{1}); err != nil {
		t.Fatalf("Save(older) error = %v", err)
	}
	if _, err := store.Save(newer, []byte{2}); err != nil {
		t.Fatalf("Save(newer) error = %v", err)
	}

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("List() len = %d, want 2", len(metas))
	}
	if metas[0].ID != newer.ID {
		t.Fatalf("List()[0].ID = %q, want newest %q", metas[0].ID, newer.ID)
	}
}

func TestDeleteRemovesBoth(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	id := uuid.New().String()
	if _, err := store.Save(testMeta(id), []byte{1}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Delete(id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(id); err == nil {
		t.Fatalf("Get() after delete succeeded")
	}
	if _, _, err := store.Image(id); err == nil {
		t.Fatalf("Image() after delete succeeded")
	}
}

func TestInvalidIDRejected(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	if _, err := store.Save(testMeta("../../etc/passwd"), []byte{1}); err == nil {
		t.Fatalf("Save() accepted a path-traversal id")
	}
	if _, err := store.Get("not-a-uuid"); err == nil {
		t.Fatalf("Get() accepted a malformed id")
	}
}
