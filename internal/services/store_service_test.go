package services

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/bonocatalog/backend/internal/config"
	"github.com/bonocatalog/backend/internal/models"
	"github.com/bonocatalog/backend/pkg/stage"
)

func newTestStore(t *testing.T) *StoreService {
	t.Helper()
	store, err := NewStoreService(&config.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("NewStoreService: %v", err)
	}
	return store
}

func TestCreateThenRead(t *testing.T) {
	store := newTestStore(t)

	job := &models.Job{
		ID:        "job-1",
		BrandName: "Acme",
		Images: []models.GarmentImage{
			{Name: "shirt.png", Side: models.SideFront},
			{Name: "shirt_back.png", Side: models.SideBack},
		},
	}
	if err := store.Create(job); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.ReadMetadata("job-1")
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	if got.Status == nil || got.Status.Stage != stage.Uploading || got.Status.Progress != 0 {
		t.Errorf("fresh job status = %+v, want uploading/0", got.Status)
	}
	if len(got.Images) != 2 {
		t.Errorf("image list length = %d, want 2", len(got.Images))
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt was not defaulted")
	}
}

func TestCreateCollision(t *testing.T) {
	store := newTestStore(t)

	if err := store.Create(&models.Job{ID: "dup"}); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	err := store.Create(&models.Job{ID: "dup"})
	if !models.IsCollision(err) {
		t.Fatalf("second Create = %v, want collision", err)
	}
}

func TestReadUnknownJob(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ReadMetadata("nope")
	if !models.IsNotFound(err) {
		t.Fatalf("ReadMetadata(unknown) = %v, want not found", err)
	}
}

func TestJobIDCannotEscapeRoot(t *testing.T) {
	store := newTestStore(t)

	for _, id := range []string{"", "../evil", "a/b", `a\b`} {
		if _, err := store.ReadMetadata(id); !models.IsNotFound(err) {
			t.Errorf("ReadMetadata(%q) = %v, want not found", id, err)
		}
	}
}

func TestWriteAsset(t *testing.T) {
	store := newTestStore(t)

	if err := store.Create(&models.Job{ID: "job-2"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	content := []byte("not really a png but bytes are bytes")
	path, n, err := store.WriteAsset("job-2", "garment_0_front.png", bytes.NewReader(content))
	if err != nil {
		t.Fatalf("WriteAsset: %v", err)
	}
	if n != int64(len(content)) {
		t.Errorf("wrote %d bytes, want %d", n, len(content))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading asset back: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Error("asset content mismatch")
	}
	if !strings.Contains(path, "uploads") {
		t.Errorf("asset path %q not under uploads dir", path)
	}
}

func TestWriteAssetUnknownJob(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.WriteAsset("ghost", "x.png", bytes.NewReader([]byte("x")))
	if !models.IsNotFound(err) {
		t.Fatalf("WriteAsset(unknown) = %v, want not found", err)
	}
}

func TestWriteAssetRejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	if err := store.Create(&models.Job{ID: "job-3"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, _, err := store.WriteAsset("job-3", "../outside.png", bytes.NewReader([]byte("x")))
	if !models.IsValidation(err) {
		t.Fatalf("WriteAsset(traversal) = %v, want validation error", err)
	}
}

func TestUpdateStatusReplacesWholeRecord(t *testing.T) {
	store := newTestStore(t)

	if err := store.Create(&models.Job{ID: "job-4"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	upd := &models.StatusRecord{
		Stage:       stage.Generating,
		Progress:    40,
		Message:     "Generating model images...",
		CurrentItem: 2,
		TotalItems:  5,
	}
	if err := store.UpdateStatus("job-4", upd); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	got, err := store.ReadMetadata("job-4")
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	if got.Status.Stage != stage.Generating || got.Status.Progress != 40 {
		t.Errorf("status = %+v, want generating/40", got.Status)
	}
	if got.Status.CurrentItem != 2 || got.Status.TotalItems != 5 {
		t.Errorf("item counters = %d/%d, want 2/5", got.Status.CurrentItem, got.Status.TotalItems)
	}

	// A second update fully replaces the previous record, counters included.
	if err := store.UpdateStatus("job-4", &models.StatusRecord{Stage: stage.Complete, Progress: 100}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, _ = store.ReadMetadata("job-4")
	if got.Status.CurrentItem != 0 {
		t.Errorf("counters survived whole-record replace: %+v", got.Status)
	}
}

func TestUpdateStatusUnknownJob(t *testing.T) {
	store := newTestStore(t)

	err := store.UpdateStatus("ghost", &models.StatusRecord{Stage: stage.Generating})
	if !models.IsNotFound(err) {
		t.Fatalf("UpdateStatus(unknown) = %v, want not found", err)
	}
}

func TestMetadataWriteLeavesNoTempFile(t *testing.T) {
	store := newTestStore(t)

	if err := store.Create(&models.Job{ID: "job-5"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	entries, err := os.ReadDir(store.JobDir("job-5"))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".part") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}
