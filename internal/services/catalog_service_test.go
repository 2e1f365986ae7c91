package services

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/bonocatalog/backend/internal/config"
	"github.com/bonocatalog/backend/internal/models"
)

func writeTestPNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating %s: %v", name, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encoding %s: %v", name, err)
	}
	return path
}

func newTestCatalog(t *testing.T) (*CatalogService, *StoreService, *config.Config) {
	t.Helper()
	cfg := &config.Config{
		DataDir:     t.TempDir(),
		AssetsDir:   t.TempDir(),
		APIUrl:      "http://localhost:8080",
		ContactLine: "www.bono.com | @bono_official",
	}
	store, err := NewStoreService(cfg)
	if err != nil {
		t.Fatalf("NewStoreService: %v", err)
	}
	return NewCatalogService(cfg, store), store, cfg
}

func TestAssembleJobProducesPDF(t *testing.T) {
	catalog, store, _ := newTestCatalog(t)

	imgDir := t.TempDir()
	full := writeTestPNG(t, imgDir, "hoodie_front.png", 200, 300)

	job := &models.Job{
		ID:              "cat-1",
		BrandName:       "Acme",
		Tagline:         "Wear the future",
		CollectionTitle: "Autumn Drop",
		Category:        "teen_boy",
		GeneratedImages: []models.GeneratedImage{
			{GarmentName: "hoodie_front.png", FullBody: full},
		},
	}
	if err := store.Create(job); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Save(job); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := catalog.AssembleJob("cat-1")
	if err != nil {
		t.Fatalf("AssembleJob: %v", err)
	}
	if got.PDFPath == "" {
		t.Fatal("PDFPath not recorded")
	}

	data, err := os.ReadFile(got.PDFPath)
	if err != nil {
		t.Fatalf("reading PDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("output does not start with %%PDF header")
	}

	// PDFPath must survive a metadata round trip
	reread, err := store.ReadMetadata("cat-1")
	if err != nil {
		t.Fatalf("ReadMetadata: %v", err)
	}
	if reread.PDFPath != got.PDFPath {
		t.Errorf("persisted PDFPath = %q, want %q", reread.PDFPath, got.PDFPath)
	}
}

func TestAssembleJobFallsBackToOriginals(t *testing.T) {
	catalog, store, _ := newTestCatalog(t)

	imgDir := t.TempDir()
	orig := writeTestPNG(t, imgDir, "tee.png", 150, 200)

	job := &models.Job{
		ID:        "cat-2",
		BrandName: "Acme",
		Images:    []models.GarmentImage{{Name: "tee.png", Path: orig, Side: models.SideFront}},
	}
	if err := store.Create(job); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Save(job); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := catalog.AssembleJob("cat-2")
	if err != nil {
		t.Fatalf("AssembleJob with originals only: %v", err)
	}
	if got.PDFPath == "" {
		t.Fatal("PDFPath not recorded")
	}
}

func TestAssembleJobNoImages(t *testing.T) {
	catalog, store, _ := newTestCatalog(t)

	if err := store.Create(&models.Job{ID: "cat-3", BrandName: "Acme"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := catalog.AssembleJob("cat-3")
	if !models.IsValidation(err) {
		t.Fatalf("AssembleJob(no images) = %v, want validation error", err)
	}
}

func TestAssembleJobUnknownJob(t *testing.T) {
	catalog, _, _ := newTestCatalog(t)

	_, err := catalog.AssembleJob("missing")
	if !models.IsNotFound(err) {
		t.Fatalf("AssembleJob(unknown) = %v, want not found", err)
	}
}
