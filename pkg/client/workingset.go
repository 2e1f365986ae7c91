package client

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/bonocatalog/backend/internal/models"
	"github.com/bonocatalog/backend/pkg/imageutil"
)

// Preview is a locally-resolvable preview resource for a staged image. Its
// release func runs at most once, when the image leaves the working set.
type Preview struct {
	Path     string
	release  func()
	released bool
}

// Release frees the preview resource. Safe to call more than once; only the
// first call has any effect.
func (p *Preview) Release() {
	if p == nil || p.released {
		return
	}
	p.released = true
	if p.release != nil {
		p.release()
	}
}

// Released reports whether the preview has been freed.
func (p *Preview) Released() bool {
	return p != nil && p.released
}

// StagedImage is one pre-submission garment image held by the working set.
type StagedImage struct {
	ID      string
	Path    string
	Name    string
	Side    string
	Preview *Preview
}

// PreviewFunc produces a preview resource for a staged file.
type PreviewFunc func(path string) (*Preview, error)

// WorkingSet is the ordered, capacity-bounded collection of staged images
// for the active session. It owns its entries exclusively and is not safe
// for concurrent use; callers drive it from a single goroutine.
type WorkingSet struct {
	maxCount  int
	previewFn PreviewFunc
	images    []*StagedImage
}

func NewWorkingSet(maxCount int) *WorkingSet {
	return &WorkingSet{
		maxCount:  maxCount,
		previewFn: thumbnailPreview,
	}
}

// WithPreviewFunc swaps the preview generator, for tests or headless use.
func (w *WorkingSet) WithPreviewFunc(fn PreviewFunc) *WorkingSet {
	w.previewFn = fn
	return w
}

// Add stages a batch of files. Non-image files and files beyond the
// remaining capacity are dropped silently; accepted files get a fresh local
// id, a front side tag and a preview. Returns the accepted entries.
func (w *WorkingSet) Add(paths []string) []*StagedImage {
	remaining := w.maxCount - len(w.images)
	if remaining <= 0 {
		return nil
	}

	var accepted []*StagedImage
	for _, path := range paths {
		if len(accepted) >= remaining {
			break
		}
		if !imageutil.IsImageFile(path) {
			continue
		}
		img := &StagedImage{
			ID:   localID(),
			Path: path,
			Name: filepath.Base(path),
			Side: models.SideFront,
		}
		if w.previewFn != nil {
			if preview, err := w.previewFn(path); err == nil {
				img.Preview = preview
			}
		}
		accepted = append(accepted, img)
	}
	w.images = append(w.images, accepted...)
	return accepted
}

// Remove releases the entry's preview and drops it. No-op for unknown ids.
func (w *WorkingSet) Remove(id string) {
	for i, img := range w.images {
		if img.ID == id {
			img.Preview.Release()
			w.images = append(w.images[:i], w.images[i+1:]...)
			return
		}
	}
}

// ToggleSide flips an entry between front and back. No-op for unknown ids.
func (w *WorkingSet) ToggleSide(id string) {
	for _, img := range w.images {
		if img.ID == id {
			img.Side = models.ToggleSide(img.Side)
			return
		}
	}
}

// Images returns the staged entries in order.
func (w *WorkingSet) Images() []*StagedImage {
	return w.images
}

// Len returns the number of staged entries.
func (w *WorkingSet) Len() int {
	return len(w.images)
}

// Clear releases every preview and empties the set, for end-of-session
// cleanup.
func (w *WorkingSet) Clear() {
	for _, img := range w.images {
		img.Preview.Release()
	}
	w.images = nil
}

// Submission converts the staged set into a submission bundle. The working
// set keeps ownership of the entries until the caller clears it.
func (w *WorkingSet) Submission(category, brandName, tagline, collectionTitle, notes, logoPath string) *Submission {
	sub := &Submission{
		Category:        category,
		BrandName:       brandName,
		Tagline:         tagline,
		CollectionTitle: collectionTitle,
		Notes:           notes,
		LogoPath:        logoPath,
	}
	for _, img := range w.images {
		sub.Images = append(sub.Images, SubmittedImage{
			Path: img.Path,
			Name: img.Name,
			Side: img.Side,
		})
	}
	return sub
}

// localID builds a session-local identifier: creation time plus a short
// random suffix. Collisions are negligible but not impossible; these ids
// never leave the client.
func localID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.New().String()[:8])
}

// thumbnailPreview writes a small thumbnail to a temp file; release deletes
// it.
func thumbnailPreview(path string) (*Preview, error) {
	tmp, err := os.CreateTemp("", "bono-preview-*.png")
	if err != nil {
		return nil, err
	}
	tmp.Close()
	if err := imageutil.Thumbnail(path, tmp.Name(), 160, 160); err != nil {
		os.Remove(tmp.Name())
		return nil, err
	}
	name := tmp.Name()
	return &Preview{
		Path:    name,
		release: func() { os.Remove(name) },
	}, nil
}
