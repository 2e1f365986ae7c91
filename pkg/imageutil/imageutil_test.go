package imageutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 90, G: 90, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestIsImage(t *testing.T) {
	if !IsImage(pngBytes(t, 4, 4)) {
		t.Error("png content not recognized as image")
	}
	if IsImage([]byte("hello world")) {
		t.Error("plain text recognized as image")
	}
}

func TestIsImageFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "a.png")
	if err := os.WriteFile(good, pngBytes(t, 4, 4), 0o644); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "b.png") // extension lies, content decides
	if err := os.WriteFile(bad, []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !IsImageFile(good) {
		t.Error("real png file rejected")
	}
	if IsImageFile(bad) {
		t.Error("fake png file accepted")
	}
	if IsImageFile(filepath.Join(dir, "missing.png")) {
		t.Error("missing file accepted")
	}
}

func TestPrepareGarmentSquarePad(t *testing.T) {
	src := imaging.New(400, 200, color.NRGBA{R: 255, A: 255})
	out := PrepareGarment(src, 1024)

	b := out.Bounds()
	if b.Dx() != 1024 || b.Dy() != 1024 {
		t.Fatalf("output = %dx%d, want 1024x1024 square", b.Dx(), b.Dy())
	}
	// corners must be the white padding
	if c := out.NRGBAAt(0, 0); c.R != 255 || c.G != 255 || c.B != 255 {
		t.Errorf("corner = %+v, want white padding", c)
	}
}

func TestCreateCloseupCropsUpperRegion(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "full.png")
	if err := os.WriteFile(in, pngBytes(t, 1000, 1000), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "closeup.png")
	if err := CreateCloseup(in, out); err != nil {
		t.Fatalf("CreateCloseup: %v", err)
	}

	w, h, err := Bounds(out)
	if err != nil {
		t.Fatalf("Bounds: %v", err)
	}
	// 15–85% horizontal, 10–50% vertical
	if w != 700 || h != 400 {
		t.Errorf("closeup = %dx%d, want 700x400", w, h)
	}
}

func TestExtOf(t *testing.T) {
	tests := []struct{ in, want string }{
		{"photo.JPG", ".jpg"},
		{"a.b.webp", ".webp"},
		{"noext", ".png"},
		{"trailing.", ".png"},
	}
	for _, tt := range tests {
		if got := ExtOf(tt.in); got != tt.want {
			t.Errorf("ExtOf(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
