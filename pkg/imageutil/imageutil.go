// Package imageutil wraps the image operations shared by ingestion, the
// catalog assembler and the client-side working set.
package imageutil

import (
	"image"
	"image/color"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

// Image MIME types accepted by the pipeline.
var supportedTypes = []string{"image/png", "image/jpeg", "image/webp"}

// IsImage sniffs raw content and reports whether it is a supported image.
func IsImage(data []byte) bool {
	return isSupported(mimetype.Detect(data))
}

// IsImageReader sniffs a stream without consuming more than the detection
// buffer. The reader is positioned past the sniffed bytes afterwards, so
// callers should reopen or seek before persisting.
func IsImageReader(r io.Reader) bool {
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return false
	}
	return isSupported(mtype)
}

// IsImageFile sniffs a file on disk.
func IsImageFile(path string) bool {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	return isSupported(mtype)
}

func isSupported(mtype *mimetype.MIME) bool {
	for _, t := range supportedTypes {
		if mtype.Is(t) {
			return true
		}
	}
	return false
}

// PrepareGarment normalizes a garment photo for virtual try-on: fit within
// target x target, then pad to a white square so the generation service
// receives a consistent aspect ratio.
func PrepareGarment(src image.Image, target int) *image.NRGBA {
	fitted := imaging.Fit(src, target, target, imaging.Lanczos)
	canvas := imaging.New(target, target, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	return imaging.PasteCenter(canvas, fitted)
}

// PrepareGarmentFile runs PrepareGarment on a file and writes the result.
func PrepareGarmentFile(inPath, outPath string, target int) error {
	src, err := imaging.Open(inPath)
	if err != nil {
		return err
	}
	return imaging.Save(PrepareGarment(src, target), outPath)
}

// CreateCloseup crops the upper garment region (chest and logo area) from a
// full-body shot, matching the catalog's detail-image framing.
func CreateCloseup(inPath, outPath string) error {
	src, err := imaging.Open(inPath)
	if err != nil {
		return err
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	crop := image.Rect(
		b.Min.X+w*15/100,
		b.Min.Y+h*10/100,
		b.Min.X+w*85/100,
		b.Min.Y+h*50/100,
	)
	return imaging.Save(imaging.Crop(src, crop), outPath)
}

// Thumbnail writes a small preview of an image, used for client-side
// working-set previews.
func Thumbnail(inPath, outPath string, width, height int) error {
	src, err := imaging.Open(inPath)
	if err != nil {
		return err
	}
	return imaging.Save(imaging.Thumbnail(src, width, height, imaging.Lanczos), outPath)
}

// Bounds returns the pixel dimensions of an image file.
func Bounds(path string) (width, height int, err error) {
	src, err := imaging.Open(path)
	if err != nil {
		return 0, 0, err
	}
	b := src.Bounds()
	return b.Dx(), b.Dy(), nil
}

// ExtOf returns a lowercase file extension for a stored asset name,
// defaulting to .png when the original name carries none.
func ExtOf(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 || idx == len(name)-1 {
		return ".png"
	}
	return strings.ToLower(name[idx:])
}
