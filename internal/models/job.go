package models

import (
	"strings"
	"time"

	"github.com/bonocatalog/backend/pkg/stage"
)

// Side tags for garment images. Every stored garment record carries exactly
// one of these two values; unknown input is defaulted at ingestion time.
const (
	SideFront = "front"
	SideBack  = "back"
)

// NormalizeSide maps arbitrary input onto a legal side tag, defaulting to
// front.
func NormalizeSide(side string) string {
	if strings.TrimSpace(strings.ToLower(side)) == SideBack {
		return SideBack
	}
	return SideFront
}

// ToggleSide flips between the two legal side tags.
func ToggleSide(side string) string {
	if NormalizeSide(side) == SideFront {
		return SideBack
	}
	return SideFront
}

// GarmentImage is one uploaded garment photo persisted under a job namespace.
type GarmentImage struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Side string `json:"side"`
}

// GeneratedImage is one AI-generated model shot written back by the
// generation service once a garment has been processed.
type GeneratedImage struct {
	GarmentName string `json:"garmentName"`
	FullBody    string `json:"fullBody"`
	Closeup     string `json:"closeup,omitempty"`
}

// StatusRecord is the client-visible progress snapshot of a job. A complete
// stage always carries progress 100; progress is meaningless once the stage
// is error.
type StatusRecord struct {
	Stage       stage.Stage `json:"stage"`
	Progress    int         `json:"progress"`
	Message     string      `json:"message,omitempty"`
	CurrentItem int         `json:"currentItem,omitempty"`
	TotalItems  int         `json:"totalItems,omitempty"`
	Error       string      `json:"error,omitempty"`
}

// Job is the durable metadata record for one catalog job. It is stored as a
// single metadata.json in the job's namespace and always replaced as a whole,
// never patched field by field.
type Job struct {
	ID              string           `json:"jobId"`
	Category        string           `json:"category"`
	BrandName       string           `json:"brandName"`
	Tagline         string           `json:"tagline,omitempty"`
	CollectionTitle string           `json:"collectionTitle,omitempty"`
	Notes           string           `json:"notes,omitempty"`
	LogoPath        string           `json:"logoPath,omitempty"`
	Images          []GarmentImage   `json:"images"`
	GeneratedImages []GeneratedImage `json:"generatedImages,omitempty"`
	PDFPath         string           `json:"pdfPath,omitempty"`
	DriveFileID     string           `json:"driveFileId,omitempty"`
	DriveURL        string           `json:"driveUrl,omitempty"`
	CreatedAt       time.Time        `json:"createdAt"`

	// Status is the structured status record written through UpdateStatus.
	Status *StatusRecord `json:"status,omitempty"`

	// Complete is a legacy marker from generation workers that predate the
	// structured status record. The reconciler maps it onto a full record.
	Complete bool `json:"complete,omitempty"`
}
