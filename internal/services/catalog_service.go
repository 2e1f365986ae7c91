package services

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/bonocatalog/backend/internal/config"
	"github.com/bonocatalog/backend/internal/models"
	"github.com/bonocatalog/backend/pkg/imageutil"
)

// A4 in millimetres, plus the layout constants of the minimalist template.
const (
	pageW      = 210.0
	pageH      = 297.0
	pageMargin = 18.0
	headerGap  = 14.0
	footerGap  = 16.0
)

// productImage is one resolved image set for a catalog page.
type productImage struct {
	FullBody string
	Closeup  string
	Name     string
}

// CatalogService assembles a job's generated images into a branded PDF
// catalog: cover, one product page per image set, back cover with a QR code
// linking to the published catalog.
type CatalogService struct {
	cfg   *config.Config
	store *StoreService
}

func NewCatalogService(cfg *config.Config, store *StoreService) *CatalogService {
	return &CatalogService{cfg: cfg, store: store}
}

// AssembleJob renders the catalog PDF for a completed job, records the
// artifact path in the job metadata, and returns the updated job.
func (s *CatalogService) AssembleJob(jobID string) (*models.Job, error) {
	job, err := s.store.ReadMetadata(jobID)
	if err != nil {
		return nil, err
	}

	images := s.resolveImages(job)
	if len(images) == 0 {
		return nil, models.NewValidationError("job has no images to assemble")
	}

	short := jobID
	if len(short) > 8 {
		short = short[:8]
	}
	outPath := filepath.Join(s.store.JobDir(jobID), fmt.Sprintf("catalog_%s.pdf", short))

	if err := s.render(job, images, outPath); err != nil {
		return nil, models.NewUpstreamError(fmt.Sprintf("catalog rendering failed: %v", err))
	}

	job.PDFPath = outPath
	if err := s.store.Save(job); err != nil {
		return nil, err
	}
	log.Printf("Catalog assembled for job %s: %s (%d product pages)", jobID, outPath, len(images))
	return job, nil
}

// resolveImages prefers generated model shots and falls back to the original
// garment uploads when the generation service produced nothing. Missing
// closeups are cropped from the full-body shot on the fly.
func (s *CatalogService) resolveImages(job *models.Job) []productImage {
	var images []productImage
	for i, gen := range job.GeneratedImages {
		if gen.FullBody == "" || !fileExists(gen.FullBody) {
			continue
		}
		closeup := gen.Closeup
		if closeup == "" || !fileExists(closeup) {
			closeup = filepath.Join(s.store.JobDir(job.ID), fmt.Sprintf("closeup_%d.png", i))
			if err := imageutil.CreateCloseup(gen.FullBody, closeup); err != nil {
				log.Printf("Closeup crop failed for job %s: %v", job.ID, err)
				closeup = ""
			}
		}
		images = append(images, productImage{
			FullBody: gen.FullBody,
			Closeup:  closeup,
			Name:     productName(gen.GarmentName, len(images)+1),
		})
	}
	if len(images) > 0 {
		return images
	}
	for _, img := range job.Images {
		if !fileExists(img.Path) {
			continue
		}
		images = append(images, productImage{
			FullBody: img.Path,
			Name:     productName(img.Name, len(images)+1),
		})
	}
	return images
}

func (s *CatalogService) render(job *models.Job, images []productImage, outPath string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s Catalog", job.BrandName), true)
	pdf.SetAuthor(job.BrandName, true)
	pdf.SetAutoPageBreak(false, 0)

	logoPath := job.LogoPath
	if logoPath == "" {
		fallback := filepath.Join(s.cfg.AssetsDir, "logos", "bono.png")
		if fileExists(fallback) {
			logoPath = fallback
		}
	}

	s.coverPage(pdf, job, logoPath)
	for i, img := range images {
		s.productPage(pdf, job, img, i+1)
	}
	s.backCoverPage(pdf, job, logoPath)

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return pdf.OutputFileAndClose(outPath)
}

func (s *CatalogService) coverPage(pdf *gofpdf.Fpdf, job *models.Job, logoPath string) {
	pdf.AddPage()

	// accent bar
	pdf.SetFillColor(26, 26, 26)
	pdf.Rect(0, 0, pageW, 3, "F")

	if logoPath != "" {
		drawImageFitted(pdf, logoPath, (pageW-64)/2, 40, 64, 32)
	} else {
		pdf.SetFont("Helvetica", "B", 48)
		pdf.SetTextColor(26, 26, 26)
		pdf.SetXY(0, 50)
		pdf.CellFormat(pageW, 20, job.BrandName, "", 0, "C", false, 0, "")
	}

	if job.Tagline != "" {
		pdf.SetFont("Helvetica", "I", 14)
		pdf.SetTextColor(102, 102, 102)
		pdf.SetXY(0, 86)
		pdf.CellFormat(pageW, 8, job.Tagline, "", 0, "C", false, 0, "")
	}

	title := job.CollectionTitle
	if title == "" {
		title = "Collection"
	}
	pdf.SetFont("Helvetica", "", 22)
	pdf.SetTextColor(51, 51, 51)
	pdf.SetXY(0, pageH/2-10)
	pdf.CellFormat(pageW, 12, title, "", 0, "C", false, 0, "")

	// decorative rule under the title
	pdf.SetDrawColor(224, 224, 224)
	pdf.SetLineWidth(0.6)
	pdf.Line(pageW/2-35, pageH/2+8, pageW/2+35, pageH/2+8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(136, 136, 136)
	pdf.SetXY(0, pageH-40)
	pdf.CellFormat(pageW, 8, categoryLine(job.Category), "", 0, "C", false, 0, "")
}

func (s *CatalogService) productPage(pdf *gofpdf.Fpdf, job *models.Job, img productImage, pageNo int) {
	pdf.AddPage()

	// page background
	pdf.SetFillColor(250, 250, 250)
	pdf.Rect(0, 0, pageW, pageH, "F")

	// header: brand wordmark and a subtle rule
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(51, 51, 51)
	pdf.SetXY(pageMargin, pageMargin-8)
	pdf.CellFormat(0, 6, job.BrandName, "", 0, "L", false, 0, "")
	pdf.SetDrawColor(224, 224, 224)
	pdf.SetLineWidth(0.2)
	pdf.Line(pageMargin, pageMargin+2, pageW-pageMargin, pageMargin+2)

	contentY := pageMargin + headerGap
	contentH := pageH - contentY - footerGap - pageMargin
	contentW := pageW - 2*pageMargin

	if img.Closeup != "" {
		// 60/40 split, closeup offset for visual balance
		leftW := contentW * 0.58
		rightW := contentW * 0.38
		drawImageFitted(pdf, img.FullBody, pageMargin, contentY, leftW, contentH)
		drawImageFitted(pdf, img.Closeup, pageMargin+leftW+contentW*0.04, contentY+contentH*0.2, rightW, contentH*0.6)
	} else {
		drawImageFitted(pdf, img.FullBody, pageMargin, contentY, contentW, contentH)
	}

	// product name
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(26, 26, 26)
	pdf.SetXY(pageMargin, pageH-pageMargin-10)
	pdf.CellFormat(0, 8, img.Name, "", 0, "L", false, 0, "")

	// page number footer
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(153, 153, 153)
	pdf.SetXY(0, pageH-pageMargin)
	pdf.CellFormat(pageW, 6, fmt.Sprintf("%d", pageNo), "", 0, "C", false, 0, "")
}

func (s *CatalogService) backCoverPage(pdf *gofpdf.Fpdf, job *models.Job, logoPath string) {
	pdf.AddPage()

	pdf.SetFillColor(26, 26, 26)
	pdf.Rect(0, 0, pageW, pageH, "F")

	if logoPath != "" {
		drawImageFitted(pdf, logoPath, (pageW-44)/2, pageH/2-54, 44, 22)
	}

	pdf.SetFont("Helvetica", "B", 30)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetXY(0, pageH/2-20)
	pdf.CellFormat(pageW, 14, job.BrandName, "", 0, "C", false, 0, "")

	// QR code pointing at the published catalog
	if png, err := qrcode.Encode(s.catalogURL(job), qrcode.Medium, 512); err == nil {
		opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		pdf.RegisterImageOptionsReader("backcover-qr", opt, bytes.NewReader(png))
		pdf.ImageOptions("backcover-qr", (pageW-34)/2, pageH/2+4, 34, 34, false, opt, 0, "")
	}

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(136, 136, 136)
	pdf.SetXY(0, pageH-30)
	pdf.CellFormat(pageW, 6, s.cfg.ContactLine, "", 0, "C", false, 0, "")
}

// catalogURL is what the back-cover QR resolves to: the published drive copy
// when one exists, otherwise the API download endpoint.
func (s *CatalogService) catalogURL(job *models.Job) string {
	if job.DriveURL != "" {
		return job.DriveURL
	}
	return fmt.Sprintf("%s/api/v1/jobs/%s/download", strings.TrimRight(s.cfg.APIUrl, "/"), job.ID)
}

// drawImageFitted places an image inside a bounding box preserving aspect
// ratio, centred on both axes. Unreadable images are skipped, not fatal.
func drawImageFitted(pdf *gofpdf.Fpdf, path string, x, y, w, h float64) {
	iw, ih, err := imageutil.Bounds(path)
	if err != nil || iw == 0 || ih == 0 {
		log.Printf("Skipping unreadable catalog image %s: %v", path, err)
		return
	}
	aspect := float64(iw) / float64(ih)
	drawW, drawH := w, w/aspect
	if drawH > h {
		drawH = h
		drawW = h * aspect
	}
	opt := gofpdf.ImageOptions{ImageType: "", ReadDpi: true}
	pdf.ImageOptions(path, x+(w-drawW)/2, y+(h-drawH)/2, drawW, drawH, false, opt, 0, "")
}

func productName(raw string, index int) string {
	name := strings.TrimSuffix(raw, filepath.Ext(raw))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Sprintf("Style #%d", index)
	}
	return strings.Title(name)
}

func categoryLine(category string) string {
	c := strings.ReplaceAll(category, "_", " ")
	return strings.ToUpper(strings.TrimSpace(c + " collection"))
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
