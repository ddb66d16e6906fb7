// Package card renders the printable A6 membership card.
package card

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/tnbsp/membership-workflow/constants"
	"github.com/tnbsp/membership-workflow/internal/entity"
	"github.com/tnbsp/membership-workflow/internal/filestore"
	"github.com/tnbsp/membership-workflow/internal/metrics"
)

// A6 in millimetres.
const (
	pageW = 105.0
	pageH = 148.0
)

// Service renders membership cards to PDF files in the card directory.
type Service struct {
	files   filestore.Store
	baseURL string
	logger  *slog.Logger
}

func NewService(files filestore.Store, baseURL string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{files: files, baseURL: strings.TrimSuffix(baseURL, "/"), logger: logger}
}

// Generate renders the card for m and returns the path of the written PDF.
// Cards are only issued for active members; the caller enforces that.
func (s *Service) Generate(m *entity.Member) (string, error) {
	start := time.Now()
	path := s.files.CardPath(m.MembershipNo)

	pdf := fpdf.New("P", "mm", "A6", "")
	pdf.SetMargins(6, 6, 6)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	s.drawFrame(pdf)
	s.drawHeader(pdf)
	s.drawPhoto(pdf, m.PhotoPath)
	s.drawFields(pdf, m)
	if err := s.drawQR(pdf, m); err != nil {
		return "", err
	}
	s.drawSignature(pdf)
	s.drawFooter(pdf)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create card directory: %w", err)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write card pdf: %w", err)
	}
	metrics.CardsGenerated.Inc()
	s.logger.Info("card generated",
		"member_id", m.ID,
		"membership_no", m.MembershipNo,
		"path", path,
		"duration_ms", time.Since(start).Milliseconds())
	return path, nil
}

func (s *Service) drawFrame(pdf *fpdf.Fpdf) {
	pdf.SetDrawColor(30, 58, 138)
	pdf.SetLineWidth(0.8)
	pdf.Rect(3, 3, pageW-6, pageH-6, "D")
	pdf.SetLineWidth(0.2)
}

func (s *Service) drawHeader(pdf *fpdf.Fpdf) {
	pdf.SetTextColor(30, 58, 138)
	pdf.SetFont("Helvetica", "B", 7)
	pdf.SetXY(6, 6)
	pdf.CellFormat(pageW-12, 4, "EDUCATE  AGITATE  ORGANISE", "", 1, "C", false, 0, "")
	pdf.SetX(6)
	pdf.CellFormat(pageW-12, 4, "JAI BHIM  JAI BHARAT", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetX(6)
	pdf.CellFormat(pageW-12, 6, "BAHUJAN SAMAJ PARTY (BSP)", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetX(6)
	pdf.CellFormat(pageW-12, 4, "TAMILNADU UNIT", "", 1, "C", false, 0, "")
	pdf.SetDrawColor(30, 58, 138)
	pdf.Line(6, 25, pageW-6, 25)
	pdf.SetTextColor(0, 0, 0)
}

// drawPhoto places the member photo in a bordered box; when no photo was
// uploaded the box stays empty.
func (s *Service) drawPhoto(pdf *fpdf.Fpdf, photoPath string) {
	const x, y, w, h = 75.0, 28.0, 24.0, 30.0
	pdf.Rect(x, y, w, h, "D")
	if photoPath == "" {
		return
	}
	ext := constants.NormalizeExt(filepath.Ext(photoPath))
	var imgType string
	switch ext {
	case "jpg", "jpeg":
		imgType = "JPG"
	case "png":
		imgType = "PNG"
	default:
		s.logger.Warn("unsupported photo type on card", "path", photoPath)
		return
	}
	opts := fpdf.ImageOptions{ImageType: imgType}
	pdf.ImageOptions(photoPath, x+0.5, y+0.5, w-1, h-1, false, opts, 0, "")
}

func (s *Service) drawFields(pdf *fpdf.Fpdf, m *entity.Member) {
	rows := []struct {
		label string
		value string
	}{
		{"Membership No", m.MembershipNo},
		{"Active No", m.ActiveNo},
		{"Name", m.Name},
		{"Profession", m.Profession},
		{"Designation", m.Designation},
		{"Mandal", m.Mandal},
		{"Date of Birth", m.DOB},
		{"Blood Group", m.BloodGroup},
		{"Contact No", m.ContactNo},
		{"Address", m.Address},
	}

	y := 29.0
	pdf.SetFont("Helvetica", "", 7)
	for _, row := range rows {
		pdf.SetXY(6, y)
		pdf.SetFont("Helvetica", "B", 7)
		pdf.CellFormat(24, 4.5, row.label, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 7)
		pdf.CellFormat(3, 4.5, ":", "", 0, "C", false, 0, "")
		// Keep values clear of the photo box on the upper rows.
		width := pageW - 12 - 27
		if y < 60 {
			width -= 28
		}
		pdf.CellFormat(width, 4.5, row.value, "", 0, "L", false, 0, "")
		pdf.SetDrawColor(160, 160, 160)
		pdf.SetDashPattern([]float64{0.6, 0.8}, 0)
		pdf.Line(33, y+4, 33+width, y+4)
		pdf.SetDashPattern([]float64{}, 0)
		pdf.SetDrawColor(30, 58, 138)
		y += 6.2
	}
}

func (s *Service) drawQR(pdf *fpdf.Fpdf, m *entity.Member) error {
	link := VerifyURL(s.baseURL, m.ID, m.MembershipNo)
	png, err := qrPNG(link)
	if err != nil {
		return fmt.Errorf("render qr code: %w", err)
	}
	const x, y, size = 78.0, 96.0, 22.0
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("member-qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("member-qr", x, y, size, size, false, opts, 0, "")
	pdf.SetFont("Helvetica", "", 5)
	pdf.SetXY(x-2, y+size)
	pdf.CellFormat(size+4, 3, "Scan to verify", "", 0, "C", false, 0, "")
	return nil
}

func (s *Service) drawSignature(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 7)
	pdf.SetXY(6, 112)
	pdf.CellFormat(45, 4, "P. ANANDAN", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 6.5)
	pdf.SetX(6)
	pdf.CellFormat(45, 3.5, "President, Tamilnadu Unit", "", 1, "L", false, 0, "")
}

func (s *Service) drawFooter(pdf *fpdf.Fpdf) {
	pdf.SetDrawColor(30, 58, 138)
	pdf.Line(6, pageH-18, pageW-6, pageH-18)
	pdf.SetFont("Helvetica", "", 5.5)
	pdf.SetXY(6, pageH-16)
	pdf.MultiCell(pageW-12, 2.8,
		"Bahujan Samaj Party, Tamilnadu Unit\nhttps://tnbsp.org/", "", "C", false)
}
