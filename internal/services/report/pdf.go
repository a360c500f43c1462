package report

import (
	"bytes"
	"fmt"
	"os"

	"github.com/akmajay1/poultry/internal/fraud"
	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

// GenerateDigestPDF renders a daily fraud digest as an A4 PDF. Each
// case row carries a QR code pointing at its review URL so reviewers
// can jump straight from a printed sheet to the record.
func GenerateDigestPDF(digest *fraud.DailyDigest) ([]byte, error) {
	baseURL := os.Getenv("REVIEW_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5001/api/fraud/reports"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Fraud Digest - %s", digest.Date))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, fmt.Sprintf("Flagged cases: %d", digest.TotalCases))
	pdf.Ln(12)

	if digest.TotalCases == 0 {
		pdf.SetFont("Arial", "I", 11)
		pdf.Cell(0, 8, "No fraud records were opened in this period.")
	}

	for i, c := range digest.Cases {
		// Page break with headroom for one full row
		if pdf.GetY() > 250 {
			pdf.AddPage()
		}

		y := pdf.GetY()

		qrContent := fmt.Sprintf("%s/%s", baseURL, c.RecordID)
		qrPng, err := qrcode.Encode(qrContent, qrcode.Low, 256)
		if err != nil {
			return nil, fmt.Errorf("failed to encode case QR: %w", err)
		}

		imgName := fmt.Sprintf("case_qr_%d", i)
		opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
		_ = pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(qrPng))
		pdf.ImageOptions(imgName, 15, y, 20, 20, false, opts, 0, "")

		pdf.SetXY(40, y)
		pdf.SetFont("Arial", "B", 10)
		actor := c.Username
		if actor == "" {
			actor = c.UserID
		}
		pdf.Cell(0, 5, fmt.Sprintf("Actor: %s", actor))
		pdf.SetXY(40, y+5)
		pdf.SetFont("Arial", "", 9)
		pdf.Cell(0, 5, fmt.Sprintf("Submission: %s", c.SubmissionID))
		pdf.SetXY(40, y+10)
		pdf.Cell(0, 5, fmt.Sprintf("Findings: %s", c.DetectionTypes))
		pdf.SetXY(40, y+15)
		pdf.Cell(0, 5, fmt.Sprintf("Review status: %s", c.Status))

		pdf.SetY(y + 24)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render digest PDF: %w", err)
	}
	return buf.Bytes(), nil
}
