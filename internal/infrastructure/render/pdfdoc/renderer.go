package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/mkravets/denial-appeals/internal/core/domain"
)

// Renderer lays the appeal text out as a single-column A4 PDF.
type Renderer struct{}

func New() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Render(ctx context.Context, letter *domain.LetterRecord) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(20, 20, 20)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 14)
	doc.MultiCell(0, 7, "Insurance Claim Appeal", "", "L", false)
	doc.Ln(2)

	doc.SetFont("Helvetica", "", 10)
	doc.MultiCell(0, 5, time.Now().UTC().Format("January 2, 2006"), "", "L", false)
	if letter.Analysis != nil && letter.Analysis.ClaimNumber != "" {
		doc.MultiCell(0, 5, "Re: Claim "+letter.Analysis.ClaimNumber, "", "L", false)
	}
	doc.Ln(4)

	doc.SetFont("Helvetica", "", 12)
	for _, paragraph := range strings.Split(letter.AIResponse, "\n") {
		doc.MultiCell(0, 6, paragraph, "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render appeal pdf: %w", err)
	}
	return buf.Bytes(), nil
}
