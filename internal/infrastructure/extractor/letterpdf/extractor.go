package letterpdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/mkravets/denial-appeals/internal/core/domain"
	"github.com/mkravets/denial-appeals/internal/core/ports"
)

// Extractor recovers the text of an uploaded denial letter from object
// storage. PDF uploads go through the pdf reader; anything that is valid
// UTF-8 is treated as plain text.
type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, letter *domain.LetterRecord) (string, error) {
	reader, err := e.storage.Open(ctx, letter.StorageKey)
	if err != nil {
		return "", fmt.Errorf("open uploaded letter: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read uploaded letter: %w", err)
	}

	if bytes.HasPrefix(raw, []byte("%PDF")) {
		return extractPDFText(raw)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("unsupported upload format: %s", letter.StorageKey)
	}
	return strings.TrimSpace(string(raw)), nil
}

func extractPDFText(raw []byte) (string, error) {
	doc, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("parse pdf: %w", err)
	}

	textReader, err := doc.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var builder strings.Builder
	if _, err := io.Copy(&builder, textReader); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return strings.TrimSpace(builder.String()), nil
}
