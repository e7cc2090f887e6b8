package letterpdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/mkravets/denial-appeals/internal/core/domain"
)

type memoryStorage struct {
	objects map[string][]byte
}

func (m *memoryStorage) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = raw
	return nil
}

func (m *memoryStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("no object %s", key)
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func TestExtractPlainTextUpload(t *testing.T) {
	storage := &memoryStorage{objects: map[string][]byte{
		"letters/ltr-1_denial.txt": []byte("  Your claim C-42 has been denied.  \n"),
	}}

	text, err := NewExtractor(storage).Extract(context.Background(), &domain.LetterRecord{
		StorageKey: "letters/ltr-1_denial.txt",
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "Your claim C-42 has been denied." {
		t.Fatalf("text = %q", text)
	}
}

func TestExtractRejectsUnknownBinary(t *testing.T) {
	storage := &memoryStorage{objects: map[string][]byte{
		"letters/ltr-1_scan.bin": {0xff, 0xfe, 0x00, 0x01},
	}}

	_, err := NewExtractor(storage).Extract(context.Background(), &domain.LetterRecord{
		StorageKey: "letters/ltr-1_scan.bin",
	})
	if err == nil || !strings.Contains(err.Error(), "unsupported upload format") {
		t.Fatalf("err = %v, want unsupported format", err)
	}
}

func TestExtractMissingObject(t *testing.T) {
	_, err := NewExtractor(&memoryStorage{}).Extract(context.Background(), &domain.LetterRecord{
		StorageKey: "letters/ghost",
	})
	if err == nil {
		t.Fatalf("expected error for missing object")
	}
}
