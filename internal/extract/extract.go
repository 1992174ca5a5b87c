package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"github.com/leslie0605/magic-prep-backend/internal/shared/storage/object"
)

// ErrUnsupported is returned when no extractor exists for a file extension.
var ErrUnsupported = errors.New("unsupported file type")

// Text pulls plain text from a stored object, dispatching on file extension.
// Libraries used: github.com/ledongthuc/pdf (PDF) and github.com/nguyenthenguyen/docx (DOCX).
func Text(ctx context.Context, store object.ObjectStore, storageKey string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := store.Open(ctx, storageKey)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s file=%s: %w", storageKey, fileName, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s file=%s: read: %w", storageKey, fileName, err)
	}

	text, err := TextFromBytes(ctx, raw, fileName)
	if err != nil {
		return "", fmt.Errorf("extract text key=%s file=%s: %w", storageKey, fileName, err)
	}
	return text, nil
}

// TextFromBytes extracts text from an in-memory payload based on the file extension.
func TextFromBytes(ctx context.Context, data []byte, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return extractPDF(data)
	case ".docx":
		return extractDOCX(data)
	case ".tex":
		return extractTeX(data), nil
	case ".txt", ".md":
		return strings.TrimSpace(string(data)), nil
	default:
		// Legacy .doc and anything else has no local extractor.
		return "", fmt.Errorf("%w: %s", ErrUnsupported, fileName)
	}
}

func extractPDF(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()

	return stripDocxXML(doc.Editable().GetContent()), nil
}

func stripDocxXML(raw string) string {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

var (
	texComment = regexp.MustCompile(`(?m)(^|[^\\])%.*$`)
	texCommand = regexp.MustCompile(`\\[a-zA-Z]+\*?(\[[^\]]*\])?`)
)

// extractTeX strips comments, commands, and grouping braces from LaTeX source.
// Best-effort: the goal is readable prose for review, not a TeX parser.
func extractTeX(data []byte) string {
	text := string(data)
	text = texComment.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, `\\`, "\n")
	text = texCommand.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "{", "")
	text = strings.ReplaceAll(text, "}", "")
	lines := strings.Split(text, "\n")
	var out []string
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}
