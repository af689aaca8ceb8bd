package converter

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/unidoc/unioffice/document"
)

// WordParser reads .docx paragraphs with unioffice.
type WordParser struct{}

func (WordParser) Supports(ext string) bool { return ext == ".docx" }

func (WordParser) Parse(_ context.Context, data []byte) (string, error) {
	doc, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("read docx: %w", err)
	}
	defer doc.Close()

	var paras []string
	for _, para := range doc.Paragraphs() {
		var sb strings.Builder
		for _, run := range para.Runs() {
			sb.WriteString(run.Text())
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			paras = append(paras, text)
		}
	}
	return strings.Join(paras, "\n\n"), nil
}

// LegacyWordParser accepts .doc uploads only to reject them with a clear error.
type LegacyWordParser struct{}

func (LegacyWordParser) Supports(ext string) bool { return ext == ".doc" }

func (LegacyWordParser) Parse(context.Context, []byte) (string, error) {
	return "", ErrLegacyWord
}
