// Package converter turns uploaded files into plain text by extension.
package converter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"kbqa/internal/domain"
)

var (
	// ErrUnsupportedExtension is returned for files no parser handles.
	ErrUnsupportedExtension = errors.New("unsupported extension")
	// ErrLegacyWord is returned for binary .doc files.
	ErrLegacyWord = errors.New("legacy .doc format is not supported, save the file as .docx")
)

// Parser extracts text from the raw bytes of one file type.
type Parser interface {
	Supports(ext string) bool
	Parse(ctx context.Context, data []byte) (string, error)
}

// AcceptedExtensions are the file types offered for upload.
var AcceptedExtensions = []string{".pdf", ".doc", ".docx", ".txt"}

// Manager dispatches files to the parser registered for their extension.
type Manager struct {
	parsers []Parser
	log     *zap.Logger
}

// Options selects the parser backends.
type Options struct {
	PDFBackend       string
	UnidocLicenseEnv string
}

var licenseOnce sync.Once

// NewManager builds a manager with the text, PDF and Word parsers.
func NewManager(opts Options, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	if key := os.Getenv(opts.UnidocLicenseEnv); key != "" {
		licenseOnce.Do(func() {
			if err := applyUnidocLicense(key); err != nil {
				log.Warn("unidoc license rejected", zap.Error(err))
			}
		})
	}
	var pdfParser Parser = PlainPDFParser{}
	if opts.PDFBackend == "unipdf" {
		pdfParser = UniPDFParser{}
	}
	return &Manager{
		parsers: []Parser{TextParser{}, pdfParser, WordParser{}, LegacyWordParser{}},
		log:     log,
	}
}

// Convert extracts the text of a file named filename.
func (m *Manager) Convert(ctx context.Context, filename string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, p := range m.parsers {
		if !p.Supports(ext) {
			continue
		}
		text, err := p.Parse(ctx, data)
		if err != nil {
			return "", fmt.Errorf("convert %s: %w", filename, err)
		}
		m.log.Debug("converted document",
			zap.String("filename", filename),
			zap.Int("bytes", len(data)),
			zap.Int("chars", len([]rune(text))),
		)
		return text, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
}

// ConvertFile reads path and converts it into a document named after its base name.
func ConvertFile(ctx context.Context, conv domain.Converter, path string) (domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Document{}, err
	}
	name := filepath.Base(path)
	text, err := conv.Convert(ctx, name, data)
	if err != nil {
		return domain.Document{}, err
	}
	return domain.Document{Filename: name, Content: text}, nil
}
