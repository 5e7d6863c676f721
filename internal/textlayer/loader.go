// Package textlayer turns tender documents into pages of text lines. It
// reads embedded PDF text layers, pdftotext output and plain page dumps;
// it never runs OCR.
package textlayer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/clarencejohnson126/angebotsagent/constants"
	"github.com/clarencejohnson126/angebotsagent/internal/common"
)

// Config selects the PDF backend.
type Config struct {
	PDFBackend   string // native | pdftotext
	PDFToTextBin string
	MaxPages     int // 0 = all
}

// Document is the loaded text layer of one file.
type Document struct {
	Path     string
	FileType string // one of constants.FileTypes
	Pages    [][]string
	Warnings []string
}

// PageCount returns the number of pages, empty ones included.
func (d Document) PageCount() int { return len(d.Pages) }

// pageDump is the JSON/YAML shape: one entry per page, each a list of lines.
type pageDump struct {
	Pages [][]string `json:"pages" yaml:"pages"`
}

// Loader reads documents from disk.
type Loader struct {
	cfg    Config
	runner Runner
	logger *zap.Logger
}

// NewLoader returns a loader. A nil runner uses ExecRunner.
func NewLoader(cfg Config, runner Runner, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if runner == nil {
		runner = ExecRunner{Logger: logger}
	}
	if cfg.PDFBackend == "" {
		cfg.PDFBackend = common.PDFBackendNative
	}
	if cfg.PDFToTextBin == "" {
		cfg.PDFToTextBin = "pdftotext"
	}
	return &Loader{cfg: cfg, runner: runner, logger: logger}
}

// Load reads path according to its extension.
func (l *Loader) Load(ctx context.Context, path string) (Document, error) {
	ft := constants.FileTypeForExt(filepath.Ext(path))
	if ft == "" {
		return Document{}, common.NewAppError("LOAD_ERROR", filepath.Base(path), common.ErrUnsupportedFormat)
	}
	doc := Document{Path: path, FileType: ft}

	var err error
	switch ft {
	case "PDF":
		doc.Pages, doc.Warnings, err = l.loadPDF(ctx, path)
	default:
		var data []byte
		data, err = os.ReadFile(path)
		if err == nil {
			doc.Pages, err = Decode(ft, data)
		}
	}
	if err != nil {
		return Document{}, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	if l.cfg.MaxPages > 0 && len(doc.Pages) > l.cfg.MaxPages {
		doc.Warnings = append(doc.Warnings, fmt.Sprintf("Only the first %d of %d pages were loaded", l.cfg.MaxPages, len(doc.Pages)))
		doc.Pages = doc.Pages[:l.cfg.MaxPages]
	}
	l.logger.Debug("textlayer.load.ok",
		zap.String("path", path),
		zap.String("type", ft),
		zap.Int("pages", len(doc.Pages)),
	)
	return doc, nil
}

// Decode parses a non-PDF payload of the given type into pages.
func Decode(ft string, data []byte) ([][]string, error) {
	switch ft {
	case "TXT":
		return SplitPages(string(data)), nil
	case "JSON":
		var d pageDump
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode json pages: %w", common.ErrInvalidInput)
		}
		return normalizeDump(d), nil
	case "YAML":
		var d pageDump
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("decode yaml pages: %w", common.ErrInvalidInput)
		}
		return normalizeDump(d), nil
	}
	return nil, common.ErrUnsupportedFormat
}

func normalizeDump(d pageDump) [][]string {
	pages := make([][]string, len(d.Pages))
	for i, p := range d.Pages {
		pages[i] = NormalizeLines(p)
	}
	return pages
}
