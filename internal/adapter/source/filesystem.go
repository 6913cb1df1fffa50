// Package source loads raw documents from the local filesystem.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"ragpipe/internal/domain"
)

// Filesystem reads documents out of directories below a configured base
// path. Supported file types are plain text, markdown, and PDF; anything
// else is skipped with a warning.
type Filesystem struct {
	basePath string
	log      *slog.Logger
}

// NewFilesystem creates a filesystem document source rooted at basePath.
func NewFilesystem(basePath string, log *slog.Logger) *Filesystem {
	if log == nil {
		log = slog.Default()
	}
	return &Filesystem{basePath: basePath, log: log}
}

// Load reads every supported file directly under the named directory. PDF
// files produce one document per page with PageCount set to the total;
// text and markdown files produce a single document.
func (f *Filesystem) Load(ctx context.Context, directory string) ([]domain.Document, error) {
	dirPath := filepath.Join(f.basePath, directory)
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	if len(entries) == 0 {
		f.log.Warn("directory is empty", "path", dirPath)
		return nil, nil
	}

	var docs []domain.Document
	files := 0
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(dirPath, entry.Name())
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		var loaded []domain.Document
		switch ext {
		case ".txt", ".md":
			loaded, err = f.loadText(path, strings.TrimPrefix(ext, "."))
		case ".pdf":
			loaded, err = f.loadPDF(path)
		default:
			f.log.Warn("skipping unsupported file", "file", entry.Name())
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", entry.Name(), err)
		}
		files++
		docs = append(docs, loaded...)
	}

	f.log.Info("loaded documents", "documents", len(docs), "files", files, "path", dirPath)
	return docs, nil
}

func (f *Filesystem) loadText(path, fileType string) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fileType == "md" {
		fileType = "markdown"
	} else {
		fileType = "text"
	}
	return []domain.Document{{
		Content: string(data),
		Meta: domain.DocumentMeta{
			Source:     path,
			FileType:   fileType,
			FileSizeKB: float64(info.Size()) / 1024,
			PageCount:  1,
		},
	}}, nil
}

func (f *Filesystem) loadPDF(path string) ([]domain.Document, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	total := reader.NumPage()
	var docs []domain.Document
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		docs = append(docs, domain.Document{
			Content: text,
			Meta: domain.DocumentMeta{
				Source:     path,
				FileType:   "pdf",
				FileSizeKB: float64(info.Size()) / 1024,
				PageCount:  total,
			},
		})
	}
	return docs, nil
}
