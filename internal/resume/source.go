package resume

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/logger"
)

var ErrNoText = errors.New("no text extracted from resume")

// ReadText returns the text of a résumé file. PDFs are read page by page;
// any other file is read as plain text.
func ReadText(path string, log *zap.Logger) (string, error) {
	log = logger.OrNop(log).With(zap.String("file", filepath.Base(path)))

	var (
		text string
		err  error
	)
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err = readPDF(path, log)
	} else {
		var raw []byte
		raw, err = os.ReadFile(path)
		text = string(raw)
	}
	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%s: %w", path, ErrNoText)
	}

	log.Debug("resume text extracted", zap.Int("length", len(text)))
	return text, nil
}

func readPDF(path string, log *zap.Logger) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var b strings.Builder
	for n := 0; n < doc.NumPage(); n++ {
		page, err := doc.Text(n)
		if err != nil {
			log.Warn("skipping unreadable page", zap.Int("page", n+1), zap.Error(err))
			continue
		}
		if page = strings.TrimSpace(page); page != "" {
			b.WriteString(page)
			b.WriteString("\n\n")
		}
	}

	return b.String(), nil
}
