package analyzer

import (
	"path/filepath"
	"strings"

	"github.com/aldicp/aldicp/pkg/models"
)

func (a *Analyzer) analyzeDocument(path string, result *models.Analysis) {
	data, err := readBounded(path)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}

	lines := scanLines(data)
	title := ""
	var headings []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if title == "" {
			title = trimmed
		}
		if strings.HasPrefix(trimmed, "#") {
			headings = append(headings, strings.TrimSpace(strings.TrimLeft(trimmed, "#")))
		}
	}

	result.Features["title"] = title
	result.Features["token_count"] = len(strings.Fields(string(data)))
	result.Features["section_headings"] = headings
	result.Features["source_type"] = sourceTypeForExt(filepath.Ext(path))
}

func sourceTypeForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".md":
		return "markdown"
	case ".rst":
		return "restructuredtext"
	default:
		return "text"
	}
}
