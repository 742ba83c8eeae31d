package analyzer

import (
	"path/filepath"
	"strings"

	"github.com/aldicp/aldicp/pkg/models"
)

// analyzeMedia records the media kind and container extension. Computing
// an exact duration requires a container/codec parser, which is out of
// scope for this analyzer (spec's LLM/embedding non-goal extends to
// heavyweight media parsing); duration is left absent rather than guessed.
func (a *Analyzer) analyzeMedia(path string, result *models.Analysis) {
	ext := strings.ToLower(filepath.Ext(path))
	kind := "video"
	switch ext {
	case ".mp3", ".wav":
		kind = "audio"
	}

	result.Features["kind"] = kind
	result.Features["container"] = strings.TrimPrefix(ext, ".")
}
