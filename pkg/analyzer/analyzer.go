// Package analyzer implements the Content Analyzer (spec §4.2): it derives
// a category and a shallow, category-specific feature bag from a file path,
// never raising — recoverable failures are recorded as analysis errors
// instead of aborting the call.
package analyzer

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/aldicp/aldicp/pkg/models"
)

// MaxBytesRead bounds how much of a file the analyzer reads, keeping work
// O(file size) with no nested I/O (spec §4.2).
const MaxBytesRead = 2 * 1024 * 1024

var extensionCategory = map[string]models.Category{
	".txt": models.CategoryDocument, ".md": models.CategoryDocument, ".rst": models.CategoryDocument,
	".go": models.CategoryCode, ".py": models.CategoryCode, ".js": models.CategoryCode,
	".ts": models.CategoryCode, ".java": models.CategoryCode, ".rb": models.CategoryCode, ".rs": models.CategoryCode,
	".csv": models.CategoryDataset, ".tsv": models.CategoryDataset, ".parquet": models.CategoryDataset,
	".mp4": models.CategoryMedia, ".mp3": models.CategoryMedia, ".wav": models.CategoryMedia, ".mov": models.CategoryMedia,
}

var mimePrefixCategory = map[string]models.Category{
	"text/":  models.CategoryDocument,
	"audio/": models.CategoryMedia,
	"video/": models.CategoryMedia,
}

// Analyzer is stateless; a single instance may be shared across goroutines.
type Analyzer struct{}

// New constructs an Analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze derives category and features from path. It never returns an
// error for recoverable failures — these are appended to Analysis.Errors.
func (a *Analyzer) Analyze(path string) *models.Analysis {
	result := &models.Analysis{
		Path:     path,
		Name:     filepath.Base(path),
		Features: map[string]any{},
	}

	info, err := os.Stat(path)
	if err != nil {
		result.Category = models.CategoryUnknown
		result.Errors = append(result.Errors, err.Error())
		return result
	}
	result.Size = info.Size()

	result.Category, result.MIME = categorize(path)

	switch result.Category {
	case models.CategoryDocument:
		a.analyzeDocument(path, result)
	case models.CategoryCode:
		a.analyzeCode(path, result)
	case models.CategoryDataset:
		a.analyzeDataset(path, result)
	case models.CategoryMedia:
		a.analyzeMedia(path, result)
	}

	return result
}

// categorize picks a category by extension first, then mime sniffing, then
// falls back to unknown (spec §4.2 ordering).
func categorize(path string) (models.Category, string) {
	ext := strings.ToLower(filepath.Ext(path))
	if cat, ok := extensionCategory[ext]; ok {
		return cat, mimeForExt(ext)
	}

	mime := mimeForExt(ext)
	for prefix, cat := range mimePrefixCategory {
		if strings.HasPrefix(mime, prefix) {
			return cat, mime
		}
	}

	return models.CategoryUnknown, mime
}

func mimeForExt(ext string) string {
	switch ext {
	case ".txt", ".md", ".rst":
		return "text/plain"
	case ".csv":
		return "text/csv"
	case ".mp4", ".mov":
		return "video/mp4"
	case ".mp3", ".wav":
		return "audio/mpeg"
	default:
		return ""
	}
}

func readBounded(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, MaxBytesRead)
	n, err := f.Read(buf)
	if err != nil && n == 0 {
		return nil, err
	}
	return buf[:n], nil
}

func scanLines(data []byte) []string {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}
