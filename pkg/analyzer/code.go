package analyzer

import (
	"path/filepath"
	"strings"

	"github.com/aldicp/aldicp/pkg/models"
)

// analyzeCode extracts a shallow feature bag in a single pass over the
// file's lines — import/class/function counts plus raw line count. Bounded
// at O(file size) with no nested I/O (spec §4.2).
func (a *Analyzer) analyzeCode(path string, result *models.Analysis) {
	data, err := readBounded(path)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}

	lang := languageForExt(filepath.Ext(path))
	lines := scanLines(data)

	var imports []string
	var classes []string
	var functions []string

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		switch lang {
		case "go":
			if strings.HasPrefix(line, "import ") || strings.HasPrefix(line, `"`) && strings.Contains(raw, "\t\"") {
				imports = append(imports, line)
			}
			if strings.HasPrefix(line, "func ") {
				functions = append(functions, line)
			}
			if strings.HasPrefix(line, "type ") && strings.Contains(line, "struct") {
				classes = append(classes, line)
			}
		case "python":
			if strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "from ") {
				imports = append(imports, line)
			}
			if strings.HasPrefix(line, "def ") {
				functions = append(functions, line)
			}
			if strings.HasPrefix(line, "class ") {
				classes = append(classes, line)
			}
		default:
			if strings.HasPrefix(line, "import ") {
				imports = append(imports, line)
			}
			if strings.HasPrefix(line, "function ") || strings.Contains(line, "=> {") {
				functions = append(functions, line)
			}
			if strings.HasPrefix(line, "class ") {
				classes = append(classes, line)
			}
		}
	}

	result.Features["language"] = lang
	result.Features["imports"] = len(imports)
	result.Features["classes"] = len(classes)
	result.Features["functions"] = len(functions)
	result.Features["lines"] = len(lines)
}

func languageForExt(ext string) string {
	switch strings.ToLower(ext) {
	case ".go":
		return "go"
	case ".py":
		return "python"
	case ".js":
		return "javascript"
	case ".ts":
		return "typescript"
	case ".java":
		return "java"
	case ".rb":
		return "ruby"
	case ".rs":
		return "rust"
	default:
		return "unknown"
	}
}
