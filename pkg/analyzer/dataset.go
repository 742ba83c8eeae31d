package analyzer

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/aldicp/aldicp/pkg/models"
)

// analyzeDataset extracts row/column counts and column names for tabular
// files. Reads at most MaxBytesRead via the CSV reader's underlying
// bounded reader to avoid loading arbitrarily large datasets.
func (a *Analyzer) analyzeDataset(path string, result *models.Analysis) {
	f, err := os.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	defer f.Close()

	delim := ','
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		delim = '\t'
	}

	r := csv.NewReader(&boundedReader{r: f, remaining: MaxBytesRead})
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		result.Features["row_count"] = 0
		result.Features["column_count"] = 0
		return
	}

	rowCount := 0
	for {
		_, err := r.Read()
		if err != nil {
			break
		}
		rowCount++
	}

	result.Features["column_count"] = len(header)
	result.Features["column_names"] = header
	result.Features["row_count"] = rowCount
}

type boundedReader struct {
	r         *os.File
	remaining int64
}

func (b *boundedReader) Read(p []byte) (int, error) {
	if b.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > b.remaining {
		p = p[:b.remaining]
	}
	n, err := b.r.Read(p)
	b.remaining -= int64(n)
	return n, err
}
