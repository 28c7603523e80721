// Package sniffer turns raw report bytes into the tagged content shape the
// transformation engine consumes. The declared file type picks the shape;
// CSV headers are normalized once here so downstream rules address a
// canonical key set.
package sniffer

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/nightaudit/ledgerbridge/internal/domain/transform"
)

// DetectShape maps a declared file type onto a content shape. Tabular data
// becomes row maps, line-oriented text becomes lines, extracted document
// text passes through as-is. An unknown type yields empty content, which
// the engine turns into zero records.
func DetectShape(fileType string, data []byte) transform.Content {
	switch strings.ToLower(strings.TrimSpace(fileType)) {
	case "csv":
		rows, err := parseRows(data)
		if err != nil {
			return transform.Content{}
		}
		return transform.Content{Rows: rows}
	case "txt":
		text := string(data)
		return transform.Content{Text: text, Lines: splitLines(text)}
	case "pdf":
		return transform.Content{Text: string(data)}
	default:
		return transform.Content{}
	}
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// parseRows reads delimited data into row maps keyed by normalized headers.
// The first line is the header row; the delimiter is whichever common
// candidate occurs most often in it.
func parseRows(data []byte) ([]map[string]any, error) {
	text := strings.TrimPrefix(string(data), "\uFEFF")
	firstLine, _, _ := strings.Cut(text, "\n")

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = detectDelimiter(firstLine)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	headerRecord, err := reader.Read()
	if err != nil {
		return nil, err
	}
	headers := make([]string, len(headerRecord))
	for i, h := range headerRecord {
		headers[i] = NormalizeKey(h)
	}

	var rows []map[string]any
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(headers))
		for i, h := range headers {
			if h == "" || i >= len(record) {
				continue
			}
			row[h] = strings.TrimSpace(record[i])
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// NormalizeKey lower-cases a header and joins its words with underscores,
// so "Tenant Name", "tenant_name" and "TENANT-NAME" all address the same
// field.
func NormalizeKey(header string) string {
	header = strings.ToLower(strings.TrimSpace(header))
	fields := strings.FieldsFunc(header, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '-' || r == '.'
	})
	return strings.Join(fields, "_")
}

func detectDelimiter(line string) rune {
	best := ','
	bestCount := 0
	for _, d := range []rune{';', '\t', ',', '|'} {
		if count := strings.Count(line, string(d)); count > bestCount {
			bestCount = count
			best = d
		}
	}
	return best
}
