package mapping

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Mapping exports name their columns inconsistently ("Source Code",
// "srcAcctCode", "SRC_ACCT_CODE", ...). Headers are normalized once when a
// row is ingested, so the rest of the code only ever sees canonical keys.
const (
	keySourceCode   = "sourcecode"
	keyTargetCode   = "targetcode"
	keyPropertyID   = "propertyid"
	keyPropertyName = "propertyname"
	keyTargetName   = "targetname"
	keyMultiplier   = "multiplier"
)

var headerAliases = map[string]string{
	"sourcecode":   keySourceCode,
	"srcacctcode":  keySourceCode,
	"srccode":      keySourceCode,
	"targetcode":   keyTargetCode,
	"acctcode":     keyTargetCode,
	"propertyid":   keyPropertyID,
	"property":     keyPropertyID,
	"propertyname": keyPropertyName,
	"targetname":   keyTargetName,
	"acctname":     keyTargetName,
	"multiplier":   keyMultiplier,
	"factor":       keyMultiplier,
}

// normalizeHeader lower-cases a column header and strips separators, then
// folds known aliases onto their canonical key.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-', '.':
			return -1
		}
		return r
	}, h)
	if canonical, ok := headerAliases[h]; ok {
		return canonical
	}
	return h
}

// rowFromRecord builds a raw Row from a header-normalized record.
func rowFromRecord(record map[string]string) Row {
	row := Row{
		SourceCode:   record[keySourceCode],
		TargetCode:   record[keyTargetCode],
		PropertyName: record[keyPropertyName],
		TargetName:   record[keyTargetName],
	}

	if v := strings.TrimSpace(record[keyPropertyID]); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			row.PropertyID = id
		}
	}

	// Absent or unparseable multipliers default to 1 in the resolver.
	if v := strings.TrimSpace(record[keyMultiplier]); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			row.Multiplier = d
		}
	}

	return row
}

func normalizeRecord(headers []string, values []string) map[string]string {
	record := make(map[string]string, len(headers))
	for i, h := range headers {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		if i < len(values) {
			record[key] = strings.TrimSpace(values[i])
		}
	}
	return record
}

// LoadCSV reads raw mapping rows from a CSV export.
func LoadCSV(r io.Reader) ([]Row, error) {
	records, err := gocsv.CSVToMaps(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping CSV: %w", err)
	}

	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		normalized := make(map[string]string, len(rec))
		for h, v := range rec {
			key := normalizeHeader(h)
			if key == "" {
				continue
			}
			normalized[key] = strings.TrimSpace(v)
		}
		rows = append(rows, rowFromRecord(normalized))
	}
	return rows, nil
}

// preferredSheetNames are tried in order when picking the mapping sheet.
var preferredSheetNames = []string{
	"mappings", "mapping", "account codes", "accountcodes", "codes",
}

// LoadWorkbook reads raw mapping rows from an Excel workbook. The sheet is
// chosen by name ("Mappings", "Account Codes", ...) with the first sheet as
// fallback; the first row is the header row.
func LoadWorkbook(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping workbook: %w", err)
	}
	defer f.Close()

	sheet := findMappingSheet(f)
	if sheet == "" {
		return nil, fmt.Errorf("mapping workbook has no sheets")
	}

	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(cells) < 2 {
		return nil, nil
	}

	headers := cells[0]
	rows := make([]Row, 0, len(cells)-1)
	for _, values := range cells[1:] {
		if isEmptyRow(values) {
			continue
		}
		rows = append(rows, rowFromRecord(normalizeRecord(headers, values)))
	}
	return rows, nil
}

func findMappingSheet(f *excelize.File) string {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return ""
	}
	for _, preferred := range preferredSheetNames {
		for _, sheet := range sheets {
			if strings.EqualFold(strings.TrimSpace(sheet), preferred) {
				return sheet
			}
		}
	}
	return sheets[0]
}

func isEmptyRow(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
