package service

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/nightaudit/ledgerbridge/internal/domain/transform"
)

// outputColumns fixes the column order of the flat export. Fields a record
// does not carry are written empty.
var outputColumns = []string{
	"SourceCode", "TargetCode", "TargetName", "Description",
	"Amount", "PaymentMethod", "LineNumber",
}

// WriteCSV serializes a result to flat CSV, one row per record.
func WriteCSV(w io.Writer, result *transform.Result) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(outputColumns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	row := make([]string, len(outputColumns))
	for _, record := range result.Records {
		for i, column := range outputColumns {
			value, ok := record.Fields[column]
			if !ok {
				row[i] = ""
				continue
			}
			switch v := value.(type) {
			case string:
				row[i] = v
			case float64:
				// Line numbers and other integral values print without
				// a trailing fraction.
				if v == float64(int64(v)) {
					row[i] = fmt.Sprintf("%d", int64(v))
				} else {
					row[i] = fmt.Sprintf("%v", v)
				}
			default:
				row[i] = fmt.Sprint(v)
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
