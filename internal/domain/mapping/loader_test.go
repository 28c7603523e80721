package mapping

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Source Code", keySourceCode},
		{"srcAcctCode", keySourceCode},
		{"SRC_ACCT_CODE", keySourceCode},
		{"Target Code", keyTargetCode},
		{"acctCode", keyTargetCode},
		{"Property ID", keyPropertyID},
		{"acct-name", keyTargetName},
		{"Multiplier", keyMultiplier},
		{"notes", "notes"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeHeader(tt.in))
		})
	}
}

func TestLoadCSV(t *testing.T) {
	csv := strings.Join([]string{
		"Source Code,Target Code,Property ID,Property Name,Acct Name,Multiplier",
		"9120,4100,0,,Room Revenue,",
		"9120,4900,5,Riverside Inn,Other Revenue,-1",
		"CC,1150,0,,Credit Card Clearing,1",
	}, "\n")

	rows, err := LoadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "9120", rows[0].SourceCode)
	assert.Equal(t, "4100", rows[0].TargetCode)
	assert.Equal(t, 0, rows[0].PropertyID)
	assert.Equal(t, "Room Revenue", rows[0].TargetName)
	assert.True(t, rows[0].Multiplier.IsZero())

	assert.Equal(t, 5, rows[1].PropertyID)
	assert.Equal(t, "Riverside Inn", rows[1].PropertyName)
	assert.True(t, rows[1].Multiplier.Equal(decimal.NewFromInt(-1)))

	t.Run("loaded rows resolve with property precedence", func(t *testing.T) {
		r, err := NewResolver(rows, false)
		require.NoError(t, err)

		m, err := r.Resolve("9120", 5)
		require.NoError(t, err)
		assert.Equal(t, "4900", m.TargetCode)

		m, err = r.Resolve("9120", 7)
		require.NoError(t, err)
		assert.Equal(t, "4100", m.TargetCode)
	})
}

func TestLoadCSV_Malformed(t *testing.T) {
	_, err := LoadCSV(strings.NewReader("a,b\n\"unterminated"))
	require.Error(t, err)
}

func buildTestWorkbook(t *testing.T, sheet string) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	data := [][]interface{}{
		{"srcAcctCode", "acctCode", "propertyId", "acctName", "multiplier"},
		{"9120", "4100", 0, "Room Revenue", ""},
		{"9121", "4200", 0, "F&B Revenue", "-1"},
		{"", "", "", "", ""},
	}
	for i, row := range data {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestLoadWorkbook(t *testing.T) {
	buf := buildTestWorkbook(t, "Mappings")

	rows, err := LoadWorkbook(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "9120", rows[0].SourceCode)
	assert.Equal(t, "4100", rows[0].TargetCode)
	assert.Equal(t, "Room Revenue", rows[0].TargetName)
	assert.True(t, rows[1].Multiplier.Equal(decimal.NewFromInt(-1)))
}

func TestLoadWorkbook_SheetSelection(t *testing.T) {
	t.Run("falls back to first sheet", func(t *testing.T) {
		buf := buildTestWorkbook(t, "Export 2026-08")

		rows, err := LoadWorkbook(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})

	t.Run("prefers a sheet named mappings", func(t *testing.T) {
		buf := buildTestWorkbook(t, "Account Codes")

		f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
		require.NoError(t, err)
		_, err = f.NewSheet("Notes")
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Notes", "A1", &[]interface{}{"free text"}))

		var out bytes.Buffer
		require.NoError(t, f.Write(&out))
		require.NoError(t, f.Close())

		rows, err := LoadWorkbook(bytes.NewReader(out.Bytes()))
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})
}

func TestLoadWorkbook_Invalid(t *testing.T) {
	_, err := LoadWorkbook(strings.NewReader("not a zip archive"))
	require.Error(t, err)
}
