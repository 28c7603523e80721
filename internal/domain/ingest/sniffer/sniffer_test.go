package sniffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Tenant Name", "tenant_name"},
		{"tenant_name", "tenant_name"},
		{"TENANT-NAME", "tenant_name"},
		{"  Rent Amount  ", "rent_amount"},
		{"amount", "amount"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKey(tt.in))
		})
	}
}

func TestDetectShape_CSV(t *testing.T) {
	t.Run("comma delimited", func(t *testing.T) {
		data := []byte("Tenant Name,Rent Amount\nJohn Doe,\"$1,250.00\"\nJane Roe,$950.00\n")

		content := DetectShape("csv", data)
		require.Len(t, content.Rows, 2)
		assert.Equal(t, "John Doe", content.Rows[0]["tenant_name"])
		assert.Equal(t, "$1,250.00", content.Rows[0]["rent_amount"])
		assert.Equal(t, "Jane Roe", content.Rows[1]["tenant_name"])
	})

	t.Run("semicolon delimited with BOM", func(t *testing.T) {
		data := []byte("\uFEFFTenant Name;Rent Amount\nJohn Doe;1250,00\n")

		content := DetectShape("csv", data)
		require.Len(t, content.Rows, 1)
		assert.Equal(t, "John Doe", content.Rows[0]["tenant_name"])
	})

	t.Run("malformed input yields empty content", func(t *testing.T) {
		content := DetectShape("csv", []byte("a,b\n\"unterminated"))
		assert.Empty(t, content.Rows)
	})
}

func TestDetectShape_Txt(t *testing.T) {
	data := []byte("Detail Listing\r\n\r\n9120|VISA PAYMENT|3|(1,000.00)\n")

	content := DetectShape("txt", data)
	assert.NotEmpty(t, content.Text)
	require.Len(t, content.Lines, 2)
	assert.Equal(t, "Detail Listing", content.Lines[0])
	assert.Equal(t, "9120|VISA PAYMENT|3|(1,000.00)", content.Lines[1])
}

func TestDetectShape_PDF(t *testing.T) {
	content := DetectShape("pdf", []byte("extracted page text"))
	assert.Equal(t, "extracted page text", content.Text)
	assert.Empty(t, content.Lines)
	assert.Empty(t, content.Rows)
}

func TestDetectShape_Unknown(t *testing.T) {
	content := DetectShape("xlsx", []byte("whatever"))
	assert.Empty(t, content.Rows)
	assert.Empty(t, content.Lines)
	assert.Empty(t, content.Text)
}
