package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchLine_LedgerBalance(t *testing.T) {
	m := newMatcher()

	tests := []struct {
		line   string
		code   string
		amount string
	}{
		{"GUEST LEDGER|135,420.50", "GUEST LEDGER", "135420.50"},
		{"CITY LEDGER TOTAL|(2,310.00)", "CITY LEDGER", "-2310.00"},
		{"ADVANCE DEPOSITS|8,900.00", "ADVANCE DEPOSITS", "8900.00"},
	}

	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			al, kind, ok := m.MatchLine(tc.line, 1)
			require.True(t, ok)
			assert.Equal(t, KindLedgerBalance, kind)
			assert.Equal(t, tc.code, al.SourceCode)
			assert.Equal(t, "Ledger Balance", al.Description)
			assert.True(t, al.Amount.Equal(decimal.RequireFromString(tc.amount)))
			assert.Equal(t, PaymentMethodNone, al.PaymentMethod)
		})
	}
}

func TestMatchLine_PaymentSummary_NeverCarriesPaymentMethod(t *testing.T) {
	m := newMatcher()

	for _, line := range []string{
		"VISA/MASTER|(12,430.00)",
		"VISA|1,245.00",
		"AMEX|(500.00)",
		"DISCOVER|250.00",
	} {
		al, kind, ok := m.MatchLine(line, 1)
		require.True(t, ok, "line %q", line)
		assert.Equal(t, KindPaymentSummary, kind)
		assert.Equal(t, "Payment Method Total", al.Description)
		assert.Equal(t, PaymentMethodNone, al.PaymentMethod, "summary line %q must not carry a payment method", line)
	}
}

func TestMatchLine_SummaryTotal(t *testing.T) {
	m := newMatcher()

	al, kind, ok := m.MatchLine("Total Room Revenue|18,250.00", 4)
	require.True(t, ok)
	assert.Equal(t, KindSummaryTotal, kind)
	assert.Equal(t, "Summary Total", al.Description)
	assert.Equal(t, "TOTAL ROOM REVENUE", al.SourceCode)
	assert.Equal(t, 4, al.LineNumber)

	// ADR with a currency-formatted value is a summary, not a statistic.
	al, kind, ok = m.MatchLine("ADR|145.30", 1)
	require.True(t, ok)
	assert.Equal(t, KindSummaryTotal, kind)
	assert.Equal(t, "ADR", al.SourceCode)
}

func TestMatchLine_Transaction(t *testing.T) {
	m := newMatcher()

	al, kind, ok := m.MatchLine("9120|VISA PAYMENT|3|(1,245.00)|batch 7", 12)
	require.True(t, ok)
	assert.Equal(t, KindTransaction, kind)
	assert.Equal(t, "9120", al.SourceCode)
	assert.Equal(t, "VISA PAYMENT", al.Description)
	assert.True(t, al.Amount.Equal(decimal.RequireFromString("-1245")))
	assert.Equal(t, PaymentMethodVisa, al.PaymentMethod)
	assert.Equal(t, "9120|VISA PAYMENT|3|(1,245.00)|batch 7", al.OriginalLine)
	assert.Equal(t, 12, al.LineNumber)
}

func TestMatchLine_TransactionPaymentKeywords(t *testing.T) {
	m := newMatcher()

	tests := []struct {
		desc   string
		method PaymentMethod
	}{
		{"VISA PAYMENT", PaymentMethodVisa},
		{"MASTERCARD SETTLEMENT", PaymentMethodMaster},
		{"MASTER PAYMENT", PaymentMethodMaster},
		{"DISCOVER CARD", PaymentMethodDiscover},
		{"AMEX CHARGE", PaymentMethodAmex},
		{"AMERICAN EXPRESS CHARGE", PaymentMethodAmex},
		{"VISA/MASTER DEPOSIT", PaymentMethodVisa},
		{"CASH PAYMENT", PaymentMethodNone},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			al, kind, ok := m.MatchLine("9100|"+tc.desc+"|1|10.00", 1)
			require.True(t, ok)
			assert.Equal(t, KindTransaction, kind)
			assert.Equal(t, tc.method, al.PaymentMethod)
		})
	}
}

func TestMatchLine_CategoryAccount(t *testing.T) {
	m := newMatcher()

	al, kind, ok := m.MatchLine("GL ROOMS|9000|Room Revenue|12|4,580.00", 3)
	require.True(t, ok)
	assert.Equal(t, KindCategoryAccount, kind)
	assert.Equal(t, "9000", al.SourceCode)
	assert.Equal(t, "GL ROOMS Room Revenue", al.Description)
	assert.True(t, al.Amount.Equal(decimal.RequireFromString("4580")))
}

func TestMatchLine_Statistic(t *testing.T) {
	m := newMatcher()

	tests := []struct {
		line  string
		code  string
		value string
	}{
		{"Occupied|118", "OCCUPIED", "118"},
		{"Occupancy %|84.2", "OCCUPANCY", "84.2"},
		{"Total Rooms|140", "TOTAL ROOMS", "140"},
		{"No Show|3", "NO SHOW", "3"},
		{"Late C/I|2", "LATE C/I", "2"},
	}

	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			al, kind, ok := m.MatchLine(tc.line, 1)
			require.True(t, ok)
			assert.Equal(t, KindStatistic, kind)
			assert.Equal(t, tc.code, al.SourceCode)
			assert.True(t, al.Amount.Equal(decimal.RequireFromString(tc.value)))
		})
	}
}

func TestMatchLine_Unmatched(t *testing.T) {
	m := newMatcher()

	for _, line := range []string{
		"Page 3 of 12",
		"Prepared for Riverside Inn",
		"--------------------",
		"random text without structure",
	} {
		_, kind, ok := m.MatchLine(line, 1)
		assert.False(t, ok, "line %q", line)
		assert.Equal(t, KindNone, kind)
	}
}

func TestMatchSectionHeader_MostSpecificWins(t *testing.T) {
	section, ok := matchSectionHeader("Detail Listing Summary - September")
	require.True(t, ok)
	assert.Equal(t, SectionDetailListingSummary, section)

	section, ok = matchSectionHeader("Detail Listing - September")
	require.True(t, ok)
	assert.Equal(t, SectionDetailListing, section)

	_, ok = matchSectionHeader("Recap Section")
	assert.False(t, ok)
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "OCCUPANCY", normalizeCode("Occupancy %"))
	assert.Equal(t, "REVPAR", normalizeCode("Rev Par"))
	assert.Equal(t, "TOTAL ROOMS", normalizeCode("  total   rooms "))
	assert.True(t, isStatisticalCode("occupancy %"))
	assert.False(t, isStatisticalCode("9120"))
}
