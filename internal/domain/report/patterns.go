package report

import (
	"regexp"
	"strings"

	"github.com/cloudflare/ahocorasick"
	"github.com/shopspring/decimal"

	"github.com/nightaudit/ledgerbridge/pkg/money"
)

// Report amounts appear as "$1,234.56", "(45.20)" or "-112.50". Statistical
// values are bare counts or percentages.
const (
	amountExpr   = `\(?-?\$?[\d,]+(?:\.\d{1,2})?\)?`
	currencyExpr = `\(?-?\$?[\d,]+\.\d{2}\)?`
)

// Line patterns, in match-precedence order. The first pattern that parses a
// line decides its kind.
var (
	// GUEST LEDGER TOTAL|135,420.50
	ledgerBalancePattern = regexp.MustCompile(
		`(?i)^(GUEST LEDGER|CITY LEDGER|ADVANCE DEPOSITS)(?:\s+TOTAL)?\s*\|\s*(` + amountExpr + `)\s*$`)

	// VISA/MASTER|(12,430.00)
	paymentSummaryPattern = regexp.MustCompile(
		`(?i)^(VISA/MASTER|VISA|MASTERCARD|MASTER CARD|MASTER|DISCOVER|AMEX|AMERICAN EXPRESS)\s*\|\s*(` + amountExpr + `)\s*$`)

	// Total Room Revenue|18,250.00  /  ADR|145.30
	summaryTotalPattern = regexp.MustCompile(
		`(?i)^(TOTAL\s+[^|]+?|ADR|REVPAR|REV PAR|OCCUPANCY\s*%?)\s*\|\s*(` + currencyExpr + `)\s*$`)

	// 9120|VISA PAYMENT|3|1,245.00|...
	transactionPattern = regexp.MustCompile(
		`^([A-Za-z0-9]{1,8})\|([^|]+)\|(\d+)\|\s*(` + amountExpr + `)\s*(?:\|.*)?$`)

	// GL ROOMS|9000|Room Revenue|12|4,580.00|...
	categoryAccountPattern = regexp.MustCompile(
		`(?i)^((?:GL|CL)\s+[^|]+?)\s*\|\s*([A-Za-z0-9]{1,8})\|([^|]*)\|(\d+)\|\s*(` + amountExpr + `)\s*(?:\|.*)?$`)

	// Occupied|118  /  Occupancy %|84.2  /  Occupancy % MTD|84
	statisticPattern = regexp.MustCompile(
		`(?i)^(OCCUPIED|OCCUPANCY\s*%?|ADR|REVPAR|REV PAR|OUT OF SERVICE|COMPS|NO SHOW|LATE C/I|EARLY C/O|TOTAL ROOMS)(?:\s+(?:MTD|YTD))?\s*\|\s*([\d,]+(?:\.\d+)?)\s*%?\s*$`)
)

// Section headers, most specific first so "Detail Listing Summary" is never
// misread as "Detail Listing".
var sectionHeaders = []struct {
	marker  string
	section Section
}{
	{"DETAIL LISTING SUMMARY", SectionDetailListingSummary},
	{"DETAIL LISTING", SectionDetailListing},
}

// matchSectionHeader reports the section a header line switches to, if any.
func matchSectionHeader(line string) (Section, bool) {
	upper := strings.ToUpper(line)
	for _, h := range sectionHeaders {
		if strings.Contains(upper, h.marker) {
			return h.section, true
		}
	}
	return SectionUnknown, false
}

// paymentKeywordMatcher scans transaction lines for card-network keywords.
// All keywords are matched in a single pass; the highest-priority hit wins,
// so "MASTERCARD" beats its "MASTER" substring and a combined "VISA/MASTER"
// tender resolves to VISA.
type paymentKeywordMatcher struct {
	matcher    *ahocorasick.Matcher
	methods    []PaymentMethod
	priorities []int
}

func newPaymentKeywordMatcher() *paymentKeywordMatcher {
	keywords := []struct {
		pattern  string
		method   PaymentMethod
		priority int
	}{
		{"AMERICAN EXPRESS", PaymentMethodAmex, 40},
		{"AMEX", PaymentMethodAmex, 39},
		{"MASTERCARD", PaymentMethodMaster, 30},
		{"MASTER CARD", PaymentMethodMaster, 30},
		{"DISCOVER", PaymentMethodDiscover, 20},
		{"VISA", PaymentMethodVisa, 10},
		{"MASTER", PaymentMethodMaster, 9},
	}

	patterns := make([][]byte, len(keywords))
	methods := make([]PaymentMethod, len(keywords))
	priorities := make([]int, len(keywords))
	for i, kw := range keywords {
		patterns[i] = []byte(kw.pattern)
		methods[i] = kw.method
		priorities[i] = kw.priority
	}

	return &paymentKeywordMatcher{
		matcher:    ahocorasick.NewMatcher(patterns),
		methods:    methods,
		priorities: priorities,
	}
}

// scan returns the card network named in the line, or PaymentMethodNone.
func (m *paymentKeywordMatcher) scan(line string) PaymentMethod {
	hits := m.matcher.Match([]byte(strings.ToUpper(line)))
	if len(hits) == 0 {
		return PaymentMethodNone
	}

	best := -1
	method := PaymentMethodNone
	for _, idx := range hits {
		if idx >= 0 && idx < len(m.methods) && m.priorities[idx] > best {
			best = m.priorities[idx]
			method = m.methods[idx]
		}
	}
	return method
}

// statisticalCodes are metric codes that may appear more than once per
// document; only the first occurrence is kept.
var statisticalCodes = map[string]struct{}{
	"ADR":            {},
	"REVPAR":         {},
	"OCCUPANCY":      {},
	"OCCUPIED":       {},
	"OUT OF SERVICE": {},
	"COMPS":          {},
	"NO SHOW":        {},
	"LATE C/I":       {},
	"EARLY C/O":      {},
	"TOTAL ROOMS":    {},
}

// normalizeCode canonicalizes a source code: upper-case, percent signs and
// extra whitespace removed, "REV PAR" folded to "REVPAR".
func normalizeCode(code string) string {
	c := strings.ToUpper(strings.TrimSpace(code))
	c = strings.TrimSpace(strings.TrimSuffix(c, "%"))
	c = strings.Join(strings.Fields(c), " ")
	if c == "REV PAR" {
		c = "REVPAR"
	}
	return c
}

func isStatisticalCode(code string) bool {
	_, ok := statisticalCodes[normalizeCode(code)]
	return ok
}

// matcher classifies single report lines.
type matcher struct {
	payment *paymentKeywordMatcher
}

func newMatcher() *matcher {
	return &matcher{payment: newPaymentKeywordMatcher()}
}

// MatchLine attempts each pattern in precedence order and returns the
// normalized line on the first hit. Lines matching no pattern return ok=false
// and produce no record.
func (m *matcher) MatchLine(line string, lineNumber int) (AccountLine, LineKind, bool) {
	if sub := ledgerBalancePattern.FindStringSubmatch(line); sub != nil {
		amt, err := money.ParseAmount(sub[2])
		if err == nil {
			return AccountLine{
				SourceCode:   normalizeCode(sub[1]),
				Description:  "Ledger Balance",
				Amount:       amt,
				OriginalLine: line,
				LineNumber:   lineNumber,
			}, KindLedgerBalance, true
		}
	}

	if sub := paymentSummaryPattern.FindStringSubmatch(line); sub != nil {
		amt, err := money.ParseAmount(sub[2])
		if err == nil {
			// PaymentMethod stays unset: a summary total must never be
			// mistaken for an individual transaction downstream.
			return AccountLine{
				SourceCode:   normalizeCode(sub[1]),
				Description:  "Payment Method Total",
				Amount:       amt,
				OriginalLine: line,
				LineNumber:   lineNumber,
			}, KindPaymentSummary, true
		}
	}

	if sub := summaryTotalPattern.FindStringSubmatch(line); sub != nil {
		amt, err := money.ParseAmount(sub[2])
		if err == nil {
			return AccountLine{
				SourceCode:   normalizeCode(sub[1]),
				Description:  "Summary Total",
				Amount:       amt,
				OriginalLine: line,
				LineNumber:   lineNumber,
			}, KindSummaryTotal, true
		}
	}

	if sub := transactionPattern.FindStringSubmatch(line); sub != nil {
		amt, err := money.ParseAmount(sub[4])
		if err == nil {
			return AccountLine{
				SourceCode:    normalizeCode(sub[1]),
				Description:   strings.TrimSpace(sub[2]),
				Amount:        amt,
				PaymentMethod: m.payment.scan(line),
				OriginalLine:  line,
				LineNumber:    lineNumber,
			}, KindTransaction, true
		}
	}

	if sub := categoryAccountPattern.FindStringSubmatch(line); sub != nil {
		amt, err := money.ParseAmount(sub[5])
		if err == nil {
			category := strings.TrimSpace(sub[1])
			desc := strings.TrimSpace(sub[3])
			return AccountLine{
				SourceCode:   normalizeCode(sub[2]),
				Description:  strings.TrimSpace(category + " " + desc),
				Amount:       amt,
				OriginalLine: line,
				LineNumber:   lineNumber,
			}, KindCategoryAccount, true
		}
	}

	if sub := statisticPattern.FindStringSubmatch(line); sub != nil {
		raw := strings.ReplaceAll(sub[2], ",", "")
		value, err := decimal.NewFromString(raw)
		if err == nil {
			code := normalizeCode(sub[1])
			return AccountLine{
				SourceCode:   code,
				Description:  "Statistic",
				Amount:       value,
				OriginalLine: line,
				LineNumber:   lineNumber,
			}, KindStatistic, true
		}
	}

	return AccountLine{}, KindNone, false
}
