// Package report extracts normalized account line items from semi-structured
// financial report text exported by property-management systems. A report is
// newline-delimited, with pipe-delimited fields inside each logical record.
package report

import (
	"github.com/shopspring/decimal"
)

// PaymentMethod identifies the card network on an individual transaction line.
// Summary lines never carry a payment method.
type PaymentMethod string

const (
	PaymentMethodNone     PaymentMethod = ""
	PaymentMethodVisa     PaymentMethod = "VISA"
	PaymentMethodMaster   PaymentMethod = "MASTER"
	PaymentMethodDiscover PaymentMethod = "DISCOVER"
	PaymentMethodAmex     PaymentMethod = "AMEX"
)

// LineKind classifies a matched report line. Matching is attempted in the
// declared order; the first successful parse wins.
type LineKind int

const (
	KindNone LineKind = iota
	KindLedgerBalance
	KindPaymentSummary
	KindSummaryTotal
	KindTransaction
	KindCategoryAccount
	KindStatistic
)

func (k LineKind) String() string {
	switch k {
	case KindLedgerBalance:
		return "ledger_balance"
	case KindPaymentSummary:
		return "payment_summary"
	case KindSummaryTotal:
		return "summary_total"
	case KindTransaction:
		return "transaction"
	case KindCategoryAccount:
		return "category_account"
	case KindStatistic:
		return "statistic"
	default:
		return "none"
	}
}

// currencyBearing reports whether the kind carries a monetary amount subject
// to the minimum-amount filter. Statistics are counts and percentages, never
// filtered by amount.
func (k LineKind) currencyBearing() bool {
	return k != KindNone && k != KindStatistic
}

// AccountLine is one normalized fact extracted from report text. It is
// created once per matched input line and never mutated afterwards.
type AccountLine struct {
	SourceCode    string
	Description   string
	Amount        decimal.Decimal
	PaymentMethod PaymentMethod
	OriginalLine  string
	LineNumber    int
}

// PaymentMethodGroup is a transient aggregate of transaction lines that share
// a configured payment-method grouping. It is built on demand during
// consolidation and not persisted.
type PaymentMethodGroup struct {
	GroupName      string
	PaymentMethods []string
	TotalAmount    decimal.Decimal
	AccountLines   []AccountLine
}

// Section tracks which part of the report the parser is reading.
type Section int

const (
	SectionUnknown Section = iota
	SectionDetailListing
	SectionDetailListingSummary
)

func (s Section) String() string {
	switch s {
	case SectionDetailListing:
		return "detail_listing"
	case SectionDetailListingSummary:
		return "detail_listing_summary"
	default:
		return "unknown"
	}
}
