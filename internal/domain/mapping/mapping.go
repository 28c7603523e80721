// Package mapping resolves property-management source account codes to
// target accounting codes. The mapping table is loaded once per run from a
// spreadsheet or CSV export; the derived lookup indices are immutable
// afterwards, so concurrent lookups across documents need no locking.
package mapping

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/shopspring/decimal"
)

// ErrNoMapping is returned when a source code resolves to neither a
// property-scoped nor a global entry.
var ErrNoMapping = errors.New("no mapping for source code")

// GlobalPropertyID marks a mapping row that applies to every property.
const GlobalPropertyID = 0

// maxCodeLength bounds whitelist-guided extraction: source codes are at most
// eight characters in the systems we ingest from.
const maxCodeLength = 8

// AccountCodeMapping is one row of the mapping table. Property-scoped rows
// shadow global rows with the same source code.
type AccountCodeMapping struct {
	SourceCode   string
	PropertyID   int
	PropertyName string
	TargetCode   string
	TargetName   string
	Multiplier   decimal.Decimal
}

// Row is a raw mapping row as produced by a loader, before validation.
// A zero Multiplier defaults to 1 during resolver construction.
type Row struct {
	SourceCode   string
	TargetCode   string
	PropertyID   int
	PropertyName string
	TargetName   string
	Multiplier   decimal.Decimal
}

// Stats describes a loaded mapping table.
type Stats struct {
	TotalMappings       int
	DistinctSourceCodes int
	DistinctTargetCodes int
	HasPropertyMappings bool
	DroppedRows         int
}

// Resolver answers source-code lookups against the loaded table.
type Resolver struct {
	bySourceCode map[string][]AccountCodeMapping
	byTargetCode map[string][]AccountCodeMapping
	codeSet      map[string]struct{}
	sourceCodes  []string // distinct, sorted, for suggestions
	stats        Stats
	warnings     []string
}

// NewResolver validates raw rows and builds the lookup indices. Rows missing
// a source or target code are dropped with a warning; under strict mode any
// dropped row fails construction instead. Duplicate (sourceCode, propertyID)
// pairs keep the first row seen.
func NewResolver(rows []Row, strict bool) (*Resolver, error) {
	r := &Resolver{
		bySourceCode: make(map[string][]AccountCodeMapping),
		byTargetCode: make(map[string][]AccountCodeMapping),
		codeSet:      make(map[string]struct{}),
	}

	type key struct {
		source     string
		propertyID int
	}
	seen := make(map[key]struct{})

	for i, row := range rows {
		source := strings.ToUpper(strings.TrimSpace(row.SourceCode))
		target := strings.TrimSpace(row.TargetCode)

		if source == "" || target == "" {
			r.stats.DroppedRows++
			warning := fmt.Sprintf("row %d: missing source or target code, dropped", i+1)
			if strict {
				return nil, fmt.Errorf("invalid mapping %s", warning)
			}
			r.warnings = append(r.warnings, warning)
			continue
		}

		k := key{source: source, propertyID: row.PropertyID}
		if _, dup := seen[k]; dup {
			r.stats.DroppedRows++
			r.warnings = append(r.warnings,
				fmt.Sprintf("row %d: duplicate mapping for %s (property %d), first row kept", i+1, source, row.PropertyID))
			continue
		}
		seen[k] = struct{}{}

		multiplier := row.Multiplier
		if multiplier.IsZero() {
			multiplier = decimal.NewFromInt(1)
		}

		m := AccountCodeMapping{
			SourceCode:   source,
			PropertyID:   row.PropertyID,
			PropertyName: strings.TrimSpace(row.PropertyName),
			TargetCode:   target,
			TargetName:   strings.TrimSpace(row.TargetName),
			Multiplier:   multiplier,
		}

		if _, known := r.codeSet[source]; !known {
			r.codeSet[source] = struct{}{}
			r.sourceCodes = append(r.sourceCodes, source)
		}
		r.bySourceCode[source] = append(r.bySourceCode[source], m)
		r.byTargetCode[m.TargetCode] = append(r.byTargetCode[m.TargetCode], m)

		r.stats.TotalMappings++
		if m.PropertyID != GlobalPropertyID {
			r.stats.HasPropertyMappings = true
		}
	}

	sort.Strings(r.sourceCodes)
	r.stats.DistinctSourceCodes = len(r.bySourceCode)
	r.stats.DistinctTargetCodes = len(r.byTargetCode)

	return r, nil
}

// Resolve returns the mapping for a source code, preferring the entry scoped
// to the given property and falling back to the global entry.
func (r *Resolver) Resolve(sourceCode string, propertyID int) (AccountCodeMapping, error) {
	entries := r.bySourceCode[strings.ToUpper(strings.TrimSpace(sourceCode))]

	var global *AccountCodeMapping
	for i := range entries {
		switch entries[i].PropertyID {
		case propertyID:
			return entries[i], nil
		case GlobalPropertyID:
			global = &entries[i]
		}
	}
	if global != nil {
		return *global, nil
	}
	return AccountCodeMapping{}, fmt.Errorf("%w: %q (property %d)", ErrNoMapping, sourceCode, propertyID)
}

// ByTargetCode returns all mapping rows that write to a target code.
func (r *Resolver) ByTargetCode(targetCode string) []AccountCodeMapping {
	return r.byTargetCode[strings.TrimSpace(targetCode)]
}

// ExtractCode extracts a valid source code from the start of a raw text
// fragment using the resolver's code set as whitelist.
func (r *Resolver) ExtractCode(fragment string) string {
	return ExtractCode(fragment, r.codeSet)
}

// ExtractCode tries prefixes of the fragment from eight characters down to
// one and returns the longest prefix present in the whitelist. The longest
// match wins so a code like "91" is preferred over its shorter prefix "9"
// when both are valid. With no whitelist, the first one or two alphanumeric
// characters are taken.
func ExtractCode(fragment string, whitelist map[string]struct{}) string {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return ""
	}

	if len(whitelist) > 0 {
		upper := strings.ToUpper(fragment)
		max := maxCodeLength
		if len(upper) < max {
			max = len(upper)
		}
		for n := max; n >= 1; n-- {
			if _, ok := whitelist[upper[:n]]; ok {
				return upper[:n]
			}
		}
		return ""
	}

	// Naive fallback: leading alphanumerics, at most two.
	out := make([]rune, 0, 2)
	for _, r := range fragment {
		if !isAlphanumeric(r) {
			break
		}
		out = append(out, r)
		if len(out) == 2 {
			break
		}
	}
	return strings.ToUpper(string(out))
}

func isAlphanumeric(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// Suggest returns up to n known source codes that fuzzily match a code that
// failed to resolve, for diagnostics.
func (r *Resolver) Suggest(sourceCode string, n int) []string {
	ranks := fuzzy.RankFindFold(strings.TrimSpace(sourceCode), r.sourceCodes)
	sort.Sort(ranks)

	out := make([]string, 0, n)
	for _, rank := range ranks {
		if len(out) == n {
			break
		}
		out = append(out, rank.Target)
	}
	return out
}

// Stats returns metadata about the loaded table.
func (r *Resolver) Stats() Stats {
	return r.stats
}

// Warnings returns the per-row warnings collected during construction.
func (r *Resolver) Warnings() []string {
	return r.warnings
}
