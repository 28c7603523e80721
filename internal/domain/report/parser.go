package report

import (
	"strings"

	"github.com/shopspring/decimal"
)

// GroupConfig names a consolidation group and the payment methods it covers.
// A combined tender such as "VISA/MASTER" expands to both networks.
type GroupConfig struct {
	Name           string
	PaymentMethods []string
}

// Config controls parsing behavior.
type Config struct {
	// MinimumAmount drops currency-bearing lines whose absolute amount is
	// below the threshold. Statistics are never filtered by amount.
	MinimumAmount decimal.Decimal

	// IncludeZeroAmounts disables the minimum-amount filter.
	IncludeZeroAmounts bool

	// Groups configures payment-method consolidation for
	// ConsolidatedAccountLines.
	Groups []GroupConfig
}

// DefaultConfig returns the standard parser configuration.
func DefaultConfig() Config {
	return Config{
		MinimumAmount: decimal.New(1, -2), // 0.01
	}
}

// Parser drives the line matcher over a whole document, maintaining section
// state and suppressing duplicate statistical codes. A Parser is safe for
// concurrent use: all per-document state lives in Parse.
type Parser struct {
	config  Config
	matcher *matcher
}

// NewParser creates a parser with the given configuration.
func NewParser(config Config) *Parser {
	if config.MinimumAmount.IsZero() && !config.IncludeZeroAmounts {
		config.MinimumAmount = decimal.New(1, -2)
	}
	return &Parser{
		config:  config,
		matcher: newMatcher(),
	}
}

// ParseStats summarizes one parsing pass.
type ParseStats struct {
	LinesTotal   int
	LinesMatched int
	LinesDropped int // matched but removed by the amount filter or dedup
	FinalSection Section
}

// Parse extracts all account lines from a report document. Lines matching no
// pattern are silently skipped: the report vocabulary is open-ended and
// unrecognized lines are assumed non-financial.
func (p *Parser) Parse(text string) []AccountLine {
	lines, _ := p.ParseWithStats(text)
	return lines
}

// ParseWithStats parses the document and also reports pass statistics.
func (p *Parser) ParseWithStats(text string) ([]AccountLine, ParseStats) {
	lines := strings.Split(text, "\n")
	result := make([]AccountLine, 0, len(lines))
	stats := ParseStats{LinesTotal: len(lines)}

	section := SectionUnknown
	seenStatCodes := make(map[string]struct{})

	for i, raw := range lines {
		line := strings.TrimSpace(strings.TrimRight(raw, "\r"))
		if len(line) < 3 {
			continue
		}

		if next, ok := matchSectionHeader(line); ok {
			section = next
			continue
		}

		al, kind, ok := p.matcher.MatchLine(line, i+1)
		if !ok {
			continue
		}
		stats.LinesMatched++

		if kind.currencyBearing() && !p.config.IncludeZeroAmounts &&
			al.Amount.Abs().LessThan(p.config.MinimumAmount) {
			stats.LinesDropped++
			continue
		}

		// Reports sometimes repeat a metric with a slightly different
		// qualifier; the first occurrence wins.
		if isStatisticalCode(al.SourceCode) {
			code := normalizeCode(al.SourceCode)
			if _, seen := seenStatCodes[code]; seen {
				stats.LinesDropped++
				continue
			}
			seenStatCodes[code] = struct{}{}
		}

		result = append(result, al)
	}

	stats.FinalSection = section
	return result, stats
}

// ConsolidatedAccountLines parses the document and merges payment-method
// transaction lines into the configured groups. Each covered group produces
// one synthetic line with source code "CC" whose amount is the exact sum of
// its members; uncovered payment lines and lines without a payment method
// pass through unchanged. The operation is idempotent for a given
// configuration and input.
func (p *Parser) ConsolidatedAccountLines(text string) []AccountLine {
	return p.Consolidate(p.Parse(text))
}

// Consolidate applies the configured payment-method grouping to already
// parsed lines.
func (p *Parser) Consolidate(lines []AccountLine) []AccountLine {
	if len(p.config.Groups) == 0 {
		return lines
	}

	groupOf := make(map[PaymentMethod]int)
	for gi, g := range p.config.Groups {
		for _, pm := range g.PaymentMethods {
			for _, method := range expandPaymentMethods(pm) {
				if _, taken := groupOf[method]; !taken {
					groupOf[method] = gi
				}
			}
		}
	}

	type pending struct {
		position int
		members  []AccountLine
	}
	pendings := make(map[int]*pending)

	out := make([]AccountLine, 0, len(lines))
	slots := make([]int, 0, len(p.config.Groups)) // group indices in first-seen order

	for _, al := range lines {
		if al.PaymentMethod == PaymentMethodNone {
			out = append(out, al)
			continue
		}
		gi, grouped := groupOf[al.PaymentMethod]
		if !grouped {
			out = append(out, al)
			continue
		}
		pd, ok := pendings[gi]
		if !ok {
			// Reserve the synthetic line's slot at the first member's
			// position.
			out = append(out, AccountLine{})
			pd = &pending{position: len(out) - 1}
			pendings[gi] = pd
			slots = append(slots, gi)
		}
		pd.members = append(pd.members, al)
	}

	for _, gi := range slots {
		pd := pendings[gi]
		total := decimal.Zero
		originals := make([]string, 0, len(pd.members))
		for _, m := range pd.members {
			total = total.Add(m.Amount)
			originals = append(originals, m.OriginalLine)
		}
		out[pd.position] = AccountLine{
			SourceCode:   "CC",
			Description:  p.config.Groups[gi].Name,
			Amount:       total,
			OriginalLine: strings.Join(originals, "; "),
			LineNumber:   pd.members[0].LineNumber,
		}
	}

	return out
}

// PaymentMethodGroups builds the transient per-group aggregates for lines
// carrying a payment method, using the configured grouping.
func (p *Parser) PaymentMethodGroups(lines []AccountLine) []PaymentMethodGroup {
	groups := make([]PaymentMethodGroup, len(p.config.Groups))
	groupOf := make(map[PaymentMethod]int)
	for gi, g := range p.config.Groups {
		groups[gi] = PaymentMethodGroup{
			GroupName:      g.Name,
			PaymentMethods: g.PaymentMethods,
			TotalAmount:    decimal.Zero,
		}
		for _, pm := range g.PaymentMethods {
			for _, method := range expandPaymentMethods(pm) {
				if _, taken := groupOf[method]; !taken {
					groupOf[method] = gi
				}
			}
		}
	}

	for _, al := range lines {
		if al.PaymentMethod == PaymentMethodNone {
			continue
		}
		gi, ok := groupOf[al.PaymentMethod]
		if !ok {
			continue
		}
		groups[gi].AccountLines = append(groups[gi].AccountLines, al)
		groups[gi].TotalAmount = groups[gi].TotalAmount.Add(al.Amount)
	}

	return groups
}

// expandPaymentMethods resolves a configured method name, expanding the
// combined "VISA/MASTER" tender into both networks.
func expandPaymentMethods(name string) []PaymentMethod {
	switch normalizeCode(name) {
	case "VISA/MASTER":
		return []PaymentMethod{PaymentMethodVisa, PaymentMethodMaster}
	case "VISA":
		return []PaymentMethod{PaymentMethodVisa}
	case "MASTER", "MASTERCARD", "MASTER CARD":
		return []PaymentMethod{PaymentMethodMaster}
	case "DISCOVER":
		return []PaymentMethod{PaymentMethodDiscover}
	case "AMEX", "AMERICAN EXPRESS":
		return []PaymentMethod{PaymentMethodAmex}
	default:
		return nil
	}
}
