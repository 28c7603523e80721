package money

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
)

// TestDataGenerator generates realistic report amounts using gofakeit.
type TestDataGenerator struct {
	faker *gofakeit.Faker
}

// NewTestDataGenerator creates a generator with a specific seed for
// reproducibility.
func NewTestDataGenerator(seed int64) *TestDataGenerator {
	return &TestDataGenerator{faker: gofakeit.New(seed)}
}

// Amount returns a random signed decimal amount between min and max cents.
func (g *TestDataGenerator) Amount(minCents, maxCents int64) decimal.Decimal {
	cents := g.faker.Number(int(minCents), int(maxCents))
	return decimal.New(int64(cents), -2)
}

// RawAmount returns a random amount formatted the way reports print currency,
// with thousands separators and parenthesized negatives.
func (g *TestDataGenerator) RawAmount(minCents, maxCents int64) string {
	d := g.Amount(minCents, maxCents)
	if g.faker.Bool() {
		return fmt.Sprintf("(%s)", d.StringFixed(2))
	}
	return "$" + d.StringFixed(2)
}

// Description returns a plausible transaction description.
func (g *TestDataGenerator) Description() string {
	return g.faker.Company()
}
