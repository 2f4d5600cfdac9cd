package money

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledger/internal/model"
)

// Balance is an immutable per-currency total. Every supported currency has a
// bucket; untouched buckets are exactly zero. Amounts are never converted
// between currencies.
type Balance struct {
	set  model.CurrencySet
	sums map[model.Currency]decimal.Decimal
}

// Zero returns the all-zero balance over set. It is the identity of Merge.
func Zero(set model.CurrencySet) Balance {
	return Balance{set: set, sums: make(map[model.Currency]decimal.Decimal, set.Len())}
}

// Fold reduces amounts into a balance starting from Zero(set).
func Fold(set model.CurrencySet, amounts []Money) (Balance, error) {
	b := Zero(set)
	for _, m := range amounts {
		var err error
		if b, err = b.Add(m); err != nil {
			return Balance{}, err
		}
	}
	return b, nil
}

// Add returns a new balance with m added to its currency's bucket.
func (b Balance) Add(m Money) (Balance, error) {
	if !b.set.Contains(m.currency) {
		return Balance{}, &UnsupportedCurrencyError{Currency: m.currency}
	}
	out := b.clone(b.set)
	out.sums[m.currency] = out.sums[m.currency].Add(m.amount)
	return out, nil
}

// Merge returns the per-currency sum of b and o. The result supports the
// currencies of both operands.
func (b Balance) Merge(o Balance) Balance {
	out := b.clone(b.set.Union(o.set))
	for c, v := range o.sums {
		out.sums[c] = out.sums[c].Add(v)
	}
	return out
}

// Get returns the bucket for c; zero for untouched or unsupported currencies.
func (b Balance) Get(c model.Currency) decimal.Decimal {
	return b.sums[c]
}

// Currencies returns the supported currencies in configured order.
func (b Balance) Currencies() []model.Currency {
	return b.set.Codes()
}

// Moneys returns one Money per supported currency, zero buckets included.
func (b Balance) Moneys() []Money {
	codes := b.set.Codes()
	out := make([]Money, len(codes))
	for i, c := range codes {
		out[i] = New(c, b.sums[c])
	}
	return out
}

// IsZero reports whether every bucket is zero.
func (b Balance) IsZero() bool {
	for _, v := range b.sums {
		if !v.IsZero() {
			return false
		}
	}
	return true
}

// Equal compares bucket values. A currency present in only one operand
// compares against zero.
func (b Balance) Equal(o Balance) bool {
	for _, c := range b.set.Union(o.set).Codes() {
		if !b.sums[c].Equal(o.sums[c]) {
			return false
		}
	}
	return true
}

func (b Balance) String() string {
	parts := make([]string, 0, b.set.Len())
	for _, m := range b.Moneys() {
		parts = append(parts, string(m.currency)+": "+m.amount.StringFixed(2))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (b Balance) clone(set model.CurrencySet) Balance {
	sums := make(map[model.Currency]decimal.Decimal, set.Len())
	for c, v := range b.sums {
		sums[c] = v
	}
	return Balance{set: set, sums: sums}
}
