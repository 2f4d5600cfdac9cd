package model

import (
	"errors"
	"strings"
)

// Currency is an ISO 4217 currency code.
type Currency string

const (
	USD Currency = "USD"
	IQD Currency = "IQD"
)

// DefaultCurrencies is the currency set used when the host configures none.
var DefaultCurrencies = NewCurrencySet(USD, IQD)

// CurrencySet is a closed, ordered set of supported currencies.
// The zero value is an empty set that supports nothing.
type CurrencySet struct {
	codes []Currency
	index map[Currency]struct{}
}

// NewCurrencySet builds a set preserving first-seen order. Codes are upper-cased.
func NewCurrencySet(codes ...Currency) CurrencySet {
	s := CurrencySet{index: make(map[Currency]struct{}, len(codes))}
	for _, c := range codes {
		c = Currency(strings.ToUpper(strings.TrimSpace(string(c))))
		if c == "" {
			continue
		}
		if _, seen := s.index[c]; seen {
			continue
		}
		s.index[c] = struct{}{}
		s.codes = append(s.codes, c)
	}
	return s
}

// ParseCurrencySet builds a set from plain strings.
func ParseCurrencySet(codes []string) (CurrencySet, error) {
	cs := make([]Currency, 0, len(codes))
	for _, c := range codes {
		if strings.TrimSpace(c) == "" {
			return CurrencySet{}, errors.New("empty currency code")
		}
		cs = append(cs, Currency(c))
	}
	return NewCurrencySet(cs...), nil
}

// Contains reports whether c is supported.
func (s CurrencySet) Contains(c Currency) bool {
	_, ok := s.index[c]
	return ok
}

// Codes returns the currencies in configured order.
func (s CurrencySet) Codes() []Currency {
	out := make([]Currency, len(s.codes))
	copy(out, s.codes)
	return out
}

// Len returns the number of supported currencies.
func (s CurrencySet) Len() int {
	return len(s.codes)
}

// Union returns a set holding s's currencies followed by any new ones from o.
func (s CurrencySet) Union(o CurrencySet) CurrencySet {
	return NewCurrencySet(append(s.Codes(), o.codes...)...)
}
