package listing

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// UnboundedPrice is the price ceiling clients send when no maximum is set.
// Exactly this value is treated as +∞; any other maximum is a real bound.
const UnboundedPrice = 1_000_000_000

var unboundedPrice = decimal.NewFromInt(UnboundedPrice)

// Matcher decides whether a single listing belongs to a result set.
type Matcher interface {
	Matches(l Listing) bool
}

// Criteria is the bundle of optional filter predicates. The zero value has
// no active predicate. Criteria is a value: the With/Toggle helpers return
// modified copies.
type Criteria struct {
	Query        string
	District     District
	Construction Construction
	Class        Class
	FinishState  FinishState
	MinPrice     decimal.Decimal

	// MaxPrice is nil when the range has no upper bound.
	MaxPrice *decimal.Decimal

	ReadyOnly    bool
	CommerceOnly bool
	ParkingOnly  bool
	Payments     PaymentSet

	// and holds criteria conjoined through And.
	and []Criteria
}

// DefaultCriteria returns the criteria a fresh list screen starts with.
func DefaultCriteria() Criteria {
	return Criteria{Payments: PaymentSet{}}
}

// WithMaxPrice returns a copy bounded above by ceiling. UnboundedPrice
// clears the bound.
func (c Criteria) WithMaxPrice(ceiling decimal.Decimal) Criteria {
	if ceiling.Equal(unboundedPrice) {
		c.MaxPrice = nil
		return c
	}
	c.MaxPrice = &ceiling
	return c
}

// TogglePayment returns a copy with method toggled in the required set.
func (c Criteria) TogglePayment(method string) Criteria {
	c.Payments = c.Payments.Toggle(method)
	return c
}

// And returns criteria matching exactly the listings that satisfy both c
// and o.
func (c Criteria) And(o Criteria) Criteria {
	c.and = append(slices.Clip(c.and), o)
	return c
}

// IsActive reports whether any predicate would exclude a listing.
func (c Criteria) IsActive() bool {
	if slices.ContainsFunc(c.and, Criteria.IsActive) {
		return true
	}
	_, bounded := c.maxBound()
	return strings.TrimSpace(c.Query) != "" ||
		c.District != "" ||
		c.Construction != "" ||
		c.Class != "" ||
		c.FinishState != "" ||
		c.MinPrice.IsPositive() ||
		bounded ||
		c.ReadyOnly ||
		c.CommerceOnly ||
		c.ParkingOnly ||
		len(c.Payments) > 0
}

// Matches reports whether l satisfies every active predicate.
func (c Criteria) Matches(l Listing) bool {
	return c.compile().Matches(l)
}

func (c Criteria) maxBound() (decimal.Decimal, bool) {
	if c.MaxPrice == nil || c.MaxPrice.Equal(unboundedPrice) {
		return decimal.Decimal{}, false
	}
	return *c.MaxPrice, true
}

// compile folds the query once so a whole listing set can be scanned
// without re-folding it per element.
func (c Criteria) compile() Matcher {
	fold := cases.Fold()
	m := &compiled{c: c, fold: fold}
	if q := strings.TrimSpace(c.Query); q != "" {
		m.query = fold.String(q)
	}
	m.max, m.bounded = c.maxBound()
	if len(c.and) == 0 {
		return m
	}
	all := conjunction{m}
	for _, o := range c.and {
		all = append(all, o.compile())
	}
	return all
}

type compiled struct {
	c       Criteria
	fold    cases.Caser
	query   string
	max     decimal.Decimal
	bounded bool
}

func (m *compiled) Matches(l Listing) bool {
	c := m.c
	if m.query != "" && !strings.Contains(m.fold.String(l.Name), m.query) {
		return false
	}
	if c.District != "" && l.District != c.District {
		return false
	}
	if c.Construction != "" && l.Construction != c.Construction {
		return false
	}
	if c.Class != "" && l.Class != c.Class {
		return false
	}
	if c.FinishState != "" && l.FinishState != c.FinishState {
		return false
	}
	if l.Price.LessThan(c.MinPrice) {
		return false
	}
	if m.bounded && l.Price.GreaterThan(m.max) {
		return false
	}
	if c.ReadyOnly && !l.Ready {
		return false
	}
	if c.CommerceOnly && !l.HasCommerce {
		return false
	}
	if c.ParkingOnly && !l.HasParking {
		return false
	}
	return l.PaymentMethods.ContainsAll(c.Payments)
}

type conjunction []Matcher

func (all conjunction) Matches(l Listing) bool {
	for _, m := range all {
		if !m.Matches(l) {
			return false
		}
	}
	return true
}

// All combines matchers with logical AND. With no matchers every listing
// matches.
func All(matchers ...Matcher) Matcher {
	out := make(conjunction, 0, len(matchers))
	for _, m := range matchers {
		if c, ok := m.(Criteria); ok {
			out = append(out, c.compile())
			continue
		}
		out = append(out, m)
	}
	return out
}
