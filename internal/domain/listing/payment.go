package listing

import "strings"

// PaymentSet is an insertion-ordered set of payment method names. Order is
// kept for display only; matching ignores it. Methods never mutate the
// receiver.
type PaymentSet []string

// NewPaymentSet builds a set from methods, dropping blanks and duplicates.
func NewPaymentSet(methods ...string) PaymentSet {
	set := make(PaymentSet, 0, len(methods))
	for _, m := range methods {
		m = strings.TrimSpace(m)
		if m == "" || set.Contains(m) {
			continue
		}
		set = append(set, m)
	}
	return set
}

// Contains reports whether method is in the set.
func (s PaymentSet) Contains(method string) bool {
	for _, m := range s {
		if m == method {
			return true
		}
	}
	return false
}

// ContainsAll reports whether every required method is in the set.
// An empty requirement is always satisfied.
func (s PaymentSet) ContainsAll(required PaymentSet) bool {
	for _, m := range required {
		if !s.Contains(m) {
			return false
		}
	}
	return true
}

// Toggle returns a new set with method removed when present and appended
// when absent.
func (s PaymentSet) Toggle(method string) PaymentSet {
	method = strings.TrimSpace(method)
	if method == "" {
		return s.clone()
	}
	if !s.Contains(method) {
		return append(s.clone(), method)
	}
	out := make(PaymentSet, 0, len(s))
	for _, m := range s {
		if m != method {
			out = append(out, m)
		}
	}
	return out
}

func (s PaymentSet) clone() PaymentSet {
	out := make(PaymentSet, len(s), len(s)+1)
	copy(out, s)
	return out
}
