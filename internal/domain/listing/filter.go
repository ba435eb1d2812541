package listing

// Filter returns the listings matching every active predicate of c, in
// their input order. It never modifies listings and always returns a
// non-nil slice.
func Filter(listings []Listing, c Criteria) []Listing {
	return Select(listings, c.compile())
}

// Select returns the listings accepted by m, in their input order.
func Select(listings []Listing, m Matcher) []Listing {
	out := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if m.Matches(l) {
			out = append(out, l)
		}
	}
	return out
}
