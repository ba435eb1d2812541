package listing

import "slices"

// SortByCreatedDesc returns a copy of listings ordered newest first.
// Listings without a creation time sort as the Unix epoch; ties keep their
// fetch order.
func SortByCreatedDesc(listings []Listing) []Listing {
	out := slices.Clone(listings)
	if out == nil {
		out = []Listing{}
	}
	slices.SortStableFunc(out, func(a, b Listing) int {
		return b.createdOrEpoch().Compare(a.createdOrEpoch())
	})
	return out
}
