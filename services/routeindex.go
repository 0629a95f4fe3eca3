package services

import (
	"sort"
	"strconv"
	"strings"
)

// RouteFilter narrows candidate routes for a chosen lane. Empty slices
// mean "all" (the unfiltered default after an origin change).
type RouteFilter struct {
	Carriers   []string
	Currencies []Currency
}

// Origins returns the sorted, de-duplicated origin display names
// present in the table.
func Origins(rates []RouteRate) []string {
	return distinctSorted(rates, func(r RouteRate) (string, string) {
		return r.OriginKey, r.Origin
	}, func(RouteRate) bool { return true })
}

// DestinationsFor returns the sorted, de-duplicated destinations
// reachable from the origin identified by its normalized key.
func DestinationsFor(rates []RouteRate, originKey string) []string {
	return distinctSorted(rates, func(r RouteRate) (string, string) {
		return r.DestinationKey, r.Destination
	}, func(r RouteRate) bool { return r.OriginKey == originKey })
}

// CarriersFor returns the de-duplicated sorted carriers present among
// routes matching the lane. Routes with no carrier contribute nothing.
func CarriersFor(rates []RouteRate, originKey, destinationKey string) []string {
	return distinctSorted(rates, func(r RouteRate) (string, string) {
		return strings.ToLower(r.Carrier), r.Carrier
	}, func(r RouteRate) bool {
		return r.Carrier != "" && r.OriginKey == originKey && r.DestinationKey == destinationKey
	})
}

// CurrenciesFor returns the de-duplicated sorted currencies present
// among routes matching the lane.
func CurrenciesFor(rates []RouteRate, originKey, destinationKey string) []Currency {
	seen := make(map[Currency]bool)
	var out []Currency
	for _, r := range rates {
		if r.OriginKey != originKey || r.DestinationKey != destinationKey {
			continue
		}
		if !seen[r.Currency] {
			seen[r.Currency] = true
			out = append(out, r.Currency)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CandidateRoutes returns the routes matching origin AND destination
// AND the filter. A route with no carrier matches any carrier filter.
// Candidates sort ascending by PriceForComparison with a stable order,
// so unpriced (0) routes come first.
func CandidateRoutes(rates []RouteRate, originKey, destinationKey string, filter RouteFilter) []RouteRate {
	carrierSet := make(map[string]bool, len(filter.Carriers))
	for _, c := range filter.Carriers {
		carrierSet[strings.ToLower(strings.TrimSpace(c))] = true
	}
	currencySet := make(map[Currency]bool, len(filter.Currencies))
	for _, c := range filter.Currencies {
		currencySet[c] = true
	}

	var out []RouteRate
	for _, r := range rates {
		if r.OriginKey != originKey || r.DestinationKey != destinationKey {
			continue
		}
		if len(carrierSet) > 0 && r.Carrier != "" && !carrierSet[strings.ToLower(r.Carrier)] {
			continue
		}
		if len(currencySet) > 0 && !currencySet[r.Currency] {
			continue
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PriceForComparison < out[j].PriceForComparison
	})
	return out
}

// BestPriceIndex returns the index of the candidate with the lowest
// comparison price strictly greater than 0, or -1. Routes with no
// published price never win the highlight. First occurrence wins ties.
func BestPriceIndex(candidates []RouteRate) int {
	best := -1
	for i, r := range candidates {
		if r.PriceForComparison <= 0 {
			continue
		}
		if best == -1 || r.PriceForComparison < candidates[best].PriceForComparison {
			best = i
		}
	}
	return best
}

// FastestIndex returns the index of the candidate with the lowest
// numeric transit time, or -1 when no transit time parses. The value
// is the first integer substring of the free-text field ("3-5 days"
// reads as 3). First occurrence wins ties.
func FastestIndex(candidates []RouteRate) int {
	fastest := -1
	fastestDays := 0
	for i, r := range candidates {
		days, ok := firstInt(r.TransitTime)
		if !ok {
			continue
		}
		if fastest == -1 || days < fastestDays {
			fastest = i
			fastestDays = days
		}
	}
	return fastest
}

// FindRoute locates the single route a quote was built against. With
// an empty carrier it returns the cheapest priced candidate for the
// lane and currency.
func FindRoute(rates []RouteRate, originKey, destinationKey, carrier string, currency Currency) (RouteRate, bool) {
	filter := RouteFilter{Currencies: []Currency{currency}}
	if carrier != "" {
		filter.Carriers = []string{carrier}
	}
	candidates := CandidateRoutes(rates, originKey, destinationKey, filter)
	for _, r := range candidates {
		if r.PriceForComparison > 0 {
			return r, true
		}
	}
	return RouteRate{}, false
}

func firstInt(s string) (int, bool) {
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			n, err := strconv.Atoi(s[start:i])
			return n, err == nil
		}
	}
	if start != -1 {
		n, err := strconv.Atoi(s[start:])
		return n, err == nil
	}
	return 0, false
}

func distinctSorted(rates []RouteRate, keyVal func(RouteRate) (string, string), match func(RouteRate) bool) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rates {
		if !match(r) {
			continue
		}
		key, val := keyVal(r)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, val)
	}
	sort.Strings(out)
	return out
}
