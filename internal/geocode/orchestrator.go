// README: Geocoding orchestrator with provider fallback, result ranking, and caching.
package geocode

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"courier/internal/types"
)

// minQueryLen is the shortest query that triggers a lookup; anything shorter
// resolves to an empty result without a network call.
const minQueryLen = 3

// fallbackTokenRatio is the minimum share of query tokens that must appear in
// the top result's formatted address before the primary answer is trusted.
// Kept conservative so the paid fallback is only consulted for genuinely
// vague matches.
const fallbackTokenRatio = 0.5

// lowInfoMarkers are terms in a formatted address that signal the free
// provider matched something vague rather than the requested place.
var lowInfoMarkers = []string{"unclassified road", "unnamed", "unknown"}

// Orchestrator fronts one or two geocode providers. It decides when the
// primary answer is weak enough to justify the secondary provider, ranks
// candidates by confidence, and caches successful lookups.
//
// Search and Reverse never fail: weak input or provider trouble degrades to
// an empty result or a synthesized address, keeping the booking flow alive.
type Orchestrator struct {
	primary   Provider
	secondary Provider // optional; nil disables fallback
	cache     *Cache
}

// NewOrchestrator wires the orchestrator. secondary may be nil when no
// commercial provider is configured.
func NewOrchestrator(primary, secondary Provider, cache *Cache) *Orchestrator {
	return &Orchestrator{primary: primary, secondary: secondary, cache: cache}
}

// Search resolves a free-text query into ranked candidates. Queries shorter
// than three characters return nil without touching any provider. Identical
// lookups within the cache freshness window are served without a network
// call.
func (o *Orchestrator) Search(ctx context.Context, query string, pref Preference) []Candidate {
	normalized := normalizeQuery(query)
	if len(normalized) < minQueryLen {
		return nil
	}

	key := string(pref) + "|" + normalized
	if hit, ok := o.cache.Get(key); ok {
		return hit
	}

	var out []Candidate
	switch pref {
	case PreferenceSecondary:
		if o.secondary != nil {
			out = o.secondary.Search(ctx, query)
		}
	case PreferencePrimary:
		out = o.primary.Search(ctx, query)
	default: // Auto: free provider first, paid fallback only when needed
		out = o.primary.Search(ctx, query)
		if o.secondary != nil && needsFallback(normalized, out) {
			if alt := o.secondary.Search(ctx, query); len(alt) > 0 {
				out = alt
			}
		}
	}

	rankByConfidence(out)
	if len(out) > 0 {
		o.cache.Set(key, out)
	}
	return out
}

// Reverse resolves coordinates into an address string. It tries the primary
// provider, then the secondary, and as a last resort synthesizes a
// "Location at lat, lng" string so the caller always gets something usable.
func (o *Orchestrator) Reverse(ctx context.Context, pt types.Point, pref Preference) string {
	key := reverseKey(pref, pt)
	if hit, ok := o.cache.Get(key); ok && len(hit) > 0 {
		return hit[0].FormattedAddress
	}

	var addr string
	switch pref {
	case PreferenceSecondary:
		if o.secondary != nil {
			addr = o.secondary.Reverse(ctx, pt)
		}
	default:
		addr = o.primary.Reverse(ctx, pt)
		if addr == "" && o.secondary != nil {
			addr = o.secondary.Reverse(ctx, pt)
		}
	}

	if addr == "" {
		// Synthesized addresses are not cached; a later lookup may do better.
		return fmt.Sprintf("Location at %.6f, %.6f", pt.Lat, pt.Lng)
	}
	o.cache.Set(key, []Candidate{{
		FormattedAddress: addr,
		Coordinates:      pt,
		Confidence:       ConfidenceLow,
	}})
	return addr
}

// needsFallback decides whether the primary provider's answer is weak enough
// to consult the paid secondary: no results at all, a low-information marker
// in the top address, or fewer than half the query tokens present in it.
func needsFallback(normalizedQuery string, candidates []Candidate) bool {
	if len(candidates) == 0 {
		return true
	}
	top := strings.ToLower(candidates[0].FormattedAddress)
	for _, marker := range lowInfoMarkers {
		if strings.Contains(top, marker) {
			return true
		}
	}
	tokens := strings.Fields(normalizedQuery)
	if len(tokens) == 0 {
		return false
	}
	matched := 0
	for _, tok := range tokens {
		tok = strings.Trim(tok, ",.")
		if tok == "" {
			matched++ // pure punctuation carries no information
			continue
		}
		if strings.Contains(top, tok) {
			matched++
		}
	}
	return float64(matched)/float64(len(tokens)) < fallbackTokenRatio
}

// rankByConfidence orders candidates high before medium before low, keeping
// the provider's own ordering within each band.
func rankByConfidence(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return confidenceRank(candidates[i].Confidence) > confidenceRank(candidates[j].Confidence)
	})
}

func confidenceRank(c Confidence) int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

func normalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

func reverseKey(pref Preference, pt types.Point) string {
	return string(pref) + "|rev|" +
		strconv.FormatFloat(pt.Lat, 'f', 6, 64) + "," +
		strconv.FormatFloat(pt.Lng, 'f', 6, 64)
}
