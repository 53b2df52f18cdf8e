package filter

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/osa030/seedmix/internal/domain/track"
)

// ErrUnknownCriterion is returned when a spec names a criterion that is not registered.
var ErrUnknownCriterion = errors.New("unknown ranking criterion")

// Spec is a set of criteria in application order.
// The zero value keeps the catalog's natural order.
type Spec struct {
	criteria []Criterion
}

// ParseSpec builds a Spec from criterion names.
// Names are matched case-insensitively and duplicates collapse. Regardless of
// the order given, criteria are applied in registry priority order.
func ParseSpec(names []string) (Spec, error) {
	seen := make(map[string]bool, len(names))
	selected := make([]string, 0, len(names))
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" || seen[name] {
			continue
		}
		if _, ok := registry[name]; !ok {
			return Spec{}, errors.Wrapf(ErrUnknownCriterion, "%q (known: %s)", raw, strings.Join(Names(), ", "))
		}
		seen[name] = true
		selected = append(selected, name)
	}
	sortByPriority(selected)

	criteria := make([]Criterion, 0, len(selected))
	for _, name := range selected {
		criteria = append(criteria, registry[name].factory())
	}
	return Spec{criteria: criteria}, nil
}

// MustParseSpec is like ParseSpec but panics on error.
func MustParseSpec(names ...string) Spec {
	spec, err := ParseSpec(names)
	if err != nil {
		panic(err)
	}
	return spec
}

// IsEmpty reports whether the spec has no criteria.
func (s Spec) IsEmpty() bool {
	return len(s.criteria) == 0
}

// Names returns the criterion names in application order.
func (s Spec) Names() []string {
	names := make([]string, len(s.criteria))
	for i, c := range s.criteria {
		names[i] = c.Name()
	}
	return names
}

// String returns the names joined by '+', or "catalog" for an empty spec.
func (s Spec) String() string {
	if s.IsEmpty() {
		return "catalog"
	}
	return strings.Join(s.Names(), "+")
}

// Rank returns a newly allocated copy of tracks ordered by spec.
// Each criterion is a stable sort applied after the previous one, so the last
// criterion is the dominant key and earlier ones only break its ties.
// The input slice is never modified.
func Rank(tracks []track.Track, spec Spec) []track.Track {
	result := make([]track.Track, len(tracks))
	copy(result, tracks)

	for _, c := range spec.criteria {
		sort.SliceStable(result, func(i, j int) bool {
			return c.Less(result[i], result[j])
		})
	}
	return result
}
