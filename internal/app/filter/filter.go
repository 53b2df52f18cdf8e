// Package filter provides the ranking criteria used to order an artist's tracks.
package filter

import (
	"sort"

	"github.com/osa030/seedmix/internal/domain/track"
)

// Criterion is a single ordering rule for tracks.
type Criterion interface {
	// Name returns the criterion name (used in config).
	Name() string
	// Description returns a human-readable description.
	Description() string
	// Less reports whether a must be ranked before b.
	Less(a, b track.Track) bool
}

// registration is a registered criterion factory and its application priority.
type registration struct {
	priority int
	factory  func() Criterion
}

// registry holds registered criterion factories.
var registry = make(map[string]registration)

// Register registers a criterion factory.
// Criteria with a higher priority are applied later and therefore dominate
// the final order.
func Register(name string, priority int, factory func() Criterion) {
	registry[name] = registration{priority: priority, factory: factory}
}

// GetRegistered returns all registered criteria ordered by priority.
func GetRegistered() []Criterion {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sortByPriority(names)

	result := make([]Criterion, 0, len(names))
	for _, name := range names {
		result = append(result, registry[name].factory())
	}
	return result
}

// Names returns the names of all registered criteria ordered by priority.
func Names() []string {
	criteria := GetRegistered()
	names := make([]string, len(criteria))
	for i, c := range criteria {
		names[i] = c.Name()
	}
	return names
}

func sortByPriority(names []string) {
	sort.SliceStable(names, func(i, j int) bool {
		return registry[names[i]].priority < registry[names[j]].priority
	})
}
