package bills

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/mmynk/billminder/internal/models"
)

// Resolve returns the unpaid bills whose name contains query, ignoring case.
// When several bills match and exactly one of them has the query as its
// whole name, only that bill is returned. An empty query matches nothing.
func Resolve(all []models.Bill, query string) []models.Bill {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var matches []models.Bill
	for _, b := range all {
		if !b.Status.Unpaid() {
			continue
		}
		if strings.Contains(strings.ToLower(b.Name), q) {
			matches = append(matches, b)
		}
	}
	if len(matches) <= 1 {
		return matches
	}

	var exact []models.Bill
	for _, b := range matches {
		if strings.EqualFold(strings.TrimSpace(b.Name), q) {
			exact = append(exact, b)
		}
	}
	if len(exact) == 1 {
		return exact
	}
	return matches
}

// Suggest returns up to limit unpaid bill names within a small edit
// distance of query, closest first.
func Suggest(all []models.Bill, query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" || limit <= 0 {
		return nil
	}
	maxDist := max(2, len([]rune(q))/3)

	type scored struct {
		name string
		dist int
	}
	var found []scored
	seen := make(map[string]bool)
	for _, b := range all {
		if !b.Status.Unpaid() || seen[b.Name] {
			continue
		}
		seen[b.Name] = true
		d := levenshtein.ComputeDistance(q, strings.ToLower(b.Name))
		if d <= maxDist {
			found = append(found, scored{name: b.Name, dist: d})
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].dist != found[j].dist {
			return found[i].dist < found[j].dist
		}
		return found[i].name < found[j].name
	})

	names := make([]string, 0, min(limit, len(found)))
	for i := 0; i < len(found) && i < limit; i++ {
		names = append(names, found[i].name)
	}
	return names
}
