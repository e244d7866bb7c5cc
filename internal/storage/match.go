package storage

import (
	"strings"
	"time"

	"kanban/internal/models"
)

// SearchTerms splits free text into lower-cased terms.
func SearchTerms(search string) []string {
	return strings.Fields(strings.ToLower(search))
}

// MatchesSearch reports whether any term occurs in the task title or
// description, ignoring case. Backends without a text index use it to
// approximate the document store's text search.
func MatchesSearch(t models.Task, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	haystack := strings.ToLower(t.Title + "\n" + t.Description)
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}

// MatchesTask reports whether t satisfies every constraint of f.
func (f TaskFilter) MatchesTask(t models.Task) bool {
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.ProjectID != "" && t.ProjectID != f.ProjectID {
		return false
	}
	return MatchesSearch(t, SearchTerms(f.Search))
}

// MatchesProject reports whether p satisfies every constraint of f.
func (f ProjectFilter) MatchesProject(p models.Project) bool {
	if f.Name != "" && p.Name != f.Name {
		return false
	}
	if f.ExcludeID != "" && p.ID == f.ExcludeID {
		return false
	}
	if f.IDs != nil {
		for _, id := range f.IDs {
			if id == p.ID {
				return true
			}
		}
		return false
	}
	return true
}

// Now returns the current time at the millisecond precision every backend
// can store, so a value read back equals the value written.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
