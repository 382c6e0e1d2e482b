package domain

import "strings"

// FilterAll is the wildcard filter value that disables a filter.
const FilterAll = "all"

// Query is a canonical, validated search request. Text keeps its original
// casing for display; Location and JobLevel are lower-cased and default to
// FilterAll when the client omitted them.
type Query struct {
	Text     string `json:"text"`
	Location string `json:"location"`
	JobLevel string `json:"job_level"`
}

// CacheKey returns the stable key under which this query's job set is
// recorded. Filters are not part of the key: they are applied after skill
// collection over the full job set, so two queries differing only in
// filters share one fetched corpus.
func (q Query) CacheKey() string {
	return strings.ToLower(strings.TrimSpace(q.Text))
}

// Matches reports whether a job passes the query's location and job-level
// filters. Comparison is case-insensitive exact match; FilterAll always
// passes.
func (q Query) Matches(job Job) bool {
	if q.Location != FilterAll && !strings.EqualFold(job.Location, q.Location) {
		return false
	}
	if q.JobLevel != FilterAll && !strings.EqualFold(job.JobLevel, q.JobLevel) {
		return false
	}
	return true
}
