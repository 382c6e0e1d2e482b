package domain

import "time"

// Salary is a possibly open-ended yearly salary range attached to a job.
// Either bound may be absent when the posting does not state it.
type Salary struct {
	YearMin  *float64 `gorm:"column:min_year_salary" json:"year_min"`
	YearMax  *float64 `gorm:"column:max_year_salary" json:"year_max"`
	Currency string   `gorm:"column:currency" json:"currency"`
}

// Midpoint returns the representative single value of the range:
// the average when both bounds are present, the present bound when only
// one is, and ok=false when the range is fully open.
func (s Salary) Midpoint() (float64, bool) {
	switch {
	case s.YearMin != nil && s.YearMax != nil:
		return (*s.YearMin + *s.YearMax) / 2, true
	case s.YearMin != nil:
		return *s.YearMin, true
	case s.YearMax != nil:
		return *s.YearMax, true
	default:
		return 0, false
	}
}

// Job represents a job posting in the system.
// ExternalID is the posting's identifier at the job-search provider and is
// the idempotency key for upserts. IsFull is false for summary-only records;
// IsAnalyzed flips to true once skill extraction has run, and never reverts.
type Job struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ExternalID  int64     `gorm:"not null;uniqueIndex:idx_jobs_external_id" json:"external_id"`
	Title       string    `gorm:"type:text;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Location    string    `gorm:"type:text;index:idx_jobs_location" json:"location"`
	JobLevel    string    `gorm:"type:text" json:"job_level,omitempty"`
	Salary      Salary    `gorm:"embedded" json:"salary"`
	URL         string    `gorm:"type:text" json:"url,omitempty"`
	IsFull      bool      `gorm:"default:false" json:"is_full"`
	IsAnalyzed  bool      `gorm:"default:false;index:idx_jobs_analyzed" json:"is_analyzed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Job.
func (Job) TableName() string {
	return "jobs"
}

// QueryJob associates a normalized query cache key with one job it returned.
// Rows are written only after the jobs themselves are durably stored;
// writing earlier would make repeated queries skip jobs that were never
// persisted.
type QueryJob struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	CacheKey string `gorm:"column:cache_key;not null;uniqueIndex:idx_query_jobs_key_job" json:"cache_key"`
	JobID    uint   `gorm:"not null;uniqueIndex:idx_query_jobs_key_job" json:"job_id"`
}

// TableName returns the database table name for QueryJob.
func (QueryJob) TableName() string {
	return "queries_jobs"
}
