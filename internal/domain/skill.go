package domain

import "time"

// Skill is one skill name extracted from a job description.
// The owning job's salary is duplicated onto the record so skill-level
// salary aggregation needs no join. Skills are written once by the
// extraction worker and never retracted.
type Skill struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:text;not null;uniqueIndex:idx_skills_name_job" json:"name"`
	JobID     uint      `gorm:"not null;uniqueIndex:idx_skills_name_job;index:idx_skills_job" json:"job_id"`
	Salary    Salary    `gorm:"embedded" json:"salary"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Skill.
func (Skill) TableName() string {
	return "skills"
}
