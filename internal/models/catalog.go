package models

import (
	"time"

	"github.com/google/uuid"
)

// Location is a node in the geographic hierarchy. Parent is nil for countries.
type Location struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Kind        string     `db:"kind" json:"kind"`
	ParentID    *uuid.UUID `db:"parent_id" json:"parent_id,omitempty"`
	CountryCode *string    `db:"country_code" json:"country_code,omitempty"`
	IsActive    bool       `db:"is_active" json:"is_active"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// LocationNode is a location with its resolved children, used by the tree endpoint.
type LocationNode struct {
	Location
	Children []*LocationNode `json:"children"`
}

// Skill is an admin-curated skill catalog entry.
type Skill struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Category    string    `db:"category" json:"category"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// UserSkill links a user to a catalog skill with a self-reported proficiency.
type UserSkill struct {
	ID                uuid.UUID `db:"id" json:"id"`
	UserID            uuid.UUID `db:"user_id" json:"user_id"`
	SkillID           uuid.UUID `db:"skill_id" json:"skill_id"`
	Proficiency       string    `db:"proficiency" json:"proficiency"`
	YearsOfExperience *int      `db:"years_of_experience" json:"years_of_experience,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`

	// SkillName is joined from the skills table on reads.
	SkillName string `db:"skill_name" json:"skill_name,omitempty"`
}

// JobCategory groups jobs for browsing and filtering.
type JobCategory struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
