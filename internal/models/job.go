package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Job is a client's work posting. AssignedWorkerID is set when an
// application is accepted and the job moves to in_progress.
type Job struct {
	ID                uuid.UUID      `db:"id" json:"id"`
	ClientID          uuid.UUID      `db:"client_id" json:"client_id"`
	Title             string         `db:"title" json:"title"`
	Description       string         `db:"description" json:"description"`
	CategoryID        uuid.UUID      `db:"category_id" json:"category_id"`
	Status            string         `db:"status" json:"status"`
	BudgetMin         float64        `db:"budget_min" json:"budget_min"`
	BudgetMax         float64        `db:"budget_max" json:"budget_max"`
	IsRemote          bool           `db:"is_remote" json:"is_remote"`
	LocationID        *uuid.UUID     `db:"location_id" json:"location_id,omitempty"`
	RequiredSkills    pq.StringArray `db:"required_skills" json:"required_skills"`
	Deadline          *time.Time     `db:"deadline" json:"deadline,omitempty"`
	AssignedWorkerID  *uuid.UUID     `db:"assigned_worker_id" json:"assigned_worker_id,omitempty"`
	ApplicationsCount int            `db:"applications_count" json:"applications_count"`
	CreatedAt         time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at" json:"updated_at"`
}

// JobFilter narrows job listings. Zero values mean "no constraint".
type JobFilter struct {
	Status     string
	CategoryID *uuid.UUID
	LocationID *uuid.UUID
	ClientID   *uuid.UUID
	IsRemote   *bool
	BudgetMin  *float64
	BudgetMax  *float64
	Search     string
	Limit      int
	Offset     int
}

// JobApplication is a worker's bid on a job.
type JobApplication struct {
	ID            uuid.UUID `db:"id" json:"id"`
	JobID         uuid.UUID `db:"job_id" json:"job_id"`
	WorkerID      uuid.UUID `db:"worker_id" json:"worker_id"`
	Status        string    `db:"status" json:"status"`
	CoverLetter   string    `db:"cover_letter" json:"cover_letter"`
	ProposedRate  *float64  `db:"proposed_rate" json:"proposed_rate,omitempty"`
	ClientMessage *string   `db:"client_message" json:"client_message,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
