// Package dto defines the request and response bodies of the HTTP API.
package dto

import (
	"time"

	"github.com/google/uuid"
)

// ErrorBody is the machine-readable error envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps every error the API returns.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// ListResponse wraps collection results with paging echoes.
type ListResponse struct {
	Items    interface{} `json:"items"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

// RegisterRequest creates an account. Role must be client or worker.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	Username    string `json:"username"`
	Role        string `json:"role" binding:"required"`
	PhoneNumber string `json:"phone_number"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// UpdateProfileRequest uses pointers so absent fields stay unchanged.
type UpdateProfileRequest struct {
	Username    *string  `json:"username"`
	PhoneNumber *string  `json:"phone_number"`
	Bio         *string  `json:"bio"`
	Country     *string  `json:"country"`
	City        *string  `json:"city"`
	HourlyRate  *float64 `json:"hourly_rate"`
	CompanyName *string  `json:"company_name"`
}

type VerifyUserRequest struct {
	Verified bool `json:"verified"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

type AddUserSkillRequest struct {
	SkillID           uuid.UUID `json:"skill_id" binding:"required"`
	Proficiency       string    `json:"proficiency"`
	YearsOfExperience *int      `json:"years_of_experience"`
}

type UpdateUserSkillRequest struct {
	Proficiency       string `json:"proficiency" binding:"required"`
	YearsOfExperience *int   `json:"years_of_experience"`
}

type CreateLocationRequest struct {
	Name        string     `json:"name" binding:"required"`
	Kind        string     `json:"kind" binding:"required"`
	ParentID    *uuid.UUID `json:"parent_id"`
	CountryCode *string    `json:"country_code"`
}

type UpdateLocationRequest struct {
	Name        string  `json:"name" binding:"required"`
	CountryCode *string `json:"country_code"`
	IsActive    *bool   `json:"is_active"`
}

type CreateSkillRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Category    string  `json:"category"`
}

type UpdateSkillRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Category    string  `json:"category"`
	IsActive    *bool   `json:"is_active"`
}

type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
}

type UpdateCategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type CreateJobRequest struct {
	Title          string     `json:"title" binding:"required"`
	Description    string     `json:"description" binding:"required"`
	CategoryID     uuid.UUID  `json:"category_id" binding:"required"`
	BudgetMin      float64    `json:"budget_min" binding:"required"`
	BudgetMax      float64    `json:"budget_max" binding:"required"`
	IsRemote       bool       `json:"is_remote"`
	LocationID     *uuid.UUID `json:"location_id"`
	RequiredSkills []string   `json:"required_skills"`
	Deadline       *time.Time `json:"deadline"`
}

type UpdateJobRequest struct {
	Title          string     `json:"title" binding:"required"`
	Description    string     `json:"description" binding:"required"`
	CategoryID     uuid.UUID  `json:"category_id" binding:"required"`
	BudgetMin      float64    `json:"budget_min" binding:"required"`
	BudgetMax      float64    `json:"budget_max" binding:"required"`
	IsRemote       bool       `json:"is_remote"`
	LocationID     *uuid.UUID `json:"location_id"`
	RequiredSkills []string   `json:"required_skills"`
	Deadline       *time.Time `json:"deadline"`
}

type ApplyRequest struct {
	JobID        uuid.UUID `json:"job_id" binding:"required"`
	CoverLetter  string    `json:"cover_letter" binding:"required"`
	ProposedRate *float64  `json:"proposed_rate"`
}

// RespondApplicationRequest accepts or rejects an application.
type RespondApplicationRequest struct {
	Action  string  `json:"action" binding:"required"`
	Message *string `json:"message"`
}

// UpdatePaymentStatusRequest moves a payment manually. Payers may only
// mark their own payment completed; admins may also fail or refund.
type UpdatePaymentStatusRequest struct {
	Status        string  `json:"status" binding:"required"`
	FailureReason *string `json:"failure_reason"`
}

type CreateReviewRequest struct {
	JobID   uuid.UUID `json:"job_id" binding:"required"`
	Rating  int       `json:"rating" binding:"required"`
	Comment *string   `json:"comment"`
}

type ReviewResponseRequest struct {
	Response string `json:"response" binding:"required"`
}
