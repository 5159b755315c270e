// internal/models/common.go
package models

import (
	"time"
)

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Enums
type UserRole string

const (
	UserRoleProducer UserRole = "producer"
	UserRoleReceiver UserRole = "receiver"
)

func (r UserRole) Valid() bool {
	return r == UserRoleProducer || r == UserRoleReceiver
}

type ApplicationStatus string

const (
	ApplicationStatusOpen      ApplicationStatus = "open"
	ApplicationStatusPending   ApplicationStatus = "pending"
	ApplicationStatusCompleted ApplicationStatus = "completed"
	ApplicationStatusLocked    ApplicationStatus = "locked"
)

// SubmitOutcome reports what happened to a submission. Unavailable lives here
// and not in ApplicationStatus so it can never be written to a row.
type SubmitOutcome string

const (
	SubmitOutcomeCreated     SubmitOutcome = "created"
	SubmitOutcomeUnavailable SubmitOutcome = "unavailable"
)

// Date layouts used by the read projections
const (
	CreationDateLayout = "2006-01-02 15:04:05"
	DonationDateLayout = "2006-01-02"
)
