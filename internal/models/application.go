// internal/models/application.go
package models

import (
	"time"
)

type Application struct {
	ID             uint              `json:"id" gorm:"primaryKey;autoIncrement"`
	ReceiverID     uint              `json:"receiver_id" gorm:"not null;index"`
	ProductID      uint              `json:"product_id" gorm:"not null;index"`
	Motivation     string            `json:"motivation" gorm:"type:text;not null"`
	Status         ApplicationStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	CreatedAt      time.Time         `json:"created_at" gorm:"not null"`
	LastModifiedAt time.Time         `json:"last_modified_at" gorm:"not null"`
	DateOfDonation *time.Time        `json:"date_of_donation"`

	// Relationships
	Receiver *User     `json:"receiver,omitempty" gorm:"foreignKey:ReceiverID"`
	Product  *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	Contract *Contract `json:"contract,omitempty" gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE"`
}

var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationStatusOpen:    {ApplicationStatusPending, ApplicationStatusLocked},
	ApplicationStatusPending: {ApplicationStatusCompleted, ApplicationStatusOpen},
}

func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusOpen, ApplicationStatusPending, ApplicationStatusCompleted, ApplicationStatusLocked:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ApplicationDetail is one row of the application read projection, joined
// with its receiver and product.
type ApplicationDetail struct {
	ApplicationID     uint
	ReceiverID        uint
	ReceiverFirstName string
	ReceiverSurName   string
	ReceiverCountry   string
	ReceiverThumbnail string
	ProductID         uint
	ProductTitle      string
	ProductPrice      int
	ProducerID        uint
	Motivation        string
	Status            ApplicationStatus
	CreatedAt         time.Time
	LastModifiedAt    time.Time
	DateOfDonation    *time.Time
}

// ApplicationFilter narrows ListApplicationDetails. Zero values mean "any".
type ApplicationFilter struct {
	Status          ApplicationStatus
	ReceiverID      uint
	ProducerID      uint
	ReceiverCountry string
	ProducerCity    string
	// Withdrawable keeps only rows whose contract is completed, still holds
	// bytes and has no payout in flight.
	Withdrawable bool
}

// ApplicationParties holds everyone a status change may need to notify.
type ApplicationParties struct {
	Application  Application
	Receiver     User
	Product      Product
	Producer     Producer
	ProducerUser User
}

type DonationStats struct {
	Count int64 `json:"count"`
	Total int64 `json:"total"`
}
