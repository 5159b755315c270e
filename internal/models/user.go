// internal/models/user.go
package models

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	FirstName    string   `json:"first_name" gorm:"size:255;not null"`
	SurName      string   `json:"sur_name" gorm:"size:255;not null"`
	Email        string   `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string   `json:"-" gorm:"size:255;not null"`
	Country      string   `json:"country" gorm:"size:255;index"`
	Description  string   `json:"description" gorm:"type:text"`
	Thumbnail    string   `json:"thumbnail" gorm:"size:255"`
	Role         UserRole `json:"role" gorm:"type:varchar(20);not null"`

	// Relationships
	Producer *Producer `json:"producer,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Receiver *Receiver `json:"receiver,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.SurName)
}

type Producer struct {
	BaseModel
	UserID        uint   `json:"user_id" gorm:"uniqueIndex;not null"`
	PairingSecret string `json:"-" gorm:"size:255;index"`
	DeviceAddress string `json:"device_address" gorm:"size:255"`
	WalletAddress string `json:"wallet_address" gorm:"size:255"`
	Street        string `json:"street" gorm:"size:255"`
	StreetNumber  string `json:"street_number" gorm:"size:50"`
	Zipcode       string `json:"zipcode" gorm:"size:50"`
	City          string `json:"city" gorm:"size:255;index"`
}

// PickupAddress formats the shop address receivers are sent to.
func (p *Producer) PickupAddress() string {
	if p.Zipcode != "" {
		return p.Street + " " + p.StreetNumber + ", " + p.Zipcode + " " + p.City
	}
	return p.Street + " " + p.StreetNumber + ", " + p.City
}

type Receiver struct {
	BaseModel
	UserID uint `json:"user_id" gorm:"uniqueIndex;not null"`
}
