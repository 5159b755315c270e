// internal/models/product.go
package models

type Product struct {
	BaseModel
	ProducerID  uint   `json:"producer_id" gorm:"not null;index"`
	Title       string `json:"title" gorm:"size:255;not null"`
	Description string `json:"description" gorm:"type:text"`
	Price       int    `json:"price" gorm:"not null"`
	Location    string `json:"location" gorm:"size:255"`
	Country     string `json:"country" gorm:"size:255"`
	Thumbnail   string `json:"thumbnail" gorm:"size:255"`
	Available   bool   `json:"available" gorm:"not null;index"`
	Rank        int    `json:"rank" gorm:"not null"`

	// Relationships
	Producer     *User         `json:"producer,omitempty" gorm:"foreignKey:ProducerID"`
	Applications []Application `json:"applications,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}
