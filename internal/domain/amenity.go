package domain

import (
	"time"

	"github.com/google/uuid"
)

type Amenity struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Icon      string    `gorm:"column:icon" json:"icon"`
	Category  string    `gorm:"column:category" json:"category"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (Amenity) TableName() string {
	return "amenities"
}

// PropertyAmenity is the join row between a property and an amenity.
type PropertyAmenity struct {
	PropertyID uuid.UUID `gorm:"column:property_id;type:uuid;primaryKey" json:"property_id"`
	AmenityID  uint      `gorm:"column:amenity_id;primaryKey" json:"amenity_id"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (PropertyAmenity) TableName() string {
	return "property_amenities"
}
