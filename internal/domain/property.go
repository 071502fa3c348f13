package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Property is a listing. Area is numeric so range filters compare numbers, not strings.
type Property struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title        string     `gorm:"column:title;not null" json:"title"`
	Description  string     `gorm:"column:description;type:text" json:"description"`
	Price        int64      `gorm:"column:price;not null;index" json:"price"`
	Currency     string     `gorm:"column:currency;type:varchar(8);default:'GHS'" json:"currency"`
	Region       string     `gorm:"column:region;index" json:"region"`
	Address      string     `gorm:"column:address" json:"address"`
	PropertyType string     `gorm:"column:property_type;index" json:"property_type"`
	ListingType  string     `gorm:"column:listing_type;index" json:"listing_type"`
	Status       string     `gorm:"column:status;type:varchar(20);default:'pending';index" json:"status"`
	IsFeatured   bool       `gorm:"column:is_featured;not null;default:false" json:"is_featured"`
	Bedrooms     int        `gorm:"column:bedrooms;not null;default:0" json:"bedrooms"`
	Bathrooms    int        `gorm:"column:bathrooms;not null;default:0" json:"bathrooms"`
	Area         float64    `gorm:"column:area;type:numeric(12,2);not null;default:0" json:"area"`
	Images       StringList `gorm:"column:images;type:json" json:"images"`
	AgentID      *uuid.UUID `gorm:"column:agent_id;type:uuid;index" json:"agent_id"`
	Agent        *Agent     `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
	Amenities    []Amenity  `gorm:"many2many:property_amenities;joinForeignKey:PropertyID;joinReferences:AmenityID" json:"amenities,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (Property) TableName() string {
	return "properties"
}

// BeforeCreate sets id if not already set (DBs without default uuid).
func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
