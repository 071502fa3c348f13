package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is an end-user account keyed by its identity-provider subject.
type User struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	FirebaseUID     string          `gorm:"column:firebase_uid;not null;uniqueIndex" json:"firebase_uid"`
	Name            string          `gorm:"column:name" json:"name"`
	Email           string          `gorm:"column:email;index" json:"email"`
	Phone           string          `gorm:"column:phone" json:"phone"`
	Role            string          `gorm:"column:role;type:varchar(20);not null;default:'user'" json:"role"`
	Status          string          `gorm:"column:status;type:varchar(20);not null;default:'active'" json:"status"`
	SavedProperties []SavedProperty `gorm:"foreignKey:UserID" json:"saved_properties,omitempty"`
	Activity        []UserActivity  `gorm:"foreignKey:UserID" json:"user_activity,omitempty"`
	Alerts          []UserAlert     `gorm:"foreignKey:UserID" json:"user_alerts,omitempty"`
	CreatedAt       time.Time       `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// BeforeCreate sets id if not already set (DBs without default uuid).
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// SavedProperty is unique per (user, property).
type SavedProperty struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_saved_user_property" json:"user_id"`
	PropertyID uuid.UUID `gorm:"column:property_id;type:uuid;not null;uniqueIndex:idx_saved_user_property" json:"property_id"`
	Property   *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at;index" json:"created_at"`
}

func (SavedProperty) TableName() string {
	return "saved_properties"
}

func (s *SavedProperty) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// UserActivity is an append-only log entry.
type UserActivity struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	PropertyID *uuid.UUID `gorm:"column:property_id;type:uuid;index" json:"property_id"`
	Property   *Property  `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
	Action     string     `gorm:"column:action;type:varchar(20);not null;index" json:"action"`
	CreatedAt  time.Time  `gorm:"column:created_at;index" json:"created_at"`
}

func (UserActivity) TableName() string {
	return "user_activity"
}

func (a *UserActivity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// UserAlert is a saved search; Criteria is opaque to the backend.
type UserAlert struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"column:user_id;type:uuid;not null;index" json:"user_id"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	Criteria  datatypes.JSON `gorm:"column:criteria" json:"criteria"`
	Frequency string         `gorm:"column:frequency;type:varchar(20);not null;default:'daily'" json:"frequency"`
	IsActive  bool           `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (UserAlert) TableName() string {
	return "user_alerts"
}

func (a *UserAlert) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
