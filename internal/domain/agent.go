package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Agent is a listing agent bound one-to-one to an identity-provider subject.
// PendingProfileEdits is non-nil only while Status is "pending".
type Agent struct {
	ID                  uuid.UUID     `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	FirebaseUID         string        `gorm:"column:firebase_uid;not null;uniqueIndex" json:"firebase_uid"`
	Name                string        `gorm:"column:name;not null" json:"name"`
	Email               string        `gorm:"column:email" json:"email"`
	PhoneCall           string        `gorm:"column:phone_call" json:"phone_call"`
	PhoneWhatsapp       string        `gorm:"column:phone_whatsapp" json:"phone_whatsapp"`
	Bio                 string        `gorm:"column:bio;type:text" json:"bio"`
	Slug                string        `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Title               string        `gorm:"column:title" json:"title"`
	ProfilePicture      string        `gorm:"column:profile_picture" json:"profile_picture"`
	Experience          int           `gorm:"column:experience;not null;default:0" json:"experience"`
	AreasServed         StringList    `gorm:"column:areas_served;type:json" json:"areasServed"`
	Specializations     StringList    `gorm:"column:specializations;type:json" json:"specializations"`
	Status              string        `gorm:"column:status;type:varchar(20);default:'pending';index" json:"status"`
	PendingProfileEdits *AgentProfile `gorm:"column:pending_profile_edits;type:json" json:"pending_profile_edits"`
	Properties          []Property    `gorm:"foreignKey:AgentID" json:"properties,omitempty"`
	BlogPosts           []BlogPost    `gorm:"foreignKey:AgentID" json:"blog_posts,omitempty"`
	CreatedAt           time.Time     `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt           time.Time     `gorm:"column:updated_at" json:"updated_at"`
}

func (Agent) TableName() string {
	return "agents"
}

// BeforeCreate sets id if not already set (DBs without default uuid).
func (a *Agent) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AgentProfile is a patch over an agent's editable fields; nil means "leave unchanged".
type AgentProfile struct {
	Name            *string   `json:"name,omitempty"`
	Email           *string   `json:"email,omitempty"`
	PhoneCall       *string   `json:"phone_call,omitempty"`
	PhoneWhatsapp   *string   `json:"phone_whatsapp,omitempty"`
	Bio             *string   `json:"bio,omitempty"`
	Title           *string   `json:"title,omitempty"`
	ProfilePicture  *string   `json:"profile_picture,omitempty"`
	Experience      *int      `json:"experience,omitempty"`
	AreasServed     *[]string `json:"areasServed,omitempty"`
	Specializations *[]string `json:"specializations,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p AgentProfile) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.PhoneCall == nil && p.PhoneWhatsapp == nil &&
		p.Bio == nil && p.Title == nil && p.ProfilePicture == nil && p.Experience == nil &&
		p.AreasServed == nil && p.Specializations == nil
}

// ApplyTo merges the non-nil fields of p into a.
func (p AgentProfile) ApplyTo(a *Agent) {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Email != nil {
		a.Email = *p.Email
	}
	if p.PhoneCall != nil {
		a.PhoneCall = *p.PhoneCall
	}
	if p.PhoneWhatsapp != nil {
		a.PhoneWhatsapp = *p.PhoneWhatsapp
	}
	if p.Bio != nil {
		a.Bio = *p.Bio
	}
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.ProfilePicture != nil {
		a.ProfilePicture = *p.ProfilePicture
	}
	if p.Experience != nil {
		a.Experience = *p.Experience
	}
	if p.AreasServed != nil {
		a.AreasServed = StringList(*p.AreasServed)
	}
	if p.Specializations != nil {
		a.Specializations = StringList(*p.Specializations)
	}
}

// Scan implements sql.Scanner for reading from DB (json column).
func (p *AgentProfile) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*p = AgentProfile{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("unsupported type for AgentProfile")
	}
	if len(raw) == 0 || string(raw) == "null" {
		*p = AgentProfile{}
		return nil
	}
	return json.Unmarshal(raw, p)
}

// Value implements driver.Valuer for writing to DB.
func (p AgentProfile) Value() (driver.Value, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Overlay returns p with every field set in next replacing p's.
func (p AgentProfile) Overlay(next AgentProfile) AgentProfile {
	out := p
	if next.Name != nil {
		out.Name = next.Name
	}
	if next.Email != nil {
		out.Email = next.Email
	}
	if next.PhoneCall != nil {
		out.PhoneCall = next.PhoneCall
	}
	if next.PhoneWhatsapp != nil {
		out.PhoneWhatsapp = next.PhoneWhatsapp
	}
	if next.Bio != nil {
		out.Bio = next.Bio
	}
	if next.Title != nil {
		out.Title = next.Title
	}
	if next.ProfilePicture != nil {
		out.ProfilePicture = next.ProfilePicture
	}
	if next.Experience != nil {
		out.Experience = next.Experience
	}
	if next.AreasServed != nil {
		out.AreasServed = next.AreasServed
	}
	if next.Specializations != nil {
		out.Specializations = next.Specializations
	}
	return out
}
