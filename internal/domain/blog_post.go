package domain

import (
	"time"

	"github.com/google/uuid"
)

type BlogPost struct {
	ID               uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title            string     `gorm:"column:title;not null" json:"title"`
	Slug             string     `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Content          string     `gorm:"column:content;type:text" json:"content"`
	Excerpt          string     `gorm:"column:excerpt;type:text" json:"excerpt"`
	Author           string     `gorm:"column:author" json:"author"`
	Category         string     `gorm:"column:category;index" json:"category"`
	FeaturedImageURL string     `gorm:"column:featured_image_url" json:"featured_image_url"`
	Tags             StringList `gorm:"column:tags;type:json" json:"tags"`
	Status           string     `gorm:"column:status;type:varchar(20);default:'published';index" json:"status"`
	AgentID          *uuid.UUID `gorm:"column:agent_id;type:uuid;index" json:"agent_id"`
	Agent            *Agent     `gorm:"foreignKey:AgentID" json:"agent,omitempty"`
	CreatedAt        time.Time  `gorm:"column:created_at;index" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at" json:"updated_at"`
}

func (BlogPost) TableName() string {
	return "blog_posts"
}
