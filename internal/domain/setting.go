package domain

import (
	"time"

	"gorm.io/datatypes"
)

// Setting is a named JSON document of admin-editable configuration.
type Setting struct {
	Key       string         `gorm:"column:key;primaryKey" json:"key"`
	Value     datatypes.JSON `gorm:"column:value" json:"value"`
	UpdatedAt time.Time      `gorm:"column:updated_at" json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}
