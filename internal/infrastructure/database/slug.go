package database

import (
	"fmt"

	"gorm.io/gorm"
)

// UniqueSlug returns base, or base-2, base-3 ... whichever is free in model's slug column.
// The row identified by excludeID (if non-nil) does not count as a collision.
func UniqueSlug(tx *gorm.DB, model interface{}, base string, excludeID interface{}) (string, error) {
	if base == "" {
		base = "item"
	}
	candidate := base
	for i := 2; ; i++ {
		q := tx.Model(model).Where("slug = ?", candidate)
		if excludeID != nil {
			q = q.Where("id <> ?", excludeID)
		}
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return "", err
		}
		if n == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
