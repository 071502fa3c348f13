package query

import (
	"math"
	"net/url"

	"dwello-backend/internal/pkg/response"
	"dwello-backend/internal/pkg/validation"

	"gorm.io/gorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (page-1)*limit inside int range.
	MaxPage = math.MaxInt32
)

// Page is a validated page window.
type Page struct {
	Page  int
	Limit int
}

// PageFrom reads page and limit; missing, malformed or non-positive values fall back to
// defaults. limit is capped at MaxLimit and page at MaxPage.
func PageFrom(q url.Values) Page {
	return PageWithDefault(q, DefaultLimit)
}

// PageWithDefault is PageFrom with a caller-chosen default limit.
func PageWithDefault(q url.Values, defaultLimit int) Page {
	p := Page{Page: DefaultPage, Limit: defaultLimit}
	if n, ok := validation.ParseInt(q.Get("page")); ok && n > 0 {
		if n > MaxPage {
			n = MaxPage
		}
		p.Page = int(n)
	}
	if n, ok := validation.ParseInt(q.Get("limit")); ok && n > 0 {
		p.Limit = int(n)
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta builds the envelope metadata for total matching records.
func (p Page) Meta(total int64) response.Meta {
	pages := 0
	if total > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return response.Meta{Total: total, Page: p.Page, Limit: p.Limit, TotalPages: pages}
}

// Scope applies offset and limit.
func (p Page) Scope(db *gorm.DB) *gorm.DB {
	return db.Offset(p.Offset()).Limit(p.Limit)
}

// Paginate counts base, then loads one page of it into dest. base must carry the filters
// but no ordering, preloads or limits; order is applied to the page query only.
func Paginate(base *gorm.DB, p Page, order string, dest interface{}, preload ...func(*gorm.DB) *gorm.DB) (response.Meta, error) {
	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return response.Meta{}, err
	}
	tx := base.Session(&gorm.Session{})
	for _, fn := range preload {
		tx = fn(tx)
	}
	if order != "" {
		tx = tx.Order(order)
	}
	if err := p.Scope(tx).Find(dest).Error; err != nil {
		return response.Meta{}, err
	}
	return p.Meta(total), nil
}
