// Package query turns request parameters into filter predicates and page windows.
package query

import (
	"fmt"
	"net/url"
	"strings"

	"dwello-backend/internal/pkg/validation"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Op is a comparison in a Condition.
type Op int

const (
	OpEq Op = iota
	OpGte
	OpLte
	// OpHasAmenity matches properties associated with the amenity id in Value.
	OpHasAmenity
)

// Condition is one field -> comparator -> value constraint.
type Condition struct {
	Field string
	Op    Op
	Value interface{}
}

// Spec is a conjunction of conditions. The zero value matches everything.
type Spec struct {
	Conditions []Condition
}

func (s *Spec) Add(field string, op Op, value interface{}) {
	s.Conditions = append(s.Conditions, Condition{Field: field, Op: op, Value: value})
}

func (s Spec) Empty() bool {
	return len(s.Conditions) == 0
}

const hasAmenitySQL = "EXISTS (SELECT 1 FROM property_amenities pa WHERE pa.property_id = properties.id AND pa.amenity_id = ?)"

// ToSql renders the spec as a WHERE fragment with ? placeholders.
func (s Spec) ToSql() (string, []interface{}, error) {
	and := sq.And{}
	for _, c := range s.Conditions {
		switch c.Op {
		case OpEq:
			and = append(and, sq.Eq{c.Field: c.Value})
		case OpGte:
			and = append(and, sq.GtOrEq{c.Field: c.Value})
		case OpLte:
			and = append(and, sq.LtOrEq{c.Field: c.Value})
		case OpHasAmenity:
			and = append(and, sq.Expr(hasAmenitySQL, c.Value))
		default:
			return "", nil, fmt.Errorf("query: unknown op %d on %s", c.Op, c.Field)
		}
	}
	return and.ToSql()
}

// Apply narrows db by the spec.
func (s Spec) Apply(db *gorm.DB) (*gorm.DB, error) {
	if s.Empty() {
		return db, nil
	}
	where, args, err := s.ToSql()
	if err != nil {
		return nil, err
	}
	return db.Where(where, args...), nil
}

// PropertySpec builds the property list filter. Malformed numeric values are ignored.
// bedrooms and bathrooms are lower bounds; every listed amenity must be present.
func PropertySpec(q url.Values) Spec {
	var s Spec
	region := q.Get("region")
	if region == "" {
		region = q.Get("location")
	}
	if region != "" {
		s.Add("properties.region", OpEq, region)
	}
	for _, key := range []string{"property_type", "listing_type", "status"} {
		if v := q.Get(key); v != "" {
			s.Add("properties."+key, OpEq, v)
		}
	}
	if _, ok := q["is_featured"]; ok {
		s.Add("properties.is_featured", OpEq, q.Get("is_featured") == "true")
	}
	if v, ok := validation.ParseFloat(q.Get("minPrice")); ok {
		s.Add("properties.price", OpGte, v)
	}
	if v, ok := validation.ParseFloat(q.Get("maxPrice")); ok {
		s.Add("properties.price", OpLte, v)
	}
	if v, ok := validation.ParseInt(q.Get("bedrooms")); ok {
		s.Add("properties.bedrooms", OpGte, v)
	}
	if v, ok := validation.ParseInt(q.Get("bathrooms")); ok {
		s.Add("properties.bathrooms", OpGte, v)
	}
	if v, ok := validation.ParseFloat(q.Get("minArea")); ok {
		s.Add("properties.area", OpGte, v)
	}
	if v, ok := validation.ParseFloat(q.Get("maxArea")); ok {
		s.Add("properties.area", OpLte, v)
	}
	if id, err := uuid.Parse(q.Get("agent_id")); err == nil {
		s.Add("properties.agent_id", OpEq, id.String())
	}
	for _, id := range AmenityIDs(q) {
		s.Add("properties.id", OpHasAmenity, id)
	}
	return s
}

// AmenityIDs collects amenity ids from repeated, bracketed or comma-separated parameters.
// Duplicates and non-positive or malformed entries are dropped.
func AmenityIDs(q url.Values) []int64 {
	var raw []string
	raw = append(raw, q["amenities"]...)
	raw = append(raw, q["amenities[]"]...)
	seen := map[int64]bool{}
	var ids []int64
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			id, ok := validation.ParseInt(part)
			if !ok || id <= 0 || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
