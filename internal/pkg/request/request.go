// Package request holds small helpers for reading Fiber requests.
package request

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"dwello-backend/internal/pkg/apperrors"
	"dwello-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Body decodes the JSON request body into dest. An empty body leaves dest untouched.
func Body(c *fiber.Ctx, dest interface{}) error {
	raw := c.Body()
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return apperrors.Validation("Invalid request body")
	}
	return nil
}

// UUIDParam parses the named route parameter as a UUID.
func UUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperrors.Validation("Invalid " + name)
	}
	return id, nil
}

// UintParam parses the named route parameter as a positive integer id.
func UintParam(c *fiber.Ctx, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || n == 0 {
		return 0, apperrors.Validation("Invalid " + name)
	}
	return uint(n), nil
}

// OptionalUUID parses s when non-nil. An empty string means "none".
func OptionalUUID(s *string, field string) (*uuid.UUID, bool, error) {
	if s == nil {
		return nil, false, nil
	}
	if *s == "" {
		return nil, true, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, true, apperrors.Validation("Invalid " + field)
	}
	return &id, true, nil
}

// QueryValues returns every query parameter, keeping repeated keys.
func QueryValues(c *fiber.Ctx) url.Values {
	out := url.Values{}
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		out.Add(string(k), string(v))
	})
	return out
}

// Number decodes from either a JSON number or a numeric string ("1,200" included);
// form clients send both.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	f, ok := validation.NumberFrom(raw)
	if !ok {
		return &strconv.NumError{Func: "Number", Num: strings.Trim(string(b), `"`), Err: strconv.ErrSyntax}
	}
	*n = Number(f)
	return nil
}

func (n *Number) Int64() *int64 {
	if n == nil {
		return nil
	}
	v := int64(*n)
	return &v
}

func (n *Number) Int() *int {
	if n == nil {
		return nil
	}
	v := int(*n)
	return &v
}

func (n *Number) Float64() *float64 {
	if n == nil {
		return nil
	}
	v := float64(*n)
	return &v
}
