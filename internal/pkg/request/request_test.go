package request

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"dwello-backend/internal/pkg/apperrors"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumber_AcceptsNumbersAndStrings(t *testing.T) {
	var body struct {
		Price *Number `json:"price"`
		Area  *Number `json:"area"`
		Beds  *Number `json:"bedrooms"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"price":"1,200","area":85.5}`), &body))
	assert.Equal(t, int64(1200), *body.Price.Int64())
	assert.Equal(t, 85.5, *body.Area.Float64())
	assert.Nil(t, body.Beds.Int())

	assert.Error(t, json.Unmarshal([]byte(`{"price":"cheap"}`), &body))
	assert.Error(t, json.Unmarshal([]byte(`{"price":true}`), &body))
}

func TestQueryValuesAndParams(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.Status(apperrors.StatusCode(err)).SendString(apperrors.PublicMessage(err))
	}})
	app.Get("/q", func(c *fiber.Ctx) error {
		return c.JSON(QueryValues(c))
	})
	app.Get("/p/:id/:n", func(c *fiber.Ctx) error {
		if _, err := UUIDParam(c, "id"); err != nil {
			return err
		}
		n, err := UintParam(c, "n")
		if err != nil {
			return err
		}
		return c.JSON(n)
	})
	app.Post("/b", func(c *fiber.Ctx) error {
		var in struct{ Name string }
		if err := Body(c, &in); err != nil {
			return err
		}
		return c.SendString(in.Name)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/q?amenities=1&amenities=2&region=Ashanti", nil))
	require.NoError(t, err)
	var q map[string][]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&q))
	assert.Equal(t, []string{"1", "2"}, q["amenities"])
	assert.Equal(t, []string{"Ashanti"}, q["region"])

	resp, err = app.Test(httptest.NewRequest("GET", "/p/not-a-uuid/1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/p/0b7c6f1e-2d4a-4b8e-9c1f-5a6b7c8d9e0f/0", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/p/0b7c6f1e-2d4a-4b8e-9c1f-5a6b7c8d9e0f/7", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req := httptest.NewRequest("POST", "/b", strings.NewReader(`{"Name":`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestOptionalUUID(t *testing.T) {
	id, provided, err := OptionalUUID(nil, "agent_id")
	assert.Nil(t, id)
	assert.False(t, provided)
	assert.NoError(t, err)

	empty := ""
	id, provided, err = OptionalUUID(&empty, "agent_id")
	assert.Nil(t, id)
	assert.True(t, provided)
	assert.NoError(t, err)

	bad := "x"
	_, _, err = OptionalUUID(&bad, "agent_id")
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}
