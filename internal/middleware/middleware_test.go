package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"dwello-backend/internal/infrastructure/identity"
	"dwello-backend/internal/pkg/apperrors"
	"dwello-backend/internal/pkg/constants"
	"dwello-backend/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var verifier = &identity.HMACVerifier{Secret: []byte("test-secret"), Issuer: "dwello"}

func token(t *testing.T, uid, role string, ttl time.Duration) string {
	t.Helper()
	tok, err := verifier.Issue(uid, uid+"@dwello.test", role, ttl)
	require.NoError(t, err)
	return tok
}

func newAuthApp(db *gorm.DB) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(Tracing())
	app.Get("/me", RequireAuth(verifier), func(c *fiber.Ctx) error {
		return c.JSON(GetActor(c))
	})
	app.Get("/admin", RequireAuth(verifier), RequireAdmin(db), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/owner", RequireAuth(verifier), ResolveRole(db), func(c *fiber.Ctx) error {
		return c.JSON(GetActor(c))
	})
	app.Use(NotFound)
	return app
}

func get(t *testing.T, app *fiber.App, path, bearer string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	var out map[string]interface{}
	_ = json.Unmarshal(body, &out)
	return resp.StatusCode, out
}

func TestRequireAuth(t *testing.T) {
	app := newAuthApp(nil)

	code, body := get(t, app, "/me", "")
	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.Equal(t, "No token provided", body["message"])

	code, body = get(t, app, "/me", "garbage")
	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.Equal(t, "Invalid token", body["message"])

	code, body = get(t, app, "/me", token(t, "u1", "", -time.Minute))
	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.Equal(t, "Token expired", body["message"])

	code, body = get(t, app, "/me", token(t, "u1", "", time.Hour))
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "u1", body["UID"])
	assert.Equal(t, false, body["IsAdmin"])
}

func TestRequireAdmin(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.User(t, db, "promoted", constants.RoleAdmin)
	testutil.User(t, db, "plain", constants.RoleUser)
	app := newAuthApp(db)

	code, _ := get(t, app, "/admin", token(t, "claimed", constants.RoleAdmin, time.Hour))
	assert.Equal(t, fiber.StatusOK, code)

	code, _ = get(t, app, "/admin", token(t, "promoted", "", time.Hour))
	assert.Equal(t, fiber.StatusOK, code)

	code, body := get(t, app, "/admin", token(t, "plain", "", time.Hour))
	assert.Equal(t, fiber.StatusForbidden, code)
	assert.Equal(t, "Admin access required", body["message"])

	code, _ = get(t, app, "/admin", "")
	assert.Equal(t, fiber.StatusUnauthorized, code)
}

func TestResolveRole(t *testing.T) {
	db := testutil.NewDB(t)
	testutil.User(t, db, "promoted", constants.RoleAdmin)
	testutil.User(t, db, "plain", constants.RoleUser)
	app := newAuthApp(db)

	code, body := get(t, app, "/owner", token(t, "promoted", "", time.Hour))
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, true, body["IsAdmin"])

	code, body = get(t, app, "/owner", token(t, "plain", "", time.Hour))
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, false, body["IsAdmin"])

	code, body = get(t, app, "/owner", token(t, "claimed", constants.RoleAdmin, time.Hour))
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, true, body["IsAdmin"])
}

func TestNotFoundAndErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/missing", func(c *fiber.Ctx) error { return apperrors.NotFound("Property not found") })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("pq: connection reset") })
	app.Get("/teapot", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
	app.Use(NotFound)

	code, body := get(t, app, "/nowhere", "")
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "Route not found", body["message"])

	code, body = get(t, app, "/missing", "")
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "Property not found", body["message"])

	code, body = get(t, app, "/boom", "")
	assert.Equal(t, fiber.StatusInternalServerError, code)
	assert.Equal(t, "Internal server error", body["message"])

	code, body = get(t, app, "/teapot", "")
	assert.Equal(t, fiber.StatusTeapot, code)
	assert.Equal(t, "short and stout", body["message"])
}

func TestHealthMarker(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Use(Tracing(), HealthMarker(rdb))
	app.Get("/api/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/api/fail", func(c *fiber.Ctx) error { return errors.New("db down") })
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("OK") })

	get(t, app, "/api/ok", "")
	get(t, app, "/api/fail", "")
	get(t, app, "/health", "")

	ctx := context.Background()
	total, err := rdb.Get(ctx, KeyReqTotal).Int()
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	failed, err := rdb.Get(ctx, KeyReqErrors).Int()
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	entries, err := rdb.LRange(ctx, KeyErrorLog, 0, -1).Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(entries[0]), &entry))
	assert.Equal(t, "/api/fail", entry["path"])
	assert.EqualValues(t, 500, entry["status"])
}

func TestHealthMarker_NilClientPassesThrough(t *testing.T) {
	app := fiber.New()
	app.Use(HealthMarker(nil))
	app.Get("/api/ok", func(c *fiber.Ctx) error { return c.SendString("ok") })
	code, _ := get(t, app, "/api/ok", "")
	assert.Equal(t, fiber.StatusOK, code)
}

func TestTracing_ReusesValidHeader(t *testing.T) {
	app := fiber.New()
	app.Use(Tracing())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(GetTraceID(c)) })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Trace-Id", "0b7c6f1e-2d4a-4b8e-9c1f-5a6b7c8d9e0f")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "0b7c6f1e-2d4a-4b8e-9c1f-5a6b7c8d9e0f", resp.Header.Get("X-Trace-Id"))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Trace-Id", "not-a-uuid")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", resp.Header.Get("X-Trace-Id"))
}
