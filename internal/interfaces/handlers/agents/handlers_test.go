package agents

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	agentsvc "dwello-backend/internal/application/agents"
	"dwello-backend/internal/domain"
	"dwello-backend/internal/middleware"
	"dwello-backend/internal/pkg/constants"
	"dwello-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAgentsTest(t *testing.T) (*fiber.App, *gorm.DB) {
	db := testutil.NewDB(t)
	h := &Handlers{Service: &agentsvc.Service{DB: db}}
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	auth := middleware.RequireAuth(testutil.Verifier)
	admin := middleware.RequireAdmin(db)
	app.Get("/agents", h.List)
	app.Post("/agents", auth, h.Register)
	app.Get("/agents/me", auth, h.Me)
	app.Put("/agents/me", auth, h.UpdateMe)
	app.Post("/agents/:id/approve-edits", auth, admin, h.ApproveEdits)
	app.Post("/agents/:id/reject-edits", auth, admin, h.RejectEdits)
	app.Get("/agents/:idOrSlug", h.Get)
	app.Get("/admin/agents", auth, admin, h.AdminList)
	app.Put("/admin/agents/:id/approve", auth, admin, h.Approve)
	app.Put("/admin/agents/:id/reject", auth, admin, h.Reject)
	app.Delete("/admin/agents/:id", auth, admin, h.Delete)
	return app, db
}

func do(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestRegisterAndSelfService(t *testing.T) {
	app, _ := setupAgentsTest(t)
	tok := testutil.Token(t, "kofi", "")

	code, out := do(t, app, "POST", "/agents", tok, map[string]interface{}{
		"name": "Kofi Mensah", "phone_call": "+233200000000", "areasServed": []string{"Osu", "Labone"},
	})
	require.Equal(t, fiber.StatusCreated, code)
	assert.Equal(t, "kofi-mensah", out["slug"])
	assert.Equal(t, constants.AgentPending, out["status"])
	assert.Equal(t, []interface{}{"Osu", "Labone"}, out["areasServed"])

	code, out = do(t, app, "POST", "/agents", tok, map[string]interface{}{"name": "Again"})
	assert.Equal(t, fiber.StatusConflict, code)
	assert.Equal(t, "Agent already registered", out["message"])

	code, out = do(t, app, "GET", "/agents/me", tok, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "Kofi Mensah", out["name"])

	code, _ = do(t, app, "GET", "/agents/me", testutil.Token(t, "nobody", ""), nil)
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestEditStagingFlow(t *testing.T) {
	app, db := setupAgentsTest(t)
	a := testutil.Agent(t, db, "ama", constants.AgentApproved)
	tok := testutil.Token(t, "ama", "")
	admin := testutil.Token(t, "root", constants.RoleAdmin)

	code, out := do(t, app, "PUT", "/agents/me", tok, map[string]interface{}{"bio": "Ten years in Accra"})
	require.Equal(t, fiber.StatusAccepted, code)
	assert.Equal(t, constants.AgentPending, out["status"])
	assert.Equal(t, "Ten years in Accra", out["pending_profile_edits"].(map[string]interface{})["bio"])

	// still publicly visible while the edit is reviewed, with the live bio
	code, out = do(t, app, "GET", "/agents/"+a.Slug, "", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "", out["bio"])

	code, _ = do(t, app, "POST", "/agents/"+a.ID.String()+"/approve-edits", tok, nil)
	assert.Equal(t, fiber.StatusForbidden, code)

	code, out = do(t, app, "POST", "/agents/"+a.ID.String()+"/approve-edits", admin, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "Ten years in Accra", out["bio"])
	assert.Equal(t, constants.AgentApproved, out["status"])
	assert.Nil(t, out["pending_profile_edits"])

	code, out = do(t, app, "POST", "/agents/"+a.ID.String()+"/reject-edits", admin, nil)
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "No pending profile edits", out["message"])
}

func TestAdminAgentRoutes(t *testing.T) {
	app, db := setupAgentsTest(t)
	pending := testutil.Agent(t, db, "p1", constants.AgentPending)
	testutil.Agent(t, db, "a1", constants.AgentApproved)
	p := testutil.Property(t, db, func(p *domain.Property) { p.AgentID = &pending.ID })
	admin := testutil.Token(t, "root", constants.RoleAdmin)

	code, out := do(t, app, "GET", "/agents", "", nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Len(t, out["data"], 1)

	code, out = do(t, app, "GET", "/admin/agents?status=pending", admin, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Len(t, out["data"], 1)

	code, out = do(t, app, "PUT", "/admin/agents/"+pending.ID.String()+"/approve", admin, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, constants.AgentApproved, out["agent"].(map[string]interface{})["status"])

	code, out = do(t, app, "DELETE", "/admin/agents/"+pending.ID.String(), admin, nil)
	require.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "Agent deleted successfully", out["message"])

	var reloaded domain.Property
	require.NoError(t, db.First(&reloaded, "id = ?", p.ID).Error)
	assert.Nil(t, reloaded.AgentID)
}
