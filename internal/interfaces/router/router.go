package router

import (
	"context"

	adminsvc "dwello-backend/internal/application/admin"
	agentsvc "dwello-backend/internal/application/agents"
	amenitysvc "dwello-backend/internal/application/amenities"
	blogsvc "dwello-backend/internal/application/blog"
	"dwello-backend/internal/application/events"
	healthsvc "dwello-backend/internal/application/health"
	propsvc "dwello-backend/internal/application/properties"
	"dwello-backend/internal/application/settings"
	usersvc "dwello-backend/internal/application/users"
	"dwello-backend/internal/config"
	"dwello-backend/internal/infrastructure/identity"
	adminhandler "dwello-backend/internal/interfaces/handlers/admin"
	agenthandler "dwello-backend/internal/interfaces/handlers/agents"
	amenityhandler "dwello-backend/internal/interfaces/handlers/amenities"
	bloghandler "dwello-backend/internal/interfaces/handlers/blog"
	healthhandler "dwello-backend/internal/interfaces/handlers/health"
	prophandler "dwello-backend/internal/interfaces/handlers/properties"
	userhandler "dwello-backend/internal/interfaces/handlers/users"
	"dwello-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the process-wide collaborators the HTTP surface is built on. Rdb, Events and
// Clients may be nil.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Rdb      *redis.Client
	Verifier identity.Verifier
	Events   *events.Dispatcher
	Clients  func() int
}

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) PingContext(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func CreateApp(d Deps) (*fiber.App, error) {
	settingsSvc, err := settings.NewService(d.DB)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.HealthMarker(d.Rdb))
	app.Use(middleware.CORS(d.Config.CORSOrigin))

	hh := &healthhandler.Handlers{Service: &healthsvc.Service{
		Rdb:          d.Rdb,
		DB:           &gormDBPinger{db: d.DB},
		Clients:      d.Clients,
		AdminKeyHash: d.Config.HealthAdminKeyHash,
	}}
	app.Get("/", hh.Banner)
	app.Get("/health", hh.Live)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Get("/health/reset", hh.Reset)

	auth := middleware.RequireAuth(d.Verifier)
	admin := middleware.RequireAdmin(d.DB)
	role := middleware.ResolveRole(d.DB)

	ph := &prophandler.Handlers{Service: &propsvc.Service{DB: d.DB, Events: d.Events}}
	agh := &agenthandler.Handlers{Service: &agentsvc.Service{DB: d.DB, Events: d.Events}}
	bh := &bloghandler.Handlers{Service: &blogsvc.Service{DB: d.DB, Events: d.Events}}
	amh := &amenityhandler.Handlers{Service: &amenitysvc.Service{DB: d.DB}}
	uh := &userhandler.Handlers{Service: &usersvc.Service{DB: d.DB, Events: d.Events}}
	adh := &adminhandler.Handlers{Service: &adminsvc.Service{DB: d.DB, Events: d.Events}, Settings: settingsSvc}

	api := app.Group("/api")

	// Properties
	pg := api.Group("/properties")
	pg.Get("/", ph.List)
	pg.Get("/:id", ph.Get)
	pg.Post("/", auth, role, ph.Create)
	pg.Put("/:id", auth, role, ph.Update)
	pg.Delete("/:id", auth, role, ph.Delete)

	// Agents; /me is registered ahead of /:idOrSlug
	ag := api.Group("/agents")
	ag.Get("/", agh.List)
	ag.Post("/", auth, agh.Register)
	ag.Get("/me", auth, agh.Me)
	ag.Put("/me", auth, agh.UpdateMe)
	ag.Post("/:id/approve-edits", auth, admin, agh.ApproveEdits)
	ag.Post("/:id/reject-edits", auth, admin, agh.RejectEdits)
	ag.Get("/:idOrSlug", agh.Get)

	// Blog
	api.Get("/blog", bh.List)
	api.Get("/blog/:slug", bh.GetBySlug)

	// Amenities
	api.Get("/amenities", amh.List)

	// Signed-in user
	ug := api.Group("/user", auth, role)
	ug.Get("/profile", uh.Profile)
	ug.Put("/profile", uh.UpdateProfile)
	ug.Get("/saved-properties", uh.SavedProperties)
	ug.Post("/saved-properties", uh.SaveProperty)
	ug.Delete("/saved-properties/:property_id", uh.RemoveSavedProperty)
	ug.Get("/activity", uh.Activity)
	ug.Post("/activity", uh.RecordActivity)
	ug.Get("/alerts", uh.Alerts)
	ug.Post("/alerts", uh.CreateAlert)
	ug.Put("/alerts/:id", uh.UpdateAlert)
	ug.Delete("/alerts/:id", uh.DeleteAlert)

	// Admin
	adm := api.Group("/admin", auth, admin)
	adm.Get("/agents", agh.AdminList)
	adm.Put("/agents/:id/approve", agh.Approve)
	adm.Put("/agents/:id/reject", agh.Reject)
	adm.Delete("/agents/:id", agh.Delete)

	adm.Get("/properties", ph.List)
	adm.Put("/properties/:id/approve", ph.Approve)
	adm.Put("/properties/:id/reject", ph.Reject)
	adm.Put("/properties/:id/feature", ph.ToggleFeatured)
	adm.Delete("/properties/:id", ph.Delete)

	adm.Get("/blog", bh.AdminList)
	adm.Post("/blog", bh.Create)
	adm.Put("/blog/:id", bh.Update)
	adm.Delete("/blog/:id", bh.Delete)

	adm.Post("/amenities", amh.Create)
	adm.Put("/amenities/:id", amh.Update)
	adm.Delete("/amenities/:id", amh.Delete)

	adm.Get("/users", adh.ListUsers)
	adm.Get("/users/:id", adh.GetUser)
	adm.Put("/users/:id/status", adh.UpdateUserStatus)
	adm.Put("/users/:id/role", adh.UpdateUserRole)
	adm.Delete("/users/:id", adh.DeleteUser)

	adm.Get("/settings", adh.GetSettings)
	adm.Put("/settings", adh.UpdateSettings)
	adm.Get("/dashboard", adh.Dashboard)

	app.Use(middleware.NotFound)

	return app, nil
}
