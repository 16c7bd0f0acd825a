package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/roster-service/internal/api/http/handlers"
	"github.com/spec-kit/roster-service/internal/auth"
	"github.com/spec-kit/roster-service/internal/domain"
	"github.com/spec-kit/roster-service/internal/rbac"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Session        *handlers.SessionHandler
	Members        *handlers.MembersHandler
	Groups         *handlers.GroupsHandler
	Imports        *handlers.ImportsHandler
	AuthMiddleware *auth.Middleware
	Resolver       *rbac.Resolver
}

// RegisterRoutes wires HTTP routes. Every roster route is guarded by the
// capability the backing service also checks, so a denial surfaces before
// any payload is parsed.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/session/assert", cfg.Session.AssertRole)
	app.Get("/session", cfg.AuthMiddleware.Handle, auth.RequireAnyRole(), cfg.Session.CurrentRole)

	members := app.Group("/members", cfg.AuthMiddleware.Handle)
	members.Get("/", auth.RequireCapability(cfg.Resolver, domain.CapViewMembers), cfg.Members.ListMembers)
	members.Get("/export", auth.RequireCapability(cfg.Resolver, domain.CapExportMembers), cfg.Members.ExportMembers)
	members.Get("/:id", auth.RequireCapability(cfg.Resolver, domain.CapViewMembers), cfg.Members.GetMember)
	members.Post("/", auth.RequireCapability(cfg.Resolver, domain.CapEditMembers), cfg.Members.CreateMember)
	members.Put("/:id", auth.RequireCapability(cfg.Resolver, domain.CapEditMembers), cfg.Members.UpdateMember)
	members.Delete("/:id", auth.RequireCapability(cfg.Resolver, domain.CapDeleteMembers), cfg.Members.DeleteMember)

	groups := app.Group("/groups", cfg.AuthMiddleware.Handle)
	groups.Get("/", auth.RequireCapability(cfg.Resolver, domain.CapViewMembers), cfg.Groups.ListGroups)
	groups.Get("/:id", auth.RequireCapability(cfg.Resolver, domain.CapViewMembers), cfg.Groups.GetGroup)
	groups.Post("/", auth.RequireCapability(cfg.Resolver, domain.CapManageGroups), cfg.Groups.CreateGroup)
	groups.Put("/:id", auth.RequireCapability(cfg.Resolver, domain.CapManageGroups), cfg.Groups.RenameGroup)
	groups.Delete("/:id", auth.RequireCapability(cfg.Resolver, domain.CapManageGroups), cfg.Groups.DeleteGroup)
	groups.Post("/:id/subgroups", auth.RequireCapability(cfg.Resolver, domain.CapManageGroups), cfg.Groups.AddSubgroup)
	groups.Delete("/:id/subgroups/:name", auth.RequireCapability(cfg.Resolver, domain.CapManageGroups), cfg.Groups.RemoveSubgroup)

	imports := app.Group("/imports", cfg.AuthMiddleware.Handle, auth.RequireCapability(cfg.Resolver, domain.CapImportMembers))
	imports.Post("/preview", cfg.Imports.Preview)
	imports.Post("/:id/confirm", cfg.Imports.Confirm)
	imports.Delete("/:id", cfg.Imports.Discard)
}
