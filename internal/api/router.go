package api

import (
	"database/sql"
	"net/http"

	"github.com/erazemk/klet/internal/auth"
	"github.com/erazemk/klet/internal/cellar"
	"github.com/erazemk/klet/internal/labels"
	"github.com/erazemk/klet/internal/model"
)

// Deps are the collaborators the API needs.
type Deps struct {
	DB      *sql.DB
	Issuer  *auth.Issuer
	Service *cellar.Service
	// Events serves the change feed websocket. Nil disables the route.
	Events http.Handler
	Sheet  labels.Sheet
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	sheet := d.Sheet
	if sheet.Cols <= 0 || sheet.Rows <= 0 {
		sheet = labels.DefaultSheet
	}

	authHandler := &AuthHandler{DB: d.DB, Issuer: d.Issuer}
	usersHandler := &UsersHandler{DB: d.DB}
	locationsHandler := &LocationsHandler{DB: d.DB}
	unitsHandler := &UnitsHandler{DB: d.DB, Service: d.Service, Sheet: sheet}
	winesHandler := &WinesHandler{DB: d.DB}
	bottlesHandler := &BottlesHandler{DB: d.DB, Service: d.Service}
	statsHandler := &StatsHandler{Service: d.Service}

	authMW := AuthMiddleware(d.Issuer, d.DB)
	requireAdmin := RequireRole(model.RoleAdmin)
	requireManager := RequireRole(model.RoleManager)

	// Public: login.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)

	// Authenticated routes.
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("POST /api/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.Create))))
	mux.Handle("GET /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Get))))
	mux.Handle("PUT /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Update))))
	mux.Handle("PUT /api/users/{id}/password", authMW(requireAdmin(http.HandlerFunc(usersHandler.ResetPassword))))
	mux.Handle("DELETE /api/users/{id}", authMW(requireAdmin(http.HandlerFunc(usersHandler.Delete))))

	// Locations: read (all roles), write (manager+).
	mux.Handle("GET /api/locations", authMW(http.HandlerFunc(locationsHandler.List)))
	mux.Handle("POST /api/locations", authMW(requireManager(http.HandlerFunc(locationsHandler.Create))))
	mux.Handle("GET /api/locations/{id}", authMW(http.HandlerFunc(locationsHandler.Get)))
	mux.Handle("PUT /api/locations/{id}", authMW(requireManager(http.HandlerFunc(locationsHandler.Update))))
	mux.Handle("DELETE /api/locations/{id}", authMW(requireManager(http.HandlerFunc(locationsHandler.Delete))))

	// Storage units: read (all roles), write (manager+).
	mux.Handle("GET /api/units", authMW(http.HandlerFunc(unitsHandler.List)))
	mux.Handle("POST /api/units", authMW(requireManager(http.HandlerFunc(unitsHandler.Create))))
	mux.Handle("GET /api/units/{id}", authMW(http.HandlerFunc(unitsHandler.Get)))
	mux.Handle("PUT /api/units/{id}", authMW(requireManager(http.HandlerFunc(unitsHandler.Update))))
	mux.Handle("DELETE /api/units/{id}", authMW(requireManager(http.HandlerFunc(unitsHandler.Delete))))
	mux.Handle("GET /api/units/{id}/occupancy", authMW(http.HandlerFunc(unitsHandler.Occupancy)))
	mux.Handle("GET /api/units/{id}/scene", authMW(http.HandlerFunc(unitsHandler.Scene)))
	mux.Handle("GET /api/units/{id}/labels", authMW(http.HandlerFunc(unitsHandler.Labels)))

	// Wines: read (all roles), write (manager+).
	mux.Handle("GET /api/wines", authMW(http.HandlerFunc(winesHandler.List)))
	mux.Handle("POST /api/wines", authMW(requireManager(http.HandlerFunc(winesHandler.Create))))
	mux.Handle("GET /api/wines/{id}", authMW(http.HandlerFunc(winesHandler.Get)))
	mux.Handle("PUT /api/wines/{id}", authMW(requireManager(http.HandlerFunc(winesHandler.Update))))
	mux.Handle("DELETE /api/wines/{id}", authMW(requireManager(http.HandlerFunc(winesHandler.Delete))))
	mux.Handle("PUT /api/wines/{id}/image", authMW(requireManager(http.HandlerFunc(winesHandler.UploadImage))))
	mux.Handle("GET /api/wines/{id}/image", authMW(http.HandlerFunc(winesHandler.GetImage)))

	// Bottles (all roles).
	mux.Handle("GET /api/bottles", authMW(http.HandlerFunc(bottlesHandler.List)))
	mux.Handle("GET /api/bottles/{id}", authMW(http.HandlerFunc(bottlesHandler.Get)))
	mux.Handle("POST /api/stock", authMW(http.HandlerFunc(bottlesHandler.Stock)))
	mux.Handle("PUT /api/bottles/{id}/position", authMW(http.HandlerFunc(bottlesHandler.Move)))
	mux.Handle("POST /api/bottles/{id}/drag", authMW(http.HandlerFunc(bottlesHandler.Drag)))
	mux.Handle("POST /api/bottles/{id}/consume", authMW(http.HandlerFunc(bottlesHandler.Consume)))
	mux.Handle("POST /api/bottles/{id}/gift", authMW(http.HandlerFunc(bottlesHandler.Gift)))
	mux.Handle("DELETE /api/bottles/{id}", authMW(http.HandlerFunc(bottlesHandler.Delete)))
	mux.Handle("GET /api/bottles/{id}/history", authMW(http.HandlerFunc(bottlesHandler.History)))
	mux.Handle("GET /api/consumption", authMW(http.HandlerFunc(bottlesHandler.Consumption)))

	mux.Handle("GET /api/stats", authMW(http.HandlerFunc(statsHandler.Stats)))
	mux.Handle("GET /api/export", authMW(http.HandlerFunc(statsHandler.Export)))

	if d.Events != nil {
		mux.Handle("GET /api/events", authMW(d.Events))
	}

	return mux
}
