package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-ops-api/internal/application/auth"
	"github.com/jhoicas/retail-ops-api/internal/application/report"
	"github.com/jhoicas/retail-ops-api/internal/application/settings"
	"github.com/jhoicas/retail-ops-api/internal/application/transfer"
	"github.com/jhoicas/retail-ops-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	StockUC      *usecase.StockUseCase
	UserUC       *usecase.UserUseCase
	Intake       *transfer.IntakeUseCase
	Executor     *transfer.ExecutorUseCase
	History      *transfer.HistoryUseCase
	Reports      *report.HistoryReportUseCase
	Settings     *settings.Service
	HealthChecks map[string]HealthCheck
	JWTSecret    string
	Log          zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Health y auth (público)
	api.Get("/health", NewHealthHandler(deps.HealthChecks).Health)
	authHandler := NewAuthHandler(deps.AuthUC, deps.Log)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(AllRoles...)
	approvers := RequireRole(ApproverRoles...)
	settingsAdmins := RequireRole(SettingsRoles...)

	// Usuarios
	users := protected.Group("/users")
	uh := NewUserHandler(deps.UserUC, deps.Log)
	users.Get("/me", anyRole, uh.Me)
	users.Post("/", settingsAdmins, uh.Create)

	// Stock
	stock := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.StockUC, deps.Log)
	stock.Get("/", anyRole, stockHandler.List)
	stock.Post("/", approvers, stockHandler.Create)
	stock.Get("/:id", anyRole, stockHandler.GetByID)

	// Traslados: las rutas fijas van antes de /requests/:id
	transfers := protected.Group("/transfers")
	th := NewTransferHandler(deps.Intake, deps.Executor, deps.History, deps.Reports, deps.Log)
	transfers.Post("/requests", anyRole, th.Submit)
	transfers.Get("/requests", anyRole, th.ListRequests)
	transfers.Post("/requests/approve-batch", approvers, th.ApproveBatch)
	transfers.Post("/requests/auto-approve", approvers, th.AutoApprove)
	transfers.Get("/requests/:id", anyRole, th.GetRequest)
	transfers.Post("/requests/:id/approve", approvers, th.Approve)
	transfers.Post("/requests/:id/reject", approvers, th.Reject)
	transfers.Get("/history", anyRole, th.History)
	transfers.Get("/history/pdf", approvers, th.HistoryPDF)
	transfers.Get("/summary", anyRole, th.Summary)

	// Configuración de aprobación
	approval := protected.Group("/settings/approval")
	sh := NewSettingsHandler(deps.Settings, deps.Log)
	approval.Get("/", anyRole, sh.Get)
	approval.Put("/", settingsAdmins, sh.Update)
	approval.Post("/reload", settingsAdmins, sh.Reload)
}
