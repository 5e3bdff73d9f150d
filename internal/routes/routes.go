package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"farrier-backend/internal/handlers"
	"farrier-backend/internal/middleware"
)

// Handlers bundles everything the router wires up
type Handlers struct {
	Auth         *handlers.AuthHandler
	Customer     *handlers.CustomerHandler
	Horse        *handlers.HorseHandler
	Shoeing      *handlers.ShoeingHandler
	Approval     *handlers.ApprovalHandler
	Accounting   *handlers.AccountingHandler
	Note         *handlers.NoteHandler
	Notification *handlers.NotificationHandler
	Price        *handlers.PriceHandler
	Dashboard    *handlers.DashboardHandler
	Report       *handlers.ReportHandler
	Monitoring   *handlers.MonitoringHandler
	Health       *handlers.HealthHandler
}

// New builds the full route table. Everything under /api requires a valid
// token; admin-only subtrees additionally require the admin role.
func New(h *Handlers, authMw *middleware.AuthMiddleware) *mux.Router {
	r := mux.NewRouter()

	// Public
	r.HandleFunc("/health", h.Health.Check).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/auth/signup", h.Auth.Signup).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)
	r.HandleFunc("/auth/verify-2fa", h.Auth.Verify2FA).Methods(http.MethodPost)

	// Authenticated
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authMw.Authenticate)

	api.HandleFunc("/me", h.Auth.Me).Methods(http.MethodGet)
	api.HandleFunc("/users", h.Auth.ListUsers).Methods(http.MethodGet)
	api.HandleFunc("/2fa/setup", h.Auth.SetupTOTP).Methods(http.MethodPost)
	api.HandleFunc("/2fa/enable", h.Auth.EnableTOTP).Methods(http.MethodPost)
	api.HandleFunc("/2fa/disable", h.Auth.DisableTOTP).Methods(http.MethodPost)

	api.HandleFunc("/customers", h.Customer.List).Methods(http.MethodGet)
	api.HandleFunc("/customers", h.Customer.Create).Methods(http.MethodPost)
	api.HandleFunc("/customers/{id:[0-9]+}", h.Customer.Get).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id:[0-9]+}", h.Customer.Update).Methods(http.MethodPut)
	api.HandleFunc("/customers/{id:[0-9]+}", h.Customer.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/customers/{id:[0-9]+}/horses", h.Customer.Horses).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id:[0-9]+}/horses", h.Customer.LinkHorse).Methods(http.MethodPost)

	api.HandleFunc("/horses", h.Horse.List).Methods(http.MethodGet)
	api.HandleFunc("/horses", h.Horse.Create).Methods(http.MethodPost)
	api.HandleFunc("/horses/{id:[0-9]+}", h.Horse.Get).Methods(http.MethodGet)
	api.HandleFunc("/horses/{id:[0-9]+}", h.Horse.Update).Methods(http.MethodPut)
	api.HandleFunc("/horses/{id:[0-9]+}", h.Horse.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/horses/{id:[0-9]+}/owners", h.Horse.Owners).Methods(http.MethodGet)
	api.HandleFunc("/horses/{id:[0-9]+}/shoeings", h.Horse.History).Methods(http.MethodGet)
	api.HandleFunc("/horses/{id:[0-9]+}/notes", h.Horse.Notes).Methods(http.MethodGet)

	api.HandleFunc("/shoeings", h.Shoeing.List).Methods(http.MethodGet)
	api.HandleFunc("/shoeings", h.Shoeing.Create).Methods(http.MethodPost)
	api.HandleFunc("/shoeings/{id:[0-9]+}", h.Shoeing.Get).Methods(http.MethodGet)

	api.HandleFunc("/notes", h.Note.List).Methods(http.MethodGet)
	api.HandleFunc("/notes", h.Note.Create).Methods(http.MethodPost)

	api.HandleFunc("/notifications", h.Notification.List).Methods(http.MethodGet)
	api.HandleFunc("/notifications/count", h.Notification.UnreadCount).Methods(http.MethodGet)
	api.HandleFunc("/notifications/read-all", h.Notification.MarkAllRead).Methods(http.MethodPost)
	api.HandleFunc("/notifications/{id:[0-9]+}/read", h.Notification.MarkRead).Methods(http.MethodPost)
	api.HandleFunc("/notifications/{id:[0-9]+}", h.Notification.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/notifications/ws", h.Notification.Socket).Methods(http.MethodGet)

	api.HandleFunc("/locations", h.Price.ListLocations).Methods(http.MethodGet)
	api.HandleFunc("/prices", h.Price.ListPrices).Methods(http.MethodGet)
	api.HandleFunc("/prices/quote", h.Price.Quote).Methods(http.MethodGet)

	api.HandleFunc("/dashboard", h.Dashboard.Summary).Methods(http.MethodGet)

	api.HandleFunc("/accounting/connect", h.Accounting.Connect).Methods(http.MethodGet)
	api.HandleFunc("/accounting/exchange", h.Accounting.Exchange).Methods(http.MethodPost)
	api.HandleFunc("/accounting/status", h.Accounting.Status).Methods(http.MethodGet)
	api.HandleFunc("/accounting/disconnect", h.Accounting.Disconnect).Methods(http.MethodPost)
	api.HandleFunc("/accounting/customers", h.Accounting.Customers).Methods(http.MethodGet)
	api.HandleFunc("/accounting/invoices", h.Accounting.Invoices).Methods(http.MethodGet)

	// Admin-only
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(authMw.RequireRole("admin"))

	admin.HandleFunc("/approvals", h.Approval.PendingGroups).Methods(http.MethodGet)
	admin.HandleFunc("/approvals/accept-all", h.Approval.AcceptAll).Methods(http.MethodPost)
	admin.HandleFunc("/approvals/{id:[0-9]+}/accept", h.Approval.Accept).Methods(http.MethodPost)
	admin.HandleFunc("/approvals/{id:[0-9]+}/reject", h.Approval.Reject).Methods(http.MethodPost)
	admin.HandleFunc("/approvals/{id:[0-9]+}", h.Approval.Edit).Methods(http.MethodPut)
	admin.HandleFunc("/approvals/{id:[0-9]+}", h.Approval.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/approvals/{id:[0-9]+}/horse/accept", h.Approval.AcceptHorse).Methods(http.MethodPost)
	admin.HandleFunc("/approvals/{id:[0-9]+}/horse/reject", h.Approval.RejectHorse).Methods(http.MethodPost)

	admin.HandleFunc("/locations", h.Price.CreateLocation).Methods(http.MethodPost)
	admin.HandleFunc("/prices", h.Price.SetPrice).Methods(http.MethodPut)
	admin.HandleFunc("/reports/invoices/{number}", h.Report.InvoicePDF).Methods(http.MethodGet)
	admin.HandleFunc("/monitoring", h.Monitoring.Stats).Methods(http.MethodGet)

	return r
}
