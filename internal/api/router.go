package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/foundly/foundly-server/internal/api/recovery"
	"github.com/foundly/foundly-server/internal/auth"
	"github.com/foundly/foundly-server/internal/services"
)

// Deps carries everything the router needs. Handlers stay thin transports
// over the services.
type Deps struct {
	Users         *services.UserService
	Items         *services.ItemService
	Matches       *services.MatchService
	Claims        *services.ClaimService
	Notifications *services.NotificationService
	Authorizer    auth.Authorizer
	IsHealthy     func() bool
}

// NewRouter creates the HTTP router with all API routes.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()
	router.Use(recovery.Middleware)

	healthHandler := NewHealthHandler(d.IsHealthy)
	userHandler := NewUserHandler(d.Users, d.Authorizer)
	itemHandler := NewItemHandler(d.Items, d.Authorizer)
	matchHandler := NewMatchHandler(d.Matches, d.Claims, d.Authorizer)
	notifHandler := NewNotificationHandler(d.Notifications, d.Authorizer)

	// Health and metrics
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Users
	router.HandleFunc("/api/users", userHandler.CreateUser).Methods("POST")
	router.HandleFunc("/api/users/{userId}", userHandler.GetUser).Methods("GET")

	// Item reports and listings
	router.HandleFunc("/api/items/lost", itemHandler.ReportLost).Methods("POST")
	router.HandleFunc("/api/items/lost", itemHandler.ListLost).Methods("GET")
	router.HandleFunc("/api/items/lost/{itemId}", itemHandler.GetLost).Methods("GET")
	router.HandleFunc("/api/items/lost/{itemId}", itemHandler.UpdateLost).Methods("PATCH")
	router.HandleFunc("/api/items/lost/{itemId}", itemHandler.DeleteLost).Methods("DELETE")
	router.HandleFunc("/api/items/found", itemHandler.ReportFound).Methods("POST")
	router.HandleFunc("/api/items/found", itemHandler.ListFound).Methods("GET")
	router.HandleFunc("/api/items/found/{itemId}", itemHandler.GetFound).Methods("GET")
	router.HandleFunc("/api/items/found/{itemId}", itemHandler.UpdateFound).Methods("PATCH")
	router.HandleFunc("/api/items/found/{itemId}", itemHandler.DeleteFound).Methods("DELETE")

	// Caller-scoped views
	router.HandleFunc("/api/me/lost-items", itemHandler.MyLost).Methods("GET")
	router.HandleFunc("/api/me/found-items", itemHandler.MyFound).Methods("GET")
	router.HandleFunc("/api/me/matches", matchHandler.MyMatches).Methods("GET")
	router.HandleFunc("/api/me/claims", matchHandler.MyClaims).Methods("GET")
	router.HandleFunc("/api/me/claims/received", matchHandler.ReceivedClaims).Methods("GET")

	// Claim protocol
	router.HandleFunc("/api/claims/public", matchHandler.CreatePublicClaim).Methods("POST")
	router.HandleFunc("/api/claims/{claimId}", matchHandler.GetClaim).Methods("GET")
	router.HandleFunc("/api/matches/{matchId}/verify", matchHandler.VerifyClaim).Methods("POST")

	// Notifications
	router.HandleFunc("/api/notifications", notifHandler.List).Methods("GET")
	router.HandleFunc("/api/notifications", notifHandler.DeleteAll).Methods("DELETE")
	router.HandleFunc("/api/notifications/unread-count", notifHandler.UnreadCount).Methods("GET")
	router.HandleFunc("/api/notifications/read-all", notifHandler.MarkAllRead).Methods("POST")
	router.HandleFunc("/api/notifications/{notificationId}/read", notifHandler.MarkRead).Methods("POST")
	router.HandleFunc("/api/notifications/{notificationId}", notifHandler.Delete).Methods("DELETE")

	return router
}
