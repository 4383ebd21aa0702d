package matching

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
	"github.com/gorilla/mux"

	"github.com/imadgeboyega/kiekky-matching/internal/auth"
	"github.com/imadgeboyega/kiekky-matching/internal/common/utils"
)

// RateLimit caps requests per authenticated user. Zero Requests disables it.
type RateLimit struct {
	Requests int
	Window   time.Duration
}

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware, limit RateLimit) {
	api := router.PathPrefix("/api/v1/matching").Subrouter()
	api.Use(authMiddleware.Authenticate)
	if limit.Requests > 0 {
		api.Use(httprate.Limit(
			limit.Requests,
			limit.Window,
			httprate.WithKeyFuncs(requesterKey),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				utils.ErrorResponse(w, "Too many requests", http.StatusTooManyRequests)
			}),
		))
	}

	api.HandleFunc("/discover", handler.Discover).Methods("GET")
	api.HandleFunc("/compatibility/{userId}", handler.GetCompatibility).Methods("GET")
}

// requesterKey buckets by user, falling back to client IP.
func requesterKey(r *http.Request) (string, error) {
	if userID, ok := auth.GetUserIDFromContext(r.Context()); ok {
		return "user:" + strconv.FormatInt(userID, 10), nil
	}
	return httprate.KeyByIP(r)
}
