package matching

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/imadgeboyega/kiekky-matching/internal/auth"
	"github.com/imadgeboyega/kiekky-matching/internal/common/logging"
	"github.com/imadgeboyega/kiekky-matching/internal/common/utils"
)

const defaultPageSize = 20

type Handler struct {
	engine MatchingEngine
}

func NewHandler(engine MatchingEngine) *Handler {
	return &Handler{engine: engine}
}

// Discover handles GET /discover
func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	params, err := parseDiscoverParams(r)
	if err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := utils.ValidateStruct(params); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	candidates, err := h.engine.FindCandidates(r.Context(), userID, params.Filters(), params.PageSize)
	if err != nil {
		h.respondWithEngineError(w, r, err)
		return
	}

	utils.SuccessResponse(w, DiscoverResponse{
		Candidates: candidates,
		Count:      len(candidates),
		PageSize:   params.PageSize,
		Offset:     params.Offset,
	}, http.StatusOK)
}

// GetCompatibility handles GET /compatibility/{userId}
func (h *Handler) GetCompatibility(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	candidateID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 64)
	if err != nil || candidateID <= 0 {
		utils.ErrorResponse(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	result, err := h.engine.CalculateCompatibility(r.Context(), userID, candidateID)
	if err != nil {
		h.respondWithEngineError(w, r, err)
		return
	}

	utils.SuccessResponse(w, result, http.StatusOK)
}

func (h *Handler) respondWithEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		utils.ErrorResponse(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidArgument):
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrDependencyUnavailable):
		logging.Ctx(r.Context()).Error().Err(err).Msg("Matching dependency unavailable")
		utils.ErrorResponse(w, "Matching is temporarily unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logging.Ctx(r.Context()).Debug().Err(err).Msg("Matching request cancelled")
		utils.ErrorResponse(w, "Request cancelled", http.StatusGatewayTimeout)
	default:
		logging.Ctx(r.Context()).Error().Err(err).Msg("Matching request failed")
		utils.ErrorResponse(w, "Failed to load candidates", http.StatusInternalServerError)
	}
}

func parseDiscoverParams(r *http.Request) (*DiscoverParams, error) {
	q := r.URL.Query()
	params := &DiscoverParams{PageSize: defaultPageSize}

	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("page_size must be an integer")
		}
		params.PageSize = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("offset must be an integer")
		}
		params.Offset = n
	}
	if v := q.Get("radius_km"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errors.New("radius_km must be a number")
		}
		params.RadiusKm = &f
	}
	if v := q.Get("min_age"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("min_age must be an integer")
		}
		params.MinAge = &n
	}
	if v := q.Get("max_age"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.New("max_age must be an integer")
		}
		params.MaxAge = &n
	}

	return params, nil
}
