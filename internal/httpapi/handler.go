package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/salesquest/gamification-service/internal/apierror"
	"github.com/salesquest/gamification-service/internal/auth"
	"github.com/salesquest/gamification-service/internal/checkin"
	"github.com/salesquest/gamification-service/internal/gamification"
	"github.com/salesquest/gamification-service/internal/leaderboard"
	"github.com/salesquest/gamification-service/internal/teamgoal"
)

const (
	serviceTimeout = 8 * time.Second
	dateLayout     = "2006-01-02"
	maxBodyBytes   = 64 * 1024 // request bodies are small JSON forms
)

// Services bundles the domain services the handlers dispatch to.
type Services struct {
	CheckIns     *checkin.Service
	Gamification *gamification.Service
	TeamGoals    *teamgoal.Service
	Board        leaderboard.Board
}

// RegisterRoutes registers all gamification routes.
func RegisterRoutes(r chi.Router, svcs Services, logger *slog.Logger) {
	r.Route("/v1/checkins", func(r chi.Router) {
		r.Use(middleware.Recoverer)

		r.Post("/morning", saveMorning(svcs, logger))
		r.Post("/evening", saveEvening(svcs, logger))
		r.Get("/today", getToday(svcs, logger))
		r.Get("/{date}", getByDate(svcs, logger))
		r.Get("/", listHistory(svcs, logger))
	})

	r.Route("/v1/progress", func(r chi.Router) {
		r.Use(middleware.Recoverer)
		r.Get("/me", getProgress(svcs, logger))
	})

	r.Route("/v1/streak", func(r chi.Router) {
		r.Use(middleware.Recoverer)
		r.Get("/me", getStreak(svcs, logger))
	})

	r.Route("/v1/leaderboard", func(r chi.Router) {
		r.Use(middleware.Recoverer)
		r.Get("/", getLeaderboard(svcs, logger))
	})

	r.Route("/v1/teams/{teamID}/goals", func(r chi.Router) {
		r.Use(middleware.Recoverer)
		r.Post("/", createTeamGoal(svcs, logger))
		r.Get("/", listTeamGoals(svcs, logger))
	})

	r.Route("/v1/goals/{goalID}", func(r chi.Router) {
		r.Use(middleware.Recoverer)
		r.Get("/progress", getGoalProgress(svcs, logger))
		r.Put("/members", updateMemberInclusion(svcs, logger))
		r.Post("/progress", recordGoalProgress(svcs, logger))
	})

	r.Route("/v1/member-goals/{memberGoalID}", func(r chi.Router) {
		r.Use(middleware.Recoverer)
		r.Patch("/target", updatePersonalTarget(svcs, logger))
	})
}

// requestUserID resolves the caller from the auth middleware, falling back to
// the X-User-ID header for internal calls.
func requestUserID(r *http.Request) string {
	if user, ok := auth.UserFromContext(r.Context()); ok && user.UserID != "" {
		return user.UserID
	}
	return r.Header.Get("X-User-ID")
}

func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), serviceTimeout)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, r *http.Request, code, message string) {
	writeJSON(w, apierror.ToStatusCode(code), apierror.ErrorResponse{
		Code:      code,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

func logRequestError(ctx context.Context, logger *slog.Logger, message string, err error, userID string) {
	if logger == nil || err == nil {
		return
	}
	attrs := []any{
		slog.String("userId", userID),
		slog.Any("error", err),
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		attrs = append(attrs, slog.String("requestId", reqID))
	}
	logger.Error(message, attrs...)
}
