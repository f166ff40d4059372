package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/salesquest/gamification-service/internal/apierror"
	"github.com/salesquest/gamification-service/internal/gamification"
	"github.com/salesquest/gamification-service/internal/leaderboard"
)

func getProgress(svcs Services, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		if userID == "" {
			writeError(w, r, apierror.CodeUnauthorized, "missing user ID")
			return
		}

		ctx, cancel := requestContext(r)
		defer cancel()

		summary, err := svcs.Gamification.GetProgress(ctx, userID)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to load progress", err, userID)
			writeError(w, r, apierror.CodeInternal, "failed to load progress")
			return
		}
		writeJSON(w, http.StatusOK, summary)
	}
}

func getStreak(svcs Services, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		if userID == "" {
			writeError(w, r, apierror.CodeUnauthorized, "missing user ID")
			return
		}

		ctx, cancel := requestContext(r)
		defer cancel()

		result, err := svcs.Gamification.CalculateStreakForToday(ctx, userID)
		if err != nil {
			if errors.Is(err, gamification.ErrCheckInMissing) {
				writeError(w, r, apierror.CodeNotFound, "no check-in recorded today")
				return
			}
			logRequestError(r.Context(), logger, "failed to calculate streak", err, userID)
			writeError(w, r, apierror.CodeInternal, "failed to calculate streak")
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

type leaderboardResponse struct {
	Season  gamification.Season `json:"season"`
	Entries []leaderboard.Entry `json:"entries"`
	Me      *leaderboard.Entry  `json:"me,omitempty"`
}

func getLeaderboard(svcs Services, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		if userID == "" {
			writeError(w, r, apierror.CodeUnauthorized, "missing user ID")
			return
		}
		if svcs.Board == nil {
			writeError(w, r, apierror.CodeNotFound, "leaderboard is not enabled")
			return
		}

		limit := 10
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 || parsed > 100 {
				writeError(w, r, apierror.CodeBadRequest, "limit must be between 1 and 100")
				return
			}
			limit = parsed
		}

		ctx, cancel := requestContext(r)
		defer cancel()

		season := svcs.Gamification.Season()
		entries, err := svcs.Board.Top(ctx, season.ID, limit)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to load leaderboard", err, userID)
			writeError(w, r, apierror.CodeInternal, "failed to load leaderboard")
			return
		}

		me, err := svcs.Board.Position(ctx, season.ID, userID)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to load leaderboard position", err, userID)
			writeError(w, r, apierror.CodeInternal, "failed to load leaderboard")
			return
		}

		writeJSON(w, http.StatusOK, leaderboardResponse{Season: season, Entries: entries, Me: me})
	}
}
