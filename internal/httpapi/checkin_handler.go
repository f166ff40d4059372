package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/salesquest/gamification-service/internal/apierror"
	"github.com/salesquest/gamification-service/internal/checkin"
	"github.com/salesquest/gamification-service/internal/gamification"
)

// checkinSaveResponse bundles the saved record with the engine outcomes so
// the client can show points and streak feedback from a single round trip.
type checkinSaveResponse struct {
	CheckIn *checkin.CheckIn          `json:"check_in"`
	Award   gamification.AwardResult  `json:"award"`
	Streak  gamification.StreakResult `json:"streak"`
}

func saveMorning(svcs Services, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		if userID == "" {
			writeError(w, r, apierror.CodeUnauthorized, "missing user ID")
			return
		}

		var input checkin.MorningInput
		if err := decodeBody(w, r, &input); err != nil {
			writeError(w, r, apierror.CodeBadRequest, "invalid request body")
			return
		}

		ctx, cancel := requestContext(r)
		defer cancel()

		record, err := svcs.CheckIns.SaveMorning(ctx, userID, input)
		if err != nil {
			if errors.Is(err, checkin.ErrInvalidInput) {
				writeError(w, r, apierror.CodeBadRequest, err.Error())
				return
			}
			logRequestError(r.Context(), logger, "failed to save morning check-in", err, userID)
			writeError(w, r, apierror.CodeInternal, "failed to save check-in")
			return
		}

		finishCheckinSave(w, r, svcs, logger, userID, record, gamification.ActivityMorningIntentions)
	}
}

func saveEvening(svcs Services, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		if userID == "" {
			writeError(w, r, apierror.CodeUnauthorized, "missing user ID")
			return
		}

		var input checkin.EveningInput
		if err := decodeBody(w, r, &input); err != nil {
			writeError(w, r, apierror.CodeBadRequest, "invalid request body")
			return
		}

		ctx, cancel := requestContext(r)
		defer cancel()

		record, err := svcs.CheckIns.SaveEvening(ctx, userID, input)
		if err != nil {
			if errors.Is(err, checkin.ErrInvalidInput) {
				writeError(w, r, apierror.CodeBadRequest, err.Error())
				return
			}
			logRequestError(r.Context(), logger, "failed to save evening check-in", err, userID)
			writeError(w, r, apierror.CodeInternal, "failed to save check-in")
			return
		}

		finishCheckinSave(w, r, svcs, logger, userID, record, gamification.ActivityEveningWrap)
	}
}

// finishCheckinSave runs the points engine and the streak calculator after a
// successful save, mirroring the dashboard's save flow.
func finishCheckinSave(w http.ResponseWriter, r *http.Request, svcs Services, logger *slog.Logger, userID string, record *checkin.CheckIn, activity gamification.ActivityType) {
	ctx, cancel := requestContext(r)
	defer cancel()

	award, err := svcs.Gamification.AwardDailyActivityPoints(ctx, userID, activity)
	if err != nil {
		logRequestError(r.Context(), logger, "failed to award points", err, userID)
		writeError(w, r, apierror.CodeInternal, "check-in saved but points could not be awarded")
		return
	}

	streak, err := svcs.Gamification.CalculateStreakForToday(ctx, userID)
	if err != nil {
		logRequestError(r.Context(), logger, "failed to recalculate streak", err, userID)
		writeError(w, r, apierror.CodeInternal, "check-in saved but streak could not be updated")
		return
	}

	writeJSON(w, http.StatusOK, checkinSaveResponse{CheckIn: record, Award: award, Streak: streak})
}

func getToday(svcs Services, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		if userID == "" {
			writeError(w, r, apierror.CodeUnauthorized, "missing user ID")
			return
		}

		ctx, cancel := requestContext(r)
		defer cancel()

		record, err := svcs.CheckIns.GetToday(ctx, userID)
		if errors.Is(err, checkin.ErrNotFound) {
			writeError(w, r, apierror.CodeNotFound, "no check-in recorded today")
			return
		}
		if err != nil {
			logRequestError(r.Context(), logger, "failed to load today's check-in", err, userID)
			writeError(w, r, apierror.CodeInternal, "failed to load check-in")
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

func getByDate(svcs Services, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		if userID == "" {
			writeError(w, r, apierror.CodeUnauthorized, "missing user ID")
			return
		}

		day, err := time.Parse(dateLayout, chi.URLParam(r, "date"))
		if err != nil {
			writeError(w, r, apierror.CodeBadRequest, "date must be yyyy-mm-dd")
			return
		}

		ctx, cancel := requestContext(r)
		defer cancel()

		record, err := svcs.CheckIns.GetByDate(ctx, userID, day)
		if errors.Is(err, checkin.ErrNotFound) {
			writeError(w, r, apierror.CodeNotFound, "no check-in recorded for that day")
			return
		}
		if err != nil {
			logRequestError(r.Context(), logger, "failed to load check-in", err, userID)
			writeError(w, r, apierror.CodeInternal, "failed to load check-in")
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

func listHistory(svcs Services, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		if userID == "" {
			writeError(w, r, apierror.CodeUnauthorized, "missing user ID")
			return
		}

		days := 0
		if raw := r.URL.Query().Get("days"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				writeError(w, r, apierror.CodeBadRequest, "days must be a positive integer")
				return
			}
			days = parsed
		}

		ctx, cancel := requestContext(r)
		defer cancel()

		records, err := svcs.CheckIns.History(ctx, userID, days)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to load check-in history", err, userID)
			writeError(w, r, apierror.CodeInternal, "failed to load check-ins")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"check_ins": records})
	}
}
