package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/salesquest/gamification-service/internal/apierror"
	"github.com/salesquest/gamification-service/internal/teamgoal"
)

func createTeamGoal(svcs Services, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		if userID == "" {
			writeError(w, r, apierror.CodeUnauthorized, "missing user ID")
			return
		}
		teamID := chi.URLParam(r, "teamID")

		var input teamgoal.CreateGoalInput
		if err := decodeBody(w, r, &input); err != nil {
			writeError(w, r, apierror.CodeBadRequest, "invalid request body")
			return
		}

		ctx, cancel := requestContext(r)
		defer cancel()

		goalID, err := svcs.TeamGoals.CreateTeamGoal(ctx, input, userID, teamID)
		if err != nil {
			writeTeamGoalError(w, r, logger, "failed to create team goal", err, userID)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"goal_id": goalID})
	}
}

func listTeamGoals(svcs Services, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		if userID == "" {
			writeError(w, r, apierror.CodeUnauthorized, "missing user ID")
			return
		}
		teamID := chi.URLParam(r, "teamID")

		ctx, cancel := requestContext(r)
		defer cancel()

		views, err := svcs.TeamGoals.GetTeamGoals(ctx, teamID, userID)
		if err != nil {
			writeTeamGoalError(w, r, logger, "failed to list team goals", err, userID)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"goals": views})
	}
}

func getGoalProgress(svcs Services, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		if userID == "" {
			writeError(w, r, apierror.CodeUnauthorized, "missing user ID")
			return
		}
		goalID := chi.URLParam(r, "goalID")

		ctx, cancel := requestContext(r)
		defer cancel()

		view, err := svcs.TeamGoals.GetGoalProgress(ctx, goalID, userID)
		if err != nil {
			writeTeamGoalError(w, r, logger, "failed to load goal progress", err, userID)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func updateMemberInclusion(svcs Services, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		if userID == "" {
			writeError(w, r, apierror.CodeUnauthorized, "missing user ID")
			return
		}
		goalID := chi.URLParam(r, "goalID")

		var body struct {
			IncludedMembers    []string `json:"included_members"`
			LeaderParticipates bool     `json:"leader_participates"`
		}
		if err := decodeBody(w, r, &body); err != nil {
			writeError(w, r, apierror.CodeBadRequest, "invalid request body")
			return
		}

		ctx, cancel := requestContext(r)
		defer cancel()

		goal, err := svcs.TeamGoals.UpdateMemberInclusion(ctx, goalID, body.IncludedMembers, body.LeaderParticipates, userID)
		if err != nil {
			writeTeamGoalError(w, r, logger, "failed to update member inclusion", err, userID)
			return
		}
		writeJSON(w, http.StatusOK, goal)
	}
}

func updatePersonalTarget(svcs Services, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		if userID == "" {
			writeError(w, r, apierror.CodeUnauthorized, "missing user ID")
			return
		}
		memberGoalID := chi.URLParam(r, "memberGoalID")

		var body struct {
			Target int `json:"target"`
		}
		if err := decodeBody(w, r, &body); err != nil {
			writeError(w, r, apierror.CodeBadRequest, "invalid request body")
			return
		}

		ctx, cancel := requestContext(r)
		defer cancel()

		mg, err := svcs.TeamGoals.UpdatePersonalTarget(ctx, memberGoalID, body.Target, userID)
		if err != nil {
			writeTeamGoalError(w, r, logger, "failed to update personal target", err, userID)
			return
		}
		writeJSON(w, http.StatusOK, mg)
	}
}

func recordGoalProgress(svcs Services, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := requestUserID(r)
		if userID == "" {
			writeError(w, r, apierror.CodeUnauthorized, "missing user ID")
			return
		}
		goalID := chi.URLParam(r, "goalID")

		var body struct {
			Value int    `json:"value"`
			Date  string `json:"date"`
		}
		if err := decodeBody(w, r, &body); err != nil {
			writeError(w, r, apierror.CodeBadRequest, "invalid request body")
			return
		}

		var date time.Time
		if body.Date != "" {
			parsed, err := time.Parse(dateLayout, body.Date)
			if err != nil {
				writeError(w, r, apierror.CodeBadRequest, "date must be yyyy-mm-dd")
				return
			}
			date = parsed
		}

		ctx, cancel := requestContext(r)
		defer cancel()

		mg, goal, err := svcs.TeamGoals.RecordProgress(ctx, userID, goalID, body.Value, date)
		if err != nil {
			writeTeamGoalError(w, r, logger, "failed to record progress", err, userID)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"member_goal": mg,
			"goal":        goal,
		})
	}
}

// writeTeamGoalError maps the service's typed errors onto the error envelope.
func writeTeamGoalError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, message string, err error, userID string) {
	switch {
	case errors.Is(err, teamgoal.ErrValidation):
		writeError(w, r, apierror.CodeBadRequest, err.Error())
	case errors.Is(err, teamgoal.ErrUnauthorized):
		writeError(w, r, apierror.CodeForbidden, err.Error())
	case errors.Is(err, teamgoal.ErrNotFound):
		writeError(w, r, apierror.CodeNotFound, err.Error())
	default:
		logRequestError(r.Context(), logger, message, err, userID)
		writeError(w, r, apierror.CodeInternal, message)
	}
}
