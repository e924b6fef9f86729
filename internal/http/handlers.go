package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/sportsdiff/internal/metrics"
	"github.com/mauv0809/sportsdiff/internal/notifier"
	"github.com/mauv0809/sportsdiff/internal/premium"
	"github.com/mauv0809/sportsdiff/internal/pubsub"
	"github.com/mauv0809/sportsdiff/internal/roster"
	"github.com/mauv0809/sportsdiff/internal/session"
	"github.com/mauv0809/sportsdiff/internal/store"
)

const maxBodyBytes = 1 << 20

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// StatsHandler returns the lifetime usage counters.
func (s *Server) StatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counters, err := s.Usage.GetAll()
		if err != nil {
			log.Error("Failed to get usage counters", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get usage counters")
			return
		}
		writeJSON(w, http.StatusOK, counters)
	}
}

func (s *Server) GetRosterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.session(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, textResponse{Text: sess.State().RosterText})
	}
}

func (s *Server) PutRosterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req textRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		sess, ok := s.session(w, r)
		if !ok {
			return
		}
		state, err := sess.SetRoster(r.Context(), req.Text)
		s.respondState(w, state, err)
	}
}

func (s *Server) GetAttendanceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.session(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, textResponse{Text: sess.State().AttendanceText})
	}
}

func (s *Server) PutAttendanceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req textRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		sess, ok := s.session(w, r)
		if !ok {
			return
		}
		state, err := sess.SetAttendance(r.Context(), req.Text)
		s.respondState(w, state, err)
	}
}

func (s *Server) PutSettingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.session(w, r)
		if !ok {
			return
		}
		// Fields left out of the body keep their current value.
		req := sess.State().Settings
		if !decodeJSON(w, r, &req) {
			return
		}
		state, err := sess.UpdateSettings(r.Context(), req)
		s.respondState(w, state, err)
	}
}

func (s *Server) GenerateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.session(w, r)
		if !ok {
			return
		}
		state, err := sess.Generate(r.Context())
		if err == nil {
			s.Usage.Increment(metrics.KeyTeamsGenerated)
		}
		s.respondState(w, state, err)
	}
}

func (s *Server) GetTeamsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.session(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, sess.State())
	}
}

func (s *Server) MovePlayerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req moveRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		sess, ok := s.session(w, r)
		if !ok {
			return
		}
		state, moved := sess.Move(r.Context(), req.PlayerID, req.TeamID)
		if !moved {
			log.Debug("Ignored move to unknown target", "player_id", req.PlayerID, "team_id", req.TeamID)
		}
		writeJSON(w, http.StatusOK, moveResponse{Moved: moved, State: state})
	}
}

func (s *Server) EditLevelHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req levelRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		sess, ok := s.session(w, r)
		if !ok {
			return
		}
		state, err := sess.EditLevel(r.Context(), req.Name, roster.ParseLevel(req.Level))
		s.respondState(w, state, err)
	}
}

func (s *Server) ResetLevelsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.session(w, r)
		if !ok {
			return
		}
		state, err := sess.ResetLevels(r.Context())
		s.respondState(w, state, err)
	}
}

func (s *Server) FlushLevelsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.session(w, r)
		if !ok {
			return
		}
		if err := sess.Flush(r.Context()); err != nil {
			s.respondState(w, sess.State(), err)
			return
		}
		writeJSON(w, http.StatusOK, sess.State())
	}
}

// ShareTeamsHandler publishes the current lineup. Delivery to Slack happens in the push handler.
func (s *Server) ShareTeamsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req shareRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		sess, ok := s.session(w, r)
		if !ok {
			return
		}
		state := sess.State()
		if len(state.Teams) == 0 {
			s.respondState(w, state, session.ErrNoTeams)
			return
		}

		msg := pubsub.ShareLineup{
			UserID:  userIDFromContext(r),
			Title:   req.Title,
			Teams:   state.Teams,
			Players: state.Players,
		}
		if err := s.pubsub.SendMessage(r.Context(), pubsub.EventShareLineup, msg); err != nil {
			log.Error("Failed to publish lineup", "error", err)
			writeError(w, http.StatusBadGateway, "failed to share lineup")
			return
		}
		s.Usage.Increment(metrics.KeyLineupsShared)
		writeJSON(w, http.StatusAccepted, state)
	}
}

func (s *Server) ListPlayerListsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lists, err := s.Store.GetPlayerLists(userIDFromContext(r))
		if err != nil {
			log.Error("Failed to get player lists", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get player lists")
			return
		}
		writeJSON(w, http.StatusOK, lists)
	}
}

func (s *Server) ImportListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req nameRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		sess, ok := s.session(w, r)
		if !ok {
			return
		}
		list, err := sess.ImportList(r.Context(), req.Name)
		if err != nil {
			s.respondState(w, sess.State(), err)
			return
		}
		s.Usage.Increment(metrics.KeyListsImported)
		writeJSON(w, http.StatusCreated, list)
	}
}

func (s *Server) LoadListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.session(w, r)
		if !ok {
			return
		}
		state, err := sess.LoadList(r.Context(), r.PathValue("id"))
		s.respondState(w, state, err)
	}
}

func (s *Server) ListSavedTeamsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		saved, err := s.Store.GetSavedTeams(userIDFromContext(r))
		if err != nil {
			log.Error("Failed to get saved teams", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to get saved teams")
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

func (s *Server) SaveTeamsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req nameRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		sess, ok := s.session(w, r)
		if !ok {
			return
		}
		saved, err := sess.SaveTeams(r.Context(), req.Name)
		if err != nil {
			s.respondState(w, sess.State(), err)
			return
		}
		s.Usage.Increment(metrics.KeyTeamsSaved)
		writeJSON(w, http.StatusCreated, saved)
	}
}

func (s *Server) LoadSavedTeamsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.session(w, r)
		if !ok {
			return
		}
		state, err := sess.LoadSavedTeams(r.Context(), r.PathValue("id"))
		s.respondState(w, state, err)
	}
}

func (s *Server) DeleteSavedTeamsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := s.Store.DeleteSavedTeam(userIDFromContext(r), r.PathValue("id"))
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "saved teams not found")
			return
		}
		if err != nil {
			log.Error("Failed to delete saved teams", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to delete saved teams")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ShareLineupPushHandler receives share-lineup events pushed by Pub/Sub and posts them to Slack.
func (s *Server) ShareLineupPushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received share lineup message", "body", string(bodyBytes))

		rawData, err := pubsub.DecodePush(bodyBytes)
		if err != nil {
			log.Error("Failed to decode push message", "error", err)
			http.Error(w, "Invalid push message", http.StatusBadRequest)
			return
		}
		var msg pubsub.ShareLineup
		if err := s.pubsub.ProcessMessage(rawData, &msg); err != nil {
			http.Error(w, "Invalid lineup payload", http.StatusBadRequest)
			return
		}

		lineup := notifier.Lineup{Title: msg.Title, Teams: msg.Teams, Players: msg.Players}
		if err := s.Notifier.SendLineup(lineup, isDryRunFromContext(r)); err != nil {
			log.Error("Failed to send lineup", "error", err, "user_id", msg.UserID)
			http.Error(w, "Failed to send lineup", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}

// CheckoutWebhookHandler grants premium access when a checkout completes.
func (s *Server) CheckoutWebhookHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}

		userID, err := s.Gate.HandleCheckoutWebhook(bodyBytes, r.Header.Get(HeaderSignature))
		switch {
		case errors.Is(err, premium.ErrInvalidSignature):
			log.Warn("Rejected checkout webhook with invalid signature")
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		case errors.Is(err, premium.ErrMissingUserID):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			log.Error("Failed to handle checkout webhook", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to handle checkout event")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"received": true, "granted": userID})
	}
}

// session resolves the caller's session, writing the error response itself when it cannot.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.Sessions.Get(r.Context(), userIDFromContext(r))
	if err != nil {
		log.Error("Failed to open session", "error", err)
		writeError(w, statusFor(err), "failed to open session")
		return nil, false
	}
	return sess, true
}

// respondState writes state, or the error with the state the session kept.
func (s *Server) respondState(w http.ResponseWriter, state session.State, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, state)
		return
	}
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), State: &state})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, session.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNoTeams):
		return http.StatusConflict
	case session.IsInputError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
