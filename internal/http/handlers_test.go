package http

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mauv0809/sportsdiff/internal/config"
	"github.com/mauv0809/sportsdiff/internal/database"
	"github.com/mauv0809/sportsdiff/internal/metrics"
	"github.com/mauv0809/sportsdiff/internal/notifier"
	"github.com/mauv0809/sportsdiff/internal/premium"
	"github.com/mauv0809/sportsdiff/internal/pubsub"
	"github.com/mauv0809/sportsdiff/internal/session"
	"github.com/mauv0809/sportsdiff/internal/store"
	"github.com/mauv0809/sportsdiff/internal/teams"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

const testWebhookSecret = "test-webhook-secret"

type testServer struct {
	*Server
	notifier *notifier.Mock
	pubsub   *pubsub.MockPubSubClient
}

// setupTestServer initializes a new server with a test database and mock clients.
func setupTestServer(t *testing.T, cfg config.Config) (*testServer, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	st := store.New(db)
	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	notifierMock := notifier.NewMock()
	pubsubMock := pubsub.NewMock()
	settings := session.DefaultSettings()
	settings.TeamSize = 2
	sessions := session.NewManager(st, metricsSvc, session.WithSettings(settings))
	gate := premium.NewGate(st, cfg.Premium.EmailDomain, cfg.DevMode, testWebhookSecret)

	server := NewServer(sessions, st, metrics.New(db), metricsSvc, metricsHandler, cfg, notifierMock, gate, pubsubMock)
	return &testServer{Server: server, notifier: notifierMock, pubsub: pubsubMock}, dbTeardown
}

func (ts *testServer) do(t *testing.T, method, target, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if userID != "" {
		req.Header.Set(HeaderUserID, userID)
	}
	rr := httptest.NewRecorder()
	ts.ServeHTTP(rr, req)
	return rr
}

func decodeState(t *testing.T, rr *httptest.ResponseRecorder) session.State {
	t.Helper()
	var state session.State
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	return state
}

// seedTeams stores a four player roster and attendance for userID.
func seedTeams(t *testing.T, ts *testServer, userID string) session.State {
	t.Helper()
	rr := ts.do(t, "PUT", "/roster", userID, textRequest{Text: "Alice 1\nBob 2\nCarl 3\nDana 4"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = ts.do(t, "PUT", "/attendance", userID, textRequest{Text: "Alice\nBob\nCarl\nDana"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decodeState(t, rr)
}

func TestHealthCheckHandler(t *testing.T) {
	ts, teardown := setupTestServer(t, config.Config{})
	defer teardown()

	rr := ts.do(t, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK!", rr.Body.String())
}

func TestUserRoutesRequireUser(t *testing.T) {
	ts, teardown := setupTestServer(t, config.Config{})
	defer teardown()

	rr := ts.do(t, "GET", "/teams", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRosterAndAttendanceGenerateTeams(t *testing.T) {
	ts, teardown := setupTestServer(t, config.Config{})
	defer teardown()

	state := seedTeams(t, ts, "u1")
	assert.Len(t, state.Teams, 2)
	assert.Len(t, state.Players, 4)
	assert.Len(t, state.Summaries, 2)

	rr := ts.do(t, "GET", "/roster", "u1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"text":"Alice 1\nBob 2\nCarl 3\nDana 4"}`, rr.Body.String())

	rr = ts.do(t, "GET", "/attendance", "u2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"text":""}`, rr.Body.String(), "users do not share state")

	rr = ts.do(t, "POST", "/generate", "u1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	regenerated := decodeState(t, rr)
	assert.NotEqual(t, state.Players[0].ID, regenerated.Players[0].ID, "every cycle issues fresh IDs")

	rr = ts.do(t, "GET", "/stats", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"teams_generated":1}`, rr.Body.String())
}

func TestInvalidLevelBlocksGeneration(t *testing.T) {
	ts, teardown := setupTestServer(t, config.Config{})
	defer teardown()

	before := seedTeams(t, ts, "u1")

	rr := ts.do(t, "PUT", "/roster", "u1", textRequest{Text: "Alice one\nBob 2\nCarl 3\nDana 4"})
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "no valid level")
	require.NotNil(t, resp.State)
	assert.Equal(t, before.Players, resp.State.Players, "previous teams are kept")
	require.Len(t, resp.State.Issues, 1)
	assert.Equal(t, 1, resp.State.Issues[0].Line)
}

func TestPutSettingsHandler(t *testing.T) {
	ts, teardown := setupTestServer(t, config.Config{})
	defer teardown()

	seedTeams(t, ts, "u1")

	rr := ts.do(t, "PUT", "/settings", "u1", map[string]any{"teamSize": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = ts.do(t, "PUT", "/settings", "u1", map[string]any{"distribution": "tiers"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = ts.do(t, "PUT", "/settings", "u1", map[string]any{"teamSize": 4, "vests": false})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	state := decodeState(t, rr)
	assert.Equal(t, 4, state.Settings.TeamSize)
	assert.Equal(t, teams.Even, state.Settings.Distribution, "omitted fields keep their value")
	assert.Len(t, state.Teams, 1)
	for _, p := range state.Players {
		assert.False(t, p.Vest)
	}

	rr = ts.do(t, "PUT", "/settings", "u1", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMovePlayerHandler(t *testing.T) {
	ts, teardown := setupTestServer(t, config.Config{})
	defer teardown()

	state := seedTeams(t, ts, "u1")

	rr := ts.do(t, "POST", "/teams/move", "u1", moveRequest{PlayerID: state.Players[0].ID, TeamID: "nope"})
	require.Equal(t, http.StatusOK, rr.Code)
	var resp moveResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Moved)
	assert.Equal(t, state.Players, resp.State.Players)

	target := state.Teams[0].ID
	if state.Players[0].TeamID == target {
		target = state.Teams[1].ID
	}
	rr = ts.do(t, "POST", "/teams/move", "u1", moveRequest{PlayerID: state.Players[0].ID, TeamID: target})
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Moved)
	assert.Equal(t, target, resp.State.Players[0].TeamID)
}

func TestEditLevelHandler(t *testing.T) {
	ts, teardown := setupTestServer(t, config.Config{})
	defer teardown()

	seedTeams(t, ts, "u1")

	rr := ts.do(t, "POST", "/levels", "u1", levelRequest{Name: "bob", Level: "2,5"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Alice 1\nBob 2.5\nCarl 3\nDana 4", decodeState(t, rr).RosterText)

	rr = ts.do(t, "POST", "/levels", "u1", levelRequest{Name: "Bob", Level: "high"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = ts.do(t, "POST", "/levels", "u1", levelRequest{Name: "Zed", Level: "1"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPremiumRoutesAreGated(t *testing.T) {
	ts, teardown := setupTestServer(t, config.Config{})
	defer teardown()

	rr := ts.do(t, "GET", "/lists", "u1", nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	req := httptest.NewRequest("GET", "/lists", nil)
	req.Header.Set(HeaderUserID, "u1")
	req.Header.Set(HeaderUserEmail, "coach@club.example")
	rr = httptest.NewRecorder()
	ts.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code, "no email domain is configured")

	domainServer, teardownDomain := setupTestServer(t, config.Config{Premium: config.PremiumConfig{EmailDomain: "club.example"}})
	defer teardownDomain()
	rr = httptest.NewRecorder()
	domainServer.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCheckoutWebhookGrantsPremium(t *testing.T) {
	ts, teardown := setupTestServer(t, config.Config{})
	defer teardown()

	body := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"metadata":{"user_id":"u1"}}}}`)

	req := httptest.NewRequest("POST", "/webhooks/checkout", bytes.NewReader(body))
	req.Header.Set(HeaderSignature, "00")
	rr := httptest.NewRecorder()
	ts.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest("POST", "/webhooks/checkout", bytes.NewReader(body))
	req.Header.Set(HeaderSignature, premium.Sign(testWebhookSecret, body))
	rr = httptest.NewRecorder()
	ts.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"received":true,"granted":"u1"}`, rr.Body.String())

	rr = ts.do(t, "GET", "/lists", "u1", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestPlayerListsFlow(t *testing.T) {
	ts, teardown := setupTestServer(t, config.Config{DevMode: true})
	defer teardown()

	rr := ts.do(t, "POST", "/lists", "u1", nameRequest{Name: "Tuesday"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, "empty roster")

	seedTeams(t, ts, "u1")
	rr = ts.do(t, "POST", "/lists", "u1", nameRequest{Name: "Tuesday"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var list store.PlayerList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	assert.Equal(t, "Tuesday", list.Name)

	rr = ts.do(t, "GET", "/lists", "u1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var lists []store.PlayerList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &lists))
	require.Len(t, lists, 1)

	// Edit a level, flush it to the list, then load the list as another roster.
	rr = ts.do(t, "POST", "/levels", "u1", levelRequest{Name: "Alice", Level: "5"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, decodeState(t, rr).PendingEdits)
	rr = ts.do(t, "POST", "/levels/flush", "u1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, decodeState(t, rr).PendingEdits)

	rr = ts.do(t, "PUT", "/roster", "u1", textRequest{Text: "Someone 1"})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = ts.do(t, "POST", "/lists/"+list.ID+"/load", "u1", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	state := decodeState(t, rr)
	assert.Equal(t, "Alice 5\nBob 2\nCarl 3\nDana 4", state.RosterText)
	assert.Equal(t, list.ID, state.ActiveListID)

	rr = ts.do(t, "POST", "/levels", "u1", levelRequest{Name: "Alice", Level: "2"})
	require.Equal(t, http.StatusOK, rr.Code)
	rr = ts.do(t, "POST", "/levels/reset", "u1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Alice 5\nBob 2\nCarl 3\nDana 4", decodeState(t, rr).RosterText)

	rr = ts.do(t, "POST", "/lists/missing/load", "u1", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	rr = ts.do(t, "POST", "/lists/"+list.ID+"/load", "u2", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code, "lists are private")

	rr = ts.do(t, "GET", "/stats", "", nil)
	assert.JSONEq(t, `{"lists_imported":1}`, rr.Body.String())
}

func TestSavedTeamsFlow(t *testing.T) {
	ts, teardown := setupTestServer(t, config.Config{DevMode: true})
	defer teardown()

	rr := ts.do(t, "POST", "/saved-teams", "u1", nameRequest{Name: "none yet"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	state := seedTeams(t, ts, "u1")
	rr = ts.do(t, "POST", "/saved-teams", "u1", nameRequest{Name: "Tuesday"})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var saved store.SavedTeams
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &saved))

	rr = ts.do(t, "POST", "/generate", "u1", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.do(t, "POST", "/saved-teams/"+saved.ID+"/load", "u1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, state.Players, decodeState(t, rr).Players)

	rr = ts.do(t, "GET", "/saved-teams", "u1", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var all []store.SavedTeams
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &all))
	assert.Len(t, all, 1)

	rr = ts.do(t, "DELETE", "/saved-teams/"+saved.ID, "u1", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	rr = ts.do(t, "DELETE", "/saved-teams/"+saved.ID, "u1", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestShareTeamsPublishesLineup(t *testing.T) {
	ts, teardown := setupTestServer(t, config.Config{DevMode: true})
	defer teardown()

	rr := ts.do(t, "POST", "/teams/share", "u1", shareRequest{Title: "Tuesday"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	state := seedTeams(t, ts, "u1")
	rr = ts.do(t, "POST", "/teams/share", "u1", shareRequest{Title: "Tuesday"})
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())

	require.Len(t, ts.pubsub.SendMessageCalls, 1)
	call := ts.pubsub.SendMessageCalls[0]
	assert.Equal(t, string(pubsub.EventShareLineup), call.Topic)
	msg, ok := call.Data.(pubsub.ShareLineup)
	require.True(t, ok)
	assert.Equal(t, "u1", msg.UserID)
	assert.Equal(t, state.Teams, msg.Teams)
}

func TestShareLineupPushHandler(t *testing.T) {
	ts, teardown := setupTestServer(t, config.Config{})
	defer teardown()

	msg := pubsub.ShareLineup{
		UserID:  "u1",
		Title:   "Tuesday",
		Teams:   []teams.Team{{ID: "t1", Name: "Team 1 - Blue", Color: teams.Blue}},
		Players: []teams.Player{{ID: "p1", Name: "Alice", Level: 1, Vest: true, TeamID: "t1"}},
	}
	payload, err := msgpack.Marshal(msg)
	require.NoError(t, err)
	body := fmt.Sprintf(`{"subscription":"s","message":{"data":%q}}`, base64.StdEncoding.EncodeToString(payload))

	req := httptest.NewRequest("POST", "/pubsub/share-lineup?dry_run=true", strings.NewReader(body))
	rr := httptest.NewRecorder()
	ts.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	require.Len(t, ts.notifier.SendLineupCalls, 1)
	call := ts.notifier.SendLineupCalls[0]
	assert.True(t, call.DryRun)
	assert.Equal(t, notifier.Lineup{Title: "Tuesday", Teams: msg.Teams, Players: msg.Players}, call.Lineup)

	req = httptest.NewRequest("POST", "/pubsub/share-lineup", strings.NewReader("{"))
	rr = httptest.NewRecorder()
	ts.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMetricsHandler(t *testing.T) {
	ts, teardown := setupTestServer(t, config.Config{})
	defer teardown()

	seedTeams(t, ts, "u1")

	rr := ts.do(t, "GET", "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "sportsdiff_generations_total 1")
	assert.Contains(t, rr.Body.String(), "sportsdiff_players_partitioned_total 4")
}

func TestDeleteSavedTeamsHandler_HidesStoreErrors(t *testing.T) {
	st := store.NewMock()
	st.DeleteSavedTeamFunc = func(userID, id string) error {
		return fmt.Errorf("failed to delete saved teams: %w", errors.New("disk I/O error at /var/data/teams.db"))
	}
	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	defer teardown()

	metricsSvc := metrics.NewService(prometheus.NewRegistry())
	sessions := session.NewManager(st, metricsSvc)
	gate := premium.NewGate(st, "", true, testWebhookSecret)
	server := NewServer(sessions, st, metrics.New(db), metricsSvc, http.NotFoundHandler(), config.Config{DevMode: true}, notifier.NewMock(), gate, pubsub.NewMock())

	req := httptest.NewRequest("DELETE", "/saved-teams/s1", nil)
	req.Header.Set(HeaderUserID, "u1")
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"failed to delete saved teams"}`, rr.Body.String())
}
