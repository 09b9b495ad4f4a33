package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"freight-auction/src/auction"
	"freight-auction/src/config"
	"freight-auction/src/logger"
	"freight-auction/src/models"
	"freight-auction/src/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func newTestServer(t *testing.T) *AuctionServer {
	t.Helper()

	cfg := &config.Config{
		MConfig: &models.MConfig{
			Name:     "freight-auction-test",
			Host:     "127.0.0.1",
			Port:     8090,
			LogLevel: "ERROR",
			Auction: models.MAuctionDefaults{
				DurationSeconds:     600,
				CooldownSeconds:     30,
				MinDecrement:        "15",
				LeaderboardSize:     10,
				TickIntervalSeconds: 0,
			},
		},
	}

	log := logger.NewLogger("ERROR", "server-test")
	participants := registry.NewRegistry(true)
	participants.Register("carrier-a", "Carrier A")

	srv := NewAuctionServer(cfg, participants, participants, participants, log)
	manager := auction.NewManager(cfg, srv, nil, nil, log)
	srv.SetManager(manager)
	t.Cleanup(manager.StopAll)

	go srv.handleWebsockets()
	t.Cleanup(func() { srv.Stop() })

	return srv
}

func doJSON(t *testing.T, srv *AuctionServer, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.engine.ServeHTTP(rec, req)
	return rec
}

// -----------------------------------------------------------------------------

func TestServerHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

// -----------------------------------------------------------------------------

func TestServerCreateAndFetchAuction(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/auctions",
		`{"title": "Denver to Phoenix, reefer", "starting_price": "3200", "min_decrement": "25"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created models.MAuctionState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.AuctionID)
	assert.Equal(t, models.StatusOpen, created.Status)
	assert.Equal(t, 600, created.TimeRemaining, "duration falls back to the configured default")

	rec = doJSON(t, srv, http.MethodGet, "/api/auctions/"+created.AuctionID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/auctions", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.AuctionID)
}

// -----------------------------------------------------------------------------

func TestServerCreateAuctionValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		body     string
		expected int
	}{
		{"missing title", `{"starting_price": "3200"}`, http.StatusBadRequest},
		{"bad price", `{"title": "x", "starting_price": "cheap"}`, http.StatusBadRequest},
		{"bad decrement", `{"title": "x", "starting_price": "3200", "min_decrement": "a lot"}`, http.StatusBadRequest},
		{"zero price", `{"title": "x", "starting_price": "0"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/api/auctions", tt.body)
			assert.Equal(t, tt.expected, rec.Code, rec.Body.String())
		})
	}
}

// -----------------------------------------------------------------------------

func TestServerUnknownAuction(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/auctions/lane-missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// -----------------------------------------------------------------------------

func TestServerParticipantRegistration(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/participants",
		`{"participant_id": "carrier-b", "display_name": "Carrier B"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/participants/carrier-b/fees",
		`{"auction_id": "lane-1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/api/participants", `{"participant_id": "x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "display name is required")
}

// -----------------------------------------------------------------------------

func TestServerWebSocketRequiresKnownParticipant(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/ws", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code, "participant_id missing")

	rec = doJSON(t, srv, http.MethodGet, "/ws?participant_id=ghost", "")
	assert.Equal(t, http.StatusForbidden, rec.Code, "unregistered participant")
}
