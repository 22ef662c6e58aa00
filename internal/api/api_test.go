package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/trucogame/internal/api"
	"github.com/mcoot/trucogame/internal/api/apierr"
	"github.com/mcoot/trucogame/internal/api/response"
	"github.com/mcoot/trucogame/internal/factory"
	"github.com/mcoot/trucogame/internal/model"
	"github.com/mcoot/trucogame/internal/testutil"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	// Hands resolve immediately so a table can be played out in one go
	app := factory.NewInstantTestApp()

	router := api.NewRouter(api.RouterConfig{
		Logger:         testutil.NopLogger(),
		AuthService:    app.AuthService,
		GameController: app.GameController,
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func joinRoom(t *testing.T, ts *testServer, code, name string) response.JoinResponse {
	t.Helper()

	rr := ts.request(http.MethodPost, "/api/v1/rooms/"+code+"/join", map[string]string{"name": name}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp response.JoinResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

// fillRoom seats A, B, C and D and returns their tokens in seat order
func fillRoom(t *testing.T, ts *testServer) []string {
	t.Helper()

	tokens := make([]string, 0, model.SeatCount)
	for _, name := range []string{"A", "B", "C", "D"} {
		tokens = append(tokens, joinRoom(t, ts, "R1", name).SessionToken)
	}
	return tokens
}

func decodeState(t *testing.T, rr *httptest.ResponseRecorder) response.StateResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp response.StateResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.View)
	return resp
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestJoinIssuesSession(t *testing.T) {
	ts := newTestServer(t)

	resp := joinRoom(t, ts, "R1", "Alice")
	assert.NotEmpty(t, resp.SessionToken)
	assert.Equal(t, "R1", resp.Room)
	require.NotNil(t, resp.View)
	assert.Equal(t, "Alice", resp.View.Name)
	assert.Equal(t, 0, resp.View.Seat)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/R1/state", nil, resp.SessionToken)
	state := decodeState(t, rr)
	assert.Equal(t, "Alice", state.View.Name)
}

func TestJoinErrors(t *testing.T) {
	ts := newTestServer(t)
	joinRoom(t, ts, "R1", "Alice")

	rr := ts.request(http.MethodPost, "/api/v1/rooms/R1/join", map[string]string{"name": "Alice"}, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeNameTaken, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/rooms/R1/join", map[string]string{"name": "  "}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidName, errorCode(t, rr))

	rr = ts.request(http.MethodPost, "/api/v1/rooms/R1/join", map[string]any{"nick": "Bob"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, errorCode(t, rr))
}

func TestJoinFullRoom(t *testing.T) {
	ts := newTestServer(t)
	fillRoom(t, ts)

	rr := ts.request(http.MethodPost, "/api/v1/rooms/R1/join", map[string]string{"name": "E"}, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodeRoomFull, errorCode(t, rr))
}

func TestUnauthorizedWithoutToken(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/R1/state", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/rooms/R1/play", map[string]int{"card_index": 0}, "sess_unknown")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSessionBoundToRoom(t *testing.T) {
	ts := newTestServer(t)
	resp := joinRoom(t, ts, "R1", "Alice")

	rr := ts.request(http.MethodGet, "/api/v1/rooms/R2/state", nil, resp.SessionToken)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, apierr.CodeWrongRoom, errorCode(t, rr))
}

func TestPlayOutOfTurnReturnsUnchangedView(t *testing.T) {
	ts := newTestServer(t)
	tokens := fillRoom(t, ts)

	rr := ts.request(http.MethodPost, "/api/v1/rooms/R1/play", map[string]int{"card_index": 0}, tokens[1])
	state := decodeState(t, rr)

	assert.Equal(t, model.ErrNotPlayerTurn.Error(), state.Rejected)
	assert.Len(t, state.View.Hand, model.HandSize)
	assert.Empty(t, state.View.Table)
}

func TestPlayRequiresCardIndex(t *testing.T) {
	ts := newTestServer(t)
	tokens := fillRoom(t, ts)

	rr := ts.request(http.MethodPost, "/api/v1/rooms/R1/play", map[string]bool{"hidden": false}, tokens[0])
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPlayHandAndTruco(t *testing.T) {
	ts := newTestServer(t)
	tokens := fillRoom(t, ts)

	// Hand 1: the Zap in seat 3 wins and leads hand 2
	for _, token := range tokens {
		rr := ts.request(http.MethodPost, "/api/v1/rooms/R1/play", map[string]int{"card_index": 0}, token)
		state := decodeState(t, rr)
		assert.Empty(t, state.Rejected)
	}

	state := decodeState(t, ts.request(http.MethodGet, "/api/v1/rooms/R1/state", nil, tokens[3]))
	assert.Equal(t, 2, state.View.HandIndex)
	assert.True(t, state.View.MyTurn)
	assert.True(t, state.View.Truco.CanCall)

	state = decodeState(t, ts.request(http.MethodPost, "/api/v1/rooms/R1/truco", nil, tokens[3]))
	assert.Empty(t, state.Rejected)
	assert.Equal(t, 3, state.View.RoundValue)

	rr := ts.request(http.MethodPost, "/api/v1/rooms/R1/truco/respond", nil, tokens[0])
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	state = decodeState(t, ts.request(http.MethodPost, "/api/v1/rooms/R1/truco/respond", map[string]bool{"accept": false}, tokens[0]))
	assert.Empty(t, state.Rejected)
	assert.True(t, state.View.RoundOver)
	assert.Equal(t, [2]int{0, 1}, state.View.Score)

	state = decodeState(t, ts.request(http.MethodPost, "/api/v1/rooms/R1/new-round", nil, tokens[2]))
	assert.Empty(t, state.Rejected)
	assert.True(t, state.View.Started)
	assert.Len(t, state.View.Hand, model.HandSize)
}

func TestNewRoundWhileInProgressIsRejected(t *testing.T) {
	ts := newTestServer(t)
	tokens := fillRoom(t, ts)

	state := decodeState(t, ts.request(http.MethodPost, "/api/v1/rooms/R1/new-round", nil, tokens[0]))
	assert.Equal(t, model.ErrRoundInProgress.Error(), state.Rejected)
}

func TestLeaveEndsSession(t *testing.T) {
	ts := newTestServer(t)
	alice := joinRoom(t, ts, "R1", "Alice")
	bob := joinRoom(t, ts, "R1", "Bob")

	rr := ts.request(http.MethodPost, "/api/v1/rooms/R1/leave", nil, alice.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp response.LeaveResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Left)
	assert.False(t, resp.RoomClosed)

	rr = ts.request(http.MethodGet, "/api/v1/rooms/R1/state", nil, alice.SessionToken)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/rooms/R1/leave", nil, bob.SessionToken)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.RoomClosed)

	_, err := ts.app.GameController.GetRoom(t.Context(), "R1")
	assert.ErrorIs(t, err, model.ErrRoomNotFound)
}
