package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ags-games/partyhall/internal/config"
	"github.com/ags-games/partyhall/internal/protocol"
	"github.com/ags-games/partyhall/internal/room"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := New(config.Default(), zap.NewNop(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.registry.Close() })
	return s
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeJoin(t *testing.T, w *httptest.ResponseRecorder) joinResponse {
	t.Helper()
	var resp joinResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s.Router(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestCreateQuizRoomAndJoin(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodPost, "/api/quiz/rooms/create",
		createRoomRequest{PlayerName: "Omar"})
	require.Equal(t, http.StatusCreated, w.Code)
	host := decodeJoin(t, w)
	assert.Equal(t, room.GameQuiz, host.GameType)
	assert.Equal(t, room.RoleHost, host.Role)
	assert.Len(t, host.RoomCode, 5)
	assert.NotEmpty(t, host.SessionToken)

	w = doJSON(t, router, http.MethodPost, "/api/rooms/"+host.RoomCode+"/join",
		joinRequest{PlayerName: "Laila"})
	require.Equal(t, http.StatusOK, w.Code)
	guest := decodeJoin(t, w)
	assert.Equal(t, room.RolePlayer, guest.Role)
	assert.NotEqual(t, host.PlayerID, guest.PlayerID)
}

func TestCreateRejectsMissingName(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s.Router(), http.MethodPost, "/api/quiz/rooms/create",
		map[string]string{"player_name": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_PAYLOAD")
}

func TestJoinUnknownRoom(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s.Router(), http.MethodPost, "/api/rooms/ZZZZZ/join",
		joinRequest{PlayerName: "Omar"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "ROOM_NOT_FOUND")
}

func TestBoardColorConflict(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodPost, "/api/board/rooms/create",
		createRoomRequest{PlayerName: "Omar", Color: "red"})
	require.Equal(t, http.StatusCreated, w.Code)
	host := decodeJoin(t, w)
	assert.Equal(t, "red", host.Color)

	w = doJSON(t, router, http.MethodPost, "/api/rooms/"+host.RoomCode+"/join",
		joinRequest{PlayerName: "Laila", Color: "red"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "PIECE_COLOR_TAKEN")

	w = doJSON(t, router, http.MethodGet, "/api/rooms/"+host.RoomCode+"/colors", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"red"`)
	assert.Contains(t, w.Body.String(), `"blue"`)
}

func TestColorsRejectedForQuizRoom(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodPost, "/api/quiz/rooms/create",
		createRoomRequest{PlayerName: "Omar"})
	require.Equal(t, http.StatusCreated, w.Code)
	host := decodeJoin(t, w)

	w = doJSON(t, router, http.MethodGet, "/api/rooms/"+host.RoomCode+"/colors", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReconnectRotatesToken(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodPost, "/api/quiz/rooms/create",
		createRoomRequest{PlayerName: "Omar"})
	require.Equal(t, http.StatusCreated, w.Code)
	host := decodeJoin(t, w)

	w = doJSON(t, router, http.MethodPost, "/api/rooms/"+host.RoomCode+"/reconnect",
		reconnectRequest{SessionToken: host.SessionToken})
	require.Equal(t, http.StatusOK, w.Code)
	fresh := decodeJoin(t, w)
	assert.Equal(t, host.PlayerID, fresh.PlayerID)
	assert.NotEqual(t, host.SessionToken, fresh.SessionToken)

	// the replaced token is dead
	w = doJSON(t, router, http.MethodPost, "/api/rooms/"+host.RoomCode+"/reconnect",
		reconnectRequest{SessionToken: host.SessionToken})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeta(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodPost, "/api/board/rooms/create",
		createRoomRequest{PlayerName: "Omar"})
	require.Equal(t, http.StatusCreated, w.Code)
	host := decodeJoin(t, w)

	w = doJSON(t, router, http.MethodGet, "/api/rooms/"+host.RoomCode+"/meta", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var meta room.RoomMeta
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	assert.Equal(t, room.GameBoard, meta.GameType)
	assert.Equal(t, 1, meta.PlayerCount)
	assert.Equal(t, room.MaxBoardPlayers, meta.MaxPlayers)
	assert.True(t, meta.Joinable)
}

func TestLeaderboardWithoutStore(t *testing.T) {
	s := newTestServer(t)
	w := doJSON(t, s.Router(), http.MethodGet, "/api/leaderboard/quiz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestWebSocketRequiresValidToken(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodPost, "/api/quiz/rooms/create",
		createRoomRequest{PlayerName: "Omar"})
	require.Equal(t, http.StatusCreated, w.Code)
	host := decodeJoin(t, w)

	ts := httptest.NewServer(router)
	defer ts.Close()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/" + host.RoomCode

	_, resp, err := websocket.DefaultDialer.Dial(
		wsURL+"?token=bogus&player_id="+host.PlayerID+"&game_type="+room.GameQuiz, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketChecksDeclaredIdentity(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodPost, "/api/quiz/rooms/create",
		createRoomRequest{PlayerName: "Omar"})
	require.Equal(t, http.StatusCreated, w.Code)
	host := decodeJoin(t, w)

	ts := httptest.NewServer(router)
	defer ts.Close()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/" + host.RoomCode

	// a declared game type that does not match the room is refused
	_, resp, err := websocket.DefaultDialer.Dial(
		wsURL+"?token="+host.SessionToken+"&player_id="+host.PlayerID+"&game_type="+room.GameBoard, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// a valid token presented with someone else's player id is refused
	_, resp, err = websocket.DefaultDialer.Dial(
		wsURL+"?token="+host.SessionToken+"&player_id=player_other&game_type="+room.GameQuiz, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocketSyncAndDispatch(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	w := doJSON(t, router, http.MethodPost, "/api/quiz/rooms/create",
		createRoomRequest{PlayerName: "Omar"})
	require.Equal(t, http.StatusCreated, w.Code)
	host := decodeJoin(t, w)

	ts := httptest.NewServer(router)
	defer ts.Close()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/" + host.RoomCode

	conn, _, err := websocket.DefaultDialer.Dial(
		wsURL+"?token="+host.SessionToken+"&player_id="+host.PlayerID+"&game_type="+room.GameQuiz, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var sync protocol.Message
	require.NoError(t, conn.ReadJSON(&sync))
	assert.Equal(t, protocol.TypeRoomStateSync, sync.Type)

	// a solo start is rejected and only the sender hears about it
	require.NoError(t, conn.WriteJSON(protocol.Message{
		Type:    protocol.TypeQuizStartGame,
		Payload: json.RawMessage(`{"host_mode":"player","target_score":5}`),
	}))
	var errMsg protocol.Message
	require.NoError(t, conn.ReadJSON(&errMsg))
	assert.Equal(t, protocol.TypeRoomError, errMsg.Type)

	// unknown frame types answer with INVALID_ACTION
	require.NoError(t, conn.WriteJSON(protocol.Message{
		Type:    "board:roll_request",
		Payload: json.RawMessage(`{}`),
	}))
	require.NoError(t, conn.ReadJSON(&errMsg))
	assert.Equal(t, protocol.TypeRoomError, errMsg.Type)
	assert.Contains(t, string(errMsg.Payload), "INVALID_ACTION")
}

func TestRunShutsDownCleanly(t *testing.T) {
	s := newTestServer(t)
	s.cfg.Server.Host = "127.0.0.1"
	s.cfg.Server.Port = 0

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not shut down")
	}
}
