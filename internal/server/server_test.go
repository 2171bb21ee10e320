package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/gomoku/internal/protocol"
)

const testReadWait = 2 * time.Second

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	s := NewServer(DefaultConfig(), testLogger())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func dialTestServer(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func sendCommand(t *testing.T, ws *websocket.Conn, cmd protocol.Command) {
	t.Helper()
	payload, err := protocol.EncodeCommand(cmd)
	require.NoError(t, err)
	require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, payload))
}

func readResponse(t *testing.T, ws *websocket.Conn) protocol.Response {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(testReadWait)))
	_, payload, err := ws.ReadMessage()
	require.NoError(t, err)
	resp, err := protocol.DecodeResponse(payload)
	require.NoError(t, err)
	return resp
}

// connectPlayer sends a Connect command and consumes the direct Ok ack.
func connectPlayer(t *testing.T, ws *websocket.Conn, name string) {
	t.Helper()
	sendCommand(t, ws, &protocol.Connect{Name: name})
	resp := readResponse(t, ws)
	ok, isOk := resp.(*protocol.Ok)
	require.True(t, isOk, "expected Ok ack, got %#v", resp)
	require.NotEmpty(t, ok.Addr)
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	s := NewServer(DefaultConfig(), testLogger())
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMoveBeforeTwoPlayers(t *testing.T) {
	t.Parallel()
	_, url := newTestServer(t)

	ws := dialTestServer(t, url)
	connectPlayer(t, ws, "alice")

	sendCommand(t, ws, &protocol.Move{Cell: 0, Name: "alice"})
	resp := readResponse(t, ws)

	fail, isFail := resp.(*protocol.Fail)
	require.True(t, isFail, "expected Fail, got %#v", resp)
	assert.Equal(t, "wait for a second player to connect", fail.Message)
}

func TestMoveIsBroadcastToAllPeers(t *testing.T) {
	t.Parallel()
	_, url := newTestServer(t)

	alice := dialTestServer(t, url)
	bob := dialTestServer(t, url)
	connectPlayer(t, alice, "alice")
	connectPlayer(t, bob, "bob")

	sendCommand(t, alice, &protocol.Move{Cell: 7, Name: "alice"})

	for _, ws := range []*websocket.Conn{alice, bob} {
		resp := readResponse(t, ws)
		move, isMove := resp.(*protocol.MoveMade)
		require.True(t, isMove, "expected MoveMade, got %#v", resp)
		assert.Equal(t, uint32(7), move.Cell)
		assert.Equal(t, uint8(1), move.Color)
		assert.Empty(t, move.Winner)
	}
}

func TestOutOfTurnFailGoesOnlyToOffender(t *testing.T) {
	t.Parallel()
	_, url := newTestServer(t)

	alice := dialTestServer(t, url)
	bob := dialTestServer(t, url)
	connectPlayer(t, alice, "alice")
	connectPlayer(t, bob, "bob")

	// Opening move by alice; both drain the broadcast.
	sendCommand(t, alice, &protocol.Move{Cell: 0, Name: "alice"})
	readResponse(t, alice)
	readResponse(t, bob)

	// Alice again out of turn: she gets a direct Fail.
	sendCommand(t, alice, &protocol.Move{Cell: 1, Name: "alice"})
	resp := readResponse(t, alice)
	fail, isFail := resp.(*protocol.Fail)
	require.True(t, isFail, "expected Fail, got %#v", resp)
	assert.Equal(t, "it's not your move", fail.Message)

	// Bob never saw the Fail: the very next frame he receives is the
	// broadcast for his own legal move.
	sendCommand(t, bob, &protocol.Move{Cell: 20, Name: "bob"})
	move, isMove := readResponse(t, bob).(*protocol.MoveMade)
	require.True(t, isMove)
	assert.Equal(t, uint32(20), move.Cell)
	assert.Equal(t, uint8(2), move.Color)
}

func TestScriptedWinOverWire(t *testing.T) {
	t.Parallel()
	_, url := newTestServer(t)

	alice := dialTestServer(t, url)
	bob := dialTestServer(t, url)
	connectPlayer(t, alice, "alice")
	connectPlayer(t, bob, "bob")

	script := []struct {
		ws   *websocket.Conn
		cell uint32
		name string
	}{
		{alice, 0, "alice"},
		{bob, 100, "bob"},
		{alice, 1, "alice"},
		{bob, 101, "bob"},
		{alice, 2, "alice"},
		{bob, 102, "bob"},
		{alice, 3, "alice"},
		{bob, 103, "bob"},
		{alice, 4, "alice"},
	}

	var last *protocol.MoveMade
	for _, mv := range script {
		sendCommand(t, mv.ws, &protocol.Move{Cell: mv.cell, Name: mv.name})
		for _, ws := range []*websocket.Conn{alice, bob} {
			resp := readResponse(t, ws)
			move, isMove := resp.(*protocol.MoveMade)
			require.True(t, isMove, "expected MoveMade, got %#v", resp)
			require.Equal(t, mv.cell, move.Cell)
			last = move
		}
	}

	require.NotNil(t, last)
	assert.Equal(t, "alice", last.Winner, "fifth horizontal stone must decide the game")
}

func TestResetIsBroadcastAndClearsGame(t *testing.T) {
	t.Parallel()
	s, url := newTestServer(t)

	alice := dialTestServer(t, url)
	bob := dialTestServer(t, url)
	connectPlayer(t, alice, "alice")
	connectPlayer(t, bob, "bob")

	sendCommand(t, alice, &protocol.Move{Cell: 0, Name: "alice"})
	readResponse(t, alice)
	readResponse(t, bob)

	sendCommand(t, bob, &protocol.Reset{})
	for _, ws := range []*websocket.Conn{alice, bob} {
		_, isReset := readResponse(t, ws).(*protocol.ResetDone)
		require.True(t, isReset)
	}

	players := s.Game().Players()
	require.Len(t, players, 2)
	assert.Equal(t, uint8(1), players[0].Color, "roster and colors survive a reset")
	_, active := s.Game().Active()
	assert.False(t, active)
	assert.Empty(t, s.Game().Winner())
}

func TestMalformedPayloadClosesOnlyThatConnection(t *testing.T) {
	t.Parallel()
	_, url := newTestServer(t)

	mallory := dialTestServer(t, url)
	alice := dialTestServer(t, url)
	bob := dialTestServer(t, url)
	connectPlayer(t, alice, "alice")
	connectPlayer(t, bob, "bob")

	require.NoError(t, mallory.WriteMessage(websocket.BinaryMessage, []byte{0xc1, 0xff, 0x00}))

	// The offending connection is closed by the server.
	require.NoError(t, mallory.SetReadDeadline(time.Now().Add(testReadWait)))
	_, _, err := mallory.ReadMessage()
	require.Error(t, err)

	// Siblings keep working and the game state is untouched.
	sendCommand(t, alice, &protocol.Move{Cell: 10, Name: "alice"})
	move, isMove := readResponse(t, bob).(*protocol.MoveMade)
	require.True(t, isMove)
	assert.Equal(t, uint32(10), move.Cell)
}

func TestThirdPeerReceivesBroadcastsButCannotMove(t *testing.T) {
	t.Parallel()
	_, url := newTestServer(t)

	alice := dialTestServer(t, url)
	bob := dialTestServer(t, url)
	carol := dialTestServer(t, url)
	connectPlayer(t, alice, "alice")
	connectPlayer(t, bob, "bob")
	connectPlayer(t, carol, "carol")

	sendCommand(t, carol, &protocol.Move{Cell: 0, Name: "carol"})
	_, isFail := readResponse(t, carol).(*protocol.Fail)
	require.True(t, isFail, "a third participant's move must be rejected")

	sendCommand(t, alice, &protocol.Move{Cell: 0, Name: "alice"})
	move, isMove := readResponse(t, carol).(*protocol.MoveMade)
	require.True(t, isMove, "watch-only peers still receive broadcasts")
	assert.Equal(t, uint8(1), move.Color)
}
