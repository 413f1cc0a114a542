package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gws "github.com/gorilla/websocket"
	"github.com/thereayou/party-rooms/internal/game"
	"github.com/thereayou/party-rooms/internal/handlers/dto"
	"github.com/thereayou/party-rooms/internal/models"
	"github.com/thereayou/party-rooms/internal/questions"
	"github.com/thereayou/party-rooms/internal/websocket"
)

const readTimeout = 2 * time.Second

type testEnv struct {
	srv   *httptest.Server
	rooms *game.Registry
	hub   *websocket.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bank := questions.NewBank(questions.NewMemoryStore())
	if err := bank.Load(context.Background()); err != nil {
		t.Fatalf("bank load: %v", err)
	}

	hub := websocket.NewHub()
	rooms := game.NewRegistry(game.CodeGeneratorFunc(func() string { return "ABC123" }), bank)
	gameH := NewGameHandler(rooms, hub)

	r := gin.New()
	r.GET("/ws", NewWebSocketHandler(hub, gameH, 32, nil).HandleWebSocket)
	srv := httptest.NewServer(r)

	t.Cleanup(func() {
		hub.Stop()
		srv.Close()
	})
	return &testEnv{srv: srv, rooms: rooms, hub: hub}
}

type testConn struct {
	t    *testing.T
	conn *gws.Conn
}

func (e *testEnv) dial(t *testing.T) *testConn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.srv.URL, "http") + "/ws"
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &testConn{t: t, conn: conn}
}

func (c *testConn) send(event websocket.EventType, payload any) {
	c.t.Helper()
	data, err := websocket.Encode(event, payload)
	if err != nil {
		c.t.Fatalf("encode %s: %v", event, err)
	}
	if err := c.conn.WriteMessage(gws.TextMessage, data); err != nil {
		c.t.Fatalf("write %s: %v", event, err)
	}
}

// expect читает сообщения, пропуская другие события, пока не придет event
func (c *testConn) expect(event websocket.EventType, into any) {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.t.Fatalf("waiting for %s: %v", event, err)
		}
		var msg websocket.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.t.Fatalf("decode envelope: %v", err)
		}
		if msg.Event != event {
			continue
		}
		if into != nil {
			if err := json.Unmarshal(msg.Payload, into); err != nil {
				c.t.Fatalf("decode %s payload: %v", event, err)
			}
		}
		return
	}
}

func (c *testConn) expectError(want string) {
	c.t.Helper()
	var e dto.RoomError
	c.expect(websocket.EventRoomError, &e)
	if e.Message != want {
		c.t.Errorf("room-error = %q, want %q", e.Message, want)
	}
}

// expectClosed ждет закрытия соединения сервером
func (c *testConn) expectClosed() {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if ne, ok := err.(interface{ Timeout() bool }); ok && ne.Timeout() {
				c.t.Fatal("connection was not closed")
			}
			return
		}
	}
}

func (c *testConn) create(name string) dto.RoomCreated {
	c.t.Helper()
	c.send(websocket.EventCreateRoom, dto.CreateRoomRequest{PlayerName: name})
	var created dto.RoomCreated
	c.expect(websocket.EventRoomCreated, &created)
	return created
}

func (c *testConn) join(code, name string) dto.RoomJoined {
	c.t.Helper()
	c.send(websocket.EventJoinRoom, dto.JoinRoomRequest{RoomCode: code, PlayerName: name})
	var joined dto.RoomJoined
	c.expect(websocket.EventRoomJoined, &joined)
	return joined
}

func names(players []models.Player) []string {
	out := make([]string, 0, len(players))
	for _, p := range players {
		out = append(out, p.Name)
	}
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(readTimeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestGame_FullRound(t *testing.T) {
	env := newTestEnv(t)
	alice := env.dial(t)
	bob := env.dial(t)

	created := alice.create("Alice")
	if created.RoomCode != "ABC123" || created.PlayerName != "Alice" || created.PlayerID == "" {
		t.Fatalf("room-created = %+v", created)
	}

	joined := bob.join("abc123", "Bob")
	if got := names(joined.Players); !slices.Equal(got, []string{"Alice", "Bob"}) {
		t.Fatalf("room-joined players = %v", got)
	}
	if !joined.Players[0].IsHost || joined.Players[1].IsHost {
		t.Errorf("host flags = %+v", joined.Players)
	}

	var pj dto.PlayerJoined
	alice.expect(websocket.EventPlayerJoined, &pj)
	if pj.Player.Name != "Bob" || len(pj.Players) != 2 {
		t.Errorf("player-joined = %+v", pj)
	}

	bob.send(websocket.EventStartGame, dto.StartGameRequest{RoomCode: "ABC123"})
	bob.expectError("Only the host can do that")

	alice.send(websocket.EventStartGame, dto.StartGameRequest{RoomCode: "ABC123"})
	for _, c := range []*testConn{alice, bob} {
		var gs dto.GameStarted
		c.expect(websocket.EventGameStarted, &gs)
		if gs.CurrentPlayer == nil || gs.CurrentPlayer.Name != "Alice" {
			t.Errorf("game-started current = %+v", gs.CurrentPlayer)
		}
	}

	bob.send(websocket.EventSelectChallenge, dto.SelectChallengeRequest{Type: "truth"})
	bob.expectError("It is not your turn")

	alice.send(websocket.EventSelectChallenge, dto.SelectChallengeRequest{Type: "truth"})
	for _, c := range []*testConn{alice, bob} {
		var cs dto.ChallengeSelected
		c.expect(websocket.EventChallengeSelected, &cs)
		if cs.Type != "truth" || cs.Player.Name != "Alice" {
			t.Errorf("challenge-selected = %+v", cs)
		}
		if !slices.Contains(questions.Defaults[questions.Truth], cs.Question) {
			t.Errorf("question %q not from truth list", cs.Question)
		}
	}

	bob.send(websocket.EventNextPlayer, nil)
	bob.expectError("It is not your turn")

	alice.send(websocket.EventNextPlayer, nil)
	var pc dto.PlayerChanged
	bob.expect(websocket.EventPlayerChanged, &pc)
	if pc.CurrentPlayer == nil || pc.CurrentPlayer.Name != "Bob" {
		t.Errorf("player-changed current = %+v", pc.CurrentPlayer)
	}

	bob.send(websocket.EventChatMessage, dto.ChatMessageRequest{Message: "  hi all "})
	var chat dto.ChatMessage
	alice.expect(websocket.EventChatMessage, &chat)
	if chat.Player != "Bob" || chat.Message != "hi all" {
		t.Errorf("chat-message = %+v", chat)
	}
	if _, err := time.Parse(time.RFC3339, chat.Timestamp); err != nil {
		t.Errorf("timestamp %q: %v", chat.Timestamp, err)
	}
}

func TestGame_JoinErrors(t *testing.T) {
	env := newTestEnv(t)
	alice := env.dial(t)
	late := env.dial(t)
	lost := env.dial(t)

	lost.send(websocket.EventJoinRoom, dto.JoinRoomRequest{RoomCode: "ZZZZZZ", PlayerName: "Lost"})
	lost.expectError("Room not found")

	alice.create("Alice")
	alice.send(websocket.EventCreateRoom, dto.CreateRoomRequest{PlayerName: "Again"})
	alice.expectError("Already in a room")

	alice.send(websocket.EventStartGame, dto.StartGameRequest{})
	alice.expect(websocket.EventGameStarted, nil)

	late.send(websocket.EventJoinRoom, dto.JoinRoomRequest{RoomCode: "ABC123", PlayerName: "Late"})
	late.expectError("Game has already started")

	late.send(websocket.EventChatMessage, dto.ChatMessageRequest{Message: "hello?"})
	late.expectError("Not in a room")
}

func TestGame_InvalidMessage(t *testing.T) {
	env := newTestEnv(t)
	c := env.dial(t)

	if err := c.conn.WriteMessage(gws.TextMessage, []byte("{not json")); err != nil {
		t.Fatalf("write: %v", err)
	}
	c.expectError("Invalid message format")

	c.send(websocket.EventCreateRoom, dto.CreateRoomRequest{PlayerName: "   "})
	c.expectError("Player name is required")
}

func TestGame_LastPlayerLeavingDestroysRoom(t *testing.T) {
	env := newTestEnv(t)
	alice := env.dial(t)
	alice.create("Alice")

	if !env.rooms.Exists("ABC123") {
		t.Fatal("room not registered")
	}
	alice.conn.Close()
	waitFor(t, func() bool { return env.rooms.Len() == 0 })

	carol := env.dial(t)
	carol.send(websocket.EventJoinRoom, dto.JoinRoomRequest{RoomCode: "ABC123", PlayerName: "Carol"})
	carol.expectError("Room not found")
}

func TestGame_HostLeavesMidGame(t *testing.T) {
	env := newTestEnv(t)
	alice := env.dial(t)
	bob := env.dial(t)

	alice.create("Alice")
	bobID := bob.join("ABC123", "Bob").PlayerID
	alice.send(websocket.EventStartGame, nil)
	bob.expect(websocket.EventGameStarted, nil)

	alice.conn.Close()

	var left dto.PlayerLeft
	bob.expect(websocket.EventPlayerLeft, &left)
	if left.Player != "Alice" || len(left.Players) != 1 || !left.Players[0].IsHost {
		t.Errorf("player-left = %+v", left)
	}

	var ht dto.HostTransferred
	bob.expect(websocket.EventHostTransferred, &ht)
	if ht.NewHostID != bobID {
		t.Errorf("new host = %s, want %s", ht.NewHostID, bobID)
	}

	var pc dto.PlayerChanged
	bob.expect(websocket.EventPlayerChanged, &pc)
	if pc.CurrentPlayer == nil || pc.CurrentPlayer.ID != bobID {
		t.Errorf("current = %+v, want Bob", pc.CurrentPlayer)
	}
}

func TestGame_KickClosesTargetConnection(t *testing.T) {
	env := newTestEnv(t)
	alice := env.dial(t)
	bob := env.dial(t)
	carol := env.dial(t)

	alice.create("Alice")
	bobID := bob.join("ABC123", "Bob").PlayerID
	carol.join("ABC123", "Carol")

	carol.send(websocket.EventKickPlayer, dto.TargetRequest{PlayerID: bobID})
	carol.expectError("Only the host can do that")

	alice.send(websocket.EventKickPlayer, dto.TargetRequest{PlayerID: bobID})

	var kicked dto.Kicked
	bob.expect(websocket.EventKicked, &kicked)
	if kicked.Reason != kickReason {
		t.Errorf("reason = %q", kicked.Reason)
	}
	bob.expectClosed()

	for _, c := range []*testConn{alice, carol} {
		var left dto.PlayerLeft
		c.expect(websocket.EventPlayerLeft, &left)
		if left.PlayerID != bobID {
			t.Errorf("player-left id = %s, want %s", left.PlayerID, bobID)
		}
		if got := names(left.Players); !slices.Equal(got, []string{"Alice", "Carol"}) {
			t.Errorf("players after kick = %v", got)
		}
	}

	room, _ := env.rooms.Get("ABC123")
	if room.Len() != 2 {
		t.Errorf("room has %d players, want 2", room.Len())
	}
}

func TestGame_TransferHostByName(t *testing.T) {
	env := newTestEnv(t)
	alice := env.dial(t)
	bob := env.dial(t)

	alice.create("Alice")
	bobID := bob.join("ABC123", "Bob").PlayerID

	alice.send(websocket.EventTransferHost, dto.TargetRequest{PlayerName: "Bob"})
	var ht dto.HostTransferred
	bob.expect(websocket.EventHostTransferred, &ht)
	if ht.NewHost != "Bob" || ht.NewHostID != bobID {
		t.Errorf("host-transferred = %+v", ht)
	}

	alice.send(websocket.EventRulesUpdated, dto.RulesUpdateRequest{})
	alice.expectError("Only the host can do that")

	bob.send(websocket.EventRulesUpdated, dto.RulesUpdateRequest{})
	var ru dto.RulesUpdated
	alice.expect(websocket.EventRulesUpdated, &ru)
	if ru.UpdatedBy != "Bob" {
		t.Errorf("updatedBy = %s, want Bob", ru.UpdatedBy)
	}
}

func TestGame_SignalingRelay(t *testing.T) {
	env := newTestEnv(t)
	alice := env.dial(t)
	bob := env.dial(t)
	stranger := env.dial(t)

	aliceID := alice.create("Alice").PlayerID
	bobID := bob.join("ABC123", "Bob").PlayerID

	alice.send(websocket.EventWebRTCOffer, dto.SignalRequest{
		To:    bobID,
		Offer: json.RawMessage(`{"sdp":"v=0"}`),
	})
	var sig dto.Signal
	bob.expect(websocket.EventWebRTCOffer, &sig)
	if sig.From != aliceID || string(sig.Offer) != `{"sdp":"v=0"}` {
		t.Errorf("signal = %+v", sig)
	}

	stranger.send(websocket.EventICECandidate, dto.SignalRequest{To: bobID})
	stranger.expectError("Not in a room")
}

func TestGame_VoiceStatus(t *testing.T) {
	env := newTestEnv(t)
	alice := env.dial(t)
	bob := env.dial(t)

	alice.create("Alice")
	bob.join("ABC123", "Bob")

	bob.send(websocket.EventVoiceToggle, dto.VoiceToggleRequest{Enabled: true, SelectiveMode: true})
	var vs dto.VoiceStatus
	alice.expect(websocket.EventVoiceStatus, &vs)
	if vs.Player != "Bob" || !vs.Enabled || !vs.SelectiveMode {
		t.Errorf("voice-status = %+v", vs)
	}

	bob.send(websocket.EventVoiceMuteToggle, dto.VoiceMuteRequest{Muted: true})
	var vm dto.VoiceMuteStatus
	alice.expect(websocket.EventVoiceMuteStatus, &vm)
	if vm.Player != "Bob" || !vm.Muted {
		t.Errorf("voice-mute-status = %+v", vm)
	}
}
