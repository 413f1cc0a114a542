package game

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/thereayou/party-rooms/internal/models"
	"github.com/thereayou/party-rooms/internal/questions"
)

func sequence(codes ...string) CodeGeneratorFunc {
	var mu sync.Mutex
	i := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		c := codes[i%len(codes)]
		i++
		return c
	}
}

func TestRegistry_FullGameScenario(t *testing.T) {
	reg := NewRegistry(sequence("ABC123"), testPrompts)

	room, host, err := reg.Create("a", "Alice")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if room.Code() != "ABC123" || !host.IsHost {
		t.Fatalf("room = %s, host = %+v", room.Code(), host)
	}

	joined, ok := reg.Get("abc123")
	if !ok || joined != room {
		t.Fatal("lookup by lowercase code failed")
	}
	bob, err := joined.AddPlayer("b", "Bob")
	if err != nil {
		t.Fatalf("AddPlayer failed: %v", err)
	}
	if bob.IsHost {
		t.Error("second player became host")
	}

	if _, err := room.Start("b", nil); !errors.Is(err, ErrNotHost) {
		t.Fatalf("Bob start err = %v, want ErrNotHost", err)
	}
	snap, err := room.Start("a", nil)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if snap.CurrentPlayer.Name != "Alice" {
		t.Errorf("first turn = %s, want Alice", snap.CurrentPlayer.Name)
	}

	if _, err := room.SelectChallenge("b", questions.Truth); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("Bob select err = %v, want ErrNotYourTurn", err)
	}
	if _, err := room.SelectChallenge("a", questions.Truth); err != nil {
		t.Fatalf("Alice select failed: %v", err)
	}
	snap, err = room.AdvanceTurn("a")
	if err != nil {
		t.Fatalf("AdvanceTurn failed: %v", err)
	}
	if snap.CurrentPlayer.Name != "Bob" {
		t.Errorf("turn = %s, want Bob", snap.CurrentPlayer.Name)
	}

	res, destroyed, err := reg.Leave("ABC123", "a")
	if err != nil {
		t.Fatalf("Leave(a) failed: %v", err)
	}
	if destroyed {
		t.Fatal("room destroyed while Bob remains")
	}
	if res.NewHost == nil || res.NewHost.ID != "b" {
		t.Errorf("NewHost = %+v, want Bob", res.NewHost)
	}
	if cur, _ := room.CurrentPlayer(); cur.ID != "b" {
		t.Errorf("current = %s, want b", cur.ID)
	}

	_, destroyed, err = reg.Leave("ABC123", "b")
	if err != nil {
		t.Fatalf("Leave(b) failed: %v", err)
	}
	if !destroyed {
		t.Fatal("room not destroyed after last player left")
	}
	if reg.Exists("ABC123") || reg.Len() != 0 {
		t.Error("room still registered")
	}
	if _, err := room.AddPlayer("c", "Carol"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("join destroyed room err = %v, want ErrRoomNotFound", err)
	}
}

func TestRegistry_CreateSkipsTakenCodes(t *testing.T) {
	reg := NewRegistry(sequence("AAAAAA", "AAAAAA", "bbbbbb"), testPrompts)

	first, _, err := reg.Create("a", "Alice")
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	second, _, err := reg.Create("b", "Bob")
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	if first.Code() != "AAAAAA" || second.Code() != "BBBBBB" {
		t.Errorf("codes = %s, %s; want AAAAAA, BBBBBB", first.Code(), second.Code())
	}
}

func TestRegistry_CreateGivesUp(t *testing.T) {
	reg := NewRegistry(sequence("ZZZZZZ"), testPrompts)

	if _, _, err := reg.Create("a", "Alice"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, _, err := reg.Create("b", "Bob"); !errors.Is(err, ErrCodeSpaceExhausted) {
		t.Errorf("err = %v, want ErrCodeSpaceExhausted", err)
	}
	if reg.Len() != 1 {
		t.Errorf("Len = %d, want 1", reg.Len())
	}
}

func TestRegistry_CreateRejectsBlankName(t *testing.T) {
	reg := NewRegistry(nil, testPrompts)

	if _, _, err := reg.Create("a", "  "); !errors.Is(err, ErrInvalidName) {
		t.Errorf("err = %v, want ErrInvalidName", err)
	}
	if reg.Len() != 0 {
		t.Error("room registered for invalid host")
	}
}

func TestRegistry_LeaveUnknown(t *testing.T) {
	reg := NewRegistry(sequence("ABC123"), testPrompts)

	if _, _, err := reg.Leave("NOPE00", "a"); !errors.Is(err, ErrRoomNotFound) {
		t.Errorf("unknown room err = %v, want ErrRoomNotFound", err)
	}

	_, _, _ = reg.Create("a", "Alice")
	if _, _, err := reg.Leave("ABC123", "zz"); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("unknown player err = %v, want ErrPlayerNotFound", err)
	}
}

func TestRegistry_DestroyIfEmptyKeepsOccupiedRooms(t *testing.T) {
	reg := NewRegistry(sequence("ABC123"), testPrompts)
	_, _, _ = reg.Create("a", "Alice")

	if reg.DestroyIfEmpty("ABC123") {
		t.Fatal("occupied room destroyed")
	}
	if reg.DestroyIfEmpty("QQQQQQ") {
		t.Fatal("unknown room reported destroyed")
	}
}

func TestRegistry_TurnExpiryWiredToNewRooms(t *testing.T) {
	fired := make(chan string, 1)
	reg := NewRegistry(sequence("ABC123"), testPrompts)
	reg.OnTurnExpired(func(code string, snap Snapshot) { fired <- code })

	room, _, err := reg.Create("a", "Alice")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	room.timeUnit = time.Millisecond
	if _, err := room.Start("a", &models.Rules{TimeLimit: 1}); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if _, err := room.SelectChallenge("a", questions.Dare); err != nil {
		t.Fatalf("SelectChallenge failed: %v", err)
	}

	select {
	case code := <-fired:
		if code != "ABC123" {
			t.Errorf("expired code = %s, want ABC123", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("turn timer did not fire")
	}
}

func TestRegistry_ConcurrentCreate(t *testing.T) {
	reg := NewRegistry(nil, testPrompts)

	const n = 64
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, _, err := reg.Create(fmt.Sprintf("c%d", i), "p"); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("Create failed: %v", err)
	}
	if reg.Len() != n {
		t.Errorf("Len = %d, want %d", reg.Len(), n)
	}
	seen := make(map[string]bool)
	for _, code := range reg.Codes() {
		if seen[code] {
			t.Errorf("duplicate code %s", code)
		}
		seen[code] = true
	}
}
