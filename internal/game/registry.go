package game

import (
	"sync"

	"github.com/thereayou/party-rooms/internal/models"
)

// Registry хранит живые комнаты по коду.
// Порядок блокировок: сначала Registry.mu, затем Room.mu.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	codes   CodeGenerator
	prompts PromptSource
	opts    []Option
	expire  TurnExpiredFunc
}

func NewRegistry(codes CodeGenerator, prompts PromptSource, opts ...Option) *Registry {
	if codes == nil {
		codes = RandomCodes{}
	}
	return &Registry{
		rooms:   make(map[string]*Room),
		codes:   codes,
		prompts: prompts,
		opts:    opts,
	}
}

// OnTurnExpired включает серверный таймер хода для комнат, созданных после вызова
func (g *Registry) OnTurnExpired(fn TurnExpiredFunc) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.expire = fn
}

// Create создает комнату с уникальным кодом и добавляет в нее хоста
func (g *Registry) Create(hostID, name string) (*Room, models.Player, error) {
	if _, err := cleanName(name); err != nil {
		return nil, models.Player{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := NormalizeCode(g.codes.Generate())
		if _, taken := g.rooms[code]; taken {
			continue
		}

		opts := g.opts
		if g.expire != nil {
			opts = append(opts[:len(opts):len(opts)], WithTurnExpiry(g.expire))
		}
		room := NewRoom(code, g.prompts, opts...)
		host, err := room.AddPlayer(hostID, name)
		if err != nil {
			return nil, models.Player{}, err
		}
		g.rooms[code] = room
		return room, host, nil
	}
	return nil, models.Player{}, ErrCodeSpaceExhausted
}

// Get ищет комнату. Отсутствие комнаты не ошибка.
func (g *Registry) Get(code string) (*Room, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	room, ok := g.rooms[NormalizeCode(code)]
	return room, ok
}

// Exists сообщает, занят ли код живой комнатой
func (g *Registry) Exists(code string) bool {
	_, ok := g.Get(code)
	return ok
}

// DestroyIfEmpty удаляет комнату, если в ней не осталось игроков
func (g *Registry) DestroyIfEmpty(code string) bool {
	code = NormalizeCode(code)

	g.mu.Lock()
	defer g.mu.Unlock()

	room, ok := g.rooms[code]
	if !ok {
		return false
	}
	if !room.closeIfEmpty() {
		return false
	}
	delete(g.rooms, code)
	return true
}

// Leave удаляет игрока из комнаты и уничтожает комнату, если она опустела
func (g *Registry) Leave(code, id string) (Removal, bool, error) {
	room, ok := g.Get(code)
	if !ok {
		return Removal{}, false, ErrRoomNotFound
	}

	res, err := room.RemovePlayer(id)
	if err != nil {
		return Removal{}, false, err
	}
	if !res.Empty() {
		return res, false, nil
	}
	return res, g.DestroyIfEmpty(code), nil
}

// Len количество живых комнат
func (g *Registry) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

// Codes коды живых комнат
func (g *Registry) Codes() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	codes := make([]string, 0, len(g.rooms))
	for code := range g.rooms {
		codes = append(codes, code)
	}
	return codes
}
