package game

import (
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/thereayou/party-rooms/internal/models"
	"github.com/thereayou/party-rooms/internal/questions"
)

const maxNameLength = 50

// PromptSource источник вопросов для комнаты. Вызывается под блокировкой комнаты,
// поэтому не должен ходить в сеть.
type PromptSource interface {
	Prompts(kind questions.Kind) []string
}

// TurnExpiredFunc вызывается, когда таймер хода переключил игрока
type TurnExpiredFunc func(code string, snap Snapshot)

// Snapshot согласованное состояние комнаты на момент операции
type Snapshot struct {
	Code          string          `json:"roomCode"`
	Players       []models.Player `json:"players"`
	CurrentPlayer *models.Player  `json:"currentPlayer"`
	Started       bool            `json:"gameStarted"`
	Rules         models.Rules    `json:"rules"`
}

// Challenge результат выбора вызова
type Challenge struct {
	Kind     questions.Kind
	Question string
	Player   models.Player
}

// Removal результат удаления игрока
type Removal struct {
	Player      models.Player
	NewHost     *models.Player
	TurnChanged bool
	Snapshot    Snapshot
}

// Empty сообщает, что после удаления в комнате никого не осталось
func (r Removal) Empty() bool { return len(r.Snapshot.Players) == 0 }

type Option func(*Room)

// WithRandom задает источник случайных индексов, intn(n) возвращает [0, n)
func WithRandom(intn func(n int) int) Option {
	return func(r *Room) { r.intn = intn }
}

// WithTurnExpiry включает серверный таймер хода
func WithTurnExpiry(fn TurnExpiredFunc) Option {
	return func(r *Room) { r.onExpire = fn }
}

// WithTimeUnit единица измерения Rules.TimeLimit, по умолчанию секунда
func WithTimeUnit(d time.Duration) Option {
	return func(r *Room) { r.timeUnit = d }
}

// Room одна игровая сессия. Все изменения выполняются под mu.
type Room struct {
	mu sync.Mutex

	code      string
	createdAt time.Time

	hostID  string
	order   []string
	players map[string]*models.Player

	started  bool
	current  int
	used     map[string]struct{}
	question string
	kind     questions.Kind
	rules    models.Rules
	closed   bool

	prompts PromptSource
	intn    func(n int) int

	// таймер хода; turnSeq меняется при каждой смене хода или нового вызова
	onExpire TurnExpiredFunc
	timeUnit time.Duration
	timer    *time.Timer
	turnSeq  uint64
}

func NewRoom(code string, prompts PromptSource, opts ...Option) *Room {
	r := &Room{
		code:      code,
		createdAt: time.Now(),
		players:   make(map[string]*models.Player),
		used:      make(map[string]struct{}),
		prompts:   prompts,
		intn:      rand.IntN,
		timeUnit:  time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Room) Code() string { return r.code }

func (r *Room) CreatedAt() time.Time { return r.createdAt }

// AddPlayer добавляет игрока в конец очереди. Первый игрок становится хостом.
func (r *Room) AddPlayer(id, name string) (models.Player, error) {
	name, err := cleanName(name)
	if err != nil {
		return models.Player{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return models.Player{}, ErrRoomNotFound
	}
	if r.started {
		return models.Player{}, ErrGameStarted
	}
	if _, ok := r.players[id]; ok {
		return models.Player{}, ErrAlreadyInRoom
	}

	p := &models.Player{ID: id, Name: name}
	if len(r.order) == 0 || r.hostID == "" {
		p.IsHost = true
		r.hostID = id
	}
	r.players[id] = p
	r.order = append(r.order, id)
	return *p, nil
}

// RemovePlayer удаляет игрока. Если ушел хост, хостом становится первый оставшийся.
func (r *Room) RemovePlayer(id string) (Removal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.removeLocked(id)
}

func (r *Room) removeLocked(id string) (Removal, error) {
	p, ok := r.players[id]
	if !ok {
		return Removal{}, ErrPlayerNotFound
	}

	idx := r.indexLocked(id)
	r.order = append(r.order[:idx:idx], r.order[idx+1:]...)
	delete(r.players, id)

	res := Removal{Player: *p}

	if r.started && len(r.order) > 0 {
		switch {
		case idx < r.current:
			r.current--
		case idx == r.current:
			// ход переходит к следующему за ушедшим
			if r.current >= len(r.order) {
				r.current = 0
			}
			r.resetTurnLocked()
			res.TurnChanged = true
		}
	}

	if len(r.order) == 0 {
		r.current = 0
		r.hostID = ""
		r.stopTimerLocked()
	} else if id == r.hostID {
		next := r.players[r.order[0]]
		next.IsHost = true
		r.hostID = next.ID
		promoted := *next
		res.NewHost = &promoted
	}

	res.Snapshot = r.snapshotLocked()
	return res, nil
}

// Start запускает игру. Только хост, только один раз.
func (r *Room) Start(callerID string, rules *models.Rules) (Snapshot, error) {
	if rules != nil {
		if err := rules.Validate(); err != nil {
			return Snapshot{}, err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isHostLocked(callerID) {
		return Snapshot{}, ErrNotHost
	}
	if r.started {
		return Snapshot{}, ErrGameStarted
	}

	if rules != nil {
		r.rules = *rules
	}
	r.started = true
	r.current = 0
	r.resetTurnLocked()
	return r.snapshotLocked(), nil
}

// SelectChallenge выбирает вопрос для текущего игрока без повторов в пределах цикла
func (r *Room) SelectChallenge(callerID string, kind questions.Kind) (Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	holder, err := r.holderLocked(callerID)
	if err != nil {
		return Challenge{}, err
	}
	if _, err := questions.ParseKind(string(kind)); err != nil {
		return Challenge{}, err
	}

	pool := r.prompts.Prompts(kind)
	if len(pool) == 0 {
		return Challenge{}, questions.ErrNoQuestions
	}

	q := r.drawLocked(pool)
	r.question = q
	r.kind = kind
	r.turnSeq++
	r.armTimerLocked()

	return Challenge{Kind: kind, Question: q, Player: *holder}, nil
}

// AdvanceTurn передает ход следующему игроку в текущем порядке
func (r *Room) AdvanceTurn(callerID string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.holderLocked(callerID); err != nil {
		return Snapshot{}, err
	}
	r.advanceLocked()
	return r.snapshotLocked(), nil
}

// Kick удаляет игрока по решению хоста
func (r *Room) Kick(callerID, targetID string) (Removal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkTargetLocked(callerID, targetID); err != nil {
		return Removal{}, err
	}
	return r.removeLocked(targetID)
}

// TransferHost передает права хоста другому игроку
func (r *Room) TransferHost(callerID, targetID string) (models.Player, Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkTargetLocked(callerID, targetID); err != nil {
		return models.Player{}, Snapshot{}, err
	}

	r.players[callerID].IsHost = false
	target := r.players[targetID]
	target.IsHost = true
	r.hostID = targetID
	return *target, r.snapshotLocked(), nil
}

// UpdateRules сохраняет новые правила. Возвращает хоста, который их изменил.
func (r *Room) UpdateRules(callerID string, rules models.Rules) (models.Player, error) {
	if err := rules.Validate(); err != nil {
		return models.Player{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isHostLocked(callerID) {
		return models.Player{}, ErrNotHost
	}
	r.rules = rules
	return *r.players[callerID], nil
}

// SetVoice обновляет голосовой статус игрока
func (r *Room) SetVoice(id string, enabled, selective bool) (models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[id]
	if !ok {
		return models.Player{}, ErrPlayerNotFound
	}
	p.VoiceEnabled = enabled
	p.SelectiveVoice = selective
	return *p, nil
}

// SetMute обновляет статус микрофона игрока
func (r *Room) SetMute(id string, muted bool) (models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[id]
	if !ok {
		return models.Player{}, ErrPlayerNotFound
	}
	p.VoiceMuted = muted
	return *p, nil
}

// ResolveTarget ищет не-хоста по имени. Имена не уникальны,
// поэтому совпадение должно быть ровно одно.
func (r *Room) ResolveTarget(name string) (string, error) {
	name = strings.TrimSpace(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	found := ""
	for _, id := range r.order {
		p := r.players[id]
		if p.IsHost || p.Name != name {
			continue
		}
		if found != "" {
			return "", ErrAmbiguousName
		}
		found = id
	}
	if found == "" {
		return "", ErrPlayerNotFound
	}
	return found, nil
}

// Player возвращает копию игрока по id соединения
func (r *Room) Player(id string) (models.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.players[id]
	if !ok {
		return models.Player{}, false
	}
	return *p, true
}

// Players возвращает игроков в порядке входа
func (r *Room) Players() []models.Player {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playersLocked()
}

// CurrentPlayer возвращает игрока, чей сейчас ход
func (r *Room) CurrentPlayer() (models.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.currentLocked()
	if p == nil {
		return models.Player{}, false
	}
	return *p, true
}

func (r *Room) HostID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostID
}

func (r *Room) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

func (r *Room) Rules() models.Rules {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rules
}

func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}

// CurrentQuestion последний выбранный вопрос текущего хода
func (r *Room) CurrentQuestion() (questions.Kind, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.kind, r.question
}

// UsedQuestions количество вопросов, выданных в текущем цикле
func (r *Room) UsedQuestions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.used)
}

func (r *Room) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// closeIfEmpty помечает пустую комнату закрытой. Закрытая комната не принимает игроков.
func (r *Room) closeIfEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.order) > 0 {
		return false
	}
	r.closed = true
	r.stopTimerLocked()
	return true
}

func (r *Room) isHostLocked(id string) bool {
	return id != "" && id == r.hostID
}

func (r *Room) holderLocked(callerID string) (*models.Player, error) {
	if !r.started {
		return nil, ErrGameNotStarted
	}
	holder := r.currentLocked()
	if holder == nil || holder.ID != callerID {
		return nil, ErrNotYourTurn
	}
	return holder, nil
}

func (r *Room) checkTargetLocked(callerID, targetID string) error {
	if !r.isHostLocked(callerID) {
		return ErrNotHost
	}
	target, ok := r.players[targetID]
	if !ok {
		return ErrPlayerNotFound
	}
	if target.IsHost {
		return ErrTargetIsHost
	}
	return nil
}

func (r *Room) drawLocked(pool []string) string {
	available := make([]string, 0, len(pool))
	for _, q := range pool {
		if _, seen := r.used[q]; !seen {
			available = append(available, q)
		}
	}
	if len(available) == 0 {
		clear(r.used)
		available = pool
	}

	q := available[r.intn(len(available))]
	r.used[q] = struct{}{}
	return q
}

func (r *Room) advanceLocked() {
	if len(r.order) == 0 {
		return
	}
	r.current = (r.current + 1) % len(r.order)
	r.resetTurnLocked()
}

func (r *Room) resetTurnLocked() {
	r.question = ""
	r.kind = ""
	r.turnSeq++
	r.stopTimerLocked()
}

func (r *Room) armTimerLocked() {
	r.stopTimerLocked()
	if r.onExpire == nil || r.rules.TimeLimit <= 0 {
		return
	}

	seq := r.turnSeq
	d := time.Duration(r.rules.TimeLimit) * r.timeUnit
	r.timer = time.AfterFunc(d, func() { r.expire(seq) })
}

func (r *Room) stopTimerLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Room) expire(seq uint64) {
	r.mu.Lock()
	if r.closed || !r.started || seq != r.turnSeq || len(r.order) == 0 {
		r.mu.Unlock()
		return
	}
	r.timer = nil
	r.advanceLocked()
	snap := r.snapshotLocked()
	fn := r.onExpire
	r.mu.Unlock()

	fn(r.code, snap)
}

func (r *Room) currentLocked() *models.Player {
	if !r.started || len(r.order) == 0 {
		return nil
	}
	return r.players[r.order[r.current]]
}

func (r *Room) indexLocked(id string) int {
	for i, pid := range r.order {
		if pid == id {
			return i
		}
	}
	return -1
}

func (r *Room) playersLocked() []models.Player {
	out := make([]models.Player, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.players[id])
	}
	return out
}

func (r *Room) snapshotLocked() Snapshot {
	snap := Snapshot{
		Code:    r.code,
		Players: r.playersLocked(),
		Started: r.started,
		Rules:   r.rules,
	}
	if p := r.currentLocked(); p != nil {
		cur := *p
		snap.CurrentPlayer = &cur
	}
	return snap
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	if r := []rune(name); len(r) > maxNameLength {
		name = string(r[:maxNameLength])
	}
	return name, nil
}
