package lobby

import (
	"context"
	"errors"
	"math/rand"

	"go.uber.org/zap"

	"wordimposter/internal/game"
	"wordimposter/internal/types"
)

var (
	ErrLobbyNotFound       = errors.New("lobby not found")
	ErrNameTaken           = errors.New("name already taken")
	ErrInsufficientPlayers = errors.New("at least 4 players required")
)

type State string

const (
	StateWaiting State = "waiting"
	StatePlaying State = "playing"
)

// WordSource supplies one secret word per round.
type WordSource interface {
	Next() string
}

type Msg interface{ isLobbyMsg() }

type Join struct {
	Name   string
	Outbox chan types.ServerMessage
	Reply  chan error
}

func (Join) isLobbyMsg() {}

// Leave is triggered by disconnect, never by an explicit client message.
type Leave struct{ Name string }

func (Leave) isLobbyMsg() {}

type Start struct {
	Reply chan error
}

func (Start) isLobbyMsg() {}

type Chat struct {
	Sender string
	Text   string
}

func (Chat) isLobbyMsg() {}

type Vote struct {
	Voter string
	Voted string
}

func (Vote) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

// View reflects internal state without data races; test-only.
type View struct {
	State         State
	Players       []string
	Roles         map[string]game.Role
	Word          string
	Chat          []types.ChatEntry
	Votes         map[string]string
	ImposterNames []string
}

type player struct {
	name string
	out  chan types.ServerMessage
	role game.Role
}

// Lobby serializes all operations for one game room through a single
// goroutine; different lobbies never contend with each other.
type Lobby struct {
	code    string
	inbox   chan Msg
	players []*player
	chat    []types.ChatEntry
	state   State
	word    string

	// imposterNames is captured at game start so the result report cannot
	// drift when the roster changes mid-round.
	imposterNames []string
	votes         map[string]string

	words   WordSource
	rng     *rand.Rand
	onEmpty func(code string)
	log     *zap.Logger

	// stopped is set once the last player leaves; the loop then rejects
	// joins until the registry's Shutdown arrives.
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New starts a lobby actor. onEmpty is invoked (from the lobby goroutine)
// when the last player leaves, so the registry can drop its entry.
func New(parent context.Context, code string, words WordSource, rng *rand.Rand, onEmpty func(code string), log *zap.Logger) *Lobby {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)

	l := &Lobby{
		code:    code,
		inbox:   make(chan Msg, 64),
		state:   StateWaiting,
		votes:   make(map[string]string),
		words:   words,
		rng:     rng,
		onEmpty: onEmpty,
		log:     log.With(zap.String("lobby", code)),
		ctx:     ctx,
		cancel:  cancel,
	}

	go l.loop()
	return l
}

func (l *Lobby) Code() string { return l.code }

// Inbox exposes the actor's message channel to the dispatcher and tests.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Join registers a player and waits for the verdict. Returns
// ErrLobbyNotFound when the lobby shut down before answering.
func (l *Lobby) Join(name string, outbox chan types.ServerMessage) error {
	reply := make(chan error, 1)
	l.inbox <- Join{Name: name, Outbox: outbox, Reply: reply}
	return l.await(reply)
}

// Start begins a round and waits for the verdict, with the same
// shutdown guarantee as Join.
func (l *Lobby) Start() error {
	reply := make(chan error, 1)
	l.inbox <- Start{Reply: reply}
	return l.await(reply)
}

// await guards a reply against lobby shutdown: once the context is done the
// loop will never answer, except for a reply that raced the cancellation.
func (l *Lobby) await(reply chan error) error {
	select {
	case err := <-reply:
		return err
	case <-l.ctx.Done():
		select {
		case err := <-reply:
			return err
		default:
			return ErrLobbyNotFound
		}
	}
}

func (l *Lobby) loop() {
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				msg.Reply <- l.handleJoin(msg)

			case Leave:
				l.removePlayer(msg.Name)

			case Start:
				msg.Reply <- l.handleStart()

			case Chat:
				l.handleChat(msg)

			case Vote:
				l.handleVote(msg)

			case GetState:
				msg.Reply <- l.view()

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) handleJoin(msg Join) error {
	if l.stopped {
		return ErrLobbyNotFound
	}
	for _, p := range l.players {
		if p.name == msg.Name {
			return ErrNameTaken
		}
	}

	l.players = append(l.players, &player{name: msg.Name, out: msg.Outbox, role: game.RoleWaiting})
	l.log.Info("player joined", zap.String("player", msg.Name), zap.Int("players", len(l.players)))

	// Joining is allowed mid-round as well; the newcomer stays in the
	// waiting role until the next start and counts toward the vote
	// threshold from now on.
	l.broadcastRoster()
	return nil
}

func (l *Lobby) handleStart() error {
	if l.stopped {
		return ErrLobbyNotFound
	}
	if len(l.players) < game.MinPlayers {
		return ErrInsufficientPlayers
	}

	word := l.words.Next()
	imposters := game.ChooseImposters(l.rng, len(l.players))

	l.word = word
	l.state = StatePlaying
	l.imposterNames = make([]string, 0, len(imposters))

	// Role delivery is per-player so imposters never see the word; the
	// started signal below is the only broadcast.
	for i, p := range l.players {
		if _, ok := imposters[i]; ok {
			p.role = game.RoleImposter
			l.imposterNames = append(l.imposterNames, p.name)
			l.send(p, types.ServerMessage{Type: types.TypeRole, Role: string(game.RoleImposter)})
		} else {
			p.role = game.RoleNormal
			l.send(p, types.ServerMessage{Type: types.TypeRole, Role: string(game.RoleNormal), Word: word})
		}
	}

	l.chat = nil
	l.log.Info("game started", zap.Int("players", len(l.players)), zap.Int("imposters", len(imposters)))
	l.broadcast(types.ServerMessage{Type: types.TypeGameStarted})
	return nil
}

func (l *Lobby) handleChat(msg Chat) {
	if l.stopped {
		return
	}
	entry := types.ChatEntry{Name: msg.Sender, Text: msg.Text}
	l.chat = append(l.chat, entry)
	l.broadcast(types.ServerMessage{Type: types.TypeChat, Msg: &entry})
}

func (l *Lobby) handleVote(msg Vote) {
	if l.stopped || !l.isPlayer(msg.Voter) {
		return
	}
	// Re-voting before the tally is last-write-wins.
	l.votes[msg.Voter] = msg.Voted
	l.maybeFinishRound()
}

// maybeFinishRound fires the tally exactly once, precisely when every
// current player has a vote on record. Votes are cleared before the result
// broadcast so a slow-client drop during fan-out cannot re-trigger it.
func (l *Lobby) maybeFinishRound() {
	if l.stopped || len(l.votes) == 0 || len(l.votes) != len(l.players) {
		return
	}

	votedOut := game.Tally(l.votes)
	imposters := l.imposterNames
	if imposters == nil {
		imposters = []string{}
	}

	l.votes = make(map[string]string)
	l.state = StateWaiting

	l.log.Info("round resolved", zap.Strings("votedOut", votedOut))
	l.broadcast(types.ServerMessage{Type: types.TypeResult, VotedOut: &votedOut, Imposters: &imposters})
}

// removePlayer applies leave semantics: drop the player, purge their cast
// vote, and re-check the tally threshold, since a shrinking roster may be
// exactly what completes a round.
func (l *Lobby) removePlayer(name string) {
	idx := -1
	for i, p := range l.players {
		if p.name == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		return
	}

	p := l.players[idx]
	l.players = append(l.players[:idx], l.players[idx+1:]...)
	close(p.out)
	delete(l.votes, name)

	if len(l.players) == 0 {
		l.log.Info("lobby empty")
		l.stopped = true
		if l.onEmpty != nil {
			l.onEmpty(l.code)
		}
		return
	}

	l.log.Info("player left", zap.String("player", name), zap.Int("players", len(l.players)))
	l.broadcastRoster()
	l.maybeFinishRound()
}

func (l *Lobby) isPlayer(name string) bool {
	for _, p := range l.players {
		if p.name == name {
			return true
		}
	}
	return false
}

func (l *Lobby) broadcastRoster() {
	names := make([]string, len(l.players))
	for i, p := range l.players {
		names[i] = p.name
	}
	l.broadcast(types.ServerMessage{Type: types.TypeUpdatePlayers, Players: names})
}

// broadcast fans out to a snapshot of the current roster. A player whose
// outbox is full is dropped with leave semantics.
func (l *Lobby) broadcast(msg types.ServerMessage) {
	snapshot := make([]*player, len(l.players))
	copy(snapshot, l.players)

	var dropped []string
	for _, p := range snapshot {
		if !l.send(p, msg) {
			dropped = append(dropped, p.name)
		}
	}
	for _, name := range dropped {
		l.log.Warn("dropping slow player", zap.String("player", name))
		l.removePlayer(name)
	}
}

func (l *Lobby) send(p *player, msg types.ServerMessage) bool {
	select {
	case p.out <- msg:
		return true
	default:
		return false
	}
}

func (l *Lobby) view() View {
	names := make([]string, len(l.players))
	roles := make(map[string]game.Role, len(l.players))
	for i, p := range l.players {
		names[i] = p.name
		roles[p.name] = p.role
	}
	votes := make(map[string]string, len(l.votes))
	for k, v := range l.votes {
		votes[k] = v
	}
	return View{
		State:         l.state,
		Players:       names,
		Roles:         roles,
		Word:          l.word,
		Chat:          append([]types.ChatEntry(nil), l.chat...),
		Votes:         votes,
		ImposterNames: append([]string(nil), l.imposterNames...),
	}
}

func (l *Lobby) shutdown() {
	for _, p := range l.players {
		close(p.out)
	}
	l.players = nil
	l.cancel()

	// Cancellation precedes the drain, so askers that arrive after it see a
	// done context; whatever was already queued gets answered here.
	for {
		select {
		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				msg.Reply <- ErrLobbyNotFound
			case Start:
				msg.Reply <- ErrLobbyNotFound
			case GetState:
				msg.Reply <- View{}
			}
		default:
			return
		}
	}
}
