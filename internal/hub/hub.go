package hub

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"wordimposter/internal/lobby"
)

type HubMsg interface{ isHubMsg() }

type CreateLobby struct {
	Reply chan *lobby.Lobby
}

type GetLobby struct {
	Code  string
	Reply chan *lobby.Lobby
}

// RemoveLobby is a no-op when the code is absent.
type RemoveLobby struct {
	Code string
}

type ShutdownHub struct{}

func (CreateLobby) isHubMsg() {}
func (GetLobby) isHubMsg()    {}
func (RemoveLobby) isHubMsg() {}
func (ShutdownHub) isHubMsg() {}

// Hub is the single source of truth for lobby existence: a registry actor
// mapping lobby codes to running lobby goroutines.
type Hub struct {
	inbox   chan HubMsg
	lobbies map[string]*lobby.Lobby
	words   lobby.WordSource
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewHub(parent context.Context, words lobby.WordSource, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		lobbies: make(map[string]*lobby.Lobby),
		words:   words,
		log:     log.Named("hub"),
		ctx:     ctx,
		cancel:  cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateLobby:
				msg.Reply <- h.createLobby()

			case GetLobby:
				msg.Reply <- h.lobbies[msg.Code] // may be nil

			case RemoveLobby:
				if lb := h.lobbies[msg.Code]; lb != nil {
					delete(h.lobbies, msg.Code)
					lb.Inbox() <- lobby.Shutdown{}
					h.log.Info("lobby removed", zap.String("code", msg.Code))
				}

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

// createLobby retries code generation until an unused code comes up, then
// installs a fresh lobby. Returns nil only if the randomness source fails.
func (h *Hub) createLobby() *lobby.Lobby {
	var code string
	for {
		c, err := GenerateCode()
		if err != nil {
			h.log.Error("code generation failed", zap.Error(err))
			return nil
		}
		if _, taken := h.lobbies[c]; !taken {
			code = c
			break
		}
		h.log.Debug("code collision, regenerating", zap.String("code", c))
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	lb := lobby.New(h.ctx, code, h.words, rng, h.removeWhenEmpty, h.log)
	h.lobbies[code] = lb
	h.log.Info("lobby created", zap.String("code", code))
	return lb
}

// removeWhenEmpty runs on a lobby goroutine; the inbox send keeps registry
// mutation on the hub goroutine.
func (h *Hub) removeWhenEmpty(code string) {
	h.inbox <- RemoveLobby{Code: code}
}

func (h *Hub) shutdown() {
	for _, lb := range h.lobbies {
		lb.Inbox() <- lobby.Shutdown{}
	}
	clear(h.lobbies)
	h.cancel()
}
