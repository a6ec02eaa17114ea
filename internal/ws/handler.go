package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"wordimposter/internal/hub"
	"wordimposter/internal/lobby"
	"wordimposter/internal/types"
)

const writeTimeout = 3 * time.Second

// session is the per-connection record owned by the dispatcher. Game state
// lives here, not on the transport handle.
type session struct {
	id   string
	out  chan types.ServerMessage
	lob  *lobby.Lobby
	code string
	name string
}

func (s *session) joined() bool { return s.lob != nil }

// Handler accepts websocket connections and routes their envelopes into the
// registry and lobby actors.
func Handler(h *hub.Hub, origins []string, log *zap.Logger) http.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("ws")

	opts := &websocket.AcceptOptions{OriginPatterns: origins}
	for _, o := range origins {
		if o == "*" {
			opts = &websocket.AcceptOptions{InsecureSkipVerify: true}
			break
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, opts)
		if err != nil {
			log.Warn("accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		sess := &session{
			id:  uuid.NewString(),
			out: make(chan types.ServerMessage, 32),
		}
		slog := log.With(zap.String("session", sess.id))
		slog.Info("connected")

		// The lobby closes sess.out when this player leaves or the lobby
		// shuts down; the writer exits then.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			for msg := range sess.out {
				writeMsg(writeCtx, conn, msg)
			}
			// A closed outbox means the lobby released this session (leave,
			// slow-drop, or shutdown); end the connection so the client can
			// reconnect cleanly instead of lingering unreachable.
			_ = conn.Close(websocket.StatusGoingAway, "session released")
		}()

		defer func() {
			if sess.joined() {
				sess.lob.Inbox() <- lobby.Leave{Name: sess.name}
			} else {
				// The lobby only closes outboxes it was handed.
				close(sess.out)
			}
			slog.Info("disconnected")
		}()

		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
					return
				}
				return
			}

			handleMessage(r.Context(), conn, h, sess, data, slog)
		}
	}
}

// handleMessage dispatches one envelope. No input may crash the connection:
// parse failures, unknown types, and panics all degrade to an error reply to
// this sender only.
func handleMessage(ctx context.Context, conn *websocket.Conn, h *hub.Hub, sess *session, data []byte, log *zap.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("handler panic", zap.Any("panic", rec))
			writeMsg(ctx, conn, types.Error(types.KindInternal, "internal server error"))
		}
	}()

	var cm types.ClientMessage
	if err := json.Unmarshal(data, &cm); err != nil {
		writeMsg(ctx, conn, types.Error(types.KindMalformedMessage, "malformed message"))
		return
	}

	switch cm.Type {
	case types.TypeCreateLobby:
		reply := make(chan *lobby.Lobby, 1)
		h.Inbox() <- hub.CreateLobby{Reply: reply}
		lb := <-reply
		if lb == nil {
			writeMsg(ctx, conn, types.Error(types.KindInternal, "failed to create lobby"))
			return
		}
		writeMsg(ctx, conn, types.ServerMessage{Type: types.TypeLobbyCreated, Code: lb.Code()})

	case types.TypeJoinLobby:
		if sess.joined() {
			writeMsg(ctx, conn, types.Error(types.KindAlreadyJoined, "connection already joined a lobby"))
			return
		}
		lb := resolve(h, cm.Code)
		if lb == nil {
			writeMsg(ctx, conn, types.Error(types.KindLobbyNotFound, "lobby not found"))
			return
		}
		if err := lb.Join(cm.Name, sess.out); err != nil {
			writeMsg(ctx, conn, errorEnvelope(err))
			return
		}
		sess.lob = lb
		sess.code = cm.Code
		sess.name = cm.Name

	case types.TypeStartGame:
		lb := resolve(h, cm.Code)
		if lb == nil {
			writeMsg(ctx, conn, types.Error(types.KindLobbyNotFound, "lobby not found"))
			return
		}
		if err := lb.Start(); err != nil {
			writeMsg(ctx, conn, errorEnvelope(err))
		}

	case types.TypeChat:
		if !sess.joined() || sess.code != cm.Code {
			writeMsg(ctx, conn, types.Error(types.KindLobbyNotFound, "lobby not found"))
			return
		}
		sess.lob.Inbox() <- lobby.Chat{Sender: sess.name, Text: cm.Text}

	case types.TypeVote:
		if !sess.joined() || sess.code != cm.Code {
			writeMsg(ctx, conn, types.Error(types.KindLobbyNotFound, "lobby not found"))
			return
		}
		sess.lob.Inbox() <- lobby.Vote{Voter: sess.name, Voted: cm.Voted}

	default:
		writeMsg(ctx, conn, types.Error(types.KindUnknownType, "unknown message type"))
	}
}

func resolve(h *hub.Hub, code string) *lobby.Lobby {
	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- hub.GetLobby{Code: code, Reply: reply}
	return <-reply
}

func errorEnvelope(err error) types.ServerMessage {
	switch {
	case errors.Is(err, lobby.ErrLobbyNotFound):
		return types.Error(types.KindLobbyNotFound, "lobby not found")
	case errors.Is(err, lobby.ErrNameTaken):
		return types.Error(types.KindNameTaken, "name already taken")
	case errors.Is(err, lobby.ErrInsufficientPlayers):
		return types.Error(types.KindInsufficientPlayers, "at least 4 players required")
	default:
		return types.Error(types.KindInternal, "internal server error")
	}
}

// writeMsg is fire-and-forget: a failed or timed-out write is dropped and the
// read loop decides the connection's fate.
func writeMsg(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	_ = conn.Write(wctx, websocket.MessageText, payload)
}
