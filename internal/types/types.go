package types

// Client -> server envelope types.
const (
	TypeCreateLobby = "createLobby"
	TypeJoinLobby   = "joinLobby"
	TypeStartGame   = "startGame"
	TypeChat        = "chat"
	TypeVote        = "vote"
)

// Server -> client envelope types.
const (
	TypeLobbyCreated  = "lobbyCreated"
	TypeError         = "error"
	TypeUpdatePlayers = "updatePlayers"
	TypeRole          = "role"
	TypeGameStarted   = "gameStarted"
	TypeResult        = "result"
)

// ErrorKind identifies a failure independently of its display text.
type ErrorKind string

const (
	KindLobbyNotFound       ErrorKind = "lobbyNotFound"
	KindNameTaken           ErrorKind = "nameTaken"
	KindInsufficientPlayers ErrorKind = "insufficientPlayers"
	KindAlreadyJoined       ErrorKind = "alreadyJoined"
	KindMalformedMessage    ErrorKind = "malformedMessage"
	KindUnknownType         ErrorKind = "unknownType"
	KindInternal            ErrorKind = "internal"
)

type ClientMessage struct {
	Type  string `json:"type"`
	Code  string `json:"code,omitempty"`
	Name  string `json:"name,omitempty"`
	Text  string `json:"text,omitempty"`
	Voted string `json:"voted,omitempty"`
}

type ChatEntry struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// ServerMessage is the single outbound envelope; fields beyond Type are
// populated per message type and elided from the wire otherwise.
type ServerMessage struct {
	Type      string     `json:"type"`
	Code      string     `json:"code,omitempty"`
	Kind      ErrorKind  `json:"kind,omitempty"`
	Message   string     `json:"message,omitempty"`
	Players   []string   `json:"players,omitempty"`
	Role      string     `json:"role,omitempty"`
	Word      string     `json:"word,omitempty"`
	Msg *ChatEntry `json:"msg,omitempty"`
	// Pointers so a result with no votes or no imposters still carries an
	// empty array on the wire instead of dropping the field.
	VotedOut  *[]string `json:"votedOut,omitempty"`
	Imposters *[]string `json:"imposters,omitempty"`
}

// Error builds an error envelope for a single requesting connection.
func Error(kind ErrorKind, message string) ServerMessage {
	return ServerMessage{Type: TypeError, Kind: kind, Message: message}
}
