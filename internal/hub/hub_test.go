package hub

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wordimposter/internal/lobby"
	"wordimposter/internal/types"
	"wordimposter/internal/words"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	wl, err := words.New([]string{"apple"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	return NewHub(ctx, wl, nil)
}

func createLobby(t *testing.T, h *Hub) *lobby.Lobby {
	t.Helper()
	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- CreateLobby{Reply: reply}
	lb := <-reply
	require.NotNil(t, lb)
	return lb
}

func getLobby(h *Hub, code string) *lobby.Lobby {
	reply := make(chan *lobby.Lobby, 1)
	h.Inbox() <- GetLobby{Code: code, Reply: reply}
	return <-reply
}

func TestGenerateCodeAlphabetAndLength(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Len(t, code, codeLength)
		for _, c := range code {
			require.True(t, strings.ContainsRune(codeAlphabet, c), "unexpected character %q in %q", c, code)
		}
	}
}

func TestHub_CreateAndGetSamePointer(t *testing.T) {
	h := newTestHub(t)

	lb1 := createLobby(t, h)
	require.Len(t, lb1.Code(), codeLength)

	lb2 := getLobby(h, lb1.Code())
	require.Same(t, lb1, lb2)
}

func TestHub_CreatedCodesAreUnique(t *testing.T) {
	h := newTestHub(t)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		lb := createLobby(t, h)
		require.False(t, seen[lb.Code()], "duplicate live code %q", lb.Code())
		seen[lb.Code()] = true
	}
}

func TestHub_GetUnknownReturnsNil(t *testing.T) {
	h := newTestHub(t)
	require.Nil(t, getLobby(h, "NOPE22"))
}

func TestHub_RemoveLobby(t *testing.T) {
	h := newTestHub(t)
	lb := createLobby(t, h)

	h.Inbox() <- RemoveLobby{Code: lb.Code()}
	require.Nil(t, getLobby(h, lb.Code()))

	// Removing an absent code is a no-op.
	h.Inbox() <- RemoveLobby{Code: "NOPE22"}
	require.Nil(t, getLobby(h, "NOPE22"))
}

func TestHub_LobbyRemovedWhenLastPlayerLeaves(t *testing.T) {
	h := newTestHub(t)
	lb := createLobby(t, h)

	out := make(chan types.ServerMessage, 32)
	require.NoError(t, lb.Join("A", out))

	lb.Inbox() <- lobby.Leave{Name: "A"}

	require.Eventually(t, func() bool {
		return getLobby(h, lb.Code()) == nil
	}, time.Second, 10*time.Millisecond)
}
