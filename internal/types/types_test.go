package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResultEnvelopeKeepsEmptyLists(t *testing.T) {
	votedOut := []string{"B"}
	imposters := []string{}

	payload, err := json.Marshal(ServerMessage{
		Type:      TypeResult,
		VotedOut:  &votedOut,
		Imposters: &imposters,
	})
	require.NoError(t, err)
	require.Contains(t, string(payload), `"votedOut":["B"]`)
	require.Contains(t, string(payload), `"imposters":[]`)
}

func TestNonResultEnvelopesOmitResultFields(t *testing.T) {
	payload, err := json.Marshal(Error(KindLobbyNotFound, "lobby not found"))
	require.NoError(t, err)
	require.NotContains(t, string(payload), "votedOut")
	require.NotContains(t, string(payload), "imposters")
}
