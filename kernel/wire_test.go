package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireRoundTrip(t *testing.T) {
	key := []byte("shared-secret")

	parent := MsgHeader{MsgID: "req-1", Session: "sess-1", Username: "alice", MsgType: "execute_request", ProtocolVersion: ProtocolVersion}
	composed, err := NewComposed("execute_reply", parent)
	require.NoError(t, err)
	composed.Content = map[string]interface{}{"status": "ok"}

	parts, err := ToWireMsg(composed, key)
	require.NoError(t, err)
	require.Len(t, parts, 5)

	identities := [][]byte{[]byte("id-1")}
	frames := assembleWireFrames(identities, parts)

	decoded, decodedIdentities, err := FromWireMsg(frames, key)
	require.NoError(t, err)
	assert.Equal(t, identities, decodedIdentities)
	assert.Equal(t, "execute_reply", decoded.Header.MsgType)
	assert.Equal(t, "sess-1", decoded.Header.Session)
}

func TestWireRejectsBadSignature(t *testing.T) {
	parent := MsgHeader{MsgID: "req-1", MsgType: "execute_request"}
	composed, err := NewComposed("execute_reply", parent)
	require.NoError(t, err)

	parts, err := ToWireMsg(composed, []byte("correct-key"))
	require.NoError(t, err)

	frames := assembleWireFrames(nil, parts)
	_, _, err = FromWireMsg(frames, []byte("wrong-key"))
	require.Error(t, err)
	assert.IsType(t, &InvalidSignatureError{}, err)
}

func TestWireEmptyKeyBypassesSignature(t *testing.T) {
	parent := MsgHeader{MsgID: "req-1", MsgType: "execute_request"}
	composed, err := NewComposed("execute_reply", parent)
	require.NoError(t, err)

	parts, err := ToWireMsg(composed, nil)
	require.NoError(t, err)

	frames := assembleWireFrames(nil, parts)
	_, _, err = FromWireMsg(frames, nil)
	require.NoError(t, err)
}
