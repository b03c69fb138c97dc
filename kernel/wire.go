package kernel

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/go-zeromq/zmq4"
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
)

// ProtocolVersion is the Jupyter wire protocol version this kernel
// speaks.
const ProtocolVersion = "5.3"

const wireDelimiter = "<IDS|MSG>"

// MsgHeader is the header frame shared by every Jupyter message.
type MsgHeader struct {
	MsgID           string `json:"msg_id"`
	Username        string `json:"username"`
	Session         string `json:"session"`
	MsgType         string `json:"msg_type"`
	ProtocolVersion string `json:"version"`
	Timestamp       string `json:"date"`
}

// ComposedMsg is a fully decoded Jupyter message.
type ComposedMsg struct {
	Header       MsgHeader
	ParentHeader MsgHeader
	Metadata     map[string]interface{}
	Content      interface{}
}

// InvalidSignatureError is returned by FromWireMsg when the message's
// HMAC digest does not match the kernel's signing key.
type InvalidSignatureError struct{}

func (*InvalidSignatureError) Error() string {
	return "message had an invalid signature"
}

// FromWireMsg decodes a raw multi-frame ZMQ message into a ComposedMsg,
// returning the leading identity frames separately. Signature
// verification is skipped when signKey is empty, matching the wire
// protocol's documented bypass for unsigned connections.
func FromWireMsg(frames [][]byte, signKey []byte) (composed ComposedMsg, identities [][]byte, err error) {
	i := 0
	for i < len(frames) && string(frames[i]) != wireDelimiter {
		i++
	}
	if i == len(frames) {
		return composed, nil, errors.New("message is missing the <IDS|MSG> delimiter")
	}
	identities = frames[:i]

	if i+6 > len(frames) {
		return composed, nil, errors.New("message is missing frames after the delimiter")
	}

	signature := frames[i+1]
	header := frames[i+2]
	parentHeader := frames[i+3]
	metadata := frames[i+4]
	content := frames[i+5]

	if len(signKey) != 0 {
		mac := hmac.New(sha256.New, signKey)
		mac.Write(header)
		mac.Write(parentHeader)
		mac.Write(metadata)
		mac.Write(content)
		want := make([]byte, hex.DecodedLen(len(signature)))
		if _, decErr := hex.Decode(want, signature); decErr != nil {
			return composed, nil, errors.WithMessage(&InvalidSignatureError{}, "decoding signature")
		}
		if !hmac.Equal(mac.Sum(nil), want) {
			return composed, nil, &InvalidSignatureError{}
		}
	}

	if err = json.Unmarshal(header, &composed.Header); err != nil {
		return composed, nil, errors.WithMessage(err, "decoding header")
	}
	if err = json.Unmarshal(parentHeader, &composed.ParentHeader); err != nil {
		return composed, nil, errors.WithMessage(err, "decoding parent_header")
	}
	if err = json.Unmarshal(metadata, &composed.Metadata); err != nil {
		return composed, nil, errors.WithMessage(err, "decoding metadata")
	}
	if err = json.Unmarshal(content, &composed.Content); err != nil {
		return composed, nil, errors.WithMessage(err, "decoding content")
	}
	return composed, identities, nil
}

// ToWireMsg encodes a ComposedMsg into five frames: the signature
// followed by the four JSON frames. The signature is the hex HMAC of
// the four frames when signKey is non-empty, and empty otherwise.
func ToWireMsg(c *ComposedMsg, signKey []byte) ([][]byte, error) {
	parts := make([][]byte, 5)

	header, err := json.Marshal(c.Header)
	if err != nil {
		return nil, errors.WithMessage(err, "encoding header")
	}
	parts[1] = header

	parentHeader, err := json.Marshal(c.ParentHeader)
	if err != nil {
		return nil, errors.WithMessage(err, "encoding parent_header")
	}
	parts[2] = parentHeader

	if c.Metadata == nil {
		c.Metadata = map[string]interface{}{}
	}
	metadata, err := json.Marshal(c.Metadata)
	if err != nil {
		return nil, errors.WithMessage(err, "encoding metadata")
	}
	parts[3] = metadata

	content, err := json.Marshal(c.Content)
	if err != nil {
		return nil, errors.WithMessage(err, "encoding content")
	}
	parts[4] = content

	if len(signKey) != 0 {
		mac := hmac.New(sha256.New, signKey)
		for _, p := range parts[1:] {
			mac.Write(p)
		}
		parts[0] = make([]byte, hex.EncodedLen(mac.Size()))
		hex.Encode(parts[0], mac.Sum(nil))
	} else {
		parts[0] = []byte{}
	}

	return parts, nil
}

// NewComposed builds a reply/broadcast ComposedMsg stamped against a
// parent message's header, with a fresh msg_id.
func NewComposed(msgType string, parent MsgHeader) (*ComposedMsg, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, errors.WithMessage(err, "generating msg_id")
	}
	return &ComposedMsg{
		Header: MsgHeader{
			MsgID:           id.String(),
			Username:        parent.Username,
			Session:         parent.Session,
			MsgType:         msgType,
			ProtocolVersion: ProtocolVersion,
			Timestamp:       time.Now().UTC().Format(time.RFC3339),
		},
		ParentHeader: parent,
	}, nil
}

// assembleWireFrames reassembles identities + delimiter + signed parts
// into the frame slice zmq4 sends over the wire.
func assembleWireFrames(identities [][]byte, parts [][]byte) [][]byte {
	frames := make([][]byte, 0, len(identities)+1+len(parts))
	frames = append(frames, identities...)
	frames = append(frames, []byte(wireDelimiter))
	frames = append(frames, parts...)
	return frames
}

// sendComposed signs and sends a ComposedMsg over the given socket,
// preserving the identity frames of the message it answers (nil for
// broadcasts that own no reply identities, e.g. IOPub).
func sendComposed(sck zmq4.Socket, identities [][]byte, signKey []byte, msg *ComposedMsg) error {
	parts, err := ToWireMsg(msg, signKey)
	if err != nil {
		return err
	}
	return sck.SendMulti(zmq4.NewMsgFrom(assembleWireFrames(identities, parts)...))
}
