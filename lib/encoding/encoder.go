// Package encoding seals component call sites into opaque tokens so a
// component can be re-rendered later from a URL parameter.
package encoding

import (
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// ErrInvalidToken is returned for every token that cannot be opened.
var ErrInvalidToken = errors.New("encoding: invalid token")

// Pair is one call-site attribute assignment.
type Pair struct {
	Key   string `msgpack:"k"`
	Value any    `msgpack:"v"`
}

// Call is the content of a token: which component, called with what.
type Call struct {
	Component string `msgpack:"c"`
	Attrs     []Pair `msgpack:"a"`
}

// Encoder seals and opens tokens. Two modes:
//   - signed: base64 msgpack plus an HMAC, readable but tamper-proof
//   - encrypted: XChaCha20-Poly1305, fully opaque
//
// Open detects the mode from the token prefix.
type Encoder struct {
	key  []byte
	aead cipher.AEAD
}

const (
	signedPrefix    = "s."
	encryptedPrefix = "e."
)

// HKDF info strings. Changing either invalidates every outstanding token.
var (
	hkdfInfoSign    = []byte("hxprops.token.sign.v1")
	hkdfInfoEncrypt = []byte("hxprops.token.enc.v1")
)

// NewEncoder creates an encoder. Independent signing and encryption keys
// are derived from secret with HKDF-SHA256.
func NewEncoder(secret []byte) (*Encoder, error) {
	if len(secret) == 0 {
		return nil, errors.New("encoding: empty key")
	}
	signKey, err := deriveKey(secret, hkdfInfoSign)
	if err != nil {
		return nil, err
	}
	encKey, err := deriveKey(secret, hkdfInfoEncrypt)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(encKey)
	if err != nil {
		return nil, err
	}
	return &Encoder{key: signKey, aead: aead}, nil
}

func deriveKey(secret, info []byte) ([]byte, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, info), key); err != nil {
		return nil, fmt.Errorf("encoding: key derivation failed: %w", err)
	}
	return key, nil
}

// Seal packs c into a token.
func (e *Encoder) Seal(c Call, encrypt bool) (string, error) {
	out := Call{Component: c.Component, Attrs: make([]Pair, len(c.Attrs))}
	for i, p := range c.Attrs {
		out.Attrs[i] = Pair{Key: p.Key, Value: outbound(p.Value)}
	}
	packed, err := msgpack.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encoding: %w", err)
	}
	if encrypt {
		return encryptedPrefix + e.encrypt(packed), nil
	}
	return signedPrefix + e.sign(packed), nil
}

// Open verifies or decrypts a token and unpacks it.
func (e *Encoder) Open(token string) (Call, error) {
	var packed []byte
	var err error
	switch {
	case strings.HasPrefix(token, signedPrefix):
		packed, err = e.verify(token[len(signedPrefix):])
	case strings.HasPrefix(token, encryptedPrefix):
		packed, err = e.decrypt(token[len(encryptedPrefix):])
	default:
		err = errors.New("unknown token format")
	}
	if err != nil {
		return Call{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var c Call
	if err := msgpack.Unmarshal(packed, &c); err != nil {
		return Call{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	for i := range c.Attrs {
		c.Attrs[i].Value = inbound(c.Attrs[i].Value)
	}
	return c, nil
}

// outbound reduces values to msgpack-native forms. Stringers such as
// decimal.Decimal travel as text and are coerced back on resolve.
func outbound(v any) any {
	switch x := v.(type) {
	case nil, bool, string, int, int64, float64:
		return x
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = outbound(item)
		}
		return out
	case fmt.Stringer:
		return x.String()
	default:
		return x
	}
}

// inbound normalizes msgpack's sized integers to int.
func inbound(v any) any {
	switch x := v.(type) {
	case int8:
		return int(x)
	case int16:
		return int(x)
	case int32:
		return int(x)
	case int64:
		return int(x)
	case uint8:
		return int(x)
	case uint16:
		return int(x)
	case uint32:
		return int(x)
	case uint64:
		return int(x)
	case float32:
		return float64(x)
	case []any:
		for i := range x {
			x[i] = inbound(x[i])
		}
		return x
	default:
		return x
	}
}

// sign returns base64(data).base64(mac)
func (e *Encoder) sign(data []byte) string {
	b64 := base64.RawURLEncoding.EncodeToString(data)
	mac := hmac.New(sha256.New, e.key)
	mac.Write(data)
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil)[:16])
	return b64 + "." + sig
}

func (e *Encoder) verify(encoded string) ([]byte, error) {
	payload, sigPart, ok := strings.Cut(encoded, ".")
	if !ok {
		return nil, errors.New("missing signature")
	}
	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, err
	}
	sig, err := base64.RawURLEncoding.DecodeString(sigPart)
	if err != nil {
		return nil, err
	}

	mac := hmac.New(sha256.New, e.key)
	mac.Write(data)
	if !hmac.Equal(sig, mac.Sum(nil)[:16]) {
		return nil, errors.New("signature verification failed")
	}
	return data, nil
}

func (e *Encoder) encrypt(data []byte) string {
	nonce := make([]byte, e.aead.NonceSize())
	// crypto/rand.Read never returns an error on supported platforms.
	rand.Read(nonce)
	return base64.RawURLEncoding.EncodeToString(e.aead.Seal(nonce, nonce, data, nil))
}

func (e *Encoder) decrypt(encoded string) ([]byte, error) {
	ciphertext, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < e.aead.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce := ciphertext[:e.aead.NonceSize()]
	return e.aead.Open(nil, nonce, ciphertext[e.aead.NonceSize():], nil)
}
