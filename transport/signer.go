package transport

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
)

// SignatureSize is the length of the HMAC-SHA256 prefix on every packet
const SignatureSize = sha256.Size

var (
	ErrPacketTooShort   = errors.New("packet too short, minimum 32 bytes required for signature")
	ErrInvalidSignature = errors.New("invalid signature")
)

// A Signer frames payloads as signature || payload using a pre-shared secret
type Signer struct {
	secret []byte
}

func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

// Sign returns the raw HMAC-SHA256 digest of payload
func (s *Signer) Sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(payload)
	return mac.Sum(nil)
}

// Packet returns the signature followed directly by the payload. There is no
// separator and no length field.
func (s *Signer) Packet(payload []byte) []byte {
	packet := make([]byte, 0, SignatureSize+len(payload))
	packet = append(packet, s.Sign(payload)...)
	return append(packet, payload...)
}

// Verify checks a packet the way the receiving server does and returns the
// payload when the signature matches.
func (s *Signer) Verify(packet []byte) ([]byte, error) {
	if len(packet) < SignatureSize {
		return nil, ErrPacketTooShort
	}

	signature, payload := packet[:SignatureSize], packet[SignatureSize:]
	if !hmac.Equal(signature, s.Sign(payload)) {
		return nil, ErrInvalidSignature
	}

	return payload, nil
}
