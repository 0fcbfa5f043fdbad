// Package ss58 implements the checksummed textual address encoding used by
// Substrate chains: base58 over prefix || pubkey || blake2b-512 checksum.
package ss58

import (
	"bytes"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

const (
	pubKeyLength   = 32
	checksumLength = 2
	maxPrefix      = 0x3fff
)

var checksumPrefix = []byte("SS58PRE")

// Encode converts raw public-key bytes into an address string for the given
// network prefix. It never panics; malformed input returns an error.
func Encode(pubKey []byte, prefix uint16) (string, error) {
	if len(pubKey) != pubKeyLength {
		return "", fmt.Errorf("invalid public key length: %d", len(pubKey))
	}
	if prefix > maxPrefix {
		return "", fmt.Errorf("network prefix out of range: %d", prefix)
	}

	payload := append(prefixBytes(prefix), pubKey...)
	payload = append(payload, checksum(payload)...)
	return base58.Encode(payload), nil
}

// Decode parses an address string back into the raw public key and network
// prefix, verifying the checksum.
func Decode(address string) ([]byte, uint16, error) {
	raw, err := base58.Decode(address)
	if err != nil {
		return nil, 0, fmt.Errorf("decode base58: %w", err)
	}

	var prefix uint16
	var prefixLen int
	switch {
	case len(raw) >= 1 && raw[0] < 64:
		prefix = uint16(raw[0])
		prefixLen = 1
	case len(raw) >= 2 && raw[0] >= 64 && raw[0] < 128:
		lower := uint16(raw[0]&0b0011_1111) << 2
		upper := uint16(raw[1] >> 6)
		rest := uint16(raw[1]&0b0011_1111) << 8
		prefix = lower | upper | rest
		prefixLen = 2
	default:
		return nil, 0, fmt.Errorf("invalid address prefix")
	}

	if len(raw) != prefixLen+pubKeyLength+checksumLength {
		return nil, 0, fmt.Errorf("invalid address length: %d", len(raw))
	}

	body := raw[:len(raw)-checksumLength]
	if !bytes.Equal(raw[len(raw)-checksumLength:], checksum(body)) {
		return nil, 0, fmt.Errorf("checksum mismatch")
	}

	return body[prefixLen:], prefix, nil
}

func prefixBytes(prefix uint16) []byte {
	if prefix < 64 {
		return []byte{byte(prefix)}
	}
	// Two-byte form: 6 low bits of the first byte carry prefix bits 2..7,
	// the second byte carries bits 0..1 in its high bits and 8..13 low.
	first := byte(prefix>>2)&0b0011_1111 | 0b0100_0000
	second := byte(prefix>>8) | byte(prefix&0b0000_0011)<<6
	return []byte{first, second}
}

func checksum(payload []byte) []byte {
	hasher, err := blake2b.New512(nil)
	if err != nil {
		// blake2b.New512 only fails with a key, and none is passed.
		panic(err)
	}
	hasher.Write(checksumPrefix)
	hasher.Write(payload)
	return hasher.Sum(nil)[:checksumLength]
}
