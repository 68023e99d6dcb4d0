package trace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes keep frame hashes and race digests from colliding.
const (
	DomainFrame = "laneracer/frame/v1"
	DomainRace  = "laneracer/race/v1"
)

// hashWithDomain returns hex(SHA256(domain || 0x00 || data)).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// FrameHash returns the content hash of a single frame.
func FrameHash(f Frame) (string, error) {
	canonical, err := MarshalCanonical(f)
	if err != nil {
		return "", fmt.Errorf("FrameHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainFrame, canonical), nil
}
