package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// GeneratePKCE creates a fresh PKCE verifier/challenge pair per RFC 7636.
// The verifier is 32 random bytes in unpadded base64url (43 characters),
// the challenge is the S256 transform of the verifier.
func GeneratePKCE() (verifier, challenge string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("failed to generate PKCE verifier: %w", err)
	}
	verifier = base64.RawURLEncoding.EncodeToString(b)
	return verifier, ComputeChallenge(verifier), nil
}

// ComputeChallenge returns the S256 code challenge for a verifier.
func ComputeChallenge(verifier string) string {
	sum := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// VerifyPKCE reports whether verifier hashes to challenge. The comparison
// is constant-time.
func VerifyPKCE(verifier, challenge string) bool {
	expected := ComputeChallenge(verifier)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(challenge)) == 1
}
