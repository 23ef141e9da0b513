package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePKCE(t *testing.T) {
	verifier, challenge, err := GeneratePKCE()
	require.NoError(t, err)

	assert.Len(t, verifier, 43)
	assert.Len(t, challenge, 43)

	_, err = base64.RawURLEncoding.DecodeString(verifier)
	assert.NoError(t, err, "verifier must be unpadded base64url")
	_, err = base64.RawURLEncoding.DecodeString(challenge)
	assert.NoError(t, err, "challenge must be unpadded base64url")

	assert.True(t, VerifyPKCE(verifier, challenge))
}

func TestGeneratePKCEUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		verifier, _, err := GeneratePKCE()
		require.NoError(t, err)
		assert.False(t, seen[verifier], "verifier repeated")
		seen[verifier] = true
	}
}

// Vector from RFC 7636 appendix B.
func TestComputeChallengeKnownVector(t *testing.T) {
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	assert.Equal(t, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM", ComputeChallenge(verifier))
	assert.True(t, VerifyPKCE(verifier, "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"))
}

func TestVerifyPKCERejectsMismatch(t *testing.T) {
	verifier, challenge, err := GeneratePKCE()
	require.NoError(t, err)

	other, _, err := GeneratePKCE()
	require.NoError(t, err)

	assert.False(t, VerifyPKCE(other, challenge))
	assert.False(t, VerifyPKCE(verifier, ComputeChallenge(other)))

	// Flip one character of the challenge.
	mutated := []byte(challenge)
	if mutated[0] == 'A' {
		mutated[0] = 'B'
	} else {
		mutated[0] = 'A'
	}
	assert.False(t, VerifyPKCE(verifier, string(mutated)))

	assert.False(t, VerifyPKCE("", challenge))
	assert.False(t, VerifyPKCE(verifier, ""))
}
