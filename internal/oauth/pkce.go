package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
)

// pkceVerifierBytes is the number of random bytes for a generated PKCE code
// verifier. 32 bytes provides 256 bits of entropy.
const pkceVerifierBytes = 32

// PKCEMethodS256 is the only code challenge method this server supports.
const PKCEMethodS256 = "S256"

// ChallengeFromVerifier derives the S256 code challenge for a verifier:
// SHA-256 of the verifier, base64url-encoded without padding.
func ChallengeFromVerifier(verifier string) string {
	hash := sha256.Sum256([]byte(verifier))
	return base64.RawURLEncoding.EncodeToString(hash[:])
}

// VerifyChallenge reports whether the verifier matches the stored challenge.
// The comparison is constant-time; hashing already normalizes the length of
// the compared values.
func VerifyChallenge(verifier, challenge string) bool {
	expected := ChallengeFromVerifier(verifier)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(challenge)) == 1
}

// GenerateVerifier generates a fresh PKCE code verifier: 32 random bytes,
// base64url-encoded.
func GenerateVerifier() (string, error) {
	buf := make([]byte, pkceVerifierBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate PKCE verifier: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
