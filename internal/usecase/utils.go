package usecase

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// hashToken returns the hex SHA-256 digest of a one-time credential. Backup
// codes and recovery keys are high-entropy random tokens, so a fast digest
// is enough; passwords go through bcrypt instead.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// randomHex returns byteLen random bytes hex-encoded.
func randomHex(byteLen int) (string, error) {
	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// generateBackupCodes returns count independent random codes, each
// byteLen bytes rendered as lowercase hex.
func generateBackupCodes(count, byteLen int) ([]string, error) {
	codes := make([]string, count)
	for i := 0; i < count; i++ {
		code, err := randomHex(byteLen)
		if err != nil {
			return nil, err
		}
		codes[i] = code
	}
	return codes, nil
}

// formatRecoveryKey groups a hex key into dash-separated 4-character blocks.
func formatRecoveryKey(key string) string {
	var groups []string
	for i := 0; i < len(key); i += 4 {
		end := i + 4
		if end > len(key) {
			end = len(key)
		}
		groups = append(groups, key[i:end])
	}
	return strings.Join(groups, "-")
}

// normalizeToken strips dashes and whitespace and lowercases, so codes and
// recovery keys verify regardless of how the caller formatted them.
func normalizeToken(token string) string {
	token = strings.TrimSpace(token)
	token = strings.ReplaceAll(token, "-", "")
	return strings.ToLower(token)
}
