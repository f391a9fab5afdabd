package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/yukikurage/project-tracker-api/internal/constants"
)

// GenerateInviteCode returns a code of the given length drawn uniformly from
// the invitation code alphabet using crypto/rand.
func GenerateInviteCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid invite code length %d", length)
	}

	alphabet := constants.InvitationCodeAlphabet
	max := big.NewInt(int64(len(alphabet)))

	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate random index: %w", err)
		}
		code[i] = alphabet[n.Int64()]
	}

	return string(code), nil
}
