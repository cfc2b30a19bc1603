package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// RandomString draws length characters uniformly from alphabet using
// crypto/rand. Used for generated admin credentials.
func RandomString(length int, alphabet string) (string, error) {
	switch {
	case length < 0:
		return "", errors.New("length must be non-negative")
	case length == 0:
		return "", nil
	case alphabet == "":
		return "", errors.New("alphabet must not be empty")
	}

	size := big.NewInt(int64(len(alphabet)))
	out := make([]byte, length)
	for i := range out {
		index, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		out[i] = alphabet[index.Int64()]
	}
	return string(out), nil
}
