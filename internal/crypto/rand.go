package crypto

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/pkg/errors"
)

func RandomBytes(size int) ([]byte, error) {
	data := make([]byte, size)

	read, err := rand.Read(data)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if read != size {
		return nil, errors.New("unexpected number of read bytes")
	}

	return data, nil
}

// GeneratePublicToken generates an unguessable bearer token for public
// document links: 24 random bytes (192 bits) encoded as URL-safe base64
// without padding, so it can travel in a query string untouched.
func GeneratePublicToken() (string, error) {
	data, err := RandomBytes(24)
	if err != nil {
		return "", errors.WithStack(err)
	}

	return base64.RawURLEncoding.EncodeToString(data), nil
}
