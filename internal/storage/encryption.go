package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	keyLength   = 32
	nonceLength = 12
	saltLength  = 32
	iterations  = 100000

	sealVersion = 1
)

var ErrWrongPassphrase = errors.New("invalid passphrase or corrupted data")

// SealedData is an AES-GCM ciphertext whose key is derived from a passphrase
// with PBKDF2-SHA256.
type SealedData struct {
	Version    int    `json:"version"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

func Seal(data []byte, passphrase string) (*SealedData, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}

	aesGCM, err := newGCM(passphrase, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, nonceLength)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return &SealedData{
		Version:    sealVersion,
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: aesGCM.Seal(nil, nonce, data, nil),
	}, nil
}

func Unseal(sealed *SealedData, passphrase string) ([]byte, error) {
	if sealed == nil {
		return nil, errors.New("sealed data is nil")
	}
	if sealed.Version != sealVersion {
		return nil, errors.New("unsupported sealed data version")
	}

	aesGCM, err := newGCM(passphrase, sealed.Salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := aesGCM.Open(nil, sealed.Nonce, sealed.Ciphertext, nil)
	if err != nil {
		return nil, ErrWrongPassphrase
	}

	return plaintext, nil
}

func newGCM(passphrase string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(passphrase), salt, iterations, keyLength, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
