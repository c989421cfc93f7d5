package phi

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Codec provides AES-256-CBC field-level encryption for PHI values at rest.
// The wire format is "<ivHex>:<cipherHex>" with a random 16-byte IV per call.
type Codec struct {
	block cipher.Block
}

// NewCodec creates a new Codec with the given 32-byte AES-256 key.
func NewCodec(key []byte) (*Codec, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("phi codec: key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("phi codec: create cipher: %w", err)
	}

	return &Codec{block: block}, nil
}

// Result is the outcome of a decrypt attempt. The store holds a mix of
// encrypted and legacy plaintext values, so inputs not produced by this codec
// are returned unchanged with Decrypted=false rather than failing.
type Result struct {
	Text      string
	Decrypted bool
}

// Encrypt encrypts a plaintext string and returns "<ivHex>:<cipherHex>".
func (c *Codec) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("phi encrypt: generate iv: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(ciphertext, padded)

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(ciphertext), nil
}

// EncryptValue encrypts any serializable value. Non-string values are
// JSON-serialized before encryption so Decrypt can restore the structure.
func (c *Codec) EncryptValue(v interface{}) (string, error) {
	if s, ok := v.(string); ok {
		return c.Encrypt(s)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("phi encrypt: serialize value: %w", err)
	}
	return c.Encrypt(string(data))
}

// Decrypt attempts to decrypt an "<ivHex>:<cipherHex>" string. Malformed or
// foreign input (missing delimiter, wrong IV length, not a multiple of the
// block size, bad padding) is treated as legacy plaintext and returned
// unchanged.
func (c *Codec) Decrypt(input string) Result {
	fallback := Result{Text: input, Decrypted: false}

	parts := strings.SplitN(input, ":", 2)
	if len(parts) != 2 {
		return fallback
	}

	iv, err := hex.DecodeString(parts[0])
	if err != nil || len(iv) != aes.BlockSize {
		return fallback
	}

	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return fallback
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(c.block, iv).CryptBlocks(plaintext, ciphertext)

	unpadded, ok := pkcs7Unpad(plaintext, aes.BlockSize)
	if !ok {
		return fallback
	}

	return Result{Text: string(unpadded), Decrypted: true}
}

// DecryptValue decrypts and, when the plaintext looks like a JSON object or
// array, parses it back into a structured value. The second return reports
// whether the input was actually produced by this codec.
func (c *Codec) DecryptValue(input string) (interface{}, bool) {
	r := c.Decrypt(input)
	if !r.Decrypted {
		return input, false
	}

	trimmed := strings.TrimSpace(r.Text)
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		var parsed interface{}
		if err := json.Unmarshal([]byte(trimmed), &parsed); err == nil {
			return parsed, true
		}
	}
	return r.Text, true
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+n)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(n)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, bool) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, false
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, false
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, false
		}
	}
	return data[:len(data)-n], true
}
