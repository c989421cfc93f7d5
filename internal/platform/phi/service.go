package phi

import (
	"encoding/hex"
	"fmt"

	"github.com/rs/zerolog"
)

// Service provides field-level PHI encryption for the application. It wraps a
// Codec and adds a disabled mode for development environments where no
// encryption key is configured.
type Service struct {
	codec   *Codec
	enabled bool
}

// NewService creates a new encryption service.
//
// If key is empty, encryption is disabled (development mode) and a warning is
// logged. All Encrypt/Decrypt calls become no-ops that return the value as-is.
//
// If key is non-empty, it must be a valid 64-character hex string encoding a
// 32-byte AES-256 key.
func NewService(key string, logger zerolog.Logger) (*Service, error) {
	if key == "" {
		logger.Warn().Msg("PHI encryption disabled: PHI_ENCRYPTION_KEY is not set")
		return &Service{enabled: false}, nil
	}

	keyBytes, err := hex.DecodeString(key)
	if err != nil {
		return nil, fmt.Errorf("PHI_ENCRYPTION_KEY is not valid hex: %w", err)
	}
	if len(keyBytes) != 32 {
		return nil, fmt.Errorf("PHI_ENCRYPTION_KEY must be 32 bytes (64 hex chars), got %d bytes", len(keyBytes))
	}

	codec, err := NewCodec(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("create PHI codec: %w", err)
	}

	logger.Info().Msg("PHI field-level encryption enabled")
	return &Service{codec: codec, enabled: true}, nil
}

// IsEnabled returns true if encryption is active.
func (s *Service) IsEnabled() bool {
	return s.enabled
}

// EncryptField encrypts a single PHI field value. Empty values and disabled
// mode pass through unchanged.
func (s *Service) EncryptField(value string) (string, error) {
	if !s.enabled || value == "" {
		return value, nil
	}
	return s.codec.Encrypt(value)
}

// DecryptField decrypts a single PHI field value. Legacy plaintext passes
// through unchanged.
func (s *Service) DecryptField(value string) string {
	if !s.enabled {
		return value
	}
	return s.codec.Decrypt(value).Text
}

// EncryptPayload encrypts the registered PHI keys of a record payload in
// place. Keys absent from the payload are skipped.
func (s *Service) EncryptPayload(collection string, payload map[string]interface{}) error {
	if !s.enabled || payload == nil {
		return nil
	}
	for _, key := range PayloadFields(collection) {
		v, ok := payload[key]
		if !ok || v == nil {
			continue
		}
		enc, err := s.codec.EncryptValue(v)
		if err != nil {
			return fmt.Errorf("encrypt payload field %s: %w", key, err)
		}
		payload[key] = enc
	}
	return nil
}

// DecryptPayload reverses EncryptPayload. Values that were never encrypted
// (legacy rows) are left untouched.
func (s *Service) DecryptPayload(collection string, payload map[string]interface{}) {
	if !s.enabled || payload == nil {
		return
	}
	for _, key := range PayloadFields(collection) {
		v, ok := payload[key].(string)
		if !ok {
			continue
		}
		if dec, decrypted := s.codec.DecryptValue(v); decrypted {
			payload[key] = dec
		}
	}
}
