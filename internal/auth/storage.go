package auth

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"

	"github.com/giantswarm/mcp-oauth/security"
	"github.com/giantswarm/mcp-oauth/storage"
	"github.com/giantswarm/mcp-oauth/storage/memory"
	"github.com/giantswarm/mcp-oauth/storage/valkey"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// keyDerivationSalt and keyDerivationIters parameterize PBKDF2 when
	// the configured key material is a passphrase rather than a key.
	keyDerivationSalt  = "salesforce-mcp-server"
	keyDerivationIters = 600_000

	encryptionKeySize = 32
)

// StorageConfig selects and parameterizes the token storage backend.
type StorageConfig struct {
	// Type selects the backend: "memory" (default) or "valkey".
	Type string

	// ValkeyURL is the Valkey address, required when Type is "valkey".
	// An optional valkey:// or redis:// scheme prefix is accepted.
	ValkeyURL string

	// EncryptionKey enables AES-256-GCM encryption at rest when set.
	// Material that base64-decodes to a 32-byte key is used directly,
	// anything else is treated as a passphrase and stretched with
	// PBKDF2-SHA256.
	EncryptionKey string
}

// Storage bundles the stores the OAuth engine needs plus their shared
// encryptor and cleanup hook.
type Storage struct {
	Tokens    storage.TokenStore
	Clients   storage.ClientStore
	Flows     storage.FlowStore
	Encryptor *security.Encryptor

	closeFn func()
}

// Close releases backend resources. Safe on a nil receiver.
func (s *Storage) Close() {
	if s == nil || s.closeFn == nil {
		return
	}
	s.closeFn()
}

// NewStorage builds the token storage backend named by cfg.Type. Unknown
// backend names are a configuration error.
func NewStorage(cfg StorageConfig, logger *slog.Logger) (*Storage, error) {
	encryptor, err := newEncryptor(cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}

	storageType := strings.ToLower(strings.TrimSpace(cfg.Type))
	if storageType == "" {
		storageType = "memory"
	}

	switch storageType {
	case "memory":
		store := memory.New()
		store.SetLogger(logger)
		if encryptor != nil {
			store.SetEncryptor(encryptor)
		}
		return &Storage{
			Tokens:    store,
			Clients:   store,
			Flows:     store,
			Encryptor: encryptor,
			closeFn:   store.Stop,
		}, nil

	case "valkey":
		if cfg.ValkeyURL == "" {
			return nil, fmt.Errorf("valkey storage requires an address")
		}
		store, err := valkey.New(valkey.Config{
			Address: valkeyAddress(cfg.ValkeyURL),
			Logger:  logger,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to valkey: %w", err)
		}
		if encryptor != nil {
			store.SetEncryptor(encryptor)
		}
		return &Storage{
			Tokens:    store,
			Clients:   store,
			Flows:     store,
			Encryptor: encryptor,
			closeFn:   store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage type %q (expected \"memory\" or \"valkey\")", cfg.Type)
	}
}

func valkeyAddress(rawURL string) string {
	addr := strings.TrimSpace(rawURL)
	for _, scheme := range []string{"valkey://", "valkeys://", "redis://", "rediss://"} {
		if strings.HasPrefix(addr, scheme) {
			return strings.TrimPrefix(addr, scheme)
		}
	}
	return addr
}

func newEncryptor(material string) (*security.Encryptor, error) {
	if material == "" {
		return nil, nil
	}
	encryptor, err := security.NewEncryptor(EncryptionKey(material))
	if err != nil {
		return nil, fmt.Errorf("failed to create storage encryptor: %w", err)
	}
	return encryptor, nil
}

// EncryptionKey turns configured key material into a 32-byte AES key.
// Material that already decodes to a 32-byte key is used as-is so
// operators can supply a generated key; any other value is stretched
// from a passphrase.
func EncryptionKey(material string) []byte {
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding,
		base64.URLEncoding,
		base64.RawStdEncoding,
		base64.RawURLEncoding,
	} {
		if key, err := enc.DecodeString(material); err == nil && len(key) == encryptionKeySize {
			return key
		}
	}
	return pbkdf2.Key([]byte(material), []byte(keyDerivationSalt), keyDerivationIters, encryptionKeySize, sha256.New)
}
