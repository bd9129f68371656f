package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/99designs/keyring"
)

const keyringServiceName = "coeating"

// KeyringService stores per-provider API keys in the OS credential store.
type KeyringService struct {
	ring keyring.Keyring
}

func NewKeyringService() (*KeyringService, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: keyringServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return &KeyringService{ring: ring}, nil
}

// NewKeyringServiceWithRing wires an explicit backend, used by tests.
func NewKeyringServiceWithRing(ring keyring.Keyring) *KeyringService {
	return &KeyringService{ring: ring}
}

func (s *KeyringService) StoreApiKey(provider string, apiKey []byte) error {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return errors.New("provider is required")
	}
	if len(apiKey) == 0 {
		return errors.New("API key is empty")
	}

	return s.ring.Set(keyring.Item{
		Key:         provider,
		Data:        apiKey,
		Label:       provider + " API key",
		Description: "API key for " + provider + " used by Co-Eating",
	})
}

// GetApiKey returns the stored key for provider, or "" when none is stored.
func (s *KeyringService) GetApiKey(provider string) (string, error) {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return "", errors.New("provider is required")
	}

	item, err := s.ring.Get(provider)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", nil
		}
		return "", err
	}
	return string(item.Data), nil
}

func (s *KeyringService) DeleteApiKey(provider string) error {
	provider = strings.TrimSpace(provider)
	if provider == "" {
		return errors.New("provider is required")
	}

	if err := s.ring.Remove(provider); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}

// ListProviders returns the providers with a stored key, sorted.
func (s *KeyringService) ListProviders() ([]string, error) {
	keys, err := s.ring.Keys()
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}
