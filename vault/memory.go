package vault

import (
	"context"
	"sync"
)

// MemoryProvider keeps credentials in process memory. Suitable for tests
// and single-binary deployments without an external secret store.
type MemoryProvider struct {
	sync.RWMutex
	store map[string]Credentials
}

func NewMemoryProvider() CredentialVault {
	return &MemoryProvider{store: make(map[string]Credentials)}
}

func (v *MemoryProvider) Type() VaultType {
	return VAULT_MEMORY
}

func (v *MemoryProvider) Store(ctx context.Context, key string, creds Credentials) error {
	v.Lock()
	v.store[key] = creds
	v.Unlock()
	return nil
}

func (v *MemoryProvider) Retrieve(ctx context.Context, key string) (Credentials, error) {
	v.RLock()
	creds, ok := v.store[key]
	v.RUnlock()
	if !ok {
		return Credentials{}, ErrCredentialsNotFound
	}
	return creds, nil
}

func (v *MemoryProvider) Clear(ctx context.Context, key string) error {
	v.Lock()
	delete(v.store, key)
	v.Unlock()
	return nil
}
