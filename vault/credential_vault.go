package vault

import (
	"context"
	"fmt"
)

var ErrCredentialsNotFound = fmt.Errorf("credentials not found for provided key")

// Credentials is a username/password pair kept behind the vault boundary
type Credentials struct {
	Username string
	Password string
}

// CredentialVault is an opaque secure key-value store for stream
// credentials. Keys are non-secret references; only the vault ever holds
// the password at rest.
type CredentialVault interface {
	Type() VaultType
	Store(ctx context.Context, key string, creds Credentials) error
	Retrieve(ctx context.Context, key string) (Credentials, error)
	Clear(ctx context.Context, key string) error
}
