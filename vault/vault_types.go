package vault

import "strings"

type VaultType uint16

const (
	VAULT_UNDEFINED_TYPE = iota
	VAULT_MEMORY
	VAULT_REDIS
)

var vaultTypes = map[string]VaultType{
	"memory": VAULT_MEMORY,
	"redis":  VAULT_REDIS,
}

// String returns string representation of the vault type
func (iotaIdx VaultType) String() string {
	return [...]string{"undefined", "memory", "redis"}[iotaIdx]
}

func NewVaultTypeFrom(str string) VaultType {
	if found, ok := vaultTypes[strings.ToLower(str)]; ok {
		return found
	}
	return VAULT_UNDEFINED_TYPE
}
