package storage

import "strings"

// StorageType identifies the backend snapshots are persisted to
type StorageType uint16

const (
	STORAGE_UNDEFINED_TYPE = iota
	STORAGE_FILESYSTEM
	STORAGE_MINIO
)

var snapshotStorageTypes = map[string]StorageType{
	"filesystem": STORAGE_FILESYSTEM,
	"minio":      STORAGE_MINIO,
}

// String returns string representation of the snapshot storage type
func (iotaIdx StorageType) String() string {
	return [...]string{"undefined", "filesystem", "minio"}[iotaIdx]
}

// NewStorageTypeFrom resolves the configured backend name, falling back to
// undefined for anything unrecognized
func NewStorageTypeFrom(str string) StorageType {
	if found, ok := snapshotStorageTypes[strings.ToLower(str)]; ok {
		return found
	}
	return STORAGE_UNDEFINED_TYPE
}
