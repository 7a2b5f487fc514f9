package brewlog

import (
	"errors"
	"fmt"
)

var (
	ErrEntryNotFound      = errors.New("brew log entry not found")
	ErrDuplicateID        = errors.New("brew log entry id already exists")
	ErrUnsupportedVersion = errors.New("unsupported brew log schema version")
)

// StorageCorruptionError means the persisted collection could not be parsed.
// Nothing is recovered automatically; the caller decides whether to reset.
type StorageCorruptionError struct {
	Key string
	Err error
}

func (e *StorageCorruptionError) Error() string {
	return fmt.Sprintf("brew log under %q is corrupt: %v", e.Key, e.Err)
}

func (e *StorageCorruptionError) Unwrap() error {
	return e.Err
}

// ImagePersistError means a photo could not be copied into durable storage.
type ImagePersistError struct {
	Source      string
	Destination string
	Err         error
}

func (e *ImagePersistError) Error() string {
	return fmt.Sprintf("persist image %s to %s: %v", e.Source, e.Destination, e.Err)
}

func (e *ImagePersistError) Unwrap() error {
	return e.Err
}
