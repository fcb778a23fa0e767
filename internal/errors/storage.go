package errors

import (
	"fmt"
	"net/http"
)

var ErrStorageUnavailable = &Exception{
	Message:    "task storage unavailable",
	StatusCode: http.StatusServiceUnavailable,
}

// StorageReadError reports a persisted collection that could not be read or parsed.
type StorageReadError struct {
	Key string
	Err error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("read tasks from %q: %v", e.Key, e.Err)
}

func (e *StorageReadError) Unwrap() error {
	return e.Err
}

// StorageWriteError reports a failed save. The in-memory collection keeps the attempted state.
type StorageWriteError struct {
	Key string
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("write tasks to %q: %v", e.Key, e.Err)
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}
