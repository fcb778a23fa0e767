package errors

import "net/http"

var ErrOptimisticLock = &Exception{
	Message:    "tasks were changed by another writer",
	StatusCode: http.StatusConflict,
}
