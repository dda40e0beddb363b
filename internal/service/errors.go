package service

import "errors"

// One sentinel per failure kind from the error taxonomy. Services wrap these
// with fmt.Errorf("...: %w", ...) and handlers translate them to HTTP.
var (
	ErrValidation = errors.New("validation") // 400
	ErrAuth       = errors.New("auth")       // 401
	ErrNotFound   = errors.New("not found")  // 404
	ErrConflict   = errors.New("conflict")   // 409
)
