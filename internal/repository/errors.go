// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting SQL error strings.
package repository

import "errors"

// ErrEmailExists is returned when registering an email address that is
// already taken. Handlers translate this into an HTTP 400 response.
var ErrEmailExists = errors.New("email already exists")

// ErrQuotaExceeded is returned when the atomic usage increment finds the
// actor at or over the free limit, or when a pre-check denies a generation.
// No writes survive when this is returned.
var ErrQuotaExceeded = errors.New("free usage quota exceeded")

// ErrNotFound is returned for lookups of rows that do not exist, such as an
// unknown template id. Handlers translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")
