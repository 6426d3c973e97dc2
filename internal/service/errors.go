package service

import "fmt"

// TenantContextError indicates no tenant scope could be resolved for the
// operation. Always propagated to the caller.
type TenantContextError struct {
	Message string
}

func (e TenantContextError) Error() string {
	return e.Message
}

// ValidationError indicates a missing or unusable caller-supplied input.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// ConfigurationError indicates required deployment configuration is absent,
// such as the provider API key.
type ConfigurationError struct {
	Message string
}

func (e ConfigurationError) Error() string {
	return e.Message
}

// CacheError wraps a database failure. Read and write failures degrade the
// operation (treated as a miss or a skipped write); only paths whose sole
// purpose is the write itself propagate it.
type CacheError struct {
	Op  string
	Err error
}

func (e CacheError) Error() string {
	return fmt.Sprintf("cache %s failed: %v", e.Op, e.Err)
}

func (e CacheError) Unwrap() error {
	return e.Err
}
