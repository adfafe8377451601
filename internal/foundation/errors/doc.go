// Package errors provides the classified error type used across simplesite.
//
// Every failure that can end a build is expressed as a ClassifiedError so the
// CLI boundary can pick an exit code and a user-facing message without the
// lower layers ever terminating the process themselves.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryFileSystem, "create symlink").
//		WithContext("path", linkPath).
//		Build()
package errors
