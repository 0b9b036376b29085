// Package errors provides structured error handling for rangescan operations.
// It defines error codes and error types for probe, name resolution and
// configuration failures, and utilities to classify low-level network errors.
package errors

import (
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
)

// ErrorCode represents different types of errors that can occur.
type ErrorCode string

const (
	// General errors.
	CodeUnknown       ErrorCode = "UNKNOWN"
	CodeValidation    ErrorCode = "VALIDATION"
	CodeConfiguration ErrorCode = "CONFIGURATION"
	CodeTimeout       ErrorCode = "TIMEOUT"
	CodeCanceled      ErrorCode = "CANCELED"
	CodePermission    ErrorCode = "PERMISSION"

	// Probe errors.
	CodeNetworkUnreachable ErrorCode = "NETWORK_UNREACHABLE"
	CodeHostUnreachable    ErrorCode = "HOST_UNREACHABLE"
	CodeNoReply            ErrorCode = "NO_REPLY"
	CodeTargetInvalid      ErrorCode = "TARGET_INVALID"
	CodeProbeFailed        ErrorCode = "PROBE_FAILED"

	// Name resolution errors.
	CodeNoRecord      ErrorCode = "NO_RECORD"
	CodeResolveFailed ErrorCode = "RESOLVE_FAILED"
)

// ProbeError represents a failed reachability probe against one address.
type ProbeError struct {
	Code    ErrorCode
	Message string
	Address string
	Method  string
	Cause   error
}

// Error implements the error interface.
func (e *ProbeError) Error() string {
	if e.Address != "" {
		return fmt.Sprintf("[%s] %s (address: %s, method: %s)", e.Code, e.Message, e.Address, e.Method)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ProbeError) Unwrap() error {
	return e.Cause
}

// NewProbeError creates a probe error without an underlying cause.
func NewProbeError(code ErrorCode, message, method, address string) *ProbeError {
	return &ProbeError{
		Code:    code,
		Message: message,
		Address: address,
		Method:  method,
	}
}

// WrapProbeError wraps err as a probe error, classifying it when code is empty.
func WrapProbeError(code ErrorCode, message, method, address string, err error) *ProbeError {
	if code == "" {
		code = Classify(err)
	}
	return &ProbeError{
		Code:    code,
		Message: message,
		Address: address,
		Method:  method,
		Cause:   err,
	}
}

// ResolveError represents a failed reverse name lookup.
type ResolveError struct {
	Code     ErrorCode
	Message  string
	Address  string
	Resolver string
	Cause    error
}

// Error implements the error interface.
func (e *ResolveError) Error() string {
	if e.Address != "" {
		return fmt.Sprintf("[%s] %s (address: %s, resolver: %s)", e.Code, e.Message, e.Address, e.Resolver)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ResolveError) Unwrap() error {
	return e.Cause
}

// NewResolveError creates a resolve error without an underlying cause.
func NewResolveError(code ErrorCode, message, resolver, address string) *ResolveError {
	return &ResolveError{
		Code:     code,
		Message:  message,
		Address:  address,
		Resolver: resolver,
	}
}

// WrapResolveError wraps err as a resolve error, classifying it when code is empty.
func WrapResolveError(code ErrorCode, message, resolver, address string, err error) *ResolveError {
	if code == "" {
		code = Classify(err)
	}
	return &ResolveError{
		Code:     code,
		Message:  message,
		Address:  address,
		Resolver: resolver,
		Cause:    err,
	}
}

// ConfigError represents configuration-related errors.
type ConfigError struct {
	Code    ErrorCode
	Message string
	Field   string
	Value   interface{}
	Cause   error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// NewConfigFieldError creates a configuration error for a specific field.
func NewConfigFieldError(code ErrorCode, message, field string, value interface{}) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Field:   field,
		Value:   value,
	}
}

// WrapConfigError wraps an existing error as a configuration error.
func WrapConfigError(code ErrorCode, message string, err error) *ConfigError {
	return &ConfigError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Utility functions for common error operations

// GetCode extracts the error code from an error chain if it has one.
func GetCode(err error) ErrorCode {
	var probeErr *ProbeError
	if stderrors.As(err, &probeErr) {
		return probeErr.Code
	}
	var resolveErr *ResolveError
	if stderrors.As(err, &resolveErr) {
		return resolveErr.Code
	}
	var configErr *ConfigError
	if stderrors.As(err, &configErr) {
		return configErr.Code
	}
	return CodeUnknown
}

// IsCode checks if an error has a specific error code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && GetCode(err) == code
}

// IsFatal determines if an error indicates a fatal condition that should stop execution.
func IsFatal(err error) bool {
	switch GetCode(err) {
	case CodeConfiguration, CodeValidation:
		return true
	default:
		return false
	}
}

// Classify maps a low-level network error onto an error code.
func Classify(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	if code := GetCode(err); code != CodeUnknown {
		return code
	}

	if stderrors.Is(err, os.ErrDeadlineExceeded) {
		return CodeTimeout
	}
	if stderrors.Is(err, os.ErrPermission) || stderrors.Is(err, syscall.EPERM) || stderrors.Is(err, syscall.EACCES) {
		return CodePermission
	}
	if stderrors.Is(err, syscall.ENETUNREACH) {
		return CodeNetworkUnreachable
	}
	if stderrors.Is(err, syscall.EHOSTUNREACH) || stderrors.Is(err, syscall.ECONNREFUSED) {
		return CodeHostUnreachable
	}

	var dnsErr *net.DNSError
	if stderrors.As(err, &dnsErr) {
		switch {
		case dnsErr.IsNotFound:
			return CodeNoRecord
		case dnsErr.IsTimeout:
			return CodeTimeout
		default:
			return CodeResolveFailed
		}
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return CodeTimeout
	}

	if strings.Contains(err.Error(), "context canceled") {
		return CodeCanceled
	}
	if strings.Contains(err.Error(), "context deadline exceeded") {
		return CodeTimeout
	}

	return CodeUnknown
}

// Common error creation functions

// ErrNoReply creates an error for a probe that got no success reply.
func ErrNoReply(method, address string) *ProbeError {
	return NewProbeError(CodeNoReply, "No reply received", method, address)
}

// ErrInvalidTarget creates an error for an address the prober cannot use.
func ErrInvalidTarget(method, address string, err error) *ProbeError {
	return WrapProbeError(CodeTargetInvalid, "Invalid probe target", method, address, err)
}

// ErrNoRecord creates an error for an address with no name record.
func ErrNoRecord(resolver, address string) *ResolveError {
	return NewResolveError(CodeNoRecord, "No name record found", resolver, address)
}

// ErrConfigInvalid creates an error for invalid configuration.
func ErrConfigInvalid(field string, value interface{}) *ConfigError {
	return NewConfigFieldError(CodeValidation, "Invalid configuration value", field, value)
}

// ErrConfigMissing creates an error for missing required configuration.
func ErrConfigMissing(field string) *ConfigError {
	return NewConfigFieldError(CodeConfiguration, "Required configuration field missing", field, nil)
}
