package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors
	ErrCodeConfigNotFound   ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid    ErrorCode = "CONFIG_INVALID"
	ErrCodeConfigValidation ErrorCode = "CONFIG_VALIDATION"

	// Notification errors
	ErrCodeNotificationInvalid ErrorCode = "NOTIFICATION_INVALID"

	// Dependency resolution errors
	ErrCodeUnsupportedPlatform ErrorCode = "UNSUPPORTED_PLATFORM"
	ErrCodeReleaseLookup       ErrorCode = "RELEASE_LOOKUP_FAILED"
	ErrCodeDownloadFailed      ErrorCode = "DOWNLOAD_FAILED"
	ErrCodeBinaryUnavailable   ErrorCode = "BINARY_UNAVAILABLE"

	// Command execution errors
	ErrCodeCommandTimeout  ErrorCode = "COMMAND_TIMEOUT"
	ErrCodeCommandNotFound ErrorCode = "COMMAND_NOT_FOUND"
	ErrCodeCommandFailed   ErrorCode = "COMMAND_FAILED"

	// Hook installation errors
	ErrCodeHookInstall   ErrorCode = "HOOK_INSTALL_FAILED"
	ErrCodeHookUninstall ErrorCode = "HOOK_UNINSTALL_FAILED"

	// State persistence errors
	ErrCodeStateWrite ErrorCode = "STATE_WRITE_FAILED"

	// General errors
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// PluginError represents a structured error with context
type PluginError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *PluginError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *PluginError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *PluginError) WithDetail(key string, value interface{}) *PluginError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *PluginError) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new PluginError
func New(code ErrorCode, message string) *PluginError {
	return &PluginError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with a PluginError
func Wrap(err error, code ErrorCode, message string) *PluginError {
	return &PluginError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific PluginError code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	pluginErr, ok := err.(*PluginError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return Is(unwrapper.Unwrap(), code)
		}
		return false
	}

	return pluginErr.Code == code
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	pluginErr, ok := err.(*PluginError)
	if !ok {
		// Try to unwrap
		if unwrapper, ok := err.(interface{ Unwrap() error }); ok {
			return GetCode(unwrapper.Unwrap())
		}
		return ""
	}

	return pluginErr.Code
}
