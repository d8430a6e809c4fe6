package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Third-Party Service Errors
var (
	ErrUpstreamFailure    = errors.New("upstream service failure")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// Configuration & Environment Errors
var (
	ErrConfigMissing = errors.New("configuration missing")
)

// Serialization & Encoding Errors
var (
	ErrBase64Decode = errors.New("base64 decode error")
)

// NewUpstreamError wraps a failed call to the mailer or media host.
func NewUpstreamError(service string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrUpstreamFailure,
		Details:    fmt.Sprintf("%s request failed", service),
		Cause:      cause,
		Field:      service,
	}
}

func NewServiceUnavailableError(service string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusServiceUnavailable,
		err:        ErrServiceUnavailable,
		Details:    fmt.Sprintf("%s is not configured", service),
		Field:      service,
	}
}

func NewConfigError(configName string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        ErrConfigMissing,
		Details:    fmt.Sprintf("Configuration %s is missing or invalid", configName),
		Cause:      cause,
		Field:      configName,
	}
}

func NewBase64DecodeError(operation string, cause error) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrBase64Decode,
		Details:    fmt.Sprintf("Base64 decode failed during %s", operation),
		Cause:      cause,
	}
}

func IsUpstreamError(err error) bool {
	return errors.Is(err, ErrUpstreamFailure)
}

func IsServiceUnavailableError(err error) bool {
	return errors.Is(err, ErrServiceUnavailable)
}

func IsBase64DecodeError(err error) bool {
	return errors.Is(err, ErrBase64Decode)
}
