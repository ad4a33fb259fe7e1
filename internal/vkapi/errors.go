package vkapi

import (
	"errors"
	"fmt"
)

// VK API error codes the client treats specially.
const (
	CodeTooManyRequests    = 6
	CodeFloodControl       = 9
	CodeInternalError      = 10
	CodeAccessDenied       = 15
	CodeCannotSendToUser   = 901
	CodeCannotSendToMember = 917
)

// APIError is an error object returned by the VK API in place of a response.
type APIError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_msg"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vk api error %d: %s", e.Code, e.Message)
}

// Temporary reports whether repeating the same request may succeed.
func (e *APIError) Temporary() bool {
	return e.Code == CodeTooManyRequests || e.Code == CodeInternalError
}

// IsAPIError extracts the VK error from err.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsPermissionDenied reports whether the peer does not accept messages from
// the community. Retrying or reporting such errors is pointless.
func IsPermissionDenied(err error) bool {
	apiErr, ok := IsAPIError(err)
	if !ok {
		return false
	}
	switch apiErr.Code {
	case CodeAccessDenied, CodeCannotSendToUser, CodeCannotSendToMember:
		return true
	}
	return false
}
