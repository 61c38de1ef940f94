package keycloak

import (
	"errors"
	"fmt"
)

// Kind classifies a failure from the IdP so callers can branch on the
// outcome without parsing messages.
type Kind string

const (
	KindInvalidCredentials   Kind = "invalid_credentials"
	KindEmailNotVerified     Kind = "email_not_verified"
	KindIdPUnavailable       Kind = "idp_unavailable"
	KindAuthenticationFailed Kind = "authentication_failed"
	KindDuplicateIdentifier  Kind = "duplicate_identifier"
	KindRoleNotFound         Kind = "role_not_found"
	KindClientNotFound       Kind = "client_not_found"
	KindProvisioningFailed   Kind = "provisioning_failed"
	KindUserNotFound         Kind = "user_not_found"
	KindRefreshFailed        Kind = "refresh_failed"
	KindLogoutFailed         Kind = "logout_failed"
	KindInvalidInput         Kind = "invalid_input"
)

// Error is a classified IdP failure. Message is stable and safe to show to
// callers; the wrapped cause carries the diagnostic detail.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf returns the classification of err, or the empty Kind when err does
// not originate from the IdP layer.
func KindOf(err error) Kind {
	var kcErr *Error
	if errors.As(err, &kcErr) {
		return kcErr.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
