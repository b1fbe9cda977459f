package session

import (
	"context"
	"errors"
	"strings"

	perrors "github.com/ncassessoria/gerapost/pkg/errors"
)

// providerCodes maps identity-provider error codes to auth error codes.
var providerCodes = map[string]perrors.Code{
	"auth/popup-closed-by-user":          perrors.ErrCodeAuthCanceled,
	"auth/cancelled-popup-request":       perrors.ErrCodeAuthCanceled,
	"auth/user-cancelled":                perrors.ErrCodeAuthCanceled,
	"auth/invalid-credential":            perrors.ErrCodeAuthInvalidCredentials,
	"auth/wrong-password":                perrors.ErrCodeAuthInvalidCredentials,
	"auth/user-not-found":                perrors.ErrCodeAuthInvalidCredentials,
	"auth/user-disabled":                 perrors.ErrCodeAuthInvalidCredentials,
	"auth/operation-not-allowed":         perrors.ErrCodeAuthProviderDisabled,
	"auth/unauthorized-domain":           perrors.ErrCodeAuthMisconfigured,
	"auth/invalid-api-key":               perrors.ErrCodeAuthMisconfigured,
	"auth/configuration-not-found":       perrors.ErrCodeAuthMisconfigured,
	"auth/account-exists-with-different-credential": perrors.ErrCodeAuthInvalidCredentials,
}

var authMessages = map[perrors.Code]string{
	perrors.ErrCodeAuthCanceled:           "sign-in was cancelled",
	perrors.ErrCodeAuthInvalidCredentials: "the credentials were rejected by the provider",
	perrors.ErrCodeAuthProviderDisabled:   "this sign-in provider is disabled",
	perrors.ErrCodeAuthMisconfigured:      "sign-in is not configured correctly; check the provider settings",
}

// ClassifyAuthError turns a provider failure into a coded auth error.
// Errors that already carry an auth code pass through; a cancelled context
// counts as the user cancelling. Unrecognised failures are reported as
// misconfiguration, the only case the user cannot fix by retrying.
func ClassifyAuthError(err error) error {
	if err == nil {
		return nil
	}
	switch perrors.GetCode(err) {
	case perrors.ErrCodeAuthCanceled, perrors.ErrCodeAuthInvalidCredentials,
		perrors.ErrCodeAuthProviderDisabled, perrors.ErrCodeAuthMisconfigured:
		return err
	}
	if errors.Is(err, context.Canceled) {
		return perrors.Wrap(perrors.ErrCodeAuthCanceled, err, "%s", authMessages[perrors.ErrCodeAuthCanceled])
	}
	msg := err.Error()
	for key, code := range providerCodes {
		if strings.Contains(msg, key) {
			return perrors.Wrap(code, err, "%s", authMessages[code])
		}
	}
	return perrors.Wrap(perrors.ErrCodeAuthMisconfigured, err, "%s", authMessages[perrors.ErrCodeAuthMisconfigured])
}
