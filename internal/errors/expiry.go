package errors

import (
	"errors"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// Expressions used to pull a code and message out of decoded JSON failure payloads.
const (
	payloadCodeExpr    = "code || error.code"
	payloadMessageExpr = "message || error.message || error"
)

// authErrorCodes is matched exactly (case-sensitive) against the extracted code and message.
var authErrorCodes = map[string]struct{}{
	"unauthorized":         {},
	"UNAUTHORIZED":         {},
	"auth.unauthorized":    {},
	"AUTH_UNAUTHORIZED":    {},
	"token_expired":        {},
	"TOKEN_EXPIRED":        {},
	"auth.token_expired":   {},
	"AUTH_TOKEN_EXPIRED":   {},
	"token_invalid":        {},
	"TOKEN_INVALID":        {},
	"auth.token_invalid":   {},
	"AUTH_TOKEN_INVALID":   {},
	"auth.session_expired": {},
	"AUTH_SESSION_EXPIRED": {},
	"auth.refresh_reused":  {},
	"AUTH_REFRESH_REUSED":  {},
}

// authErrorPhrases is matched case-insensitively as substrings of the message.
// "jwt" is intentionally broad; it mirrors the backend vocabulary clients already depend on.
var authErrorPhrases = []string{
	"token is expired",
	"token has expired",
	"token is malformed",
	"invalid token",
	"unauthorized",
	"access token is required",
	"jwt",
}

// Failure is the normalized code/message pair extracted from an operation failure.
type Failure struct {
	Code    string
	Message string
}

// ExtractFailure normalizes an arbitrary failure value. ok is false for values that
// carry no message (nil, numbers, structs without an error interface, ...).
func ExtractFailure(failure any) (Failure, bool) {
	switch v := failure.(type) {
	case nil:
		return Failure{}, false
	case error:
		if appErr, isApp := v.(*AppError); isApp && appErr == nil {
			return Failure{}, false
		}
		f := Failure{Message: strings.TrimSpace(v.Error())}
		var appErr *AppError
		if errors.As(v, &appErr) && appErr != nil {
			f.Code = strings.TrimSpace(string(appErr.Code))
		}
		return f, true
	case string:
		return Failure{Message: strings.TrimSpace(v)}, true
	case map[string]string:
		m := make(map[string]any, len(v))
		for k, s := range v {
			m[k] = s
		}
		return extractPayload(m)
	case map[string]any:
		return extractPayload(v)
	default:
		return Failure{}, false
	}
}

func extractPayload(payload map[string]any) (Failure, bool) {
	code := searchString(payloadCodeExpr, payload)
	message := searchString(payloadMessageExpr, payload)
	if code == "" && message == "" {
		return Failure{}, false
	}
	return Failure{Code: code, Message: message}, true
}

func searchString(expr string, data any) string {
	result, err := jmespath.Search(expr, data)
	if err != nil {
		return ""
	}
	s, ok := result.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// IsCredentialExpiry reports whether a failure belongs to the credential-expiry class.
// Validation errors never qualify. All call sites classify through this function so the
// vocabulary lives in one place.
func IsCredentialExpiry(failure any) bool {
	f, ok := ExtractFailure(failure)
	if !ok || f.Code == string(ErrCodeValidation) {
		return false
	}
	if isAuthCode(f.Code) || isAuthCode(f.Message) {
		return true
	}
	msg := strings.ToLower(f.Message)
	if msg == "" {
		return false
	}
	for _, phrase := range authErrorPhrases {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}

func isAuthCode(s string) bool {
	if s == "" {
		return false
	}
	_, ok := authErrorCodes[s]
	return ok
}

// IsRefreshReused reports whether a refresh failure is the backend's reuse-detection signal.
// The message must be exactly the code; an AppError carrying the code also qualifies.
func IsRefreshReused(err error) bool {
	if err == nil {
		return false
	}
	if appErr, ok := err.(*AppError); ok && appErr == nil {
		return false
	}
	if strings.TrimSpace(err.Error()) == string(ErrCodeRefreshReused) {
		return true
	}
	return GetCode(err) == ErrCodeRefreshReused
}
