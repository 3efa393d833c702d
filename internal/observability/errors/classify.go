package errors

import (
	goerrors "errors"
	"reflect"
	"strings"

	apperrors "github.com/target/hrdesk/internal/errors"
)

// Classify returns a normalized error tag suitable for structured log fields.
// Application errors are tagged by their code (e.g. "auth_refresh_reused"); other
// errors by their innermost concrete type in snake_case-ish form.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	if code := apperrors.GetCode(err); code != "" {
		return normalize(string(code))
	}

	// Unwrap to the innermost error for better signal.
	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := normalize(strings.ReplaceAll(t.String(), "*", ""))
	if name == "" {
		return "unknown"
	}
	return name
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(s)
}
