// Package validate holds request-level field checks shared by the handlers.
// Semantic validation (lifecycle rules, ownership) lives in the services.
package validate

import (
	"fmt"
	"regexp"
	"time"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// usernameRx allows letters, digits, underscore and hyphen, 1-30 chars.
var usernameRx = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,30}$`)

func Email(v string) error {
	if v == "" {
		return fmt.Errorf("email is required")
	}
	if len(v) > 320 || !emailRx.MatchString(v) {
		return fmt.Errorf("invalid email")
	}
	return nil
}

func Username(v string) error {
	if v == "" {
		return fmt.Errorf("username is required")
	}
	if !usernameRx.MatchString(v) {
		return fmt.Errorf("username must match %s", usernameRx.String())
	}
	return nil
}

func NonEmpty(field, v string) error {
	if v == "" {
		return fmt.Errorf("%s is required", field)
	}
	return nil
}

func MaxLen(field, v string, limit int) error {
	if len(v) > limit {
		return fmt.Errorf("%s exceeds %d characters", field, limit)
	}
	return nil
}

// Date parses a report date, accepting a bare date or a full RFC 3339
// timestamp. Bare dates normalize to midnight UTC.
func Date(field, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, fmt.Errorf("%s is required", field)
	}
	if ts, err := time.Parse("2006-01-02", v); err == nil {
		return ts.UTC(), nil
	}
	if ts, err := time.Parse(time.RFC3339, v); err == nil {
		return ts.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD or RFC 3339", field)
}
