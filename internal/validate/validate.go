// Package validate checks client payloads before they reach the services.
//
// Rules are declared as struct tags and evaluated by go-playground/validator.
// Strings are trimmed first, and only the first failure is reported, with a
// message meant for API clients.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"kanban/internal/apperr"
	"kanban/internal/models"
)

var colorPattern = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

// dateLayouts are the ISO 8601 forms accepted for due dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

var engine = newEngine()

func newEngine() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	must(v.RegisterValidation("rgbhex", func(fl validator.FieldLevel) bool {
		return colorPattern.MatchString(fl.Field().String())
	}))
	must(v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	}))
	return v
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// input is implemented by every payload type in this package.
type input interface {
	entity() string
	normalize()
}

// Struct trims in and checks it against its declared rules.
func Struct(in input) error {
	in.normalize()
	err := engine.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.Internal("Validation error", err)
	}
	fe := fieldErrs[0]
	return apperr.ValidationField(fe.Field(), message(in.entity(), fe))
}

// ProjectID checks the format of a project identifier.
func ProjectID(id string) error {
	if !models.IsValidID(id) {
		return apperr.ValidationField("project_id", "Invalid project ID format")
	}
	return nil
}

// TaskID checks the format of a task identifier.
func TaskID(id string) error {
	if !models.IsValidID(id) {
		return apperr.ValidationField("id", "Invalid task ID format")
	}
	return nil
}

// ParseDate parses an ISO 8601 date or date-time, keeping millisecond
// precision.
func ParseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Truncate(time.Millisecond), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
