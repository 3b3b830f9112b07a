// Package tools holds what the tool adapters share: the failure value every
// adapter returns instead of raising, and request validation.
package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Kind names a closed class of adapter failure. The string is what callers
// see in the "error" field.
type Kind string

const (
	KindDisambiguation Kind = "DisambiguationError"
	KindNotFound       Kind = "PageError"
	KindOther          Kind = "Exception"
)

// Failure is the structured value an adapter returns when a call cannot
// produce a success payload. It is never returned alongside one.
type Failure struct {
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Options []string `json:"options,omitempty"`
}

// NewFailure builds a Failure of the given kind.
func NewFailure(kind Kind, message string) *Failure {
	return &Failure{Error: string(kind), Message: message}
}

// MessageFailure builds the single-field shape {"error": msg}.
func MessageFailure(err error) *Failure {
	return &Failure{Error: err.Error()}
}

// JSON renders a result value. A value that cannot be marshalled becomes an
// Exception failure so callers always get a JSON object back.
func JSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		data, _ = json.Marshal(NewFailure(KindOther, err.Error()))
	}
	return string(data)
}

var validate = newValidator()

// newValidator reports fields by their JSON names, which are the names the
// model used when it built the call.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("langcode", func(fl validator.FieldLevel) bool {
		return langCodeRe.MatchString(fl.Field().String())
	})
	return v
}

// langCodeRe matches Wikipedia language codes such as "en", "simple" or
// "zh-min-nan". The code ends up in a hostname, so nothing else gets through.
var langCodeRe = regexp.MustCompile(`^[a-z]{2,12}(-[a-z0-9]{1,12})*$`)

// Validate checks a request struct against its `validate` tags and flattens
// the result into a single readable error.
func Validate(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("invalid request: %s", strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be %s characters", field, fe.Param())
	case "langcode":
		return fmt.Sprintf("%s must be a Wikipedia language code, got %q", field, fe.Value())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %q validation", field, fe.Tag())
	}
}
