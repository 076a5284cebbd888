package handler

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var profileName = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Validator adapts go-playground/validator to echo.Validator. Field names
// in errors use the json tag.
type Validator struct {
	v *validator.Validate
}

// NewValidator returns the validator installed as echo's e.Validator. It adds
// the "username" tag for profile names (letters, digits and underscore).
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return profileName.MatchString(fl.Field().String())
	})
	return &Validator{v: v}
}

// Validate implements echo.Validator.
func (cv *Validator) Validate(i interface{}) error { return cv.v.Struct(i) }

// fieldErrors maps each failing field to the rule it broke, e.g.
// {"name": "max", "email": "email"}. It returns nil for other errors.
func fieldErrors(err error) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		// Namespace is "RegisterRequest.avatar.url"; drop the struct name.
		ns := fe.Namespace()
		if i := strings.IndexByte(ns, '.'); i >= 0 {
			ns = ns[i+1:]
		}
		out[ns] = fe.Tag()
	}
	return out
}
