// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package forms

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Field is a required form argument and the error shown when it is missing
type Field struct {
	Name    string
	Message string
}

// Form is an ordered set of required fields
type Form struct {
	fields []Field
}

func New(fields ...Field) *Form {
	return &Form{fields: fields}
}

// Validate checks every field against the request's form values and returns
// the messages of the missing ones, in declaration order. An empty result
// means the form is valid.
func (f *Form) Validate(r *http.Request) []string {
	if err := r.ParseForm(); err != nil {
		return []string{"Invalid form data"}
	}

	var errs []string
	for _, field := range f.fields {
		v, ok := Lookup(r, field.Name, false)
		if !ok || validate.Var(v, "required") != nil {
			errs = append(errs, field.Message)
		}
	}
	return errs
}

// Lookup returns the last value of a form or query argument, trimmed when
// strip is set. ok is false when the argument is absent.
func Lookup(r *http.Request, name string, strip bool) (v string, ok bool) {
	if r.Form == nil {
		r.ParseForm()
	}
	values := r.Form[name]
	if len(values) == 0 {
		return "", false
	}
	v = values[len(values)-1]
	if strip {
		v = strings.TrimSpace(v)
	}
	return v, true
}

// Argument returns the last value of a form or query argument, or "" when it
// is absent
func Argument(r *http.Request, name string, strip bool) string {
	v, _ := Lookup(r, name, strip)
	return v
}
