// Package errs gathers several errors into one.
package errs

import (
	"fmt"
	"strings"
)

type Errors []error

func New() Errors {
	return Errors([]error{})
}

func (e Errors) Error() string {
	if e == nil {
		return ""
	}

	s := make([]string, 0, len(e))
	for _, err := range e {
		s = append(s, err.Error())
	}
	return strings.Join(s, "\n")
}

// Unwrap lets errors.Is and errors.As look at each gathered error.
func (e Errors) Unwrap() []error {
	return e
}

func (e *Errors) Add(err error) {
	if err == nil {
		return
	}
	*e = append(*e, err)
}

func (e *Errors) Addf(format string, args ...interface{}) {
	e.Add(fmt.Errorf(format, args...))
}

func (e Errors) NilIfEmpty() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
