package validator

import (
	"fmt"

	validator "github.com/go-playground/validator/v10"
)

// Validator provides struct validation on `validate` tags.
type Validator interface {
	Validate(interface{}) error
}

type wrapped struct {
	v *validator.Validate
}

func New() Validator {
	return &wrapped{v: validator.New()}
}

func (w *wrapped) Validate(obj interface{}) error {
	if err := w.v.Struct(obj); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("%s failed %s validation", e.Field(), e.Tag())
		}
		return err
	}
	return nil
}
