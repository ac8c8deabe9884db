package httpapi

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type defaultValidator struct{ v *validator.Validate }

func (d *defaultValidator) Validate(i interface{}) error {
	return d.v.Struct(i)
}

// newValidator returns an echo.Validator backed by go-playground/validator.
func newValidator() echo.Validator {
	return &defaultValidator{v: validator.New(validator.WithRequiredStructEnabled())}
}
