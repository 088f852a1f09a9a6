package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var hexColor6 = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// New returns a validator with the project's custom tags registered:
//
//	hexcolor6  a "#rrggbb" colour
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("hexcolor6", func(fl validator.FieldLevel) bool {
		return hexColor6.MatchString(fl.Field().String())
	})
	return v
}
