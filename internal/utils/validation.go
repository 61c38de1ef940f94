package utils

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var orgCodePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{1,31}$`)

// RegisterValidators installs the custom binding validations. Called once
// during router setup.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	return v.RegisterValidation("orgcode", func(fl validator.FieldLevel) bool {
		return orgCodePattern.MatchString(fl.Field().String())
	})
}
