package util

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var classCodePattern = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)

func ValidClassCode(code string) bool {
	return classCodePattern.MatchString(code)
}

// RegisterValidators 注册自定义 binding 标签
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("classcode", func(fl validator.FieldLevel) bool {
		return ValidClassCode(fl.Field().String())
	})
}
