package assignment

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/classroom/core"
)

var (
	categoryTag  = "category"
	categoryText = "{0} must be one of homework, exam or project"
)

// InitValidators registers the assignment validators. core.InitValidators must be called first.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(categoryTag, categoryValidation)
	core.RegisterCustomTranslation(validate, translator, categoryTag, categoryText)
}

func categoryValidation(fl validator.FieldLevel) bool {
	category := fl.Field().String()
	for _, c := range Categories {
		if category == c {
			return true
		}
	}
	return false
}
