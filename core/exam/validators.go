package exam

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/bukhari/academy/core"
)

var (
	levelTag  = "examlevel"
	levelText = "invalid test level"

	kindTag  = "examkind"
	kindText = "invalid test kind"
)

// InitValidators registers exam validators. Must be called once at app bootstrap.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(levelTag, func(fl validator.FieldLevel) bool {
		return contains(AllLevels, fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, levelTag, levelText)

	_ = validate.RegisterValidation(kindTag, func(fl validator.FieldLevel) bool {
		return contains(AllKinds, fl.Field().String())
	})
	core.RegisterCustomTranslation(validate, translator, kindTag, kindText)
}

func contains(allowed []string, val string) bool {
	for _, a := range allowed {
		if val == a {
			return true
		}
	}
	return false
}
