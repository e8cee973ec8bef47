package school

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/bukhari/academy/core"
)

var (
	attendanceStatusTag  = "attendancestatus"
	attendanceStatusText = "invalid attendance status"

	commentTypeTag  = "commenttype"
	commentTypeText = "invalid comment type"
)

// InitValidators registers school validators. Must be called once at app bootstrap.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(attendanceStatusTag, oneOfValidation(AllAttendanceStatuses))
	core.RegisterCustomTranslation(validate, translator, attendanceStatusTag, attendanceStatusText)

	_ = validate.RegisterValidation(commentTypeTag, oneOfValidation(AllCommentTypes))
	core.RegisterCustomTranslation(validate, translator, commentTypeTag, commentTypeText)
}

func oneOfValidation(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		for _, a := range allowed {
			if val == a {
				return true
			}
		}
		return false
	}
}
