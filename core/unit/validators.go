package unit

import (
	"github.com/go-playground/validator/v10"

	"github.com/gllabs/portal/core"
)

var (
	contentTypeTag  = "contenttype"
	contentTypeText = "unknown content type"
)

func init() {
	_ = core.Validate.RegisterValidation(contentTypeTag, contentTypeValidation)
	core.RegisterCustomTranslation(contentTypeTag, contentTypeText)
}

// contentTypeValidation checks that the value is one of the enumerated content types.
func contentTypeValidation(fl validator.FieldLevel) bool {
	return ContentType(fl.Field().String()).Valid()
}
