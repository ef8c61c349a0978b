package plugin

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	sgerrors "github.com/sightglass-data/sgtool/pkg/errors"
)

var (
	validatorOnce sync.Once
	validatorInst *validator.Validate

	identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// validatorInstance returns the shared validator used for syncer
// configuration structs. Field names in failures come from mapstructure
// tags so they match the keys plugin users actually write.
func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
			if tag == "" || tag == "-" {
				return strings.ToLower(fld.Name)
			}
			return tag
		})

		_ = v.RegisterValidation("tablename", func(fl validator.FieldLevel) bool {
			return identPattern.MatchString(fl.Field().String())
		})

		validatorInst = v
	})
	return validatorInst
}

// validateStruct runs struct-tag validation on a configured syncer and
// converts the first failure into a field-scoped ValidationError.
func validateStruct(target any) error {
	if err := validatorInstance().Struct(target); err != nil {
		return convertValidationError(err)
	}
	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		fe := fieldErrors[0]
		message := fmt.Sprintf("failed validation for tag '%s'", fe.Tag())
		if fe.Param() != "" {
			message = fmt.Sprintf("failed validation for tag '%s=%s'", fe.Tag(), fe.Param())
		}
		return sgerrors.NewValidationError(fe.Field(), message, err)
	}
	return sgerrors.NewValidationError("configuration", err.Error(), err)
}
