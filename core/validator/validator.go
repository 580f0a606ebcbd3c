package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

func ValidateStruct(v interface{}) error {
	return checkError(getValidator().Struct(v))
}

func ValidateOneOf(value string, enums ...string) error {
	tags := "omitempty,oneof=" + strings.Join(enums, " ")
	return checkError(getValidator().Var(value, tags))
}

func checkError(err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		switch e.Tag() {
		case "oneof":
			msg := fmt.Sprintf("error value %q", e.Value())
			if e.Field() != "" {
				msg += fmt.Sprintf(" for key %q", e.Field())
			}
			msgs = append(msgs, msg+fmt.Sprintf(" not recognized, only support %q", e.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s cannot be less than %s", e.Field(), e.Param()))
		default:
			msgs = append(msgs, e.Error())
		}
	}
	return errors.New(strings.Join(msgs, " and "))
}
