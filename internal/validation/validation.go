// Package validation проверяет тела запросов с помощью go-playground/validator
// и превращает ошибки в детали по полям для конверта API.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

const minCarYear = 1900

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// FieldError описывает одно невалидное поле.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error возвращается, если тело запроса не прошло валидацию.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewError создает ошибку валидации для одного поля.
func NewError(field, message string) *Error {
	return &Error{Fields: []FieldError{{Field: field, Message: message}}}
}

// Validator оборачивает настроенный validator.Validate.
type Validator struct {
	v   *validator.Validate
	now func() time.Time
}

// New создает Validator с зарегистрированными собственными правилами.
func New() *Validator {
	return NewWithClock(time.Now)
}

// NewWithClock работает как New, но принимает часы для верхней границы года.
func NewWithClock(now func() time.Time) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	val := &Validator{v: v, now: now}
	// Регистрация падает только при ошибке программиста (пустой тег или nil-функция).
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	_ = v.RegisterValidation("caryear", func(fl validator.FieldLevel) bool {
		year := fl.Field().Int()
		return year >= minCarYear && year <= int64(val.MaxYear())
	})
	return val
}

// MaxYear возвращает последний допустимый год выпуска.
func (val *Validator) MaxYear() int {
	return val.now().Year() + 1
}

// Struct проверяет s и при ошибке возвращает *Error.
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation: %w", err)
	}
	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: val.message(fe)})
	}
	return out
}

// IsStrongPassword сообщает, есть ли в p строчная буква, заглавная буква и цифра.
func IsStrongPassword(p string) bool {
	var lower, upper, digit bool
	for _, r := range p {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	return lower && upper && digit
}

func (val *Validator) message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Please provide a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot exceed %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s cannot exceed %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "username":
		return "Username can only contain letters, numbers, and underscores"
	case "password":
		return "Password must contain at least one lowercase letter, one uppercase letter, and one number"
	case "caryear":
		return fmt.Sprintf("year must be between %d and %d", minCarYear, val.MaxYear())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
