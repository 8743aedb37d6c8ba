package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	playground "github.com/go-playground/validator/v10"
)

// ErrInvalidTarget is returned when ValidateStruct gets something other than
// a struct or a pointer to one.
var ErrInvalidTarget = errors.New("validator: target must be a struct")

// RuleFunc is a custom tag rule. param is the text after "=" in the tag.
type RuleFunc func(value any, param string) bool

var (
	engine     *playground.Validate
	engineOnce sync.Once
	engineMu   sync.RWMutex
	messages   = map[string]string{}
)

func validate() *playground.Validate {
	engineOnce.Do(func() {
		engine = playground.New(playground.WithRequiredStructEnabled())
		engine.RegisterTagNameFunc(fieldName)
	})
	return engine
}

// fieldName reports fields under their json name.
func fieldName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

// ValidateStruct checks v against its `validate` struct tags.
// Failures are returned as ValidationErrors keyed by json field names;
// nested fields are dotted, e.g. "address.city".
func ValidateStruct(v any) error {
	engineMu.RLock()
	err := validate().Struct(v)
	engineMu.RUnlock()
	if err == nil {
		return nil
	}

	var invalid *playground.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("%w: %s", ErrInvalidTarget, invalid.Error())
	}
	return convert(err, "")
}

// Var checks a single value against a tag expression such as "required,email".
// field names the value in the returned errors.
func Var(field string, value any, tag string) error {
	engineMu.RLock()
	err := validate().Var(value, tag)
	engineMu.RUnlock()
	if err == nil {
		return nil
	}
	return convert(err, field)
}

// RegisterRule adds a custom tag usable in struct tags, Var and Tag.
// message is the default English message for failures.
func RegisterRule(name, message string, fn RuleFunc) error {
	if name == "" || fn == nil {
		return errors.New("validator: rule needs a name and a function")
	}

	engineMu.Lock()
	defer engineMu.Unlock()

	err := validate().RegisterValidation(name, func(fl playground.FieldLevel) bool {
		return fn(fl.Field().Interface(), fl.Param())
	})
	if err != nil {
		return fmt.Errorf("validator: register %q: %w", name, err)
	}
	if message != "" {
		messages[name] = message
	}
	return nil
}

func convert(err error, field string) error {
	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		name := field
		if name == "" {
			name = namespace(fe)
		}
		out = append(out, fromFieldError(name, fe))
	}
	return out
}

// namespace drops the root struct name from the error namespace.
func namespace(fe playground.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func fromFieldError(field string, fe playground.FieldError) ValidationError {
	tag, param := fe.Tag(), fe.Param()
	values := map[string]any{"field": field}
	if param != "" {
		values["param"] = param
	}

	ve := ValidationError{Field: field, TranslationValues: values}

	sized := false
	switch fe.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		sized = true
	}
	items := fe.Kind() != reflect.String

	switch tag {
	case "required", "required_if", "required_unless", "required_with", "required_without":
		ve.Message, ve.TranslationKey = "is required", "validation.required"
	case "min", "gte":
		values["min"] = param
		switch {
		case sized && items:
			ve.Message, ve.TranslationKey = "must contain at least "+param+" items", "validation.min_items"
		case sized:
			ve.Message, ve.TranslationKey = "must be at least "+param+" characters long", "validation.min_length"
		default:
			ve.Message, ve.TranslationKey = "must be at least "+param, "validation.min"
		}
	case "max", "lte":
		values["max"] = param
		switch {
		case sized && items:
			ve.Message, ve.TranslationKey = "must not contain more than "+param+" items", "validation.max_items"
		case sized:
			ve.Message, ve.TranslationKey = "must not exceed "+param+" characters", "validation.max_length"
		default:
			ve.Message, ve.TranslationKey = "must not exceed "+param, "validation.max"
		}
	case "len":
		if sized && items {
			values["count"] = param
			ve.Message, ve.TranslationKey = "must contain exactly "+param+" items", "validation.exact_items"
		} else {
			values["length"] = param
			ve.Message, ve.TranslationKey = "must be exactly "+param+" characters long", "validation.exact_length"
		}
	case "gt":
		ve.Message, ve.TranslationKey = "must be greater than "+param, "validation.gt"
	case "lt":
		ve.Message, ve.TranslationKey = "must be less than "+param, "validation.lt"
	case "oneof":
		values["values"] = param
		ve.Message, ve.TranslationKey = "must be one of "+param, "validation.one_of"
	case "email":
		ve.Message, ve.TranslationKey = "must be a valid email address", "validation.email"
	case "url", "http_url":
		ve.Message, ve.TranslationKey = "must be a valid URL", "validation.url"
	case "uuid", "uuid4":
		ve.Message, ve.TranslationKey = "must be a valid UUID", "validation.uuid"
	case "eqfield":
		ve.Message, ve.TranslationKey = "must match "+param, "validation.eq_field"
	default:
		engineMu.RLock()
		msg, ok := messages[tag]
		engineMu.RUnlock()
		if !ok {
			msg = "is invalid"
		}
		ve.Message, ve.TranslationKey = msg, "validation."+tag
	}

	return ve
}
