package internal

import "strconv"

// Scalar lists the types route parameters, query values and command options
// can be converted to.
type Scalar interface {
	~string | ~int | ~int64 | ~uint | ~uint64 | ~float64 | ~bool
}

// ContextValue returns the request-scoped value stored under key as T.
// Returns the zero value if the key is missing or holds another type.
func ContextValue[T any](c Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// BodyAs returns the parsed request body as T.
// The second result is false when no body was parsed or it has another type.
func BodyAs[T any](c Context) (T, bool) {
	v, ok := c.Body().(T)
	return v, ok
}

// Param returns a typed route parameter, or the zero value if it is missing
// or cannot be parsed.
func Param[T Scalar](c Context, name string) T {
	v, _ := convertParam[T](c.Param(name))
	return v
}

// Query returns a typed query parameter, or the zero value if it is missing
// or cannot be parsed.
func Query[T Scalar](c Context, name string) T {
	v, _ := convertParam[T](c.Query(name))
	return v
}

// QueryDefault retrieves a typed query parameter with a default value.
// Returns defaultValue if the parameter is empty or cannot be parsed.
func QueryDefault[T Scalar](c Context, name string, defaultValue T) T {
	return orDefault(c.Query(name), defaultValue)
}

// OptionValue returns a typed command option with a default value.
// Returns defaultValue if the option is absent or cannot be parsed.
func OptionValue[T Scalar](c ConsoleContext, name string, defaultValue T) T {
	return orDefault(c.Option(name), defaultValue)
}

func orDefault[T Scalar](raw string, defaultValue T) T {
	if raw == "" {
		return defaultValue
	}
	v, ok := convertParam[T](raw)
	if !ok {
		return defaultValue
	}
	return v
}

// convertParam converts a raw string to the target type T.
// Returns the converted value and true on success, or the zero value and false on failure.
func convertParam[T Scalar](raw string) (T, bool) {
	var zero T
	switch any(zero).(type) {
	case string:
		return any(raw).(T), true
	case int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case int64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case uint:
		v, err := strconv.ParseUint(raw, 10, 0)
		if err != nil {
			return zero, false
		}
		return any(uint(v)).(T), true
	case uint64:
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case float64:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	case bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return zero, false
		}
		return any(v).(T), true
	}
	return zero, false
}
