package middlewares

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/dmitrymomot/husca/internal"
)

// Binder fills dst, a pointer to a struct, from one part of the request.
type Binder func(c internal.Context, dst any) error

// ErrBindTarget is returned when a binder gets something other than a
// pointer to a struct.
var ErrBindTarget = errors.New("middlewares: bind target must be a pointer to a struct")

// BindJSON decodes the JSON request body into dst. A body already parsed
// by BodyParser is reused. An empty body leaves dst untouched.
func BindJSON(c internal.Context, dst any) error {
	if body := c.Body(); body != nil {
		switch body.(type) {
		case url.Values, *multipart.Form:
			return nil
		}
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, dst); err != nil {
			return internal.ErrBadRequest("malformed request body", internal.WithError(err))
		}
		return nil
	}

	r := c.Request()
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return nil
	}
	return decodeJSON(c, DefaultBodyLimit, dst)
}

// BindQuery fills fields tagged `query:"name"` from the query string.
func BindQuery(c internal.Context, dst any) error {
	q := c.Request().URL.Query()
	return bindValues(dst, "query", func(name string) []string { return q[name] })
}

// BindParams fills fields tagged `param:"name"` from route parameters.
func BindParams(c internal.Context, dst any) error {
	params := c.Params()
	return bindValues(dst, "param", func(name string) []string {
		if v, ok := params[name]; ok {
			return []string{v}
		}
		return nil
	})
}

// BindForm fills fields tagged `form:"name"` from a urlencoded or
// multipart form body.
func BindForm(c internal.Context, dst any) error {
	var form url.Values
	switch body := c.Body().(type) {
	case url.Values:
		form = body
	case *multipart.Form:
		form = body.Value
	default:
		r := c.Request()
		if err := r.ParseForm(); err != nil {
			return bodyError(err)
		}
		form = r.PostForm
	}
	return bindValues(dst, "form", func(name string) []string { return form[name] })
}

// BindHeader fills fields tagged `header:"Name"` from request headers.
func BindHeader(c internal.Context, dst any) error {
	h := c.Request().Header
	return bindValues(dst, "header", func(name string) []string { return h.Values(name) })
}

// bindValues sets every field tagged with tag from lookup.
// Missing values leave the field as is.
func bindValues(dst any, tag string, lookup func(name string) []string) error {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return ErrBindTarget
	}
	return bindStruct(v.Elem(), tag, lookup)
}

func bindStruct(v reflect.Value, tag string, lookup func(string) []string) error {
	t := v.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		fv := v.Field(i)
		name, _, _ := strings.Cut(sf.Tag.Get(tag), ",")

		// Embedded structs are walked even when their type is unexported,
		// like encoding/json does.
		if sf.Anonymous && name == "" && fv.Kind() == reflect.Struct {
			if err := bindStruct(fv, tag, lookup); err != nil {
				return err
			}
			continue
		}
		if !sf.IsExported() || name == "" || name == "-" {
			continue
		}

		vals := lookup(name)
		if len(vals) == 0 {
			continue
		}
		if err := setField(fv, vals); err != nil {
			return internal.ErrBadRequest(fmt.Sprintf("invalid value for %s", name), internal.WithError(err))
		}
	}
	return nil
}

var textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()

func setField(fv reflect.Value, vals []string) error {
	if fv.Kind() == reflect.Pointer {
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		return setField(fv.Elem(), vals)
	}

	if reflect.PointerTo(fv.Type()).Implements(textUnmarshalerType) {
		return fv.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(vals[0]))
	}

	if fv.Kind() == reflect.Slice {
		out := reflect.MakeSlice(fv.Type(), len(vals), len(vals))
		for i, s := range vals {
			if err := setScalar(out.Index(i), s); err != nil {
				return err
			}
		}
		fv.Set(out)
		return nil
	}

	return setScalar(fv, vals[0])
}

func setScalar(fv reflect.Value, s string) error {
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetFloat(f)
	default:
		return fmt.Errorf("unsupported field type %s", fv.Type())
	}
	return nil
}
