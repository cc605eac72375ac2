// Package bind decodes request query strings into tagged structs and validates them
package bind

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"

	perr "qsmerge/internal/platform/errors"
	"qsmerge/internal/platform/validate"
)

// Query fills a T from r's query string using `query` tags, then validates it.
// Supported kinds are string, bool, ints and floats; unknown parameters are ignored
func Query[T any](r *http.Request) (T, error) {
	var dst T
	rv := reflect.ValueOf(&dst).Elem()
	if rv.Kind() != reflect.Struct {
		return dst, perr.Internalf("bind: %T is not a struct", dst)
	}

	q := r.URL.Query()
	rt := rv.Type()
	for i := range rt.NumField() {
		f := rt.Field(i)
		name := f.Tag.Get("query")
		if name == "" || name == "-" || !f.IsExported() {
			continue
		}
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			continue
		}
		if err := set(rv.Field(i), raw); err != nil {
			return dst, perr.WithField(perr.Validationf("%s: %v", name, err), name)
		}
	}

	if err := validate.Struct(dst); err != nil {
		return dst, err
	}
	return dst, nil
}

func set(fv reflect.Value, raw string) error {
	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetInt(n)
	case reflect.Float32, reflect.Float64:
		x, err := strconv.ParseFloat(raw, fv.Type().Bits())
		if err != nil {
			return err
		}
		fv.SetFloat(x)
	default:
		return perr.Internalf("unsupported kind %s", fv.Kind())
	}
	return nil
}
