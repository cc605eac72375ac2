// Package validate is the process wide go-playground validator with english messages.
// Failures come back as perr validation errors naming the yaml, json or query field
package validate

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"qsmerge/internal/core/period"
	perr "qsmerge/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

// rule is a custom or reworded tag. fn is nil when only the message changes
type rule struct {
	tag  string
	text string
	fn   validator.Func
}

var rules = []rule{
	{tag: "min", text: "{0} must be at least {1}"},
	{tag: "max", text: "{0} must be at most {1}"},
	{tag: "gtefield", text: "{0} must be at least {1}"},
	{tag: "period_key", text: "{0} must look like experiment/step/tSS-tEE", fn: periodKey},
}

// periodKey accepts an empty string; pair it with required when the key is mandatory
func periodKey(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return true
	}
	_, err := period.ParseKey(s)
	return err == nil
}

type engine struct {
	v     *validator.Validate
	trans ut.Translator
}

var get = sync.OnceValue(func() engine {
	loc := en.New()
	trans, _ := ut.New(loc, loc).GetTranslator("en")

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	_ = entrans.RegisterDefaultTranslations(v, trans)
	for _, r := range rules {
		if r.fn != nil {
			_ = v.RegisterValidation(r.tag, r.fn)
		}
		_ = v.RegisterTranslation(r.tag, trans,
			func(t ut.Translator) error { return t.Add(r.tag, r.text, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				msg, _ := t.T(r.tag, fe.Field(), fe.Param())
				return msg
			},
		)
	}
	return engine{v: v, trans: trans}
})

// Struct validates v and reports the first failing field
func Struct(v any) error {
	e := get()
	err := e.v.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return perr.Wrap(err, perr.ErrorCodeUnknown, "validator internal error")
	}
	fe := verrs[0]
	return perr.WithField(perr.Validationf("%s", fe.Translate(e.trans)), fe.Field())
}

// fieldName names a field by its first yaml, json or query tag, else the Go name
func fieldName(f reflect.StructField) string {
	for _, key := range [...]string{"yaml", "json", "query"} {
		name, _, _ := strings.Cut(f.Tag.Get(key), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}
