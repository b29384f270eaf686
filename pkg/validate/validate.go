// Package validate checks request structs against rules declared in a
// `validate` struct tag.
//
// Rules are comma-separated:
//
//	required         present and not blank
//	nullable         empty or null skips the remaining rules
//	integer          whole number
//	min=N, max=N     string: length in runes | number: value
//	gt=N, gte=N      number bounds
//	lt=N, lte=N
//	in=a,b,c         one of the listed values
//	regex=pattern    must match (no commas in the pattern)
//	decimals=N       at most N decimal places
//	ltfield=name     number below the sibling field with that json name,
//	                 skipped when the sibling is absent or null
//
// Pointer fields and Unwrapper values are resolved first: an absent optional
// value skips every rule, and a null one only passes with `nullable`.
//
//	type CreateProduct struct {
//	    SKU   *string  `json:"sku"   validate:"required,regex=^[A-Za-z0-9_-]+$,min=3,max=50"`
//	    Price *float64 `json:"price" validate:"required,gt=0,decimals=2"`
//	    Type  string   `json:"type"  validate:"nullable,in=public,private"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// FieldError is a single failed rule, keyed by the JSON field name.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors lists failures in struct field order, at most one per field.
type Errors []FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(parts, "; ")
}

// Get returns the message recorded for field, or "".
func (e Errors) Get(field string) string {
	for _, fe := range e {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// Has reports whether field failed validation.
func (e Errors) Has(field string) bool {
	return e.Get(field) != ""
}

// HasErrors returns true when errs is non-empty.
func HasErrors(errs Errors) bool { return len(errs) > 0 }

// Unwrapper is implemented by optional wrappers that distinguish an absent
// value from an explicit null. set=false means the field was not supplied
// and none of its rules run; set=true with a nil value means null.
type Unwrapper interface {
	ValidateValue() (value any, set bool)
}

// check evaluates one rule. It returns the failure message or "".
type check func(c ruleCtx) string

type ruleCtx struct {
	field  string
	param  string
	value  reflect.Value
	parent reflect.Value
}

func (c ruleCtx) text() string { return fmt.Sprint(c.value.Interface()) }

func (c ruleCtx) number() float64 { return toFloat(c.value) }

func (c ruleCtx) bound() float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(c.param), 64)
	return f
}

var checks = map[string]check{
	"required": func(c ruleCtx) string {
		if isEmpty(c.value) {
			return fmt.Sprintf("The %s field is required.", c.field)
		}
		return ""
	},
	"integer": func(c ruleCtx) string {
		if _, err := strconv.ParseInt(c.text(), 10, 64); err != nil {
			return fmt.Sprintf("The %s field must be an integer.", c.field)
		}
		return ""
	},
	"min": func(c ruleCtx) string {
		if isNumeric(c.value) {
			if c.number() < c.bound() {
				return fmt.Sprintf("The %s must be at least %s.", c.field, c.param)
			}
		} else if float64(len([]rune(c.text()))) < c.bound() {
			return fmt.Sprintf("The %s must be at least %s characters.", c.field, c.param)
		}
		return ""
	},
	"max": func(c ruleCtx) string {
		if isNumeric(c.value) {
			if c.number() > c.bound() {
				return fmt.Sprintf("The %s must not be greater than %s.", c.field, c.param)
			}
		} else if float64(len([]rune(c.text()))) > c.bound() {
			return fmt.Sprintf("The %s must not exceed %s characters.", c.field, c.param)
		}
		return ""
	},
	"gt":  compare(func(v, n float64) bool { return v > n }, "greater than"),
	"gte": compare(func(v, n float64) bool { return v >= n }, "greater than or equal to"),
	"lt":  compare(func(v, n float64) bool { return v < n }, "less than"),
	"lte": compare(func(v, n float64) bool { return v <= n }, "less than or equal to"),
	"in": func(c ruleCtx) string {
		got := c.text()
		for _, a := range strings.Split(c.param, ",") {
			if got == strings.TrimSpace(a) {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", c.field)
	},
	"regex": func(c ruleCtx) string {
		re, err := compiled(c.param)
		if err != nil {
			return fmt.Sprintf("The %s has an invalid validation pattern.", c.field)
		}
		if !re.MatchString(c.text()) {
			return fmt.Sprintf("The %s format is invalid.", c.field)
		}
		return ""
	},
	"decimals": func(c ruleCtx) string {
		places := int32(c.bound())
		if isNumeric(c.value) && decimal.NewFromFloat(c.number()).Exponent() < -places {
			return fmt.Sprintf("The %s must have at most %s decimal places.", c.field, c.param)
		}
		return ""
	},
	"ltfield": func(c ruleCtx) string {
		other, ok := sibling(c.parent, c.param)
		if ok && c.number() >= toFloat(other) {
			return fmt.Sprintf("The %s must be less than %s.", c.field, c.param)
		}
		return ""
	},
}

func compare(ok func(v, n float64) bool, phrase string) check {
	return func(c ruleCtx) string {
		if !ok(c.number(), c.bound()) {
			return fmt.Sprintf("The %s must be %s %s.", c.field, phrase, c.param)
		}
		return ""
	}
}

var patterns sync.Map // pattern -> *regexp.Regexp

func compiled(pattern string) (*regexp.Regexp, error) {
	if re, ok := patterns.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patterns.Store(pattern, re)
	return re, nil
}

// Struct validates all exported fields of v that carry a `validate` tag.
// Pointer fields are dereferenced; a nil pointer only satisfies `nullable`.
func Struct(v any) Errors {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	var errs Errors
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		tag := sf.Tag.Get("validate")
		if tag == "" || !sf.IsExported() {
			continue
		}
		name := jsonName(sf)
		if msg := field(name, splitRules(tag), rv.Field(i), rv); msg != "" {
			errs = append(errs, FieldError{Field: name, Message: msg})
		}
	}
	return errs
}

// field returns the first failing message for one struct field.
func field(name string, rules []string, raw, parent reflect.Value) string {
	nullable := hasRule(rules, "nullable")
	value, present, null, indirect := resolve(raw)
	switch {
	case !present:
		return ""
	case null && nullable:
		return ""
	case null && hasRule(rules, "required"):
		return fmt.Sprintf("The %s field is required.", name)
	case null:
		return fmt.Sprintf("The %s field must not be null.", name)
	case nullable && isEmpty(value):
		return ""
	}

	for _, rule := range rules {
		key, param, _ := strings.Cut(rule, "=")
		if key == "nullable" {
			continue
		}
		// A dereferenced number is present even when zero.
		if key == "required" && indirect && value.Kind() != reflect.String && !isEmptyContainer(value) {
			continue
		}
		fn, ok := checks[key]
		if !ok {
			continue
		}
		if msg := fn(ruleCtx{field: name, param: param, value: value, parent: parent}); msg != "" {
			return msg
		}
	}
	return ""
}

// resolve unwraps Unwrapper and pointer fields. present=false means the rules
// must not run at all; null=true means an explicit nil value; indirect=true
// means the value came from behind a pointer or wrapper.
func resolve(v reflect.Value) (value reflect.Value, present, null, indirect bool) {
	if u, ok := asUnwrapper(v); ok {
		inner, set := u.ValidateValue()
		switch {
		case !set:
			return v, false, false, true
		case inner == nil:
			return v, true, true, true
		}
		v = reflect.ValueOf(inner)
		indirect = true
	}
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return v, true, true, true
		}
		v = v.Elem()
		indirect = true
	}
	return v, true, false, indirect
}

func asUnwrapper(v reflect.Value) (Unwrapper, bool) {
	if !v.CanInterface() {
		return nil, false
	}
	if u, ok := v.Interface().(Unwrapper); ok {
		return u, true
	}
	if v.CanAddr() {
		if u, ok := v.Addr().Interface().(Unwrapper); ok {
			return u, true
		}
	}
	return nil, false
}

// sibling returns the resolved value of the parent field whose json name is
// name. ok is false when it is missing or null.
func sibling(parent reflect.Value, name string) (reflect.Value, bool) {
	rt := parent.Type()
	for i := 0; i < rt.NumField(); i++ {
		if jsonName(rt.Field(i)) != name {
			continue
		}
		v, present, null, _ := resolve(parent.Field(i))
		return v, present && !null
	}
	return reflect.Value{}, false
}

// splitRules splits a tag on commas, folding the values of an `in=` list
// back into one rule: "required,in=a,b,max=3" -> [required in=a,b max=3].
func splitRules(tag string) []string {
	var rules []string
	inList := false
	for _, tok := range strings.Split(tag, ",") {
		tok = strings.TrimSpace(tok)
		if inList && !isRuleToken(tok) {
			rules[len(rules)-1] += "," + tok
			continue
		}
		rules = append(rules, tok)
		inList = strings.HasPrefix(tok, "in=")
	}
	return rules
}

func isRuleToken(tok string) bool {
	key, _, _ := strings.Cut(tok, "=")
	_, ok := checks[key]
	return ok || key == "nullable"
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if r == target {
			return true
		}
	}
	return false
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false
	}
	if isNumeric(v) {
		return toFloat(v) == 0
	}
	return false
}

func isEmptyContainer(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	}
	return false
}

func isNumeric(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	f, _ := strconv.ParseFloat(fmt.Sprint(v.Interface()), 64)
	return f
}
