package options

import (
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/AnyUserName/blurtune/internal/apperr"
)

// Validate checks every field of enc against its descriptor.
func Validate(enc EncodeOptions) error {
	if enc == nil {
		return apperr.Errorf(apperr.InvalidConfiguration, "validate", "missing encode options")
	}
	return validateAgainst(SchemaFor(enc.Format()), enc)
}

// ValidateResize checks r against the resize schema.
func ValidateResize(r ResizeSpec) error {
	return validateAgainst(resizeSchema, r)
}

// ValidateProcessing checks the format tag, the encode options and the
// resize configuration.
func ValidateProcessing(p ProcessingOptions) error {
	if err := p.CheckTag(); err != nil {
		return err
	}
	if err := Validate(p.Encode); err != nil {
		return err
	}
	return ValidateResize(p.Resize)
}

func validateAgainst(schema []Field, v any) error {
	fields := fieldsByKey(reflect.ValueOf(v))
	for _, d := range schema {
		fv, ok := fields[d.Key]
		if !ok {
			panic(fmt.Sprintf("options: %T has no field for descriptor %q", v, d.Key))
		}
		if err := check(d, fv); err != nil {
			return apperr.New(apperr.InvalidConfiguration, "validate "+d.Key, err)
		}
	}
	return nil
}

func check(d Field, v reflect.Value) error {
	switch d.Kind {
	case Boolean:
		if v.Kind() != reflect.Bool {
			return fmt.Errorf("expected boolean, got %s", v.Kind())
		}
	case BoundedInteger:
		if !v.CanInt() {
			return fmt.Errorf("expected integer, got %s", v.Kind())
		}
		if n := float64(v.Int()); n < d.Min || n > d.Max {
			return fmt.Errorf("%d outside [%g, %g]", v.Int(), d.Min, d.Max)
		}
	case BoundedFraction:
		if !v.CanFloat() {
			return fmt.Errorf("expected number, got %s", v.Kind())
		}
		n := v.Float()
		if math.IsNaN(n) || n < d.Min || n > d.Max {
			return fmt.Errorf("%g outside [%g, %g]", n, d.Min, d.Max)
		}
		if !onStep(n, d) {
			return fmt.Errorf("%g is not a multiple of %g from %g", n, d.Step, d.Min)
		}
	case EnumeratedString:
		if v.Kind() != reflect.String {
			return fmt.Errorf("expected string, got %s", v.Kind())
		}
		if !slices.Contains(d.Choices, v.String()) {
			return fmt.Errorf("%q is not one of %s", v.String(), strings.Join(d.Choices, ", "))
		}
	default:
		return fmt.Errorf("unknown field kind %q", d.Kind)
	}
	return nil
}

// onStep reports whether n lies on the grid Min + k*Step.
func onStep(n float64, d Field) bool {
	if d.Step <= 0 {
		return true
	}
	k := (n - d.Min) / d.Step
	return math.Abs(k-math.Round(k)) < 1e-6
}

// SetField parses value according to the descriptor of key and returns a
// copy of enc with that field replaced. The result is not range checked.
func SetField(enc EncodeOptions, key, value string) (EncodeOptions, error) {
	if enc == nil {
		return nil, apperr.Errorf(apperr.InvalidConfiguration, "set field", "missing encode options")
	}
	d, ok := Lookup(SchemaFor(enc.Format()), key)
	if !ok {
		return nil, apperr.Errorf(apperr.InvalidConfiguration, "set field", "%s has no field %q", enc.Format(), key)
	}

	// Copy the variant into an addressable value.
	ptr := reflect.New(reflect.TypeOf(Normalize(enc)))
	ptr.Elem().Set(reflect.ValueOf(Normalize(enc)))
	fv := fieldsByKey(ptr.Elem())[key]

	if err := assign(d, fv, value); err != nil {
		return nil, apperr.New(apperr.InvalidConfiguration, "set "+key, err)
	}
	return ptr.Elem().Interface().(EncodeOptions), nil
}

func assign(d Field, fv reflect.Value, value string) error {
	value = strings.TrimSpace(value)
	switch d.Kind {
	case Boolean:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		fv.SetBool(b)
	case BoundedInteger:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		fv.SetInt(n)
	case BoundedFraction:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%q is not a finite number", value)
		}
		fv.SetFloat(f)
	case EnumeratedString:
		fv.SetString(value)
	}
	return nil
}

// fieldsByKey indexes the struct fields of v by their json name.
func fieldsByKey(v reflect.Value) map[string]reflect.Value {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	t := v.Type()
	out := make(map[string]reflect.Value, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name == "" || name == "-" {
			continue
		}
		out[name] = v.Field(i)
	}
	return out
}
