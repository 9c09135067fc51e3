package di

import (
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pixie-sh/errors-go"
)

// Blueprint describes a constructible struct type: its ordered parameter
// descriptors, derived from the exported fields, and the field mapping used
// by the auto-factory to assemble an instance from resolved arguments.
//
// Parameter names come from the `di` field tag, falling back to the `json`
// tag, falling back to the lower-cased field name. Fields tagged `di:"-"`
// are skipped. Each parameter's declared type is the field type, so untagged
// blueprint fields auto-wire against type-keyed registrations.
type Blueprint struct {
	typ          reflect.Type
	params       []Param
	fieldByParam map[string]string
}

// BlueprintOf derives the Blueprint of struct type T. It panics if T is not
// a struct; registering a non-constructible blueprint is a programming error.
func BlueprintOf[T any]() *Blueprint {
	var t *T
	typ := reflect.TypeOf(t).Elem()
	if typ.Kind() != reflect.Struct {
		errors.Must(errors.New("blueprint type %s is not a struct", typ.String(), InvalidBlueprintErrorCode))
	}

	bp := &Blueprint{
		typ:          typ,
		fieldByParam: make(map[string]string, typ.NumField()),
	}

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue // unexported
		}

		name := paramName(field)
		if name == "" {
			continue
		}

		bp.params = append(bp.params, Param{Name: name, Type: TypeKey(field.Type)})
		bp.fieldByParam[name] = field.Name
	}

	return bp
}

// Params returns the ordered parameter descriptors of the blueprint.
func (bp *Blueprint) Params() []Param {
	out := make([]Param, len(bp.params))
	copy(out, bp.params)
	return out
}

// factory returns the auto-factory of the blueprint: given resolved named
// arguments it constructs a new *T. Arguments already assignable to their
// field are set directly, which keeps injected singleton pointers identical;
// everything else goes through a mapstructure decode for value conversion.
func (bp *Blueprint) factory() Factory {
	return func(args Args) (any, error) {
		target := reflect.New(bp.typ)

		remainder := make(map[string]any)
		for name, value := range args {
			fieldName, ok := bp.fieldByParam[name]
			if !ok {
				continue
			}

			field := target.Elem().FieldByName(fieldName)
			if value != nil && reflect.TypeOf(value).AssignableTo(field.Type()) {
				field.Set(reflect.ValueOf(value))
				continue
			}

			remainder[fieldName] = value
		}

		if len(remainder) > 0 {
			if err := decodeStruct(remainder, target.Interface()); err != nil {
				return nil, errors.Wrap(err, "failed to construct blueprint instance of %s", bp.typ.String(), ErrorCreatingDependencyErrorCode)
			}
		}

		return target.Interface(), nil
	}
}

func paramName(field reflect.StructField) string {
	if tag, ok := field.Tag.Lookup("di"); ok {
		name := strings.Split(tag, ",")[0]
		if name == "-" {
			return ""
		}

		if name != "" {
			return name
		}
	}

	if tag, ok := field.Tag.Lookup("json"); ok {
		name := strings.Split(tag, ",")[0]
		if name == "-" {
			return ""
		}

		if name != "" {
			return name
		}
	}

	return strings.ToLower(field.Name[:1]) + field.Name[1:]
}

// decodeStruct maps a field-name-keyed argument mapping onto a struct pointer.
func decodeStruct(from map[string]any, to any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: to,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder", DependencyTypeMismatchErrorCode)
	}

	if err = decoder.Decode(from); err != nil {
		return errors.Wrap(err, "failed to decode", DependencyTypeMismatchErrorCode)
	}

	return nil
}
