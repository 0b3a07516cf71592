package configsvc

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// setByPath sets a nested field of obj using a dotted path, resolving
// field names through their JSON tag and handling numeric-kind
// conversions, mirroring the config service's per-tool override mechanism.
func setByPath(obj interface{}, value interface{}, path ...string) error {
	val := reflect.ValueOf(obj)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("object must be a non-nil pointer")
	}
	val = val.Elem()

	for i, part := range path {
		if val.Kind() == reflect.Ptr && val.IsNil() {
			val.Set(reflect.New(val.Type().Elem()))
			val = val.Elem()
		}

		if val.Kind() != reflect.Struct && val.Kind() != reflect.Slice {
			return fmt.Errorf("cannot descend into non-struct/slice value at '%s' in '%s'", part, strings.Join(path[:i], "."))
		}

		if val.Kind() == reflect.Struct {
			field, ok := findFieldByJSONTag(val, part)
			if !ok {
				return fmt.Errorf("invalid field name '%s' in path element '%s' on object of kind '%s'", part, strings.Join(path[:i], "."), val.Type())
			}
			val = field
		} else {
			index, err := strconv.Atoi(part)
			if err != nil || index < 0 {
				return fmt.Errorf("invalid index '%s' in path element '%s' on slice '%s'", part, strings.Join(path[:i], "."), val.Type())
			}
			if index >= val.Len() {
				return fmt.Errorf("index '%d' out of slice '%s' bounds at '%s'", index, val.Type(), strings.Join(path[:i+1], "."))
			}
			val = val.Index(index)
		}
	}

	if !val.CanSet() {
		return fmt.Errorf("cannot set '%s' on '%s'", strings.Join(path, "."), reflect.ValueOf(obj).Type())
	}

	v := reflect.ValueOf(value)

	switch val.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intVal, ok := convertToInt64(v)
		if !ok {
			return fmt.Errorf("value of type '%s' cannot be assigned to int-like field of type '%s'", v.Type(), val.Type())
		}
		if val.OverflowInt(intVal) {
			return fmt.Errorf("value of type '%s' with value '%d' cannot be assigned to field of type '%s' due to overflow", v.Type(), intVal, val.Type())
		}
		val.SetInt(intVal)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		uintVal, ok := convertToUint64(v)
		if !ok {
			return fmt.Errorf("value of type '%s' cannot be assigned to uint-like field of type '%s'", v.Type(), val.Type())
		}
		if val.OverflowUint(uintVal) {
			return fmt.Errorf("value of type '%s' with value '%d' cannot be assigned to field of type '%s' due to overflow", v.Type(), uintVal, val.Type())
		}
		val.SetUint(uintVal)
	case reflect.Float32, reflect.Float64:
		floatVal, ok := convertToFloat64(v)
		if !ok {
			return fmt.Errorf("value of type '%s' cannot be assigned to float field of type '%s'", v.Type(), val.Type())
		}
		val.SetFloat(floatVal)
	default:
		if !v.Type().AssignableTo(val.Type()) {
			return fmt.Errorf("value of type '%s' cannot be assigned to field of type '%s'", v.Type(), val.Type())
		}
		val.Set(v)
	}

	return nil
}

func findFieldByJSONTag(val reflect.Value, jsonTag string) (reflect.Value, bool) {
	for i := 0; i < val.NumField(); i++ {
		field := val.Type().Field(i)
		tag := strings.Split(field.Tag.Get("json"), ",")[0]
		if tag == jsonTag {
			return val.Field(i), true
		}
		if tag == "" && field.Name == jsonTag {
			return val.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func convertToInt64(v reflect.Value) (int64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return int64(v.Float()), true
	default:
		return 0, false
	}
}

func convertToUint64(v reflect.Value) (uint64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint(), true
	case reflect.Float32, reflect.Float64:
		return uint64(v.Float()), true
	default:
		return 0, false
	}
}

func convertToFloat64(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	default:
		return 0, false
	}
}
