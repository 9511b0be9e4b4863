// Package mcputils binds loosely typed MCP tool arguments to Go structs.
package mcputils

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ArgumentGetter is an interface for getting arguments from a request
type ArgumentGetter interface {
	GetArguments() map[string]interface{}
}

// CoerceBindArguments binds request arguments to target using json tags.
// Some MCP clients send every parameter as a string, so "true", "4096" and
// JSON-encoded arrays are converted to the field's type. Unknown argument
// names are an error.
func CoerceBindArguments[T any](request ArgumentGetter, target *T) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			trimStringHook,
			jsonStringHook,
		),
		Result:  target,
		TagName: "json",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(request.GetArguments())
}

func trimStringHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.String {
		return data, nil
	}
	return strings.TrimSpace(reflect.ValueOf(data).String()), nil
}

// jsonStringHook decodes a JSON array or object sent as a string.
func jsonStringHook(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.String {
		return data, nil
	}
	raw := reflect.ValueOf(data).String()

	switch t.Kind() {
	case reflect.Slice:
		if !strings.HasPrefix(raw, "[") || !strings.HasSuffix(raw, "]") {
			return data, nil
		}
		slicePtr := reflect.New(t)
		if err := json.Unmarshal([]byte(raw), slicePtr.Interface()); err == nil {
			return slicePtr.Elem().Interface(), nil
		}
	case reflect.Map, reflect.Struct:
		if !strings.HasPrefix(raw, "{") || !strings.HasSuffix(raw, "}") {
			return data, nil
		}
		var result map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &result); err == nil {
			return result, nil
		}
	}
	return data, nil
}
