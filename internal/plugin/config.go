package plugin

import (
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"

	sgerrors "github.com/sightglass-data/sgtool/pkg/errors"
	"github.com/sightglass-data/sgtool/pkg/syncer"
)

// decodeConfig maps the caller-supplied key-value configuration onto the
// concrete syncer's fields. Unknown keys are rejected, scalar strings are
// coerced onto numeric and boolean fields so inline definitions work, load
// strategies are uppercased before validation so "upsert" and "UPSERT" are
// the same input, and model column types decode from their configuration
// names.
func decodeConfig(target any, config map[string]any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			normalizeStrategyHook,
			columnTypeHook,
		),
	})
	if err != nil {
		return err
	}

	if err := decoder.Decode(config); err != nil {
		return sgerrors.NewValidationError("configuration", err.Error(), err)
	}
	return nil
}

var (
	loadStrategyType = reflect.TypeOf(syncer.LoadStrategy(""))
	columnTypeType   = reflect.TypeOf(syncer.ColumnType(0))
)

func normalizeStrategyHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to == loadStrategyType && from.Kind() == reflect.String {
		return strings.ToUpper(reflect.ValueOf(data).String()), nil
	}
	return data, nil
}

func columnTypeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to == columnTypeType && from.Kind() == reflect.String {
		return syncer.ParseColumnType(reflect.ValueOf(data).String())
	}
	return data, nil
}
