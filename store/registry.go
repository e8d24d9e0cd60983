package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/bobg/reportanchor"
)

// Factory creates a Store from a configuration map.
type Factory func(context.Context, map[string]interface{}) (reportanchor.Store, error)

var registry = make(map[string]Factory)

// Register makes a Store type available to Create under the given key.
// Backend packages call it from init.
func Register(key string, f Factory) {
	registry[key] = f
}

// Create creates a Store of the type named by key.
func Create(ctx context.Context, key string, conf map[string]interface{}) (reportanchor.Store, error) {
	f, ok := registry[key]
	if !ok {
		return nil, fmt.Errorf("key %s not found in registry", key)
	}
	return f(ctx, conf)
}

// CreateNested creates the Store described by the "nested" parameter of conf.
// Wrapper stores use it.
func CreateNested(ctx context.Context, conf map[string]interface{}) (reportanchor.Store, error) {
	nested, ok := conf["nested"].(map[string]interface{})
	if !ok {
		return nil, errors.New(`missing "nested" parameter`)
	}
	nestedType, ok := nested["type"].(string)
	if !ok {
		return nil, errors.New(`"nested" parameter missing "type"`)
	}
	s, err := Create(ctx, nestedType, nested)
	return s, errors.Wrap(err, "creating nested store")
}

// IntParam reads an integer parameter from conf.
// Config files are decoded with json.Decoder.UseNumber,
// but other callers may pass plain numbers.
func IntParam(conf map[string]interface{}, name string) (int, error) {
	switch v := conf[name].(type) {
	case int:
		return v, nil
	case float64:
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		return int(n), errors.Wrapf(err, "parsing %q parameter", name)
	}
	return 0, fmt.Errorf(`missing "%s" parameter`, name)
}
