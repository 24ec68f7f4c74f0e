/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presexch

import (
	"encoding/json"
	"fmt"

	"github.com/bluele/gcache"
	"github.com/xeipuuv/gojsonschema"
)

const schemaCacheSize = 256

// compiled filters keyed by their JSON form; gcache is thread safe.
//
//nolint:gochecknoglobals
var schemaCache = gcache.New(schemaCacheSize).LRU().LoaderFunc(func(key interface{}) (interface{}, error) {
	raw, ok := key.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected schema cache key %T", key)
	}

	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
}).Build()

func (f *Filter) schema() (*gojsonschema.Schema, error) {
	raw, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal filter: %w", err)
	}

	s, err := schemaCache.Get(string(raw))
	if err != nil {
		return nil, fmt.Errorf("compile filter: %w", err)
	}

	schema, ok := s.(*gojsonschema.Schema)
	if !ok {
		return nil, fmt.Errorf("unexpected cached filter %T", s)
	}

	return schema, nil
}

// Accepts reports whether value validates against f.
func (f *Filter) Accepts(value interface{}) (bool, error) {
	schema, err := f.schema()
	if err != nil {
		return false, err
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(value))
	if err != nil {
		return false, fmt.Errorf("validate against filter: %w", err)
	}

	return result.Valid(), nil
}
