/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presexch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bluele/gcache"
	"github.com/piprate/json-gold/ld"
)

const contextCacheSize = 64

// contextResolver expands credential types to IRIs through their JSON-LD contexts.
type contextResolver struct {
	contexts gcache.Cache
}

func newContextResolver(loader ld.DocumentLoader) *contextResolver {
	if loader == nil {
		return nil
	}

	return &contextResolver{
		contexts: gcache.New(contextCacheSize).LRU().LoaderFunc(func(key interface{}) (interface{}, error) {
			uri, _ := key.(string) //nolint:errcheck

			return getContext(uri, loader)
		}).Build(),
	}
}

// typeIRIs returns the IRIs the given types expand to under the given contexts. Contexts that fail to load are
// skipped.
func (r *contextResolver) typeIRIs(contexts, types []string) []string {
	if r == nil {
		return nil
	}

	var iris []string

	for _, uri := range contexts {
		v, err := r.contexts.Get(uri)
		if err != nil {
			logger.Debugf("load context %s: %s", uri, err)

			continue
		}

		ctx, _ := v.(map[string]interface{}) //nolint:errcheck

		for _, t := range types {
			if iri := expandTerm(ctx, t); iri != "" {
				iris = append(iris, iri)
			}
		}
	}

	return iris
}

func getContext(contextURI string, documentLoader ld.DocumentLoader) (map[string]interface{}, error) {
	doc, err := documentLoader.LoadDocument(contextURI)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}

	docMap, ok := doc.Document.(map[string]interface{})
	if !ok {
		return nil, errors.New("expects jsonld document")
	}

	ctx, ok := docMap["@context"].(map[string]interface{})
	if !ok {
		return nil, errors.New("@context field not found")
	}

	return ctx, nil
}

func expandTerm(ctx map[string]interface{}, term string) string {
	var iri string

	switch def := ctx[term].(type) {
	case string:
		iri = def
	case map[string]interface{}:
		iri, _ = def["@id"].(string) //nolint:errcheck
	}

	if iri == "" {
		if vocab, ok := ctx["@vocab"].(string); ok {
			return vocab + term
		}

		return ""
	}

	prefix, suffix, found := strings.Cut(iri, ":")
	if !found || strings.HasPrefix(suffix, "//") {
		return iri
	}

	if base, ok := ctx[prefix].(string); ok {
		return base + suffix
	}

	return iri
}
