/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jsonpath evaluates JSONPath queries against decoded JSON trees and reports the concrete
// location of every selected node.
//
// Selection is done by PaesslerAG/jsonpath. Locations come from kawamuray/jsonpath when it accepts
// the query and agrees with the selection; otherwise every selected value is placed at the first
// location, in document order, that holds it under the keys its wildcards resolved to.
package jsonpath

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PaesslerAG/gval"
	"github.com/PaesslerAG/jsonpath"
	streaming "github.com/kawamuray/jsonpath"
)

// Path is the concrete location of a node: string elements address object members, int elements
// address array items.
type Path []interface{}

// Node is a value matched by a query together with its concrete location.
type Node struct {
	Path  Path
	Value interface{}
}

// match is a selected value and the keys its ambiguous selectors resolved to.
type match struct {
	keys  []string
	value interface{}
}

var (
	language   = gval.Full(jsonpath.PlaceholderExtension())
	identifier = regexp.MustCompile(`^[A-Za-z_$@][A-Za-z0-9_$@-]*$`)
)

// Nodes returns every node of doc selected by query, in document order.
func Nodes(query string, doc interface{}) ([]Node, error) {
	query = doubleQuoted(query)

	matches, err := selectAll(query, doc)
	if err != nil {
		return nil, err
	}

	if len(matches) == 0 {
		return nil, nil
	}

	if nodes, ok := locate(query, doc, matches); ok {
		return nodes, nil
	}

	return place(doc, matches), nil
}

// First returns the first node selected by query, and false when nothing matched or the query
// is malformed.
func First(query string, doc interface{}) (Node, bool) {
	nodes, err := Nodes(query, doc)
	if err != nil || len(nodes) == 0 {
		return Node{}, false
	}

	return nodes[0], true
}

// String formats p as a normalized query, e.g. $.credentialSubject['org.iso.18013.5.1'][0].
func (p Path) String() string {
	var sb strings.Builder

	sb.WriteString("$")

	for _, el := range p {
		switch v := el.(type) {
		case int:
			sb.WriteString("[" + strconv.Itoa(v) + "]")
		case string:
			if identifier.MatchString(v) {
				sb.WriteString("." + v)
			} else {
				sb.WriteString("['" + strings.ReplaceAll(v, "'", `\'`) + "']")
			}
		}
	}

	return sb.String()
}

// HasPrefix reports whether prefix addresses p or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}

	for i := range prefix {
		if p[i] != prefix[i] {
			return false
		}
	}

	return true
}

// Child returns a copy of p extended by el.
func (p Path) Child(el interface{}) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)

	return append(out, el)
}

// Leaves expands the node at p into the paths of all its scalar descendants. Empty objects and
// arrays count as leaves themselves.
func Leaves(p Path, value interface{}) []Path {
	var out []Path

	walk(p, value, func(at Path, v interface{}) {
		switch c := v.(type) {
		case map[string]interface{}:
			if len(c) == 0 {
				out = append(out, at)
			}
		case []interface{}:
			if len(c) == 0 {
				out = append(out, at)
			}
		default:
			out = append(out, at)
		}
	})

	return out
}

// selectAll evaluates query as the value of a placeholder object, so each selected value comes back
// keyed by its wildcard keys and a single value is not confused with a list of matches.
func selectAll(query string, doc interface{}) ([]match, error) {
	eval, err := language.NewEvaluable("{#: " + query + "}")
	if err != nil {
		return nil, fmt.Errorf("parse json path [%s]: %w", query, err)
	}

	res, err := eval(context.Background(), doc)
	if err != nil {
		return nil, fmt.Errorf("evaluate json path [%s]: %w", query, err)
	}

	selected, ok := res.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("evaluate json path [%s]: unexpected result %T", query, res)
	}

	matches := make([]match, 0, len(selected))

	for _, k := range sortedKeys(selected) {
		matches = append(matches, match{keys: wildcardKeys(k), value: selected[k]})
	}

	return matches, nil
}

// wildcardKeys splits a placeholder key such as $["evidence"]["0"] into its elements.
func wildcardKeys(s string) []string {
	var keys []string

	rest := strings.TrimPrefix(s, "$")

	for strings.HasPrefix(rest, "[") {
		quoted, err := strconv.QuotedPrefix(rest[1:])
		if err != nil {
			break
		}

		key, err := strconv.Unquote(quoted)
		if err != nil {
			break
		}

		keys = append(keys, key)
		rest = strings.TrimPrefix(rest[1+len(quoted):], "]")
	}

	return keys
}

// locate streams the serialized doc through query and keeps the reported keys when they address
// exactly the selected values.
func locate(query string, doc interface{}, matches []match) ([]Node, bool) {
	paths, err := streaming.ParsePaths(query)
	if err != nil {
		return nil, false
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, false
	}

	eval, err := streaming.EvalPathsInBytes(raw, paths)
	if err != nil {
		return nil, false
	}

	var nodes []Node

	for {
		res, ok := eval.Next()
		if !ok {
			break
		}

		p, ok := toPath(res.Keys)
		if !ok {
			return nil, false
		}

		v, ok := lookup(doc, p)
		if !ok {
			return nil, false
		}

		nodes = append(nodes, Node{Path: p, Value: v})
	}

	if eval.Error != nil || !sameValues(nodes, matches) {
		return nil, false
	}

	return nodes, true
}

func toPath(keys []interface{}) (Path, bool) {
	p := make(Path, 0, len(keys))

	for _, k := range keys {
		switch v := k.(type) {
		case int:
			p = append(p, v)
		case []byte:
			var name string

			if err := json.Unmarshal([]byte(`"`+string(v)+`"`), &name); err != nil {
				return nil, false
			}

			p = append(p, name)
		default:
			return nil, false
		}
	}

	return p, true
}

func lookup(doc interface{}, p Path) (interface{}, bool) {
	v := doc

	for _, el := range p {
		switch k := el.(type) {
		case string:
			obj, ok := v.(map[string]interface{})
			if !ok {
				return nil, false
			}

			if v, ok = obj[k]; !ok {
				return nil, false
			}
		case int:
			arr, ok := v.([]interface{})
			if !ok || k < 0 || k >= len(arr) {
				return nil, false
			}

			v = arr[k]
		}
	}

	return v, true
}

func sameValues(nodes []Node, matches []match) bool {
	if len(nodes) != len(matches) {
		return false
	}

	claimed := make([]bool, len(matches))

	for _, n := range nodes {
		i := claim(claimed, matches, func(m match) bool { return reflect.DeepEqual(n.Value, m.value) })
		if i < 0 {
			return false
		}
	}

	return true
}

// place pairs every match with the first location of doc holding an equal value under its keys.
func place(doc interface{}, matches []match) []Node {
	claimed := make([]bool, len(matches))

	var nodes []Node

	walk(Path{}, doc, func(p Path, v interface{}) {
		i := claim(claimed, matches, func(m match) bool { return resolves(p, m.keys) && reflect.DeepEqual(v, m.value) })
		if i >= 0 {
			nodes = append(nodes, Node{Path: p, Value: v})
		}
	})

	return nodes
}

func claim(claimed []bool, matches []match, accepts func(match) bool) int {
	for i, m := range matches {
		if !claimed[i] && accepts(m) {
			claimed[i] = true

			return i
		}
	}

	return -1
}

// resolves reports whether keys occur in p in order.
func resolves(p Path, keys []string) bool {
	i := 0

	for _, el := range p {
		if i < len(keys) && fmt.Sprint(el) == keys[i] {
			i++
		}
	}

	return i == len(keys)
}

// walk visits the node at p and all its descendants in document order.
func walk(p Path, value interface{}, visit func(Path, interface{})) {
	visit(p, value)

	switch v := value.(type) {
	case map[string]interface{}:
		for _, k := range sortedKeys(v) {
			walk(p.Child(k), v[k], visit)
		}
	case []interface{}:
		for i, item := range v {
			walk(p.Child(i), item, visit)
		}
	}
}

// doubleQuoted rewrites single-quoted names, which gval scans as character literals, into
// double-quoted strings.
func doubleQuoted(query string) string {
	if !strings.ContainsRune(query, '\'') {
		return query
	}

	var sb strings.Builder

	for i := 0; i < len(query); i++ {
		c := query[i]
		if c != '\'' && c != '"' {
			sb.WriteByte(c)

			continue
		}

		end := closingQuote(query, i)
		if end < 0 {
			sb.WriteString(query[i:])

			break
		}

		if c == '"' {
			sb.WriteString(query[i : end+1])
		} else {
			sb.WriteString(strconv.Quote(strings.ReplaceAll(query[i+1:end], `\'`, "'")))
		}

		i = end
	}

	return sb.String()
}

func closingQuote(s string, i int) int {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case s[i]:
			return j
		}
	}

	return -1
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
