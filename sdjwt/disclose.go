/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package sdjwt

import (
	"fmt"
	"sort"

	"github.com/go-jose/go-jose/v3/jwt"
)

// LocatedDisclosure is a disclosure together with the location, inside the disclosed claims,
// of the claim it reveals.
type LocatedDisclosure struct {
	*DisclosureClaim
	Path []interface{}
}

// ParsePayload decodes the claims of the issuer-signed JWT without verifying its signature.
func ParsePayload(issuerSignedJWT string) (map[string]interface{}, error) {
	token, err := jwt.ParseSigned(issuerSignedJWT)
	if err != nil {
		return nil, fmt.Errorf("parse issuer signed jwt: %w", err)
	}

	claims := map[string]interface{}{}

	err = token.UnsafeClaimsWithoutVerification(&claims)
	if err != nil {
		return nil, fmt.Errorf("decode issuer signed jwt claims: %w", err)
	}

	return claims, nil
}

// Disclose applies disclosures to the issuer-signed payload. It returns the disclosed claims,
// stripped of digests and _sd_alg, and the location of every applied disclosure. Digests without
// a matching disclosure are removed.
func Disclose(payload map[string]interface{},
	claims []*DisclosureClaim) (map[string]interface{}, []*LocatedDisclosure, error) {
	d := &discloser{
		byDigest: make(map[string]*DisclosureClaim, len(claims)),
		used:     map[string]bool{},
	}

	for _, c := range claims {
		d.byDigest[c.Digest] = c
	}

	out, err := d.object(payload, nil)
	if err != nil {
		return nil, nil, err
	}

	delete(out, SDAlgorithmKey)

	return out, d.located, nil
}

type discloser struct {
	byDigest map[string]*DisclosureClaim
	used     map[string]bool
	located  []*LocatedDisclosure
}

func (d *discloser) value(v interface{}, path []interface{}) (interface{}, error) {
	switch val := v.(type) {
	case map[string]interface{}:
		return d.object(val, path)
	case []interface{}:
		return d.array(val, path)
	default:
		return v, nil
	}
}

func (d *discloser) object(obj map[string]interface{}, path []interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(obj))

	for _, k := range sortedKeys(obj) {
		if k == SDKey {
			continue
		}

		processed, err := d.value(obj[k], child(path, k))
		if err != nil {
			return nil, err
		}

		out[k] = processed
	}

	digests, err := stringArray(obj[SDKey])
	if err != nil {
		return nil, fmt.Errorf("get disclosure digests: %w", err)
	}

	for _, digest := range digests {
		dc, ok := d.take(digest)
		if !ok {
			continue
		}

		if dc.Type != DisclosureClaimTypeObjectMember {
			return nil, fmt.Errorf("array element disclosure '%s' referenced from '%s'", digest, SDKey)
		}

		if _, exists := out[dc.Name]; exists {
			// If the claim name already exists at the same level, the Verifier MUST reject the Presentation.
			return nil, fmt.Errorf("claim name '%s' already exists at the same level", dc.Name)
		}

		claimPath := child(path, dc.Name)

		processed, err := d.value(dc.Value, claimPath)
		if err != nil {
			return nil, err
		}

		out[dc.Name] = processed

		d.located = append(d.located, &LocatedDisclosure{DisclosureClaim: dc, Path: claimPath})
	}

	return out, nil
}

func (d *discloser) array(arr []interface{}, path []interface{}) ([]interface{}, error) {
	out := make([]interface{}, 0, len(arr))

	for _, el := range arr {
		digest, isDigest := arrayElementDigest(el)
		if !isDigest {
			processed, err := d.value(el, child(path, len(out)))
			if err != nil {
				return nil, err
			}

			out = append(out, processed)

			continue
		}

		dc, ok := d.take(digest)
		if !ok {
			continue
		}

		if dc.Type != DisclosureClaimTypeArrayElement {
			return nil, fmt.Errorf("object member disclosure '%s' referenced from array element", digest)
		}

		elPath := child(path, len(out))

		processed, err := d.value(dc.Value, elPath)
		if err != nil {
			return nil, err
		}

		out = append(out, processed)

		d.located = append(d.located, &LocatedDisclosure{DisclosureClaim: dc, Path: elPath})
	}

	return out, nil
}

func (d *discloser) take(digest string) (*DisclosureClaim, bool) {
	dc, ok := d.byDigest[digest]
	if !ok {
		return nil, false
	}

	if d.used[digest] {
		return nil, false
	}

	d.used[digest] = true

	return dc, true
}

// SelectDisclosures returns the disclosures needed to reveal every path in leaves. A disclosure is
// needed when the claim it reveals is one of the leaves or one of their ancestors.
func SelectDisclosures(located []*LocatedDisclosure, leaves [][]interface{}) []*DisclosureClaim {
	var out []*DisclosureClaim

	for _, ld := range located {
		for _, leaf := range leaves {
			if hasPrefix(leaf, ld.Path) {
				out = append(out, ld.DisclosureClaim)

				break
			}
		}
	}

	return out
}

func sortedKeys(obj map[string]interface{}) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

func arrayElementDigest(el interface{}) (string, bool) {
	obj, ok := el.(map[string]interface{})
	if !ok || len(obj) != 1 {
		return "", false
	}

	digest, ok := obj[ArrayElementDigestKey].(string)

	return digest, ok
}

func child(path []interface{}, el interface{}) []interface{} {
	out := make([]interface{}, len(path), len(path)+1)
	copy(out, path)

	return append(out, el)
}

func hasPrefix(path, prefix []interface{}) bool {
	if len(prefix) > len(path) {
		return false
	}

	for i := range prefix {
		if path[i] != prefix[i] {
			return false
		}
	}

	return true
}
