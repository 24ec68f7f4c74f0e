/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package sdjwttest issues SD-JWT credentials for tests.
package sdjwttest

import (
	"crypto"
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-pex-go/sdjwt"
)

var hmacKey = []byte("0123456789abcdef0123456789abcdef")

// Disclosure encodes an object member disclosure.
func Disclosure(t *testing.T, salt, name string, value interface{}) string {
	t.Helper()

	return encode(t, []interface{}{salt, name, value})
}

// ArrayDisclosure encodes an array element disclosure.
func ArrayDisclosure(t *testing.T, salt string, value interface{}) string {
	t.Helper()

	return encode(t, []interface{}{salt, value})
}

// Digest returns the sha-256 digest of a disclosure.
func Digest(t *testing.T, disclosure string) string {
	t.Helper()

	digest, err := sdjwt.GetHash(crypto.SHA256, disclosure)
	require.NoError(t, err)

	return digest
}

// Digests returns the sha-256 digests of disclosures as a JSON array value.
func Digests(t *testing.T, disclosures ...string) []interface{} {
	t.Helper()

	out := make([]interface{}, 0, len(disclosures))
	for _, d := range disclosures {
		out = append(out, Digest(t, d))
	}

	return out
}

// Sign signs claims as a compact JWT with the given typ header.
func Sign(t *testing.T, claims map[string]interface{}, typ string) string {
	t.Helper()

	opts := &jose.SignerOptions{}
	if typ != "" {
		opts = opts.WithType(jose.ContentType(typ))
	}

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: hmacKey}, opts)
	require.NoError(t, err)

	compact, err := jwt.Signed(signer).Claims(claims).CompactSerialize()
	require.NoError(t, err)

	return compact
}

// Combine assembles the combined format for presentation without key binding.
func Combine(issuerSigned string, disclosures ...string) string {
	cf := &sdjwt.CombinedFormatForPresentation{SDJWT: issuerSigned, Disclosures: disclosures}

	return cf.Serialize()
}

// DriverLicense issues a vc+sd-jwt credential whose vct, given_name, license.number and
// license.class are selectively disclosable, and returns it with all disclosures.
func DriverLicense(t *testing.T, number interface{}) string {
	t.Helper()

	vct := Disclosure(t, "salt-vct", "vct", "DriverLicense")
	num := Disclosure(t, "salt-number", "number", number)
	class := Disclosure(t, "salt-class", "class", "C")
	name := Disclosure(t, "salt-name", "given_name", "Alice")

	claims := map[string]interface{}{
		"iss":     "did:example:dmv",
		"_sd_alg": "sha-256",
		"_sd":     Digests(t, vct, name),
		"license": map[string]interface{}{
			"_sd": Digests(t, num, class),
		},
	}

	return Combine(Sign(t, claims, "vc+sd-jwt"), vct, num, class, name)
}

func encode(t *testing.T, v interface{}) string {
	t.Helper()

	raw, err := json.Marshal(v)
	require.NoError(t, err)

	return base64.RawURLEncoding.EncodeToString(raw)
}
