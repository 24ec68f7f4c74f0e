/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presexch_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-pex-go/credential"
	"github.com/hyperledger/aries-pex-go/internal/sdjwttest"
	. "github.com/hyperledger/aries-pex-go/presexch"
)

const bbsSuite = "BbsBlsSignature2020"

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func prefPtr(p Preference) *Preference {
	return &p
}

// ldCredential builds a JSON-LD credential with the given subject claims.
func ldCredential(id string, subject map[string]interface{}) map[string]interface{} {
	if _, ok := subject["id"]; !ok {
		subject["id"] = "did:example:holder"
	}

	return map[string]interface{}{
		"@context":          []interface{}{credential.ContextURI},
		"id":                id,
		"type":              []interface{}{credential.VCType},
		"issuer":            "did:example:issuer",
		"issuanceDate":      "2010-01-01T19:23:24Z",
		"credentialSubject": subject,
	}
}

func wrapLD(docs ...map[string]interface{}) []credential.Wrapped {
	out := make([]credential.Wrapped, len(docs))
	for i, d := range docs {
		out[i] = credential.NewJSONLD(d)
	}

	return out
}

// fieldDescriptor requires the presence of one subject claim.
func fieldDescriptor(id, claim string, groups ...string) *InputDescriptor {
	return &InputDescriptor{
		ID:    id,
		Group: groups,
		Constraints: &Constraints{
			Fields: []*Field{{Path: []string{"$.credentialSubject." + claim}}},
		},
	}
}

func degree(id, degreeType string) map[string]interface{} {
	return ldCredential(id, map[string]interface{}{
		"degree": map[string]interface{}{"type": degreeType, "name": "Bachelor of Science"},
		"name":   "Jayden Doe",
	})
}

func license(id, number string) map[string]interface{} {
	return ldCredential(id, map[string]interface{}{
		"license": map[string]interface{}{"number": number},
	})
}

func employment(id string) map[string]interface{} {
	return ldCredential(id, map[string]interface{}{
		"employer": "ACME",
	})
}

func degreeDescriptor(groups ...string) *InputDescriptor {
	return &InputDescriptor{
		ID:    "degree",
		Name:  "University degree",
		Group: groups,
		Constraints: &Constraints{
			Fields: []*Field{{
				Path:   []string{"$.credentialSubject.degree.type", "$.vc.credentialSubject.degree.type"},
				Filter: &Filter{Type: strPtr("string"), Pattern: "^BachelorDegree$"},
			}},
		},
	}
}

func licenseDescriptor(groups ...string) *InputDescriptor {
	return &InputDescriptor{
		ID:    "license",
		Group: groups,
		Constraints: &Constraints{
			Fields: []*Field{{
				Path: []string{"$.credentialSubject.license.number"},
			}},
		},
	}
}

func sdJWTLicense(t *testing.T, number interface{}) credential.Wrapped {
	t.Helper()

	c, err := credential.NewSDJWT(sdjwttest.DriverLicense(t, number))
	require.NoError(t, err)

	return c
}

func signJWT(t *testing.T, claims map[string]interface{}) string {
	t.Helper()

	return sdjwttest.Sign(t, claims, "JWT")
}
