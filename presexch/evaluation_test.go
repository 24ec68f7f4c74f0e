/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presexch_test

import (
	"testing"

	"github.com/hyperledger/aries-framework-go/component/log"
	spilog "github.com/hyperledger/aries-framework-go/spi/log"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-pex-go/credential"
	"github.com/hyperledger/aries-pex-go/internal/jsonpath"
	. "github.com/hyperledger/aries-pex-go/presexch"
)

func resultsOf(outcome *Outcome, evaluator string) []*HandlerCheckResult {
	var out []*HandlerCheckResult

	for _, r := range outcome.Results {
		if r.Evaluator == evaluator {
			out = append(out, r)
		}
	}

	return out
}

func TestEvaluateCredentials_Filter(t *testing.T) {
	pd := &PresentationDefinition{
		ID:               "pd",
		InputDescriptors: []*InputDescriptor{degreeDescriptor()},
	}

	creds := wrapLD(degree("d1", "BachelorDegree"), degree("d2", "MasterDegree"), employment("e1"))

	outcome, err := pd.EvaluateCredentials(creds)
	require.NoError(t, err)

	filter := resultsOf(outcome, EvaluatorFilter)
	require.Len(t, filter, 3)

	require.Equal(t, "$.input_descriptors[0]", filter[0].InputDescriptorPath)
	require.Equal(t, "$[0]", filter[0].VerifiableCredentialPath)
	require.Equal(t, StatusInfo, filter[0].Status)
	require.Equal(t, "Input candidate valid for presentation submission", filter[0].Message)
	require.Equal(t, &FieldPayload{
		Field: 0,
		Path:  jsonpath.Path{"credentialSubject", "degree", "type"},
		Value: "BachelorDegree",
	}, filter[0].Payload)

	require.Equal(t, StatusError, filter[1].Status)
	require.Equal(t, "Input candidate failed filter evaluation", filter[1].Message)

	require.Equal(t, StatusError, filter[2].Status)
	require.Equal(t, "Input candidate does not contain property", filter[2].Message)

	marks := resultsOf(outcome, EvaluatorMarkForSubmission)
	require.Len(t, marks, 1)
	require.Equal(t, "$[0]", marks[0].VerifiableCredentialPath)
	require.Equal(t, "The input candidate is eligible for submission", marks[0].Message)

	require.Equal(t, map[int][]int{0: {0}}, outcome.Eligible())
	require.Len(t, outcome.Errors(), 2)
	require.Empty(t, outcome.Warnings())

	t.Run("fallback path", func(t *testing.T) {
		jwtStyle := map[string]interface{}{
			"vc": map[string]interface{}{
				"credentialSubject": map[string]interface{}{
					"degree": map[string]interface{}{"type": "BachelorDegree"},
				},
			},
		}

		outcome, err := pd.EvaluateCredentials(wrapLD(jwtStyle))
		require.NoError(t, err)
		require.Equal(t, map[int][]int{0: {0}}, outcome.Eligible())

		payload, ok := resultsOf(outcome, EvaluatorFilter)[0].Payload.(*FieldPayload)
		require.True(t, ok)
		require.Equal(t, "$.vc.credentialSubject.degree.type", payload.Path.String())
	})

	t.Run("union and slice paths", func(t *testing.T) {
		selective := &PresentationDefinition{
			ID: "pd",
			InputDescriptors: []*InputDescriptor{{
				ID: "degree",
				Constraints: &Constraints{Fields: []*Field{
					{Path: []string{`$.credentialSubject["name","degree"]`}},
					{Path: []string{"$.type[0:1]"}},
				}},
			}},
		}

		results := selective.SelectFrom(wrapLD(degree("d1", "BachelorDegree")))
		require.Equal(t, StatusInfo, results.AreRequiredCredentialsPresent)
		require.Empty(t, results.Errors)

		outcome, err := selective.EvaluateCredentials(wrapLD(degree("d1", "BachelorDegree")))
		require.NoError(t, err)
		require.Equal(t, map[int][]int{0: {0}}, outcome.Eligible())

		filter := resultsOf(outcome, EvaluatorFilter)
		require.Len(t, filter, 2)
		require.Equal(t, &FieldPayload{
			Field: 0,
			Path:  jsonpath.Path{"credentialSubject", "degree"},
			Value: map[string]interface{}{"type": "BachelorDegree", "name": "Bachelor of Science"},
		}, filter[0].Payload)
		require.Equal(t, &FieldPayload{
			Field: 1,
			Path:  jsonpath.Path{"type", 0},
			Value: credential.VCType,
		}, filter[1].Payload)
	})

	t.Run("optional field", func(t *testing.T) {
		optional := &PresentationDefinition{
			ID: "pd",
			InputDescriptors: []*InputDescriptor{{
				ID: "optional",
				Constraints: &Constraints{Fields: []*Field{
					{Path: []string{"$.credentialSubject.employer"}},
					{Path: []string{"$.credentialSubject.salary"}, Optional: true},
				}},
			}},
		}

		outcome, err := optional.EvaluateCredentials(wrapLD(employment("e1")))
		require.NoError(t, err)
		require.Empty(t, outcome.Errors())
		require.Equal(t, map[int][]int{0: {0}}, outcome.Eligible())
	})

	t.Run("no constraints", func(t *testing.T) {
		open := &PresentationDefinition{ID: "pd", InputDescriptors: []*InputDescriptor{{ID: "any"}}}

		outcome, err := open.EvaluateCredentials(creds)
		require.NoError(t, err)
		require.Equal(t, map[int][]int{0: {0, 1, 2}}, outcome.Eligible())
	})
}

func TestEvaluateCredentials_PredicateRelatedField(t *testing.T) {
	pd := &PresentationDefinition{
		ID: "pd",
		InputDescriptors: []*InputDescriptor{{
			ID: "age",
			Constraints: &Constraints{Fields: []*Field{{
				Path:      []string{"$.credentialSubject.age"},
				Filter:    &Filter{Type: strPtr("integer"), Minimum: 18},
				Predicate: prefPtr(Required),
			}}},
		}},
	}

	creds := wrapLD(ldCredential("adult", map[string]interface{}{"age": 30}),
		ldCredential("minor", map[string]interface{}{"age": 12}))

	outcome, err := pd.EvaluateCredentials(creds)
	require.NoError(t, err)

	predicates := resultsOf(outcome, EvaluatorPredicateRelatedField)
	require.Len(t, predicates, 1)
	require.Equal(t, "$[0]", predicates[0].VerifiableCredentialPath)
	require.Equal(t, true, predicates[0].Payload.(*FieldPayload).Value)

	require.Equal(t, map[int][]int{0: {0}}, outcome.Eligible())

	t.Run("predicate without filter", func(t *testing.T) {
		pd.InputDescriptors[0].Constraints.Fields[0].Filter = nil

		outcome, err := pd.EvaluateCredentials(creds)
		require.NoError(t, err)
		require.Empty(t, outcome.Eligible())

		predicates := resultsOf(outcome, EvaluatorPredicateRelatedField)
		require.Len(t, predicates, 2)
		require.Equal(t, StatusError, predicates[0].Status)
		require.Equal(t, "predicate requires a filter", predicates[0].Message)
	})
}

func TestEvaluateCredentials_FormatRestriction(t *testing.T) {
	jwtVC := jwtCredential(t, "did:example:issuer")
	ldVC := credential.NewJSONLD(degree("d1", "BachelorDegree"))
	sdVC := sdJWTLicense(t, "D-1")

	creds := []credential.Wrapped{ldVC, jwtVC, sdVC}

	t.Run("descriptor formats", func(t *testing.T) {
		pd := &PresentationDefinition{
			ID: "pd",
			InputDescriptors: []*InputDescriptor{{
				ID:     "jwt-only",
				Format: &Format{JwtVCJSON: &JwtType{Alg: []string{"ES256"}}},
			}},
		}

		outcome, err := pd.EvaluateCredentials(creds)
		require.NoError(t, err)
		require.Equal(t, map[int][]int{0: {1}}, outcome.Eligible())

		formats := resultsOf(outcome, EvaluatorFormatRestriction)
		require.Len(t, formats, 3)
		require.Equal(t, StatusError, formats[0].Status)
		require.Equal(t, "credential format ldp_vc is not one of [jwt_vc_json]", formats[0].Message)
	})

	t.Run("definition formats", func(t *testing.T) {
		pd := &PresentationDefinition{
			ID:     "pd",
			Format: &Format{SDJwtVC: &SDJwtType{}},
			InputDescriptors: []*InputDescriptor{
				{ID: "inherits"},
				{ID: "overrides", Format: &Format{LdpVC: &LdpType{}}},
			},
		}

		outcome, err := pd.EvaluateCredentials(creds)
		require.NoError(t, err)
		require.Equal(t, map[int][]int{0: {2}, 1: {0}}, outcome.Eligible())

		results := pd.SelectFrom(creds)
		require.Equal(t, StatusInfo, results.AreRequiredCredentialsPresent)
	})

	t.Run("global restriction", func(t *testing.T) {
		pd := &PresentationDefinition{ID: "pd", InputDescriptors: []*InputDescriptor{{ID: "any"}}}

		outcome, err := pd.EvaluateCredentials(creds, WithRestrictToFormats(credential.FormatSDJWT))
		require.NoError(t, err)
		require.Equal(t, map[int][]int{0: {2}}, outcome.Eligible())
	})

	t.Run("global restriction intersects descriptor formats", func(t *testing.T) {
		pd := &PresentationDefinition{
			ID: "pd",
			InputDescriptors: []*InputDescriptor{{
				ID:     "ldp",
				Format: &Format{LdpVC: &LdpType{}, SDJwtVC: &SDJwtType{}},
			}},
		}

		outcome, err := pd.EvaluateCredentials(creds, WithRestrictToFormats(credential.FormatLDPVC))
		require.NoError(t, err)
		require.Equal(t, map[int][]int{0: {0}}, outcome.Eligible())
	})

	t.Run("data integrity credential satisfies ldp", func(t *testing.T) {
		doc := degree("di", "BachelorDegree")
		doc["proof"] = map[string]interface{}{"type": "DataIntegrityProof"}

		pd := &PresentationDefinition{
			ID:               "pd",
			InputDescriptors: []*InputDescriptor{{ID: "ldp", Format: &Format{Ldp: &LdpType{}}}},
		}

		outcome, err := pd.EvaluateCredentials(wrapLD(doc))
		require.NoError(t, err)
		require.Equal(t, map[int][]int{0: {0}}, outcome.Eligible())
	})

	t.Run("mdoc document type", func(t *testing.T) {
		mdl := credential.NewMDoc("org.iso.18013.5.1.mDL", map[string]map[string]interface{}{
			"org.iso.18013.5.1": {"age_over_18": true},
		}, nil)

		pd := &PresentationDefinition{
			ID: "pd",
			InputDescriptors: []*InputDescriptor{
				{ID: "org.iso.18013.5.1.mDL", Format: &Format{MsoMdoc: &MsoType{}}},
				{ID: "eu.europa.ec.eudi.pid.1", Format: &Format{MsoMdoc: &MsoType{}}},
			},
		}

		outcome, err := pd.EvaluateCredentials([]credential.Wrapped{mdl})
		require.NoError(t, err)
		require.Equal(t, map[int][]int{0: {0}}, outcome.Eligible())

		formats := resultsOf(outcome, EvaluatorFormatRestriction)
		require.Len(t, formats, 2)
		require.Equal(t, StatusError, formats[1].Status)
		require.Equal(t, "document type org.iso.18013.5.1.mDL does not match input descriptor id "+
			"eu.europa.ec.eudi.pid.1", formats[1].Message)
	})
}

func TestEvaluateCredentials_DIDRestriction(t *testing.T) {
	pd := &PresentationDefinition{ID: "pd", InputDescriptors: []*InputDescriptor{{ID: "any"}}}

	keyIssued := degree("d1", "BachelorDegree")
	keyIssued["issuer"] = map[string]interface{}{"id": "did:key:z6MkissuerKey"}

	webIssued := degree("d2", "BachelorDegree")
	webIssued["issuer"] = "did:web:example.com"

	noIssuer := degree("d3", "BachelorDegree")
	delete(noIssuer, "issuer")

	outcome, err := pd.EvaluateCredentials(wrapLD(keyIssued, webIssued, noIssuer), WithRestrictToDIDMethods("key"))
	require.NoError(t, err)
	require.Equal(t, map[int][]int{0: {0, 2}}, outcome.Eligible())

	restrictions := resultsOf(outcome, EvaluatorDIDRestriction)
	require.Len(t, restrictions, 2)
	require.Equal(t, StatusError, restrictions[1].Status)
	require.Equal(t, "issuer did:web:example.com does not use an allowed DID method", restrictions[1].Message)
}

func TestEvaluateCredentials_SubjectIsIssuer(t *testing.T) {
	selfIssued := ldCredential("self", map[string]interface{}{"id": "did:example:issuer", "name": "me"})
	issued := ldCredential("other", map[string]interface{}{"name": "me"})

	for _, p := range []Preference{Required, Preferred} {
		pref := p

		t.Run(string(pref), func(t *testing.T) {
			pd := &PresentationDefinition{
				ID: "pd",
				InputDescriptors: []*InputDescriptor{{
					ID:          "self",
					Constraints: &Constraints{SubjectIsIssuer: prefPtr(pref)},
				}},
			}

			outcome, err := pd.EvaluateCredentials(wrapLD(selfIssued, issued))
			require.NoError(t, err)

			checks := resultsOf(outcome, EvaluatorSubjectIsIssuer)
			require.Len(t, checks, 2)
			require.Equal(t, StatusInfo, checks[0].Status)

			if pref == Required {
				require.Equal(t, StatusError, checks[1].Status)
				require.Equal(t, map[int][]int{0: {0}}, outcome.Eligible())
			} else {
				require.Equal(t, StatusWarn, checks[1].Status)
				require.Equal(t, map[int][]int{0: {0, 1}}, outcome.Eligible())
			}
		})
	}
}

func TestEvaluateCredentials_IsHolder(t *testing.T) {
	pd := &PresentationDefinition{
		ID: "pd",
		InputDescriptors: []*InputDescriptor{{
			ID: "held",
			Constraints: &Constraints{
				IsHolder: []*Holder{{FieldID: []string{"subject"}, Directive: prefPtr(Required)}},
			},
		}},
	}

	mine := ldCredential("mine", map[string]interface{}{"id": "did:example:alice"})
	theirs := ldCredential("theirs", map[string]interface{}{"id": "did:example:bob"})

	outcome, err := pd.EvaluateCredentials(wrapLD(mine, theirs), WithHolderDIDs("did:example:alice"))
	require.NoError(t, err)
	require.Equal(t, map[int][]int{0: {0}}, outcome.Eligible())

	checks := resultsOf(outcome, EvaluatorIsHolder)
	require.Len(t, checks, 2)
	require.Equal(t, StatusInfo, checks[0].Status)
	require.Equal(t, StatusError, checks[1].Status)
	require.Equal(t, []string{"subject"}, checks[1].Payload)
}

func TestEvaluateCredentials_URI(t *testing.T) {
	pd := &PresentationDefinition{
		ID: "pd",
		InputDescriptors: []*InputDescriptor{{
			ID:     "degree",
			Schema: []*Schema{{URI: "https://example.edu/schemas/degree.json"}, {URI: "UniversityDegreeCredential"}},
		}},
	}

	typed := degree("typed", "BachelorDegree")
	typed["type"] = []interface{}{credential.VCType, "UniversityDegreeCredential"}

	schemaRef := degree("schema", "BachelorDegree")
	schemaRef["credentialSchema"] = map[string]interface{}{"id": "https://example.edu/schemas/degree.json"}

	outcome, err := pd.EvaluateCredentials(wrapLD(typed, schemaRef, employment("e1")))
	require.NoError(t, err)
	require.Equal(t, map[int][]int{0: {0, 1}}, outcome.Eligible())

	uris := resultsOf(outcome, EvaluatorURI)
	require.Len(t, uris, 3)
	require.Equal(t, "UniversityDegreeCredential", uris[0].Payload)
	require.Equal(t, "https://example.edu/schemas/degree.json", uris[1].Payload)
	require.Equal(t, StatusError, uris[2].Status)
}

func TestEvaluateCredentials_LimitDisclosure(t *testing.T) {
	limited := func(p Preference) *InputDescriptor {
		desc := degreeDescriptor()
		desc.Constraints.LimitDisclosure = prefPtr(p)

		return desc
	}

	bbs := func() map[string]interface{} {
		doc := degree("d1", "BachelorDegree")
		doc["proof"] = map[string]interface{}{"type": bbsSuite}

		return doc
	}

	t.Run("json-ld shallow subject selection", func(t *testing.T) {
		pd := &PresentationDefinition{ID: "pd", InputDescriptors: []*InputDescriptor{limited(Required)}}

		input := credential.NewJSONLD(bbs())

		outcome, err := pd.EvaluateCredentials([]credential.Wrapped{input},
			WithLimitDisclosureSignatureSuites(bbsSuite))
		require.NoError(t, err)
		require.Equal(t, map[int][]int{0: {0}}, outcome.Eligible())

		checks := resultsOf(outcome, EvaluatorLimitDisclosure)
		require.Len(t, checks, 1)
		require.Equal(t, StatusInfo, checks[0].Status)

		redacted := outcome.Credentials[0].Credential()
		require.Equal(t, map[string]interface{}{
			"id":     "did:example:holder",
			"degree": map[string]interface{}{"type": "BachelorDegree", "name": "Bachelor of Science"},
		}, redacted["credentialSubject"])
		require.Equal(t, "did:example:issuer", redacted["issuer"])

		subject, ok := input.Credential()["credentialSubject"].(map[string]interface{})
		require.True(t, ok)
		require.Contains(t, subject, "name")
		require.Same(t, input, outcome.Input(0))
	})

	t.Run("suite not allowed", func(t *testing.T) {
		pd := &PresentationDefinition{ID: "pd", InputDescriptors: []*InputDescriptor{limited(Required)}}

		outcome, err := pd.EvaluateCredentials(wrapLD(bbs()))
		require.NoError(t, err)
		require.Empty(t, outcome.Eligible())

		checks := resultsOf(outcome, EvaluatorLimitDisclosure)
		require.Len(t, checks, 1)
		require.Equal(t, StatusError, checks[0].Status)
		require.Equal(t, "Limit disclosure not supported for credential format ldp_vc", checks[0].Message)
	})

	t.Run("preferred is not enforced", func(t *testing.T) {
		pd := &PresentationDefinition{ID: "pd", InputDescriptors: []*InputDescriptor{limited(Preferred)}}

		jwtDegree := jwtCredential(t, "did:example:issuer")

		outcome, err := pd.EvaluateCredentials([]credential.Wrapped{jwtDegree})
		require.NoError(t, err)
		require.Equal(t, map[int][]int{0: {0}}, outcome.Eligible())
		require.Empty(t, resultsOf(outcome, EvaluatorLimitDisclosure))
		require.Equal(t, jwtDegree.Original(), outcome.Credentials[0].Original())
	})

	t.Run("other descriptors warn", func(t *testing.T) {
		name := &InputDescriptor{
			ID:          "name",
			Constraints: &Constraints{Fields: []*Field{{Path: []string{"$.credentialSubject.name"}}}},
		}

		pd := &PresentationDefinition{ID: "pd", InputDescriptors: []*InputDescriptor{limited(Required), name}}

		outcome, err := pd.EvaluateCredentials(wrapLD(bbs()), WithLimitDisclosureSignatureSuites(bbsSuite))
		require.NoError(t, err)

		checks := resultsOf(outcome, EvaluatorLimitDisclosure)
		require.Len(t, checks, 2)
		require.Equal(t, StatusInfo, checks[0].Status)
		require.Equal(t, StatusWarn, checks[1].Status)

		subject, ok := outcome.Credentials[0].Credential()["credentialSubject"].(map[string]interface{})
		require.True(t, ok)
		require.Contains(t, subject, "degree")
		require.Contains(t, subject, "name")
	})

	t.Run("sd-jwt keeps one disclosure per requested claim", func(t *testing.T) {
		pd := &PresentationDefinition{
			ID: "pd",
			InputDescriptors: []*InputDescriptor{{
				ID: "name",
				Constraints: &Constraints{
					LimitDisclosure: prefPtr(Required),
					Fields:          []*Field{{Path: []string{"$.given_name"}}},
				},
			}},
		}

		input := sdJWTLicense(t, "D-1")

		outcome, err := pd.EvaluateCredentials([]credential.Wrapped{input})
		require.NoError(t, err)
		require.Equal(t, map[int][]int{0: {0}}, outcome.Eligible())

		redacted, ok := outcome.Credentials[0].(*credential.SDJWTCredential)
		require.True(t, ok)
		require.Len(t, redacted.Disclosures(), 1)

		claims := redacted.Credential()
		require.Equal(t, "Alice", claims["given_name"])
		require.Equal(t, "did:example:dmv", claims["iss"])
		require.NotContains(t, claims, "vct")
		require.Equal(t, map[string]interface{}{}, claims["license"])

		require.Len(t, input.(*credential.SDJWTCredential).Disclosures(), 4)
	})

	t.Run("sd-jwt object value discloses every leaf", func(t *testing.T) {
		pd := &PresentationDefinition{
			ID: "pd",
			InputDescriptors: []*InputDescriptor{{
				ID: "license",
				Constraints: &Constraints{
					LimitDisclosure: prefPtr(Required),
					Fields:          []*Field{{Path: []string{"$.license"}}},
				},
			}},
		}

		outcome, err := pd.EvaluateCredentials([]credential.Wrapped{sdJWTLicense(t, "D-1")})
		require.NoError(t, err)

		redacted, ok := outcome.Credentials[0].(*credential.SDJWTCredential)
		require.True(t, ok)
		require.Len(t, redacted.Disclosures(), 2)
		require.Equal(t, map[string]interface{}{"number": "D-1", "class": "C"}, redacted.Credential()["license"])
	})

	t.Run("mdoc passes through", func(t *testing.T) {
		mdl := credential.NewMDoc("org.iso.18013.5.1.mDL", map[string]map[string]interface{}{
			"org.iso.18013.5.1": {"age_over_18": true, "family_name": "Doe"},
		}, nil)

		pd := &PresentationDefinition{
			ID: "pd",
			InputDescriptors: []*InputDescriptor{{
				ID: "org.iso.18013.5.1.mDL",
				Constraints: &Constraints{
					LimitDisclosure: prefPtr(Required),
					Fields:          []*Field{{Path: []string{"$['org.iso.18013.5.1'].age_over_18"}}},
				},
			}},
		}

		outcome, err := pd.EvaluateCredentials([]credential.Wrapped{mdl})
		require.NoError(t, err)
		require.Equal(t, map[int][]int{0: {0}}, outcome.Eligible())
		require.Equal(t, mdl.Credential(), outcome.Credentials[0].Credential())
		require.Empty(t, outcome.Errors())
	})
}

func TestEvaluateCredentials_Stateless(t *testing.T) {
	pd := &PresentationDefinition{ID: "pd", InputDescriptors: []*InputDescriptor{degreeDescriptor()}}

	first, err := pd.EvaluateCredentials(wrapLD(degree("d1", "BachelorDegree")))
	require.NoError(t, err)

	second, err := pd.EvaluateCredentials(wrapLD(employment("e1"), employment("e2")))
	require.NoError(t, err)

	require.NotSame(t, first, second)
	require.Equal(t, map[int][]int{0: {0}}, first.Eligible())
	require.Empty(t, second.Eligible())
	require.Len(t, first.Credentials, 1)
	require.Len(t, second.Credentials, 2)
}

func TestEvaluateCredentials_InvalidFilter(t *testing.T) {
	pd := &PresentationDefinition{
		ID: "pd",
		InputDescriptors: []*InputDescriptor{{
			ID: "broken",
			Constraints: &Constraints{Fields: []*Field{{
				Path:   []string{"$.credentialSubject.name"},
				Filter: &Filter{Type: strPtr("no-such-type")},
			}}},
		}},
	}

	log.SetLevel("aries-framework/presexch", spilog.DEBUG)
	defer log.SetLevel("aries-framework/presexch", spilog.INFO)

	outcome, err := pd.EvaluateCredentials(wrapLD(degree("d1", "BachelorDegree")))
	require.Error(t, err)
	require.Contains(t, err.Error(), EvaluatorFilter)
	require.NotNil(t, outcome)
	require.Empty(t, outcome.Eligible())
}

func jwtCredential(t *testing.T, issuer string) *credential.JWTCredential {
	t.Helper()

	c, err := credential.NewJWT(signJWT(t, map[string]interface{}{
		"iss": issuer,
		"sub": "did:example:holder",
		"vc": map[string]interface{}{
			"@context": []interface{}{credential.ContextURI},
			"type":     []interface{}{credential.VCType, "UniversityDegreeCredential"},
			"credentialSubject": map[string]interface{}{
				"degree": map[string]interface{}{"type": "BachelorDegree"},
			},
		},
	}))
	require.NoError(t, err)

	return c
}
