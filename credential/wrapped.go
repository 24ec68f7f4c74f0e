/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credential

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
	"golang.org/x/exp/slices"

	"github.com/hyperledger/aries-pex-go/sdjwt"
)

// ErrUnsupportedCredential is returned when a raw value cannot be recognized as a credential.
var ErrUnsupportedCredential = errors.New("unsupported credential")

// JSONLDCredential is a W3C credential in JSON-LD form secured with embedded proofs.
type JSONLDCredential struct {
	doc map[string]interface{}
}

// NewJSONLD wraps a JSON-LD credential document.
func NewJSONLD(doc map[string]interface{}) *JSONLDCredential {
	return &JSONLDCredential{doc: doc}
}

// Format returns di_vc for data integrity proofs and ldp_vc otherwise.
func (c *JSONLDCredential) Format() Format {
	proofs := Proofs(c.doc)
	if len(proofs) > 0 && stringOf(proofs[0]["type"]) == dataIntegrityProofType {
		return FormatDIVC
	}

	return FormatLDPVC
}

// Original returns the credential document.
func (c *JSONLDCredential) Original() interface{} { return c.doc }

// Decoded returns the credential document.
func (c *JSONLDCredential) Decoded() map[string]interface{} { return c.doc }

// Credential returns the credential document.
func (c *JSONLDCredential) Credential() map[string]interface{} { return c.doc }

// SupportsRedaction reports whether the credential carries exactly one proof made with one of
// signatureSuites.
func (c *JSONLDCredential) SupportsRedaction(signatureSuites []string) bool {
	proofs := Proofs(c.doc)
	if len(proofs) != 1 {
		return false
	}

	return slices.Contains(signatureSuites, stringOf(proofs[0]["type"]))
}

// Copy returns a shallow copy of c.
func (c *JSONLDCredential) Copy() Wrapped {
	return &JSONLDCredential{doc: c.doc}
}

// WithDocument returns a copy of c with its document replaced.
func (c *JSONLDCredential) WithDocument(doc map[string]interface{}) *JSONLDCredential {
	return &JSONLDCredential{doc: doc}
}

func (c *JSONLDCredential) wrapped() {}

// Proofs returns the proofs embedded in a JSON-LD document.
func Proofs(doc map[string]interface{}) []map[string]interface{} {
	switch p := doc["proof"].(type) {
	case map[string]interface{}:
		return []map[string]interface{}{p}
	case []interface{}:
		var proofs []map[string]interface{}

		for _, el := range p {
			if m, ok := el.(map[string]interface{}); ok {
				proofs = append(proofs, m)
			}
		}

		return proofs
	}

	return nil
}

// JWTCredential is a W3C credential secured as a JWT.
type JWTCredential struct {
	compact    string
	payload    map[string]interface{}
	credential map[string]interface{}
}

// NewJWT decodes a compact JWT credential. The signature is not verified.
func NewJWT(compact string) (*JWTCredential, error) {
	payload, err := parseJWTClaims(compact)
	if err != nil {
		return nil, err
	}

	return &JWTCredential{
		compact:    compact,
		payload:    payload,
		credential: jwtCredential(payload),
	}, nil
}

// Format returns jwt_vc.
func (c *JWTCredential) Format() Format { return FormatJWTVC }

// Original returns the compact JWT.
func (c *JWTCredential) Original() interface{} { return c.compact }

// Decoded returns the JWT claims.
func (c *JWTCredential) Decoded() map[string]interface{} { return c.payload }

// Credential returns the JWT claims with the vc claim members lifted to the top level and the
// registered claims mapped to their credential counterparts.
func (c *JWTCredential) Credential() map[string]interface{} { return c.credential }

// SupportsRedaction is always false: a JWT signature covers the whole payload.
func (c *JWTCredential) SupportsRedaction([]string) bool { return false }

// Copy returns a shallow copy of c.
func (c *JWTCredential) Copy() Wrapped {
	cp := *c

	return &cp
}

func (c *JWTCredential) wrapped() {}

func jwtCredential(payload map[string]interface{}) map[string]interface{} {
	cred := copyMap(payload)

	vc, ok := payload["vc"].(map[string]interface{})
	if !ok {
		return cred
	}

	for k, v := range vc {
		cred[k] = v
	}

	if iss, ok := payload["iss"].(string); ok {
		if _, exists := vc["issuer"]; !exists {
			cred["issuer"] = iss
		}
	}

	if jti, ok := payload["jti"].(string); ok {
		if _, exists := vc["id"]; !exists {
			cred["id"] = jti
		}
	}

	if sub, ok := payload["sub"].(string); ok {
		if subj, isObj := vc["credentialSubject"].(map[string]interface{}); isObj {
			if _, exists := subj["id"]; !exists {
				subj = copyMap(subj)
				subj["id"] = sub
				cred["credentialSubject"] = subj
			}
		}
	}

	return cred
}

func headerType(compact string) string {
	token, err := jwt.ParseSigned(compact)
	if err != nil || len(token.Headers) == 0 {
		return ""
	}

	typ, _ := token.Headers[0].ExtraHeaders[jose.HeaderType].(string) //nolint:errcheck

	return typ
}

func parseJWTClaims(compact string) (map[string]interface{}, error) {
	token, err := jwt.ParseSigned(compact)
	if err != nil {
		return nil, fmt.Errorf("parse jwt: %w", err)
	}

	claims := map[string]interface{}{}

	if err = token.UnsafeClaimsWithoutVerification(&claims); err != nil {
		return nil, fmt.Errorf("decode jwt claims: %w", err)
	}

	return claims, nil
}

// SDJWTCredential is an SD-JWT credential in combined format.
type SDJWTCredential struct {
	format    Format
	compact   string
	combined  *sdjwt.CombinedFormatForPresentation
	decoded   map[string]interface{}
	located   []*sdjwt.LocatedDisclosure
	signedJWT map[string]interface{}
}

// NewSDJWT decodes an SD-JWT in combined format and applies its disclosures. The issuer signature
// is not verified.
func NewSDJWT(compact string) (*SDJWTCredential, error) {
	combined := sdjwt.ParseCombinedFormatForPresentation(compact)

	payload, err := sdjwt.ParsePayload(combined.SDJWT)
	if err != nil {
		return nil, err
	}

	hash, err := sdjwt.GetCryptoHashFromClaims(payload)
	if err != nil {
		return nil, fmt.Errorf("sd-jwt hash algorithm: %w", err)
	}

	claims, err := sdjwt.GetDisclosureClaims(combined.Disclosures, hash)
	if err != nil {
		return nil, err
	}

	decoded, located, err := sdjwt.Disclose(payload, claims)
	if err != nil {
		return nil, fmt.Errorf("apply disclosures: %w", err)
	}

	format := FormatSDJWT
	if headerType(combined.SDJWT) == string(FormatDCSDJWT) {
		format = FormatDCSDJWT
	}

	return &SDJWTCredential{
		format:    format,
		compact:   compact,
		combined:  combined,
		decoded:   decoded,
		located:   located,
		signedJWT: payload,
	}, nil
}

// Format returns vc+sd-jwt or dc+sd-jwt.
func (c *SDJWTCredential) Format() Format { return c.format }

// Original returns the combined format string.
func (c *SDJWTCredential) Original() interface{} { return c.compact }

// Decoded returns the claims revealed by the disclosures.
func (c *SDJWTCredential) Decoded() map[string]interface{} { return c.decoded }

// Credential returns the claims revealed by the disclosures.
func (c *SDJWTCredential) Credential() map[string]interface{} { return c.decoded }

// SupportsRedaction is always true.
func (c *SDJWTCredential) SupportsRedaction([]string) bool { return true }

// Copy returns a shallow copy of c.
func (c *SDJWTCredential) Copy() Wrapped {
	cp := *c

	return &cp
}

// Disclosures returns the disclosures carried by the combined format.
func (c *SDJWTCredential) Disclosures() []string {
	return c.combined.Disclosures
}

// Present returns a copy of c keeping only the disclosures needed to reveal leaves, paths into the
// decoded claims. The key binding part, if any, is dropped.
func (c *SDJWTCredential) Present(leaves [][]interface{}) (*SDJWTCredential, error) {
	selected := sdjwt.SelectDisclosures(c.located, leaves)

	combined := &sdjwt.CombinedFormatForPresentation{SDJWT: c.combined.SDJWT}
	for _, dc := range selected {
		combined.Disclosures = append(combined.Disclosures, dc.Disclosure)
	}

	decoded, located, err := sdjwt.Disclose(c.signedJWT, selected)
	if err != nil {
		return nil, fmt.Errorf("apply selected disclosures: %w", err)
	}

	return &SDJWTCredential{
		format:    c.format,
		compact:   combined.Serialize(),
		combined:  combined,
		decoded:   decoded,
		located:   located,
		signedJWT: c.signedJWT,
	}, nil
}

func (c *SDJWTCredential) wrapped() {}

// MDocCredential is a mobile document: a document type and its data elements per namespace.
type MDocCredential struct {
	docType    string
	namespaces map[string]interface{}
	original   interface{}
}

// NewMDoc wraps a decoded mobile document. original is the document as received.
func NewMDoc(docType string, namespaces map[string]map[string]interface{}, original interface{}) *MDocCredential {
	ns := make(map[string]interface{}, len(namespaces))
	for k, v := range namespaces {
		ns[k] = v
	}

	return &MDocCredential{docType: docType, namespaces: ns, original: original}
}

// Format returns mso_mdoc.
func (c *MDocCredential) Format() Format { return FormatMSOMDoc }

// DocType returns the document type.
func (c *MDocCredential) DocType() string { return c.docType }

// Original returns the document as received.
func (c *MDocCredential) Original() interface{} { return c.original }

// Decoded returns the data elements keyed by namespace.
func (c *MDocCredential) Decoded() map[string]interface{} { return c.namespaces }

// Credential returns the data elements keyed by namespace.
func (c *MDocCredential) Credential() map[string]interface{} { return c.namespaces }

// SupportsRedaction is always true; element selection happens when the document is encoded.
func (c *MDocCredential) SupportsRedaction([]string) bool { return true }

// Copy returns a shallow copy of c.
func (c *MDocCredential) Copy() Wrapped {
	cp := *c

	return &cp
}

func (c *MDocCredential) wrapped() {}

// Wrap recognizes a raw credential: a JSON object is JSON-LD, a string with a "~" separator is an
// SD-JWT and any other string is a JWT. An already wrapped value is returned unchanged.
func Wrap(raw interface{}) (Wrapped, error) {
	switch c := raw.(type) {
	case Wrapped:
		return c, nil
	case map[string]interface{}:
		return NewJSONLD(c), nil
	case string:
		if strings.Contains(c, sdjwt.CombinedFormatSeparator) {
			return NewSDJWT(c)
		}

		return NewJWT(c)
	}

	return nil, fmt.Errorf("%w: %T", ErrUnsupportedCredential, raw)
}

// WrapAll wraps every raw credential.
func WrapAll(raw []interface{}) ([]Wrapped, error) {
	out := make([]Wrapped, 0, len(raw))

	for i, r := range raw {
		w, err := Wrap(r)
		if err != nil {
			return nil, fmt.Errorf("credential %d: %w", i, err)
		}

		out = append(out, w)
	}

	return out, nil
}
