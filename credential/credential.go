/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package credential is the uniform view of credentials and presentations regardless of their
// original encoding. Wrapped values are a closed set: JSON-LD, JWT, SD-JWT and mobile documents.
package credential

import (
	"strings"

	"golang.org/x/exp/slices"
)

// Format is a registered claim format designation.
type Format string

// Claim format designations.
const (
	FormatJWT       Format = "jwt"
	FormatJWTVC     Format = "jwt_vc"
	FormatJWTVCJSON Format = "jwt_vc_json"
	FormatJWTVP     Format = "jwt_vp"
	FormatJWTVPJSON Format = "jwt_vp_json"
	FormatLDP       Format = "ldp"
	FormatLDPVC     Format = "ldp_vc"
	FormatLDPVP     Format = "ldp_vp"
	FormatDI        Format = "di"
	FormatDIVC      Format = "di_vc"
	FormatDIVP      Format = "di_vp"
	FormatSDJWT     Format = "vc+sd-jwt"
	FormatDCSDJWT   Format = "dc+sd-jwt"
	FormatMSOMDoc   Format = "mso_mdoc"
)

const (
	// ContextURI is the required JSON-LD context for VCs and VPs.
	ContextURI = "https://www.w3.org/2018/credentials/v1"
	// VCType is the required Type for Verifiable Credentials.
	VCType = "VerifiableCredential"
	// VPType is the required Type for Verifiable Presentations.
	VPType = "VerifiablePresentation"

	dataIntegrityProofType = "DataIntegrityProof"
)

// IsSDJWT reports whether f is an SD-JWT designation.
func (f Format) IsSDJWT() bool {
	return f == FormatSDJWT || f == FormatDCSDJWT
}

// Wrapped is a credential normalized for evaluation. Implementations are *JSONLDCredential,
// *JWTCredential, *SDJWTCredential and *MDocCredential.
type Wrapped interface {
	// Format is the claim format designation of the credential.
	Format() Format
	// Original is the credential as received (a JSON object, a compact JWT or SD-JWT string, or
	// the mobile document structure).
	Original() interface{}
	// Decoded is the normalized claim tree of the credential.
	Decoded() map[string]interface{}
	// Credential is the representation field queries run against.
	Credential() map[string]interface{}
	// SupportsRedaction reports whether the credential can be reduced to a subset of its claims
	// without invalidating its proof, given the allowed signature suites.
	SupportsRedaction(signatureSuites []string) bool
	// Copy returns a shallow copy whose fields may be replaced without affecting the receiver.
	Copy() Wrapped

	wrapped()
}

// IssuerID returns the issuer identifier of w.
func IssuerID(w Wrapped) string {
	switch c := w.(type) {
	case *JSONLDCredential:
		return issuerOf(c.doc["issuer"])
	case *JWTCredential:
		if iss := stringOf(c.payload["iss"]); iss != "" {
			return iss
		}

		return issuerOf(c.credential["issuer"])
	case *SDJWTCredential:
		return stringOf(c.decoded["iss"])
	case *MDocCredential:
		return ""
	}

	return ""
}

// SubjectIDs returns the identifiers of the subjects of w.
func SubjectIDs(w Wrapped) []string {
	switch c := w.(type) {
	case *JSONLDCredential:
		return subjectIDs(c.doc["credentialSubject"])
	case *JWTCredential:
		ids := subjectIDs(c.credential["credentialSubject"])
		if sub := stringOf(c.payload["sub"]); sub != "" && !slices.Contains(ids, sub) {
			ids = append(ids, sub)
		}

		return ids
	case *SDJWTCredential:
		if sub := stringOf(c.decoded["sub"]); sub != "" {
			return []string{sub}
		}
	case *MDocCredential:
	}

	return nil
}

// URIs returns the identifiers a definition may reference a credential type by: @context
// entries, types, context#type combinations and credential schema ids for W3C credentials, vct
// for SD-JWTs and the document type for mobile documents.
func URIs(w Wrapped) []string {
	switch c := w.(type) {
	case *JSONLDCredential:
		return w3cURIs(c.doc)
	case *JWTCredential:
		return w3cURIs(c.credential)
	case *SDJWTCredential:
		if vct := stringOf(c.decoded["vct"]); vct != "" {
			return []string{vct}
		}
	case *MDocCredential:
		return []string{c.docType}
	}

	return nil
}

// Contexts returns the @context URIs of a W3C credential.
func Contexts(w Wrapped) []string {
	switch c := w.(type) {
	case *JSONLDCredential:
		return stringsOf(c.doc["@context"])
	case *JWTCredential:
		return stringsOf(c.credential["@context"])
	}

	return nil
}

// Types returns the types of a W3C credential.
func Types(w Wrapped) []string {
	switch c := w.(type) {
	case *JSONLDCredential:
		return stringsOf(c.doc["type"])
	case *JWTCredential:
		return stringsOf(c.credential["type"])
	}

	return nil
}

func w3cURIs(doc map[string]interface{}) []string {
	contexts := stringsOf(doc["@context"])
	types := stringsOf(doc["type"])

	uris := append([]string{}, contexts...)
	uris = append(uris, types...)

	for _, ctx := range contexts {
		for _, t := range types {
			uris = append(uris, ctx+"#"+t)
		}
	}

	switch schema := doc["credentialSchema"].(type) {
	case map[string]interface{}:
		uris = append(uris, stringOf(schema["id"]))
	case []interface{}:
		for _, s := range schema {
			if m, ok := s.(map[string]interface{}); ok {
				uris = append(uris, stringOf(m["id"]))
			}
		}
	}

	return uris
}

func issuerOf(v interface{}) string {
	switch iss := v.(type) {
	case string:
		return iss
	case map[string]interface{}:
		return stringOf(iss["id"])
	}

	return ""
}

func subjectIDs(v interface{}) []string {
	switch subj := v.(type) {
	case map[string]interface{}:
		if id := stringOf(subj["id"]); id != "" {
			return []string{id}
		}
	case []interface{}:
		var ids []string

		for _, s := range subj {
			ids = append(ids, subjectIDs(s)...)
		}

		return ids
	}

	return nil
}

func stringOf(v interface{}) string {
	s, _ := v.(string) //nolint:errcheck

	return s
}

func stringsOf(v interface{}) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []string:
		return val
	case []interface{}:
		var out []string

		for _, el := range val {
			if s, ok := el.(string); ok {
				out = append(out, s)
			}
		}

		return out
	}

	return nil
}

// DIDMethod returns the method of a did: URI, or an empty string.
func DIDMethod(did string) string {
	parts := strings.SplitN(did, ":", 3)
	if len(parts) < 3 || parts[0] != "did" {
		return ""
	}

	return parts[1]
}

// copyMap creates a shallow copy of m.
func copyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}

	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}
