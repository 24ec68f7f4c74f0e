/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package credential

import (
	"fmt"
	"strings"

	"github.com/hyperledger/aries-pex-go/sdjwt"
)

// SubmissionKey is the member carrying an embedded presentation submission.
const SubmissionKey = "presentation_submission"

// Presentation is a presentation normalized for evaluation. Implementations are
// *JSONLDPresentation, *JWTPresentation, *SDJWTPresentation and *MDocPresentation.
type Presentation interface {
	// Format is the claim format designation of the presentation.
	Format() Format
	// Original is the presentation as received.
	Original() interface{}
	// Decoded is the normalized claim tree of the presentation.
	Decoded() map[string]interface{}
	// Credentials returns the credentials carried by the presentation, in order.
	Credentials() []Wrapped
	// Submission returns the embedded presentation submission, if any.
	Submission() (map[string]interface{}, bool)

	presentation()
}

// JSONLDPresentation is a W3C presentation in JSON-LD form.
type JSONLDPresentation struct {
	doc   map[string]interface{}
	creds []Wrapped
}

// NewJSONLDPresentation wraps a JSON-LD presentation and the credentials in its
// verifiableCredential member.
func NewJSONLDPresentation(doc map[string]interface{}) (*JSONLDPresentation, error) {
	creds, err := embeddedCredentials(doc["verifiableCredential"])
	if err != nil {
		return nil, err
	}

	return &JSONLDPresentation{doc: doc, creds: creds}, nil
}

// Format returns di_vp for data integrity proofs and ldp_vp otherwise.
func (p *JSONLDPresentation) Format() Format {
	proofs := Proofs(p.doc)
	if len(proofs) > 0 && stringOf(proofs[0]["type"]) == dataIntegrityProofType {
		return FormatDIVP
	}

	return FormatLDPVP
}

// Original returns the presentation document.
func (p *JSONLDPresentation) Original() interface{} { return p.doc }

// Decoded returns the presentation document.
func (p *JSONLDPresentation) Decoded() map[string]interface{} { return p.doc }

// Credentials returns the embedded credentials.
func (p *JSONLDPresentation) Credentials() []Wrapped { return p.creds }

// Submission returns the embedded presentation submission.
func (p *JSONLDPresentation) Submission() (map[string]interface{}, bool) {
	sub, ok := p.doc[SubmissionKey].(map[string]interface{})

	return sub, ok
}

func (p *JSONLDPresentation) presentation() {}

// JWTPresentation is a W3C presentation secured as a JWT.
type JWTPresentation struct {
	compact string
	payload map[string]interface{}
	creds   []Wrapped
}

// NewJWTPresentation decodes a compact JWT presentation. The signature is not verified.
func NewJWTPresentation(compact string) (*JWTPresentation, error) {
	payload, err := parseJWTClaims(compact)
	if err != nil {
		return nil, err
	}

	vp, _ := payload["vp"].(map[string]interface{}) //nolint:errcheck

	creds, err := embeddedCredentials(vp["verifiableCredential"])
	if err != nil {
		return nil, err
	}

	return &JWTPresentation{compact: compact, payload: payload, creds: creds}, nil
}

// Format returns jwt_vp.
func (p *JWTPresentation) Format() Format { return FormatJWTVP }

// Original returns the compact JWT.
func (p *JWTPresentation) Original() interface{} { return p.compact }

// Decoded returns the JWT claims.
func (p *JWTPresentation) Decoded() map[string]interface{} { return p.payload }

// Credentials returns the credentials in vp.verifiableCredential.
func (p *JWTPresentation) Credentials() []Wrapped { return p.creds }

// Submission returns the presentation submission embedded in the vp claim or at the top level.
func (p *JWTPresentation) Submission() (map[string]interface{}, bool) {
	if vp, ok := p.payload["vp"].(map[string]interface{}); ok {
		if sub, ok := vp[SubmissionKey].(map[string]interface{}); ok {
			return sub, true
		}
	}

	sub, ok := p.payload[SubmissionKey].(map[string]interface{})

	return sub, ok
}

func (p *JWTPresentation) presentation() {}

// SDJWTPresentation is an SD-JWT presented on its own; it carries exactly one credential.
type SDJWTPresentation struct {
	*SDJWTCredential
}

// NewSDJWTPresentation decodes an SD-JWT presentation.
func NewSDJWTPresentation(compact string) (*SDJWTPresentation, error) {
	c, err := NewSDJWT(compact)
	if err != nil {
		return nil, err
	}

	return &SDJWTPresentation{SDJWTCredential: c}, nil
}

// Credentials returns the presented SD-JWT.
func (p *SDJWTPresentation) Credentials() []Wrapped { return []Wrapped{p.SDJWTCredential} }

// Submission always reports false: an SD-JWT cannot embed a submission.
func (p *SDJWTPresentation) Submission() (map[string]interface{}, bool) { return nil, false }

func (p *SDJWTPresentation) presentation() {}

// MDocPresentation is a device response carrying one or more mobile documents.
type MDocPresentation struct {
	docs     []*MDocCredential
	original interface{}
}

// NewMDocPresentation wraps the documents of a device response.
func NewMDocPresentation(original interface{}, docs ...*MDocCredential) *MDocPresentation {
	return &MDocPresentation{docs: docs, original: original}
}

// Format returns mso_mdoc.
func (p *MDocPresentation) Format() Format { return FormatMSOMDoc }

// Original returns the device response as received.
func (p *MDocPresentation) Original() interface{} { return p.original }

// Decoded returns the documents keyed by document type.
func (p *MDocPresentation) Decoded() map[string]interface{} {
	out := make(map[string]interface{}, len(p.docs))
	for _, d := range p.docs {
		out[d.docType] = d.namespaces
	}

	return out
}

// Credentials returns the documents.
func (p *MDocPresentation) Credentials() []Wrapped {
	out := make([]Wrapped, len(p.docs))
	for i, d := range p.docs {
		out[i] = d
	}

	return out
}

// Document returns the document of the given type.
func (p *MDocPresentation) Document(docType string) (*MDocCredential, bool) {
	for _, d := range p.docs {
		if d.docType == docType {
			return d, true
		}
	}

	return nil, false
}

// Submission always reports false.
func (p *MDocPresentation) Submission() (map[string]interface{}, bool) { return nil, false }

func (p *MDocPresentation) presentation() {}

// WrapPresentation recognizes a raw presentation: a JSON object is JSON-LD, a string with a "~"
// separator is an SD-JWT and any other string is a JWT.
func WrapPresentation(raw interface{}) (Presentation, error) {
	switch p := raw.(type) {
	case Presentation:
		return p, nil
	case map[string]interface{}:
		return NewJSONLDPresentation(p)
	case string:
		if strings.Contains(p, sdjwt.CombinedFormatSeparator) {
			return NewSDJWTPresentation(p)
		}

		return NewJWTPresentation(p)
	}

	return nil, fmt.Errorf("%w: presentation %T", ErrUnsupportedCredential, raw)
}

// IsW3C reports whether p is a W3C presentation able to embed credentials of any W3C format.
func IsW3C(p Presentation) bool {
	switch p.(type) {
	case *JSONLDPresentation, *JWTPresentation:
		return true
	}

	return false
}

func embeddedCredentials(v interface{}) ([]Wrapped, error) {
	var raw []interface{}

	switch vcs := v.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		raw = vcs
	default:
		raw = []interface{}{vcs}
	}

	return WrapAll(raw)
}
