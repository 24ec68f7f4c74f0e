/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presexch

import (
	"fmt"

	"github.com/hyperledger/aries-pex-go/credential"
)

const (
	// All rule`s value.
	All Selection = "all"
	// Pick rule`s value.
	Pick Selection = "pick"

	// Required predicate`s value.
	Required Preference = "required"
	// Preferred predicate`s value.
	Preferred Preference = "preferred"
)

type (
	// Selection can be "all" or "pick".
	Selection string
	// Preference can be "required" or "preferred".
	Preference string
	// StrOrInt type that defines string or integer.
	StrOrInt interface{}
	// Version of a presentation definition.
	Version string
)

// Presentation definition versions.
const (
	// DefinitionV1 uses input descriptor schemas to select credentials.
	DefinitionV1 Version = "v1"
	// DefinitionV2 uses formats and field constraints only.
	DefinitionV2 Version = "v2"
)

// Format describes PresentationDefinition`s Format field.
type Format struct {
	Jwt       *JwtType   `json:"jwt,omitempty"`
	JwtVC     *JwtType   `json:"jwt_vc,omitempty"`
	JwtVCJSON *JwtType   `json:"jwt_vc_json,omitempty"`
	JwtVP     *JwtType   `json:"jwt_vp,omitempty"`
	JwtVPJSON *JwtType   `json:"jwt_vp_json,omitempty"`
	Ldp       *LdpType   `json:"ldp,omitempty"`
	LdpVC     *LdpType   `json:"ldp_vc,omitempty"`
	LdpVP     *LdpType   `json:"ldp_vp,omitempty"`
	Di        *LdpType   `json:"di,omitempty"`
	DiVC      *LdpType   `json:"di_vc,omitempty"`
	DiVP      *LdpType   `json:"di_vp,omitempty"`
	SDJwtVC   *SDJwtType `json:"vc+sd-jwt,omitempty"`
	DCSDJwt   *SDJwtType `json:"dc+sd-jwt,omitempty"`
	MsoMdoc   *MsoType   `json:"mso_mdoc,omitempty"`
}

// JwtType contains alg.
type JwtType struct {
	Alg []string `json:"alg,omitempty"`
}

// LdpType contains proof_type.
type LdpType struct {
	ProofType []string `json:"proof_type,omitempty"`
}

// SDJwtType contains the accepted algorithms of the issuer signed JWT and of the key binding JWT.
type SDJwtType struct {
	SDJwtAlg []string `json:"sd-jwt_alg_values,omitempty"`
	KBJwtAlg []string `json:"kb-jwt_alg_values,omitempty"`
}

// MsoType contains alg.
type MsoType struct {
	Alg []string `json:"alg,omitempty"`
}

// Designations returns the claim format designations present in f.
func (f *Format) Designations() []credential.Format {
	if f == nil {
		return nil
	}

	var out []credential.Format

	add := func(present bool, format credential.Format) {
		if present {
			out = append(out, format)
		}
	}

	add(f.Jwt != nil, credential.FormatJWT)
	add(f.JwtVC != nil, credential.FormatJWTVC)
	add(f.JwtVCJSON != nil, credential.FormatJWTVCJSON)
	add(f.JwtVP != nil, credential.FormatJWTVP)
	add(f.JwtVPJSON != nil, credential.FormatJWTVPJSON)
	add(f.Ldp != nil, credential.FormatLDP)
	add(f.LdpVC != nil, credential.FormatLDPVC)
	add(f.LdpVP != nil, credential.FormatLDPVP)
	add(f.Di != nil, credential.FormatDI)
	add(f.DiVC != nil, credential.FormatDIVC)
	add(f.DiVP != nil, credential.FormatDIVP)
	add(f.SDJwtVC != nil, credential.FormatSDJWT)
	add(f.DCSDJwt != nil, credential.FormatDCSDJWT)
	add(f.MsoMdoc != nil, credential.FormatMSOMDoc)

	return out
}

// PresentationDefinition presentation definitions (https://identity.foundation/presentation-exchange/).
type PresentationDefinition struct {
	// ID unique resource identifier.
	ID string `json:"id,omitempty"`
	// Name human-friendly name that describes what the Presentation Definition pertains to.
	Name string `json:"name,omitempty"`
	// Purpose describes the purpose for which the Presentation Definition’s inputs are being requested.
	Purpose string `json:"purpose,omitempty"`
	Locale  string `json:"locale,omitempty"`
	// Format is an object with one or more properties matching the registered Claim Format Designations
	// (jwt, jwt_vc, jwt_vp, etc.) to inform the Holder of the claim format configurations the Verifier can process.
	Format *Format `json:"format,omitempty"`
	// Frame is a JSON-LD frame for the submitted credentials.
	Frame map[string]interface{} `json:"frame,omitempty"`
	// SubmissionRequirements must conform to the Submission Requirement Format.
	// If not present, all inputs listed in the InputDescriptors array are required for submission.
	SubmissionRequirements []*SubmissionRequirement `json:"submission_requirements,omitempty"`
	InputDescriptors       []*InputDescriptor       `json:"input_descriptors,omitempty"`
}

// SubmissionRequirement describes input that must be submitted via a Presentation Submission
// to satisfy Verifier demands.
type SubmissionRequirement struct {
	Name       string                   `json:"name,omitempty"`
	Purpose    string                   `json:"purpose,omitempty"`
	Rule       Selection                `json:"rule,omitempty"`
	Count      *int                     `json:"count,omitempty"`
	Min        int                      `json:"min,omitempty"`
	Max        int                      `json:"max,omitempty"`
	From       string                   `json:"from,omitempty"`
	FromNested []*SubmissionRequirement `json:"from_nested,omitempty"`
}

// InputDescriptor input descriptors.
type InputDescriptor struct {
	ID          string                 `json:"id,omitempty"`
	Group       []string               `json:"group,omitempty"`
	Name        string                 `json:"name,omitempty"`
	Purpose     string                 `json:"purpose,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Schema      []*Schema              `json:"schema,omitempty"`
	Format      *Format                `json:"format,omitempty"`
	Constraints *Constraints           `json:"constraints,omitempty"`
}

// Schema input descriptor schema.
type Schema struct {
	URI      string `json:"uri,omitempty"`
	Required bool   `json:"required,omitempty"`
}

// Holder describes Constraints`s  holder object.
type Holder struct {
	FieldID   []string    `json:"field_id,omitempty"`
	Directive *Preference `json:"directive,omitempty"`
}

// Constraints describes InputDescriptor`s Constraints field.
type Constraints struct {
	LimitDisclosure *Preference `json:"limit_disclosure,omitempty"`
	SubjectIsIssuer *Preference `json:"subject_is_issuer,omitempty"`
	IsHolder        []*Holder   `json:"is_holder,omitempty"`
	Fields          []*Field    `json:"fields,omitempty"`
}

// Field describes Constraints`s Fields field.
type Field struct {
	Path           []string    `json:"path,omitempty"`
	ID             string      `json:"id,omitempty"`
	Purpose        string      `json:"purpose,omitempty"`
	Filter         *Filter     `json:"filter,omitempty"`
	Predicate      *Preference `json:"predicate,omitempty"`
	IntentToRetain bool        `json:"intent_to_retain,omitempty"`
	Optional       bool        `json:"optional,omitempty"`
}

// Filter describes filter.
type Filter struct {
	Type             *string                `json:"type,omitempty"`
	Format           string                 `json:"format,omitempty"`
	Pattern          string                 `json:"pattern,omitempty"`
	Minimum          StrOrInt               `json:"minimum,omitempty"`
	Maximum          StrOrInt               `json:"maximum,omitempty"`
	MinLength        int                    `json:"minLength,omitempty"`
	MaxLength        int                    `json:"maxLength,omitempty"`
	ExclusiveMinimum StrOrInt               `json:"exclusiveMinimum,omitempty"`
	ExclusiveMaximum StrOrInt               `json:"exclusiveMaximum,omitempty"`
	Const            StrOrInt               `json:"const,omitempty"`
	Enum             []StrOrInt             `json:"enum,omitempty"`
	Not              map[string]interface{} `json:"not,omitempty"`
	Contains         map[string]interface{} `json:"contains,omitempty"`
	Items            map[string]interface{} `json:"items,omitempty"`
}

// Version returns DefinitionV1 when any input descriptor selects credentials by schema, DefinitionV2 otherwise.
func (pd *PresentationDefinition) Version() Version {
	for _, desc := range pd.InputDescriptors {
		if len(desc.Schema) > 0 {
			return DefinitionV1
		}
	}

	return DefinitionV2
}

// StructuralError reports a definition or submission that cannot be evaluated at all.
type StructuralError struct {
	Reason string
}

func (e *StructuralError) Error() string {
	return "invalid presentation exchange structure: " + e.Reason
}

func structuralErrorf(format string, args ...interface{}) error {
	return &StructuralError{Reason: fmt.Sprintf(format, args...)}
}

// Validate checks the structure the matching engine depends on: non-null entries, unique input descriptor ids
// and submission requirements with exactly one of from and from_nested.
func (pd *PresentationDefinition) Validate() error {
	ids := map[string]bool{}

	for i, desc := range pd.InputDescriptors {
		if desc == nil {
			return structuralErrorf("input descriptor %d is null", i)
		}

		if desc.ID == "" {
			return structuralErrorf("input descriptor without id")
		}

		if ids[desc.ID] {
			return structuralErrorf("duplicate input descriptor id %s", desc.ID)
		}

		ids[desc.ID] = true
	}

	for _, req := range pd.SubmissionRequirements {
		if err := validateRequirement(req); err != nil {
			return err
		}
	}

	return nil
}

// validateRequirement checks req and its nested requirements. Groups without input descriptors are left to the
// count fold.
func validateRequirement(req *SubmissionRequirement) error {
	if req == nil {
		return structuralErrorf("null submission requirement")
	}

	if req.From == "" && len(req.FromNested) == 0 {
		return structuralErrorf("submission requirement %q has neither from nor from_nested", req.Name)
	}

	if req.From != "" && len(req.FromNested) != 0 {
		return structuralErrorf("submission requirement %q has both from and from_nested", req.Name)
	}

	if req.Rule != All && req.Rule != Pick {
		return structuralErrorf("submission requirement %q has unsupported rule %q", req.Name, req.Rule)
	}

	for _, nested := range req.FromNested {
		if err := validateRequirement(nested); err != nil {
			return err
		}
	}

	return nil
}

func (pd *PresentationDefinition) groupDescriptors(group string) []int {
	var out []int

	for i, desc := range pd.InputDescriptors {
		for _, g := range desc.Group {
			if g == group {
				out = append(out, i)

				break
			}
		}
	}

	return out
}

func (pd *PresentationDefinition) inputDescriptor(id string) (int, *InputDescriptor) {
	for i := range pd.InputDescriptors {
		if pd.InputDescriptors[i].ID == id {
			return i, pd.InputDescriptors[i]
		}
	}

	return -1, nil
}

// narrow returns a definition holding only the given input descriptor and no submission requirements.
func (pd *PresentationDefinition) narrow(desc *InputDescriptor) *PresentationDefinition {
	cp := *pd
	cp.InputDescriptors = []*InputDescriptor{desc}
	cp.SubmissionRequirements = nil

	return &cp
}

func (sr *SubmissionRequirement) count() int {
	if sr.Count == nil {
		return 0
	}

	return *sr.Count
}

func descriptorIDs(input []*InputDescriptor) map[string]bool {
	ids := make(map[string]bool)

	for _, id := range input {
		ids[id.ID] = true
	}

	return ids
}
