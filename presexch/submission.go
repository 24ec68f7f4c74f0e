/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presexch

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/hyperledger/aries-pex-go/credential"
	"github.com/hyperledger/aries-pex-go/presexch/internal/requirementlogic"
)

const (
	// PresentationSubmissionJSONLDContextIRI is the JSONLD context of presentation submissions.
	PresentationSubmissionJSONLDContextIRI = "https://identity.foundation/presentation-exchange/submission/v1"
	// PresentationSubmissionJSONLDType is the JSONLD type of presentation submissions.
	PresentationSubmissionJSONLDType = "PresentationSubmission"

	descriptorMapProperty = "descriptor_map"
)

// ErrRequirementNotSatisfied is returned when the selected credentials cannot satisfy a top level submission
// requirement.
var ErrRequirementNotSatisfied = errors.New("submission requirement not satisfied")

// PresentationSubmission is the container for the descriptor_map:
// https://identity.foundation/presentation-exchange/#presentation-submission.
type PresentationSubmission struct {
	// ID unique resource identifier.
	ID     string `json:"id,omitempty"`
	Locale string `json:"locale,omitempty"`
	// DefinitionID links the submission to its definition and must be the id value of a valid Presentation Definition.
	DefinitionID  string                    `json:"definition_id,omitempty"`
	DescriptorMap []*InputDescriptorMapping `json:"descriptor_map"`
}

// InputDescriptorMapping maps an InputDescriptor to a verifiable credential pointed to by the JSONPath in `Path`.
type InputDescriptorMapping struct {
	ID         string                  `json:"id,omitempty"`
	Format     string                  `json:"format,omitempty"`
	Path       string                  `json:"path,omitempty"`
	PathNested *InputDescriptorMapping `json:"path_nested,omitempty"`
}

// DecodeSubmission decodes a presentation submission from its JSON object form.
func DecodeSubmission(raw map[string]interface{}) (*PresentationSubmission, error) {
	if _, ok := raw[descriptorMapProperty].([]interface{}); !ok {
		return nil, fmt.Errorf("missing '%s' on presentation submission", descriptorMapProperty)
	}

	sub := &PresentationSubmission{}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  sub,
		TagName: "json",
	})
	if err != nil {
		return nil, fmt.Errorf("create submission decoder: %w", err)
	}

	if err = decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode presentation submission: %w", err)
	}

	return sub, nil
}

// envelope describes how credentials of a format travel in an external submission.
type envelope struct {
	presentation credential.Format
	// nested is the path of the credential array inside the presentation; empty when the credential is the
	// presentation itself.
	nested string
}

//nolint:gochecknoglobals
var envelopes = map[credential.Format]envelope{
	credential.FormatLDPVC:     {credential.FormatLDPVP, "$.verifiableCredential"},
	credential.FormatDIVC:      {credential.FormatDIVP, "$.verifiableCredential"},
	credential.FormatJWTVC:     {credential.FormatJWTVP, "$.vp.verifiableCredential"},
	credential.FormatJWTVCJSON: {credential.FormatJWTVPJSON, "$.vp.verifiableCredential"},
	credential.FormatLDP:       {credential.FormatLDP, "$.verifiableCredential"},
	credential.FormatJWT:       {credential.FormatJWT, "$.vp.verifiableCredential"},
	credential.FormatDI:        {credential.FormatDI, "$.verifiableCredential"},
	credential.FormatSDJWT:     {credential.FormatSDJWT, ""},
	credential.FormatDCSDJWT:   {credential.FormatDCSDJWT, ""},
	credential.FormatMSOMDoc:   {credential.FormatMSOMDoc, ""},
}

func envelopeOf(f credential.Format) (envelope, error) {
	e, ok := envelopes[f]
	if !ok {
		return envelope{}, fmt.Errorf("unsupported credential format %s", f)
	}

	return e, nil
}

// PresentationFormat returns the format of the presentation a credential of format f travels in.
func PresentationFormat(f credential.Format) (credential.Format, error) {
	e, err := envelopeOf(f)
	if err != nil {
		return "", err
	}

	return e.presentation, nil
}

// SubmissionFrom builds the submission for the credentials a user selected out of the pool outcome was evaluated
// against. Selected credentials are recognized by value, either as passed to the evaluation or as redacted by it.
func (pd *PresentationDefinition) SubmissionFrom(outcome *Outcome, selected []credential.Wrapped,
	options ...Option) (*PresentationSubmission, error) {
	opts := NewOptions(options...)

	entries, err := pd.submissionEntries(outcome, selected)
	if err != nil {
		return nil, err
	}

	location := opts.PresentationSubmissionLocation
	if location == LocationDefault {
		location = LocationEmbedded
	}

	descriptorMap, err := mapEntries(entries, selected, location)
	if err != nil {
		return nil, err
	}

	return pd.submission(descriptorMap), nil
}

func (pd *PresentationDefinition) submission(descriptorMap []*InputDescriptorMapping) *PresentationSubmission {
	return &PresentationSubmission{
		ID:            uuid.NewString(),
		DefinitionID:  pd.ID,
		DescriptorMap: descriptorMap,
	}
}

// entry pairs an input descriptor with the index of a selected credential submitted for it.
type entry struct {
	id    string
	index int
}

// submissionEntries lists, in input descriptor order, the selected credentials submitted for each descriptor.
func (pd *PresentationDefinition) submissionEntries(outcome *Outcome, selected []credential.Wrapped) ([]entry, error) {
	if err := pd.Validate(); err != nil {
		return nil, err
	}

	marked, err := markedSelection(outcome, selected)
	if err != nil {
		return nil, err
	}

	if len(pd.SubmissionRequirements) > 0 {
		ids, reqErr := pd.evaluateRequirements(marked)
		if reqErr != nil {
			return nil, reqErr
		}

		for d := range marked {
			if !ids.Has(pd.InputDescriptors[d].ID) {
				delete(marked, d)
			}
		}
	}

	descs := make([]int, 0, len(marked))
	for d := range marked {
		descs = append(descs, d)
	}

	sort.Ints(descs)

	var entries []entry

	for _, d := range descs {
		seen := map[int]bool{}

		for _, i := range marked[d] {
			if !seen[i] {
				seen[i] = true

				entries = append(entries, entry{id: pd.InputDescriptors[d].ID, index: i})
			}
		}
	}

	return entries, nil
}

// markedSelection remaps the eligible pairs of outcome onto indexes of selected, dropping credentials that were
// not selected.
func markedSelection(outcome *Outcome, selected []credential.Wrapped) (map[int][]int, error) {
	serialized := make([]string, len(selected))

	for i, c := range selected {
		s, err := serialize(c)
		if err != nil {
			return nil, err
		}

		serialized[i] = s
	}

	indexOf := func(c int) (int, error) {
		for _, candidate := range []credential.Wrapped{outcome.Input(c), outcome.Credentials[c]} {
			s, err := serialize(candidate)
			if err != nil {
				return -1, err
			}

			for i := range serialized {
				if serialized[i] == s {
					return i, nil
				}
			}
		}

		return -1, nil
	}

	marked := map[int][]int{}

	for d, creds := range outcome.Eligible() {
		for _, c := range creds {
			i, err := indexOf(c)
			if err != nil {
				return nil, err
			}

			if i >= 0 {
				marked[d] = append(marked[d], i)
			}
		}
	}

	return marked, nil
}

func serialize(c credential.Wrapped) (string, error) {
	if s, ok := c.Original().(string); ok {
		return s, nil
	}

	b, err := json.Marshal(c.Original())
	if err != nil {
		return "", fmt.Errorf("serialize credential: %w", err)
	}

	return string(b), nil
}

// evaluateRequirements returns the ids of the input descriptors that the marked credentials contribute to the
// submission requirements. Violations are fatal at the top level; a nested branch that is violated is treated as
// absent, although a violated pick branch still contributes its descriptors.
func (pd *PresentationDefinition) evaluateRequirements(marked map[int][]int) (requirementlogic.StringSet, error) {
	ids := requirementlogic.StringSet{}

	for _, req := range pd.SubmissionRequirements {
		reqIDs, satisfied := pd.evaluateRequirement(req, marked)
		if !satisfied {
			return nil, fmt.Errorf("%w: %s rule of %s", ErrRequirementNotSatisfied, req.Rule, requirementName(req))
		}

		ids = requirementlogic.MergeAll(ids, reqIDs)
	}

	return ids, nil
}

func (pd *PresentationDefinition) evaluateRequirement(req *SubmissionRequirement,
	marked map[int][]int) (requirementlogic.StringSet, bool) {
	ids := requirementlogic.StringSet{}

	var members []Status

	if req.From != "" {
		for _, d := range pd.groupDescriptors(req.From) {
			if len(marked[d]) == 0 {
				members = append(members, StatusError)

				continue
			}

			ids.Add(pd.InputDescriptors[d].ID)

			members = append(members, StatusInfo)
		}
	} else {
		for _, nested := range req.FromNested {
			nestedIDs, satisfied := pd.evaluateRequirement(nested, marked)

			switch {
			case satisfied:
				members = append(members, StatusInfo)
			case nested.Rule == Pick:
				members = append(members, StatusError)
			default:
				members = append(members, StatusError)

				continue
			}

			ids = requirementlogic.MergeAll(ids, nestedIDs)
		}
	}

	satisfied := requirementStatus(req, members) == StatusInfo

	if !satisfied && req.Rule == All {
		return requirementlogic.StringSet{}, false
	}

	return ids, satisfied
}

func requirementName(req *SubmissionRequirement) string {
	if req.Name != "" {
		return req.Name
	}

	if req.From != "" {
		return "group " + req.From
	}

	return "nested requirements"
}

func mapEntries(entries []entry, selected []credential.Wrapped,
	location SubmissionLocation) ([]*InputDescriptorMapping, error) {
	var placements []placement

	if location == LocationExternal {
		var err error

		placements, err = placeExternally(selected)
		if err != nil {
			return nil, err
		}
	}

	descriptorMap := []*InputDescriptorMapping{}

	for _, e := range entries {
		cred := selected[e.index]

		if location == LocationExternal {
			p := placements[e.index]

			descriptorMap = append(descriptorMap,
				externalMapping(e.id, cred.Format(), p.envelope, p.presentation, p.nested, p.multiple))

			continue
		}

		env, err := envelopeOf(cred.Format())
		if err != nil {
			return nil, err
		}

		path := "$"
		if env.nested != "" {
			path = fmt.Sprintf("$.verifiableCredential[%d]", e.index)
		}

		descriptorMap = append(descriptorMap, &InputDescriptorMapping{
			ID:     e.id,
			Format: string(cred.Format()),
			Path:   path,
		})
	}

	return descriptorMap, nil
}

// placement is where a selected credential travels in an external submission.
type placement struct {
	envelope     envelope
	presentation int
	nested       int
	multiple     bool
}

// placeExternally groups credentials into presentations: W3C credentials share one presentation per presentation
// format, mobile documents share one device response and every SD-JWT is its own presentation.
func placeExternally(selected []credential.Wrapped) ([]placement, error) {
	placements := make([]placement, len(selected))
	presentationOf := map[credential.Format]int{}
	sizes := map[int]int{}
	count := 0

	for i, c := range selected {
		e, err := envelopeOf(c.Format())
		if err != nil {
			return nil, err
		}

		p, shared := presentationOf[e.presentation]
		if !shared || c.Format().IsSDJWT() {
			p = count
			count++

			presentationOf[e.presentation] = p
		}

		placements[i] = placement{envelope: e, presentation: p, nested: sizes[p]}
		sizes[p]++
	}

	for i := range placements {
		placements[i].multiple = count > 1
	}

	return placements, nil
}

func externalMapping(id string, format credential.Format, e envelope, presentation, nested int,
	multiple bool) *InputDescriptorMapping {
	root := "$"
	if multiple {
		root = fmt.Sprintf("$[%d]", presentation)
	}

	if e.nested == "" {
		return &InputDescriptorMapping{ID: id, Format: string(format), Path: root}
	}

	return &InputDescriptorMapping{
		ID:     id,
		Format: string(e.presentation),
		Path:   root,
		PathNested: &InputDescriptorMapping{
			ID:     id,
			Format: string(format),
			Path:   fmt.Sprintf("%s[%d]", e.nested, nested),
		},
	}
}

// Presentations returns how many presentations an external submission for selected needs.
func Presentations(selected []credential.Wrapped) (int, error) {
	placements, err := placeExternally(selected)
	if err != nil {
		return 0, err
	}

	last := -1
	for _, p := range placements {
		if p.presentation > last {
			last = p.presentation
		}
	}

	return last + 1, nil
}
