/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presexch

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/PaesslerAG/gval"
	"github.com/PaesslerAG/jsonpath"

	"github.com/hyperledger/aries-pex-go/credential"
	"github.com/hyperledger/aries-pex-go/presexch/internal/requirementlogic"
)

// EvaluationResults is the outcome of evaluating credentials.
type EvaluationResults struct {
	Value                         *PresentationSubmission `json:"value,omitempty"`
	Errors                        []*HandlerCheckResult   `json:"errors,omitempty"`
	Warnings                      []*HandlerCheckResult   `json:"warnings,omitempty"`
	AreRequiredCredentialsPresent Status                  `json:"areRequiredCredentialsPresent"`
	VerifiableCredential          []credential.Wrapped    `json:"-"`
}

// PresentationEvaluationResults is the outcome of evaluating presentations.
type PresentationEvaluationResults struct {
	EvaluationResults
	Presentations []credential.Presentation `json:"-"`
}

// Evaluate evaluates creds and, unless a submission is provided or generation is disabled, builds the submission
// of every eligible credential. Submission paths address the returned credentials as $.verifiableCredential[n].
func (pd *PresentationDefinition) Evaluate(creds []credential.Wrapped, options ...Option) (*EvaluationResults, error) {
	results, _, err := pd.evaluate(creds, NewOptions(options...))

	return results, err
}

// evaluate also returns, for every returned credential, its index in creds.
func (pd *PresentationDefinition) evaluate(creds []credential.Wrapped,
	opts *Options) (*EvaluationResults, []int, error) {
	outcome, err := pd.evaluateCredentials(creds, opts)
	if err != nil {
		return nil, nil, err
	}

	results := &EvaluationResults{
		Errors:   outcome.Errors(),
		Warnings: outcome.Warnings(),
	}

	var poolIndexes []int

	switch {
	case opts.PresentationSubmission != nil:
		results.Value = pd.definedOnly(opts.PresentationSubmission)
		results.VerifiableCredential = outcome.Credentials

		for i := range outcome.Credentials {
			poolIndexes = append(poolIndexes, i)
		}
	case opts.GeneratePresentationSubmission:
		entries, entriesErr := pd.submissionEntries(outcome, outcome.Credentials)

		switch {
		case errors.Is(entriesErr, ErrRequirementNotSatisfied):
			results.Errors = append(results.Errors, &HandlerCheckResult{
				Evaluator: EvaluatorSubmission,
				Status:    StatusError,
				Message:   entriesErr.Error(),
			})
		case entriesErr != nil:
			return nil, nil, entriesErr
		default:
			results.Value, poolIndexes = pd.aliasSubmission(entries, outcome.Credentials)

			for _, i := range poolIndexes {
				results.VerifiableCredential = append(results.VerifiableCredential, outcome.Credentials[i])
			}
		}
	}

	results.AreRequiredCredentialsPresent = StatusError
	if results.Value != nil && len(results.Value.DescriptorMap) > 0 {
		results.AreRequiredCredentialsPresent = StatusInfo
	}

	return results, poolIndexes, nil
}

// aliasSubmission maps entries to the credentials they reference, in order of first reference.
func (pd *PresentationDefinition) aliasSubmission(entries []entry,
	creds []credential.Wrapped) (*PresentationSubmission, []int) {
	aliasOf := map[int]int{}

	var poolIndexes []int

	descriptorMap := []*InputDescriptorMapping{}

	for _, e := range entries {
		k, ok := aliasOf[e.index]
		if !ok {
			k = len(poolIndexes)
			aliasOf[e.index] = k
			poolIndexes = append(poolIndexes, e.index)
		}

		descriptorMap = append(descriptorMap, &InputDescriptorMapping{
			ID:     e.id,
			Format: string(creds[e.index].Format()),
			Path:   fmt.Sprintf("$.verifiableCredential[%d]", k),
		})
	}

	return pd.submission(descriptorMap), poolIndexes
}

// definedOnly drops the descriptor map entries of input descriptors pd does not define.
func (pd *PresentationDefinition) definedOnly(sub *PresentationSubmission) *PresentationSubmission {
	ids := descriptorIDs(pd.InputDescriptors)

	cp := *sub
	cp.DescriptorMap = []*InputDescriptorMapping{}

	for _, mapping := range sub.DescriptorMap {
		if ids[mapping.ID] {
			cp.DescriptorMap = append(cp.DescriptorMap, mapping)
		}
	}

	return &cp
}

// EvaluatePresentation evaluates the credentials of a single presentation. A provided or embedded submission is
// validated; otherwise one is generated, addressing the presentation as $.
func (pd *PresentationDefinition) EvaluatePresentation(p credential.Presentation,
	options ...Option) (*PresentationEvaluationResults, error) {
	return pd.evaluatePresentations([]credential.Presentation{p}, false, NewOptions(options...))
}

// EvaluatePresentations evaluates the credentials of presentations. A provided submission is validated; otherwise
// one is generated, addressing presentations as $[n].
func (pd *PresentationDefinition) EvaluatePresentations(presentations []credential.Presentation,
	options ...Option) (*PresentationEvaluationResults, error) {
	return pd.evaluatePresentations(presentations, true, NewOptions(options...))
}

type nestedRef struct {
	presentation int
	nested       int
}

func (pd *PresentationDefinition) evaluatePresentations(presentations []credential.Presentation, list bool,
	opts *Options) (*PresentationEvaluationResults, error) {
	location := opts.location(list, presentations...)

	sub := opts.PresentationSubmission

	if sub == nil && len(presentations) == 1 {
		if raw, ok := presentations[0].Submission(); ok {
			var err error

			sub, err = DecodeSubmission(raw)
			if err != nil {
				return nil, err
			}

			if opts.PresentationSubmissionLocation == LocationDefault {
				location = LocationEmbedded
			}
		}
	}

	if sub != nil {
		return pd.evaluateAgainstSubmission(presentations, list, sub, location, opts)
	}

	var (
		pool []credential.Wrapped
		refs []nestedRef
	)

	for p, presentation := range presentations {
		for n, c := range presentation.Credentials() {
			pool = append(pool, c)
			refs = append(refs, nestedRef{presentation: p, nested: n})
		}
	}

	results, poolIndexes, err := pd.evaluate(pool, opts)
	if err != nil {
		return nil, err
	}

	if results.Value != nil {
		for _, mapping := range results.Value.DescriptorMap {
			k, ok := bracketIndex(mapping.Path, "$.verifiableCredential[")
			if !ok || k >= len(poolIndexes) {
				return nil, fmt.Errorf("%w: %s", ErrMatchOutsideSelection, mapping.Path)
			}

			ref := refs[poolIndexes[k]]

			*mapping = *presentationMapping(mapping, presentations[ref.presentation], ref, list, location)
		}
	}

	return &PresentationEvaluationResults{EvaluationResults: *results, Presentations: presentations}, nil
}

func presentationMapping(mapping *InputDescriptorMapping, p credential.Presentation, ref nestedRef, list bool,
	location SubmissionLocation) *InputDescriptorMapping {
	if location == LocationEmbedded {
		path := "$"
		if credential.IsW3C(p) {
			path = nestedPath(p, ref.nested)
		}

		return &InputDescriptorMapping{ID: mapping.ID, Format: mapping.Format, Path: path}
	}

	root := "$"
	if list {
		root = fmt.Sprintf("$[%d]", ref.presentation)
	}

	if !credential.IsW3C(p) {
		return &InputDescriptorMapping{ID: mapping.ID, Format: mapping.Format, Path: root}
	}

	return &InputDescriptorMapping{
		ID:     mapping.ID,
		Format: string(p.Format()),
		Path:   root,
		PathNested: &InputDescriptorMapping{
			ID:     mapping.ID,
			Format: mapping.Format,
			Path:   nestedPath(p, ref.nested),
		},
	}
}

// nestedPath addresses credential n of p, without an index when p embeds a single credential object.
func nestedPath(p credential.Presentation, n int) string {
	prefix := nestedPrefix(p.Format())

	member, err := selectByPath(gval.Full(jsonpath.PlaceholderExtension()), p.Decoded(), prefix)
	if _, list := member.([]interface{}); err == nil && !list {
		return prefix
	}

	return fmt.Sprintf("%s[%d]", prefix, n)
}

func nestedPrefix(f credential.Format) string {
	switch f {
	case credential.FormatJWTVP, credential.FormatJWTVPJSON, credential.FormatJWT:
		return "$.vp.verifiableCredential"
	default:
		return "$.verifiableCredential"
	}
}

// evaluateAgainstSubmission checks every descriptor map entry of sub on its own, then checks that the submitted
// input descriptors satisfy the submission requirements of pd.
func (pd *PresentationDefinition) evaluateAgainstSubmission(presentations []credential.Presentation, list bool,
	sub *PresentationSubmission, location SubmissionLocation, opts *Options) (*PresentationEvaluationResults, error) {
	results := &PresentationEvaluationResults{Presentations: presentations}
	results.Value = sub

	if sub.DefinitionID != pd.ID {
		results.Errors = append(results.Errors, &HandlerCheckResult{
			Evaluator: EvaluatorSubmission,
			Status:    StatusError,
			Message:   fmt.Sprintf("definition_id %s does not match definition %s", sub.DefinitionID, pd.ID),
		})
	}

	for i, mapping := range sub.DescriptorMap {
		d, desc := pd.inputDescriptor(mapping.ID)
		if desc == nil {
			return nil, structuralErrorf("descriptor map references unknown input descriptor %s", mapping.ID)
		}

		mappingPath := fmt.Sprintf("$.descriptor_map[%d]", i)

		cred, failure := locateCredential(presentations, list, mapping, location)
		if failure != nil {
			failure.InputDescriptorPath = descriptorPath(d)
			failure.VerifiableCredentialPath = mappingPath
			results.Errors = append(results.Errors, failure)

			continue
		}

		narrowed := pd.narrow(desc)

		outcome, err := narrowed.evaluateCredentials([]credential.Wrapped{cred}, opts)
		if err != nil {
			return nil, err
		}

		matches, err := narrowed.MatchRequirements(outcome)
		if err != nil {
			return nil, err
		}

		if len(matches) != 1 || matches[0].MatchStatus() == StatusError {
			results.Errors = append(results.Errors, rescope(outcome.Errors(), d, mappingPath)...)
			results.Warnings = append(results.Warnings, rescope(outcome.Warnings(), d, mappingPath)...)

			continue
		}

		results.Warnings = append(results.Warnings, rescope(outcome.Warnings(), d, mappingPath)...)
		results.VerifiableCredential = append(results.VerifiableCredential, outcome.Credentials[0])
	}

	if !pd.ValidateSubmission(sub) {
		results.Errors = append(results.Errors, &HandlerCheckResult{
			Evaluator: EvaluatorSubmission,
			Status:    StatusError,
			Message:   "submitted input descriptors do not satisfy the definition",
		})
	}

	results.AreRequiredCredentialsPresent = StatusInfo

	switch {
	case len(results.Errors) > 0:
		results.AreRequiredCredentialsPresent = StatusError
	case len(results.Warnings) > 0:
		results.AreRequiredCredentialsPresent = StatusWarn
	}

	return results, nil
}

func rescope(checks []*HandlerCheckResult, d int, mappingPath string) []*HandlerCheckResult {
	out := make([]*HandlerCheckResult, len(checks))

	for i, c := range checks {
		cp := *c
		cp.InputDescriptorPath = descriptorPath(d)
		cp.VerifiableCredentialPath = mappingPath
		out[i] = &cp
	}

	return out
}

func lookupFailure(format string, args ...interface{}) *HandlerCheckResult {
	return &HandlerCheckResult{
		Evaluator: EvaluatorSubmissionPath,
		Status:    StatusError,
		Message:   fmt.Sprintf(format, args...),
	}
}

func formatMismatch(kind string, actual credential.Format, declared string) *HandlerCheckResult {
	return &HandlerCheckResult{
		Evaluator: EvaluatorSubmissionFormat,
		Status:    StatusError,
		Message:   fmt.Sprintf("%s format %s does not match declared format %s", kind, actual, declared),
	}
}

// locateCredential resolves the credential a descriptor map entry points to.
func locateCredential(presentations []credential.Presentation, list bool, mapping *InputDescriptorMapping,
	location SubmissionLocation) (credential.Wrapped, *HandlerCheckResult) {
	if location == LocationEmbedded {
		if len(presentations) != 1 {
			return nil, lookupFailure("embedded submission requires a single presentation, got %d", len(presentations))
		}

		return credentialIn(presentations[0], mapping, mapping.Path)
	}

	p, ok := presentationAt(presentations, list, mapping.Path)
	if !ok {
		return nil, lookupFailure("no presentation found at path %s", mapping.Path)
	}

	if !acceptsFormat([]credential.Format{credential.Format(mapping.Format)}, p.Format()) {
		return nil, formatMismatch("presentation", p.Format(), mapping.Format)
	}

	if !credential.IsW3C(p) {
		return credentialIn(p, mapping, "")
	}

	if mapping.PathNested == nil {
		return nil, lookupFailure("descriptor map entry %s has no path_nested", mapping.ID)
	}

	return credentialIn(p, mapping.PathNested, mapping.PathNested.Path)
}

// credentialIn resolves the credential of p addressed by path and checks its declared format.
func credentialIn(p credential.Presentation, mapping *InputDescriptorMapping,
	path string) (credential.Wrapped, *HandlerCheckResult) {
	var cred credential.Wrapped

	switch presentation := p.(type) {
	case *credential.SDJWTPresentation:
		cred = presentation.SDJWTCredential
	case *credential.MDocPresentation:
		doc, ok := presentation.Document(mapping.ID)
		if !ok {
			return nil, lookupFailure("no document of type %s in presentation", mapping.ID)
		}

		cred = doc
	default:
		raw, err := selectByPath(gval.Full(jsonpath.PlaceholderExtension()), p.Decoded(), path)
		if err != nil {
			return nil, lookupFailure("no credential found at path %s: %s", path, err)
		}

		for _, c := range p.Credentials() {
			if reflect.DeepEqual(c.Original(), raw) {
				cred = c

				break
			}
		}

		if cred == nil {
			return nil, lookupFailure("value at path %s is not a credential of the presentation", path)
		}
	}

	if !acceptsFormat([]credential.Format{credential.Format(mapping.Format)}, cred.Format()) {
		return nil, formatMismatch("credential", cred.Format(), mapping.Format)
	}

	return cred, nil
}

func presentationAt(presentations []credential.Presentation, list bool, path string) (credential.Presentation, bool) {
	if !list {
		if path != "$" || len(presentations) == 0 {
			return nil, false
		}

		return presentations[0], true
	}

	idx := rootIndex(path)
	if idx < 0 || idx >= len(presentations) || path != fmt.Sprintf("$[%d]", idx) {
		return nil, false
	}

	return presentations[idx], true
}

// rootIndex takes a jsonpath, and if the path indexes the root as an array, this returns the index.
// Otherwise, this returns -1.
func rootIndex(jsonPathStr string) int {
	if !strings.HasPrefix(jsonPathStr, "$[") {
		return -1
	}

	split := strings.SplitN(jsonPathStr[2:], "]", 2)

	if len(split) == 0 || split[0] == "" {
		return -1
	}

	result, err := strconv.Atoi(split[0])
	if err != nil {
		return -1
	}

	return result
}

// [The Input Descriptor Mapping Object] MUST include a path property, and its value MUST be a JSONPath
// string expression that selects the credential to be submit in relation to the identified Input Descriptor
// identified, when executed against the top-level of the object the Presentation Submission is embedded within.
func selectByPath(builder gval.Language, vp interface{}, jsonPath string) (interface{}, error) {
	path, err := builder.NewEvaluable(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("failed to build new json path evaluator: %w", err)
	}

	cred, err := path(context.TODO(), vp)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate json path [%s]: %w", jsonPath, err)
	}

	return cred, nil
}

// ValidateSubmission reports whether the input descriptors submitted by sub satisfy pd: every input descriptor
// without submission requirements, every submission requirement otherwise. Field constraints are not checked.
func (pd *PresentationDefinition) ValidateSubmission(sub *PresentationSubmission) bool {
	ids := make([]string, len(sub.DescriptorMap))
	for i, mapping := range sub.DescriptorMap {
		ids[i] = mapping.ID
	}

	submitted := requirementlogic.InitFromSlice(ids)

	if len(pd.SubmissionRequirements) == 0 {
		for _, desc := range pd.InputDescriptors {
			if !submitted.Has(desc.ID) {
				return false
			}
		}

		return true
	}

	for _, req := range pd.SubmissionRequirements {
		if !pd.requirementLogic(req).IsSatisfiedBy(submitted) {
			return false
		}
	}

	return true
}

func (pd *PresentationDefinition) requirementLogic(req *SubmissionRequirement) *requirementlogic.RequirementLogic {
	logic := &requirementlogic.RequirementLogic{Count: req.count(), Min: req.Min, Max: req.Max}

	if req.From != "" {
		for _, d := range pd.groupDescriptors(req.From) {
			logic.InputDescriptorIDs = append(logic.InputDescriptorIDs, pd.InputDescriptors[d].ID)
		}
	} else {
		for _, nested := range req.FromNested {
			logic.Nested = append(logic.Nested, pd.requirementLogic(nested))
		}
	}

	if req.Rule == All {
		logic.Count = len(logic.InputDescriptorIDs) + len(logic.Nested)
		logic.Min, logic.Max = 0, 0
	}

	return logic
}
