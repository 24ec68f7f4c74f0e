/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presexch

import (
	"errors"
	"fmt"

	"github.com/hyperledger/aries-pex-go/credential"
	"github.com/hyperledger/aries-pex-go/presexch/internal/requirementlogic"
)

// ErrMatchOutsideSelection is returned when a match references a credential that was not selected.
var ErrMatchOutsideSelection = errors.New("match references a credential outside of the selection")

// SubmissionRequirementMatch is a node of the match tree: *InputDescriptorMatch, *GroupMatch or *NestedMatch.
type SubmissionRequirementMatch interface {
	MatchStatus() Status

	match()
}

// InputDescriptorMatch lists the credentials eligible for one input descriptor.
type InputDescriptorMatch struct {
	ID      string   `json:"id"`
	Name    string   `json:"name,omitempty"`
	VCPaths []string `json:"vc_path"`
	Status  Status   `json:"status"`
}

// MatchStatus returns the status of the match.
func (m *InputDescriptorMatch) MatchStatus() Status { return m.Status }

func (m *InputDescriptorMatch) match() {}

// GroupMatch is the match of a submission requirement selecting from a group.
type GroupMatch struct {
	Name             string                  `json:"name,omitempty"`
	From             string                  `json:"from"`
	Rule             Selection               `json:"rule"`
	Count            int                     `json:"count,omitempty"`
	Min              int                     `json:"min,omitempty"`
	Max              int                     `json:"max,omitempty"`
	Status           Status                  `json:"status"`
	InputDescriptors []*InputDescriptorMatch `json:"input_descriptors"`
}

// MatchStatus returns the status of the match.
func (m *GroupMatch) MatchStatus() Status { return m.Status }

func (m *GroupMatch) match() {}

// NestedMatch is the match of a submission requirement selecting from nested requirements.
type NestedMatch struct {
	Name       string                       `json:"name,omitempty"`
	Rule       Selection                    `json:"rule"`
	Count      int                          `json:"count,omitempty"`
	Min        int                          `json:"min,omitempty"`
	Max        int                          `json:"max,omitempty"`
	Status     Status                       `json:"status"`
	FromNested []SubmissionRequirementMatch `json:"from_nested"`
}

// MatchStatus returns the status of the match.
func (m *NestedMatch) MatchStatus() Status { return m.Status }

func (m *NestedMatch) match() {}

// SelectResults is the outcome of SelectFrom.
type SelectResults struct {
	Errors                        []*HandlerCheckResult        `json:"errors,omitempty"`
	Warnings                      []*HandlerCheckResult        `json:"warnings,omitempty"`
	Matches                       []SubmissionRequirementMatch `json:"matches,omitempty"`
	AreRequiredCredentialsPresent Status                       `json:"areRequiredCredentialsPresent"`
	VerifiableCredential          []credential.Wrapped         `json:"-"`
	VCIndexes                     []int                        `json:"vcIndexes,omitempty"`
}

// MatchRequirements builds the match tree of an outcome: one match per input descriptor when pd has no
// submission requirements, otherwise one match per submission requirement.
func (pd *PresentationDefinition) MatchRequirements(outcome *Outcome) ([]SubmissionRequirementMatch, error) {
	if err := pd.Validate(); err != nil {
		return nil, err
	}

	eligible := outcome.Eligible()

	if len(pd.SubmissionRequirements) == 0 {
		matches := make([]SubmissionRequirementMatch, len(pd.InputDescriptors))
		for d := range pd.InputDescriptors {
			matches[d] = pd.descriptorMatch(d, eligible[d])
		}

		return matches, nil
	}

	matches := make([]SubmissionRequirementMatch, len(pd.SubmissionRequirements))
	for i, req := range pd.SubmissionRequirements {
		matches[i] = pd.requirementMatch(req, eligible)
	}

	return matches, nil
}

func (pd *PresentationDefinition) descriptorMatch(d int, creds []int) *InputDescriptorMatch {
	desc := pd.InputDescriptors[d]

	m := &InputDescriptorMatch{ID: desc.ID, Name: desc.Name, VCPaths: []string{}}

	seen := map[string]bool{}

	for _, c := range creds {
		p := credentialPath(c)
		if seen[p] {
			continue
		}

		seen[p] = true
		m.VCPaths = append(m.VCPaths, p)
	}

	switch len(m.VCPaths) {
	case 0:
		m.Status = StatusError
	case 1:
		m.Status = StatusInfo
	default:
		m.Status = StatusWarn
	}

	return m
}

func (pd *PresentationDefinition) requirementMatch(req *SubmissionRequirement,
	eligible map[int][]int) SubmissionRequirementMatch {
	if req.From != "" {
		m := &GroupMatch{
			Name:             req.Name,
			From:             req.From,
			Rule:             req.Rule,
			Count:            req.count(),
			Min:              req.Min,
			Max:              req.Max,
			InputDescriptors: []*InputDescriptorMatch{},
		}

		var statuses []Status

		for _, d := range pd.groupDescriptors(req.From) {
			dm := pd.descriptorMatch(d, eligible[d])

			m.InputDescriptors = append(m.InputDescriptors, dm)
			statuses = append(statuses, dm.Status)
		}

		m.Status = requirementStatus(req, statuses)

		return m
	}

	m := &NestedMatch{
		Name:       req.Name,
		Rule:       req.Rule,
		Count:      req.count(),
		Min:        req.Min,
		Max:        req.Max,
		FromNested: []SubmissionRequirementMatch{},
	}

	var statuses []Status

	for _, nested := range req.FromNested {
		nm := pd.requirementMatch(nested, eligible)

		m.FromNested = append(m.FromNested, nm)
		statuses = append(statuses, nm.MatchStatus())
	}

	m.Status = requirementStatus(req, statuses)

	return m
}

// requirementStatus folds member statuses under the bounds of req; all requires every member.
func requirementStatus(req *SubmissionRequirement, members []Status) Status {
	logic := &requirementlogic.RequirementLogic{Count: req.count(), Min: req.Min, Max: req.Max}
	if req.Rule == All {
		logic = &requirementlogic.RequirementLogic{Count: len(members)}
	}

	return logic.Status(members)
}

// AreRequiredCredentialsPresent folds the statuses of top level matches. No matches is an error.
func AreRequiredCredentialsPresent(matches []SubmissionRequirementMatch) Status {
	if len(matches) == 0 {
		return StatusError
	}

	statuses := make([]Status, len(matches))
	for i, m := range matches {
		statuses[i] = m.MatchStatus()
	}

	return requirementlogic.Worst(statuses...)
}

// ExtractVCPaths returns every credential path referenced in the match tree, once, in order of appearance.
func ExtractVCPaths(matches []SubmissionRequirementMatch) []string {
	var out []string

	seen := map[string]bool{}

	walkDescriptorMatches(matches, func(m *InputDescriptorMatch) {
		for _, p := range m.VCPaths {
			if !seen[p] {
				seen[p] = true

				out = append(out, p)
			}
		}
	})

	return out
}

func walkDescriptorMatches(matches []SubmissionRequirementMatch, fn func(*InputDescriptorMatch)) {
	for _, m := range matches {
		switch match := m.(type) {
		case *InputDescriptorMatch:
			fn(match)
		case *GroupMatch:
			for _, dm := range match.InputDescriptors {
				fn(dm)
			}
		case *NestedMatch:
			walkDescriptorMatches(match.FromNested, fn)
		}
	}
}

// SelectFrom evaluates creds and returns the credentials referenced by the match tree, with the tree rewritten
// to index them. Structural failures become a single error result.
func (pd *PresentationDefinition) SelectFrom(creds []credential.Wrapped, options ...Option) *SelectResults {
	outcome, err := pd.evaluateCredentials(creds, NewOptions(options...))
	if err != nil {
		return selectError(err)
	}

	matches, err := pd.MatchRequirements(outcome)
	if err != nil {
		return selectError(err)
	}

	selection, err := selectCredentials(outcome, ExtractVCPaths(matches))
	if err != nil {
		return selectError(err)
	}

	remapped, err := remapVCPathsToSelectableIndexes(matches, selection.index)
	if err != nil {
		return selectError(err)
	}

	results := &SelectResults{
		Matches:                       remapped,
		AreRequiredCredentialsPresent: AreRequiredCredentialsPresent(matches),
		VerifiableCredential:          selection.credentials,
		VCIndexes:                     selection.poolIndexes,
	}

	if results.AreRequiredCredentialsPresent != StatusInfo {
		results.Errors = outcome.Errors()
		results.Warnings = outcome.Warnings()
	}

	return results
}

func selectError(err error) *SelectResults {
	logger.Debugf("select from failed: %s", err)

	return &SelectResults{
		AreRequiredCredentialsPresent: StatusError,
		Errors: []*HandlerCheckResult{{
			Evaluator: EvaluatorSelectFrom,
			Status:    StatusError,
			Message:   err.Error(),
		}},
		Matches:              []SubmissionRequirementMatch{},
		VerifiableCredential: []credential.Wrapped{},
	}
}

// selection is the subset of a pool referenced by a match tree.
type selection struct {
	credentials []credential.Wrapped
	poolIndexes []int
	// index maps internal credential paths to indexes in credentials.
	index map[string]int
}

// selectCredentials resolves internal credential paths against the pool. Credentials are told apart by identity:
// the same credential passed twice resolves to one selectable index.
func selectCredentials(outcome *Outcome, paths []string) (*selection, error) {
	s := &selection{index: map[string]int{}}

	byIdentity := map[credential.Wrapped]int{}

	for _, p := range paths {
		c, ok := bracketIndex(p, "$[")
		if !ok || c >= len(outcome.Credentials) {
			return nil, fmt.Errorf("%w: %s", ErrMatchOutsideSelection, p)
		}

		input := outcome.Input(c)

		if k, exists := byIdentity[input]; exists {
			s.index[p] = k

			continue
		}

		k := len(s.credentials)
		byIdentity[input] = k
		s.index[p] = k

		s.credentials = append(s.credentials, outcome.Credentials[c])
		s.poolIndexes = append(s.poolIndexes, c)
	}

	return s, nil
}

// remapVCPathsToSelectableIndexes rewrites every credential path of the tree to index the selection.
func remapVCPathsToSelectableIndexes(matches []SubmissionRequirementMatch,
	index map[string]int) ([]SubmissionRequirementMatch, error) {
	out := make([]SubmissionRequirementMatch, len(matches))

	for i, m := range matches {
		remapped, err := remapMatch(m, index)
		if err != nil {
			return nil, err
		}

		out[i] = remapped
	}

	return out, nil
}

func remapMatch(m SubmissionRequirementMatch, index map[string]int) (SubmissionRequirementMatch, error) {
	switch match := m.(type) {
	case *InputDescriptorMatch:
		return remapDescriptorMatch(match, index)
	case *GroupMatch:
		cp := *match
		cp.InputDescriptors = make([]*InputDescriptorMatch, len(match.InputDescriptors))

		for i, dm := range match.InputDescriptors {
			remapped, err := remapDescriptorMatch(dm, index)
			if err != nil {
				return nil, err
			}

			cp.InputDescriptors[i] = remapped
		}

		return &cp, nil
	case *NestedMatch:
		nested, err := remapVCPathsToSelectableIndexes(match.FromNested, index)
		if err != nil {
			return nil, err
		}

		cp := *match
		cp.FromNested = nested

		return &cp, nil
	}

	return nil, fmt.Errorf("unexpected match %T", m)
}

func remapDescriptorMatch(m *InputDescriptorMatch, index map[string]int) (*InputDescriptorMatch, error) {
	cp := *m
	cp.VCPaths = make([]string, 0, len(m.VCPaths))

	seen := map[string]bool{}

	for _, p := range m.VCPaths {
		k, ok := index[p]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMatchOutsideSelection, p)
		}

		remapped := fmt.Sprintf("$.verifiableCredential[%d]", k)
		if !seen[remapped] {
			seen[remapped] = true

			cp.VCPaths = append(cp.VCPaths, remapped)
		}
	}

	return &cp, nil
}
