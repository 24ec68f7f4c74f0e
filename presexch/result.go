/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presexch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperledger/aries-pex-go/credential"
	"github.com/hyperledger/aries-pex-go/internal/jsonpath"
	"github.com/hyperledger/aries-pex-go/presexch/internal/requirementlogic"
)

// Status is the severity of a check result or a match: info, warn or error.
type Status = requirementlogic.Status

// Statuses.
const (
	StatusInfo  = requirementlogic.StatusInfo
	StatusWarn  = requirementlogic.StatusWarn
	StatusError = requirementlogic.StatusError
)

// Evaluator names.
const (
	EvaluatorURI                   = "UriEvaluation"
	EvaluatorDIDRestriction        = "DIDRestrictionEvaluation"
	EvaluatorFilter                = "FilterEvaluation"
	EvaluatorPredicateRelatedField = "PredicateRelatedFieldEvaluation"
	EvaluatorFormatRestriction     = "FormatRestrictionEvaluation"
	EvaluatorSubjectIsIssuer       = "SubjectIsIssuerEvaluation"
	EvaluatorIsHolder              = "IsHolderEvaluation"
	EvaluatorMarkForSubmission     = "MarkForSubmissionEvaluation"
	EvaluatorLimitDisclosure       = "LimitDisclosureEvaluation"
	EvaluatorSubmissionPath        = "SubmissionPathNotFound"
	EvaluatorSubmissionFormat      = "SubmissionFormatEvaluation"
	EvaluatorSubmission            = "PresentationSubmissionEvaluation"
	EvaluatorSelectFrom            = "SelectFromEvaluation"
)

// HandlerCheckResult is the outcome of one check of one input descriptor against one credential.
type HandlerCheckResult struct {
	InputDescriptorPath      string      `json:"input_descriptor_path"`
	VerifiableCredentialPath string      `json:"verifiable_credential_path"`
	Evaluator                string      `json:"evaluator"`
	Status                   Status      `json:"status"`
	Message                  string      `json:"message,omitempty"`
	Payload                  interface{} `json:"payload,omitempty"`
}

// FieldPayload is the payload of field checks: the concrete path of the matched value and the value.
type FieldPayload struct {
	Field int
	Path  jsonpath.Path
	Value interface{}
}

// MarkPayload is the payload of a mark for submission: the groups of the input descriptor.
type MarkPayload struct {
	Group []string
}

// Outcome is the result log of one pipeline run together with the credentials it ran on. Credentials are the
// run's own copies: limit disclosure replaces them with their redacted form.
type Outcome struct {
	Results     []*HandlerCheckResult
	Credentials []credential.Wrapped

	inputs []credential.Wrapped
}

// Errors returns the results with error status.
func (o *Outcome) Errors() []*HandlerCheckResult {
	return o.withStatus(StatusError)
}

// Warnings returns the results with warn status.
func (o *Outcome) Warnings() []*HandlerCheckResult {
	return o.withStatus(StatusWarn)
}

func (o *Outcome) withStatus(status Status) []*HandlerCheckResult {
	var out []*HandlerCheckResult

	for _, r := range o.Results {
		if r.Status == status {
			out = append(out, r)
		}
	}

	return out
}

// Eligible returns, per input descriptor index, the indexes of the credentials marked for submission that no
// check rejected.
func (o *Outcome) Eligible() map[int][]int {
	rejected := map[[2]int]bool{}

	for _, r := range o.Results {
		if r.Status != StatusError {
			continue
		}

		if d, c, ok := pairOf(r); ok {
			rejected[[2]int{d, c}] = true
		}
	}

	out := map[int][]int{}
	seen := map[[2]int]bool{}

	for _, r := range o.Results {
		if r.Evaluator != EvaluatorMarkForSubmission || r.Status != StatusInfo {
			continue
		}

		d, c, ok := pairOf(r)
		if !ok || rejected[[2]int{d, c}] || seen[[2]int{d, c}] {
			continue
		}

		seen[[2]int{d, c}] = true
		out[d] = append(out[d], c)
	}

	return out
}

// Input returns the credential the caller passed at index i.
func (o *Outcome) Input(i int) credential.Wrapped {
	return o.inputs[i]
}

func (o *Outcome) hasError(d, c int) bool {
	for _, r := range o.Results {
		if r.Status != StatusError {
			continue
		}

		if rd, rc, ok := pairOf(r); ok && rd == d && rc == c {
			return true
		}
	}

	return false
}

func (o *Outcome) add(evaluator string, d, c int, status Status, msg string, payload interface{}) {
	o.Results = append(o.Results, &HandlerCheckResult{
		InputDescriptorPath:      descriptorPath(d),
		VerifiableCredentialPath: credentialPath(c),
		Evaluator:                evaluator,
		Status:                   status,
		Message:                  msg,
		Payload:                  payload,
	})
}

func descriptorPath(i int) string {
	return fmt.Sprintf("$.input_descriptors[%d]", i)
}

func credentialPath(i int) string {
	return fmt.Sprintf("$[%d]", i)
}

func pairOf(r *HandlerCheckResult) (int, int, bool) {
	d, ok := bracketIndex(r.InputDescriptorPath, "$.input_descriptors[")
	if !ok {
		return 0, 0, false
	}

	c, ok := bracketIndex(r.VerifiableCredentialPath, "$[")
	if !ok {
		return 0, 0, false
	}

	return d, c, true
}

// bracketIndex parses the index of prefix + "<n>]".
func bracketIndex(path, prefix string) (int, bool) {
	if !strings.HasPrefix(path, prefix) || !strings.HasSuffix(path, "]") {
		return 0, false
	}

	n, err := strconv.Atoi(path[len(prefix) : len(path)-1])
	if err != nil || n < 0 {
		return 0, false
	}

	return n, true
}
