/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package pex evaluates raw credentials and presentations against presentation definitions and builds the
// presentations a holder submits.
package pex

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-pex-go/credential"
	"github.com/hyperledger/aries-pex-go/presexch"
)

var logger = log.New("aries-framework/pex")

// ErrUnsupportedPresentation is returned when the selected credentials cannot travel in a single presentation.
var ErrUnsupportedPresentation = errors.New("unsupported presentation")

// SignParams is what a signer receives to secure a presentation.
type SignParams struct {
	// Presentation is the unsigned presentation: a JSON-LD document, or the SD-JWT being presented.
	Presentation interface{}
	// Format is the claim format of the presentation.
	Format credential.Format
	// Submission describes the presentation.
	Submission *presexch.PresentationSubmission
	// Location tells whether Submission is embedded in Presentation.
	Location presexch.SubmissionLocation
	// Holder is the DID of the holder, if known.
	Holder string
}

// Signer secures presentations. It never exposes keys to this package.
type Signer interface {
	SignPresentation(ctx context.Context, params *SignParams) (interface{}, error)
}

// PEX evaluates presentation definitions with a fixed set of default options.
type PEX struct {
	defaults []presexch.Option
}

// New returns a PEX applying defaults before the options of every call.
func New(defaults ...presexch.Option) *PEX {
	return &PEX{defaults: defaults}
}

func (p *PEX) options(opts []presexch.Option) []presexch.Option {
	out := make([]presexch.Option, 0, len(p.defaults)+len(opts))
	out = append(out, p.defaults...)

	return append(out, opts...)
}

// EvaluateCredentials evaluates raw credentials: JSON objects, compact JWTs, SD-JWTs or wrapped credentials.
func (p *PEX) EvaluateCredentials(pd *presexch.PresentationDefinition, raw []interface{},
	opts ...presexch.Option) (*presexch.EvaluationResults, error) {
	creds, err := credential.WrapAll(raw)
	if err != nil {
		return nil, err
	}

	return pd.Evaluate(creds, p.options(opts)...)
}

// EvaluatePresentation evaluates a raw presentation.
func (p *PEX) EvaluatePresentation(pd *presexch.PresentationDefinition, raw interface{},
	opts ...presexch.Option) (*presexch.PresentationEvaluationResults, error) {
	presentation, err := credential.WrapPresentation(raw)
	if err != nil {
		return nil, err
	}

	return pd.EvaluatePresentation(presentation, p.options(opts)...)
}

// EvaluatePresentations evaluates a list of raw presentations.
func (p *PEX) EvaluatePresentations(pd *presexch.PresentationDefinition, raw []interface{},
	opts ...presexch.Option) (*presexch.PresentationEvaluationResults, error) {
	presentations := make([]credential.Presentation, 0, len(raw))

	for i, r := range raw {
		presentation, err := credential.WrapPresentation(r)
		if err != nil {
			return nil, fmt.Errorf("presentation %d: %w", i, err)
		}

		presentations = append(presentations, presentation)
	}

	return pd.EvaluatePresentations(presentations, p.options(opts)...)
}

// SelectFrom returns the raw credentials that satisfy pd, limited as pd requests.
func (p *PEX) SelectFrom(pd *presexch.PresentationDefinition, raw []interface{},
	opts ...presexch.Option) *presexch.SelectResults {
	creds, err := credential.WrapAll(raw)
	if err != nil {
		return &presexch.SelectResults{
			AreRequiredCredentialsPresent: presexch.StatusError,
			Errors: []*presexch.HandlerCheckResult{{
				Evaluator: presexch.EvaluatorSelectFrom,
				Status:    presexch.StatusError,
				Message:   err.Error(),
			}},
		}
	}

	return pd.SelectFrom(creds, p.options(opts)...)
}

// PresentationSubmissionFrom evaluates the selected credentials and builds their submission.
func (p *PEX) PresentationSubmissionFrom(pd *presexch.PresentationDefinition, selected []credential.Wrapped,
	opts ...presexch.Option) (*presexch.PresentationSubmission, error) {
	all := p.options(opts)

	outcome, err := pd.EvaluateCredentials(selected, all...)
	if err != nil {
		return nil, err
	}

	return pd.SubmissionFrom(outcome, outcome.Credentials, all...)
}

// Presentation is an unsigned presentation and its submission.
type Presentation struct {
	Presentation interface{}
	Format       credential.Format
	Submission   *presexch.PresentationSubmission
	Location     presexch.SubmissionLocation
	Holder       string
}

// PresentationFrom builds the unsigned presentation of the selected credentials. W3C credentials are put in a
// JSON-LD presentation, with the submission embedded unless an external location is requested. A single SD-JWT is
// presented as is, with an external submission.
func (p *PEX) PresentationFrom(pd *presexch.PresentationDefinition, selected []credential.Wrapped,
	opts ...presexch.Option) (*Presentation, error) {
	all := p.options(opts)
	options := presexch.NewOptions(all...)

	if len(selected) == 0 {
		return nil, fmt.Errorf("%w: no credentials selected", ErrUnsupportedPresentation)
	}

	count, err := presexch.Presentations(selected)
	if err != nil {
		return nil, err
	}

	if count > 1 {
		return nil, fmt.Errorf("%w: selected credentials need %d presentations", ErrUnsupportedPresentation, count)
	}

	result := &Presentation{Location: options.PresentationSubmissionLocation}
	if len(options.HolderDIDs) > 0 {
		result.Holder = options.HolderDIDs[0]
	}

	switch c := selected[0].(type) {
	case *credential.SDJWTCredential:
		result.Location = presexch.LocationExternal
		result.Presentation = c.Original()
		result.Format = c.Format()
	case *credential.MDocCredential:
		return nil, fmt.Errorf("%w: mobile documents are presented by the device", ErrUnsupportedPresentation)
	default:
		if result.Location == presexch.LocationDefault {
			result.Location = presexch.LocationEmbedded
		}

		result.Format, err = presexch.PresentationFormat(c.Format())
		if err != nil {
			return nil, err
		}
	}

	all = append(all, presexch.WithPresentationSubmissionLocation(result.Location))

	result.Submission, err = p.PresentationSubmissionFrom(pd, selected, all...)
	if err != nil {
		return nil, err
	}

	if result.Presentation == nil {
		result.Presentation = jsonLDPresentation(selected, result.Submission, result.Location, result.Holder)
	}

	logger.Debugf("built %s presentation with %d credentials for definition %s",
		result.Format, len(selected), pd.ID)

	return result, nil
}

func jsonLDPresentation(selected []credential.Wrapped, sub *presexch.PresentationSubmission,
	location presexch.SubmissionLocation, holder string) map[string]interface{} {
	contexts := []interface{}{credential.ContextURI}
	types := []interface{}{credential.VPType}

	if location == presexch.LocationEmbedded {
		contexts = append(contexts, presexch.PresentationSubmissionJSONLDContextIRI)
		types = append(types, presexch.PresentationSubmissionJSONLDType)
	}

	vcs := make([]interface{}, len(selected))
	for i, c := range selected {
		vcs[i] = c.Original()
	}

	vp := map[string]interface{}{
		"@context":             contexts,
		"type":                 types,
		"verifiableCredential": vcs,
	}

	if holder != "" {
		vp["holder"] = holder
	}

	if location == presexch.LocationEmbedded {
		vp[credential.SubmissionKey] = sub
	}

	return vp
}

// VerifiablePresentation is a signed presentation and its submission.
type VerifiablePresentation struct {
	VerifiablePresentation interface{}
	Submission             *presexch.PresentationSubmission
	Location               presexch.SubmissionLocation
}

// VerifiablePresentationFrom builds the presentation of the selected credentials and has signer secure it.
func (p *PEX) VerifiablePresentationFrom(ctx context.Context, pd *presexch.PresentationDefinition,
	selected []credential.Wrapped, signer Signer, opts ...presexch.Option) (*VerifiablePresentation, error) {
	presentation, err := p.PresentationFrom(pd, selected, opts...)
	if err != nil {
		return nil, err
	}

	signed, err := signer.SignPresentation(ctx, &SignParams{
		Presentation: presentation.Presentation,
		Format:       presentation.Format,
		Submission:   presentation.Submission,
		Location:     presentation.Location,
		Holder:       presentation.Holder,
	})
	if err != nil {
		return nil, fmt.Errorf("sign presentation: %w", err)
	}

	return &VerifiablePresentation{
		VerifiablePresentation: signed,
		Submission:             presentation.Submission,
		Location:               presentation.Location,
	}, nil
}

// DefinitionVersion returns the version of pd.
func DefinitionVersion(pd *presexch.PresentationDefinition) presexch.Version {
	return pd.Version()
}
