/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presexch

import (
	"errors"
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/log"
	"golang.org/x/exp/slices"

	"github.com/hyperledger/aries-pex-go/credential"
	"github.com/hyperledger/aries-pex-go/internal/jsonpath"
)

var logger = log.New("aries-framework/presexch")

// handler inspects every (input descriptor, credential) pair of a run and appends its check results.
type handler interface {
	name() string
	handle(r *run) error
}

// run is the state of one pipeline execution.
type run struct {
	pd       *PresentationDefinition
	opts     *Options
	outcome  *Outcome
	resolver *contextResolver
}

func handlers() []handler {
	return []handler{
		&uriEvaluation{},
		&didRestrictionEvaluation{},
		&filterEvaluation{},
		&predicateRelatedFieldEvaluation{},
		&formatRestrictionEvaluation{},
		&subjectIsIssuerEvaluation{},
		&isHolderEvaluation{},
		&markForSubmissionEvaluation{},
		&limitDisclosureEvaluation{},
	}
}

// EvaluateCredentials runs every handler once over copies of creds and returns the resulting log. Errors
// returned by handlers do not stop the chain; they are joined and returned with the outcome.
func (pd *PresentationDefinition) EvaluateCredentials(creds []credential.Wrapped,
	options ...Option) (*Outcome, error) {
	return pd.evaluateCredentials(creds, NewOptions(options...))
}

func (pd *PresentationDefinition) evaluateCredentials(creds []credential.Wrapped, opts *Options) (*Outcome, error) {
	if i := slices.Index(pd.InputDescriptors, (*InputDescriptor)(nil)); i >= 0 {
		return nil, structuralErrorf("input descriptor %d is null", i)
	}

	outcome := &Outcome{
		Credentials: make([]credential.Wrapped, len(creds)),
		inputs:      creds,
	}

	for i, c := range creds {
		outcome.Credentials[i] = c.Copy()
	}

	r := &run{
		pd:       pd,
		opts:     opts,
		outcome:  outcome,
		resolver: newContextResolver(opts.DocumentLoader),
	}

	logger.Debugf("evaluating %d credentials against definition %s", len(creds), pd.ID)

	var errs []error

	for _, h := range handlers() {
		if err := h.handle(r); err != nil {
			logger.Warnf("%s: %s", h.name(), err)

			errs = append(errs, fmt.Errorf("%s: %w", h.name(), err))
		}
	}

	return outcome, errors.Join(errs...)
}

// pairs calls fn for every (input descriptor, credential) pair.
func (r *run) pairs(fn func(d int, desc *InputDescriptor, c int, cred credential.Wrapped) error) error {
	var errs []error

	for d, desc := range r.pd.InputDescriptors {
		for c, cred := range r.outcome.Credentials {
			if err := fn(d, desc, c, cred); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

type uriEvaluation struct{}

func (h *uriEvaluation) name() string { return EvaluatorURI }

func (h *uriEvaluation) handle(r *run) error {
	return r.pairs(func(d int, desc *InputDescriptor, c int, cred credential.Wrapped) error {
		if len(desc.Schema) == 0 {
			return nil
		}

		uris := credential.URIs(cred)
		uris = append(uris, r.resolver.typeIRIs(credential.Contexts(cred), credential.Types(cred))...)

		for _, s := range desc.Schema {
			if slices.Contains(uris, s.URI) {
				r.outcome.add(h.name(), d, c, StatusInfo, "input descriptor schema uri is matched", s.URI)

				return nil
			}
		}

		r.outcome.add(h.name(), d, c, StatusError,
			"@context, $schema or type of input candidate do not match the input descriptor schema uri", uris)

		return nil
	})
}

type didRestrictionEvaluation struct{}

func (h *didRestrictionEvaluation) name() string { return EvaluatorDIDRestriction }

func (h *didRestrictionEvaluation) handle(r *run) error {
	if len(r.opts.RestrictToDIDMethods) == 0 {
		return nil
	}

	return r.pairs(func(d int, _ *InputDescriptor, c int, cred credential.Wrapped) error {
		issuer := credential.IssuerID(cred)
		if issuer == "" {
			return nil
		}

		method := credential.DIDMethod(issuer)
		if slices.Contains(r.opts.RestrictToDIDMethods, method) {
			r.outcome.add(h.name(), d, c, StatusInfo, "issuer DID method is allowed", method)

			return nil
		}

		r.outcome.add(h.name(), d, c, StatusError,
			fmt.Sprintf("issuer %s does not use an allowed DID method", issuer), r.opts.RestrictToDIDMethods)

		return nil
	})
}

type filterEvaluation struct{}

func (h *filterEvaluation) name() string { return EvaluatorFilter }

func (h *filterEvaluation) handle(r *run) error {
	return r.pairs(func(d int, desc *InputDescriptor, c int, cred credential.Wrapped) error {
		if desc.Constraints == nil || len(desc.Constraints.Fields) == 0 {
			r.outcome.add(h.name(), d, c, StatusInfo, "input descriptor has no field constraints", nil)

			return nil
		}

		var errs []error

		for i, field := range desc.Constraints.Fields {
			node, found := firstNode(field, cred.Credential())

			switch {
			case !found && field.Optional:
				r.outcome.add(h.name(), d, c, StatusInfo, "optional field is absent", &FieldPayload{Field: i})
			case !found:
				r.outcome.add(h.name(), d, c, StatusError, "Input candidate does not contain property",
					&FieldPayload{Field: i})
			case field.Filter == nil:
				r.outcome.add(h.name(), d, c, StatusInfo, "Input candidate valid for presentation submission",
					&FieldPayload{Field: i, Path: node.Path, Value: node.Value})
			default:
				passed, err := field.Filter.Accepts(node.Value)
				if err != nil {
					errs = append(errs, fmt.Errorf("field %d of %s: %w", i, desc.ID, err))
				}

				if !passed {
					r.outcome.add(h.name(), d, c, StatusError, "Input candidate failed filter evaluation",
						&FieldPayload{Field: i, Path: node.Path, Value: node.Value})

					continue
				}

				r.outcome.add(h.name(), d, c, StatusInfo, "Input candidate valid for presentation submission",
					&FieldPayload{Field: i, Path: node.Path, Value: node.Value})
			}
		}

		return errors.Join(errs...)
	})
}

// firstNode resolves the first path of field that selects anything in doc.
func firstNode(field *Field, doc map[string]interface{}) (jsonpath.Node, bool) {
	for _, p := range field.Path {
		if node, ok := jsonpath.First(p, doc); ok {
			return node, true
		}
	}

	return jsonpath.Node{}, false
}

type predicateRelatedFieldEvaluation struct{}

func (h *predicateRelatedFieldEvaluation) name() string { return EvaluatorPredicateRelatedField }

func (h *predicateRelatedFieldEvaluation) handle(r *run) error {
	return r.pairs(func(d int, desc *InputDescriptor, c int, cred credential.Wrapped) error {
		if desc.Constraints == nil || r.outcome.hasError(d, c) {
			return nil
		}

		for i, field := range desc.Constraints.Fields {
			if field.Predicate == nil {
				continue
			}

			if field.Filter == nil {
				r.outcome.add(h.name(), d, c, StatusError, "predicate requires a filter", &FieldPayload{Field: i})

				continue
			}

			node, found := firstNode(field, cred.Credential())
			if !found {
				continue
			}

			r.outcome.add(h.name(), d, c, StatusInfo, "Input candidate valid for presentation submission",
				&FieldPayload{Field: i, Path: node.Path, Value: true})
		}

		return nil
	})
}

type formatRestrictionEvaluation struct{}

func (h *formatRestrictionEvaluation) name() string { return EvaluatorFormatRestriction }

func (h *formatRestrictionEvaluation) handle(r *run) error {
	return r.pairs(func(d int, desc *InputDescriptor, c int, cred credential.Wrapped) error {
		declared := desc.Format.Designations()
		if len(declared) == 0 {
			declared = r.pd.Format.Designations()
		}

		allowed := allowedFormats(declared, r.opts.RestrictToFormats, cred.Format())

		if !acceptsFormat(allowed, cred.Format()) {
			r.outcome.add(h.name(), d, c, StatusError,
				fmt.Sprintf("credential format %s is not one of %v", cred.Format(), allowed), cred.Format())

			return nil
		}

		if mdoc, ok := cred.(*credential.MDocCredential); ok && mdoc.DocType() != desc.ID {
			r.outcome.add(h.name(), d, c, StatusError,
				fmt.Sprintf("document type %s does not match input descriptor id %s", mdoc.DocType(), desc.ID),
				mdoc.DocType())

			return nil
		}

		r.outcome.add(h.name(), d, c, StatusInfo, "credential format is allowed", cred.Format())

		return nil
	})
}

// allowedFormats intersects the declared formats, defaulting to own, with the restriction, if any.
func allowedFormats(declared, restrict []credential.Format, own credential.Format) []credential.Format {
	if len(declared) == 0 {
		declared = []credential.Format{own}
	}

	if len(restrict) == 0 {
		return declared
	}

	var out []credential.Format

	for _, f := range declared {
		if slices.Contains(restrict, f) {
			out = append(out, f)
		}
	}

	return out
}

// designations a credential or presentation of the given format satisfies.
//
//nolint:gochecknoglobals
var formatFamilies = map[credential.Format][]credential.Format{
	credential.FormatLDPVC:   {credential.FormatLDPVC, credential.FormatLDP},
	credential.FormatJWTVC:   {credential.FormatJWTVC, credential.FormatJWTVCJSON, credential.FormatJWT},
	credential.FormatSDJWT:   {credential.FormatSDJWT},
	credential.FormatDCSDJWT: {credential.FormatDCSDJWT, credential.FormatSDJWT},
	credential.FormatMSOMDoc: {credential.FormatMSOMDoc},
	credential.FormatLDPVP:   {credential.FormatLDPVP, credential.FormatLDP},
	credential.FormatJWTVP:   {credential.FormatJWTVP, credential.FormatJWTVPJSON, credential.FormatJWT},
	credential.FormatDIVC: {
		credential.FormatDIVC, credential.FormatDI, credential.FormatLDPVC, credential.FormatLDP,
	},
	credential.FormatDIVP: {
		credential.FormatDIVP, credential.FormatDI, credential.FormatLDPVP, credential.FormatLDP,
	},
}

func acceptsFormat(allowed []credential.Format, f credential.Format) bool {
	family, ok := formatFamilies[f]
	if !ok {
		family = []credential.Format{f}
	}

	for _, a := range allowed {
		if slices.Contains(family, a) {
			return true
		}
	}

	return false
}

type subjectIsIssuerEvaluation struct{}

func (h *subjectIsIssuerEvaluation) name() string { return EvaluatorSubjectIsIssuer }

func (h *subjectIsIssuerEvaluation) handle(r *run) error {
	return r.pairs(func(d int, desc *InputDescriptor, c int, cred credential.Wrapped) error {
		if desc.Constraints == nil || desc.Constraints.SubjectIsIssuer == nil {
			return nil
		}

		issuer := credential.IssuerID(cred)
		subjects := credential.SubjectIDs(cred)

		if issuer != "" && len(subjects) > 0 && allEqual(subjects, issuer) {
			r.outcome.add(h.name(), d, c, StatusInfo, "subject is the issuer", issuer)

			return nil
		}

		r.outcome.add(h.name(), d, c, preferenceStatus(*desc.Constraints.SubjectIsIssuer),
			"subject is not the issuer", subjects)

		return nil
	})
}

type isHolderEvaluation struct{}

func (h *isHolderEvaluation) name() string { return EvaluatorIsHolder }

func (h *isHolderEvaluation) handle(r *run) error {
	return r.pairs(func(d int, desc *InputDescriptor, c int, cred credential.Wrapped) error {
		if desc.Constraints == nil {
			return nil
		}

		subjects := credential.SubjectIDs(cred)

		for _, holder := range desc.Constraints.IsHolder {
			if holder.Directive == nil {
				continue
			}

			if containsAny(r.opts.HolderDIDs, subjects) {
				r.outcome.add(h.name(), d, c, StatusInfo, "holder is the subject", holder.FieldID)

				continue
			}

			r.outcome.add(h.name(), d, c, preferenceStatus(*holder.Directive), "holder is not the subject",
				holder.FieldID)
		}

		return nil
	})
}

type markForSubmissionEvaluation struct{}

func (h *markForSubmissionEvaluation) name() string { return EvaluatorMarkForSubmission }

func (h *markForSubmissionEvaluation) handle(r *run) error {
	return r.pairs(func(d int, desc *InputDescriptor, c int, _ credential.Wrapped) error {
		if r.outcome.hasError(d, c) {
			return nil
		}

		r.outcome.add(h.name(), d, c, StatusInfo, "The input candidate is eligible for submission",
			&MarkPayload{Group: desc.Group})

		return nil
	})
}

func preferenceStatus(p Preference) Status {
	if p == Required {
		return StatusError
	}

	return StatusWarn
}

func allEqual(values []string, v string) bool {
	for _, val := range values {
		if val != v {
			return false
		}
	}

	return true
}

func containsAny(set, values []string) bool {
	for _, v := range values {
		if slices.Contains(set, v) {
			return true
		}
	}

	return false
}
