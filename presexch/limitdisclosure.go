/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presexch

import (
	"fmt"

	"github.com/hyperledger/aries-pex-go/credential"
	"github.com/hyperledger/aries-pex-go/internal/jsonpath"
)

const credentialSubjectKey = "credentialSubject"

type limitDisclosureEvaluation struct{}

func (h *limitDisclosureEvaluation) name() string { return EvaluatorLimitDisclosure }

func (h *limitDisclosureEvaluation) handle(r *run) error {
	marked := r.outcome.Eligible()
	eligible := map[int][]int{}

	for d := range r.pd.InputDescriptors {
		for _, c := range marked[d] {
			eligible[c] = append(eligible[c], d)
		}
	}

	for c := range r.outcome.Credentials {
		descs := eligible[c]
		if !r.limitsDisclosure(descs) {
			continue
		}

		if err := h.limit(r, c, descs); err != nil {
			return err
		}
	}

	return nil
}

func (r *run) limitsDisclosure(descs []int) bool {
	for _, d := range descs {
		if limitDisclosure(r.pd.InputDescriptors[d]) != nil {
			return true
		}
	}

	return false
}

func limitDisclosure(desc *InputDescriptor) *Preference {
	if desc.Constraints == nil {
		return nil
	}

	return desc.Constraints.LimitDisclosure
}

func (h *limitDisclosureEvaluation) limit(r *run, c int, descs []int) error {
	cred := r.outcome.Credentials[c]

	if !cred.SupportsRedaction(r.opts.LimitDisclosureSignatureSuites) {
		for _, d := range descs {
			if p := limitDisclosure(r.pd.InputDescriptors[d]); p != nil && *p == Required {
				r.outcome.add(h.name(), d, c, StatusError,
					"Limit disclosure not supported for credential format "+string(cred.Format()), nil)
			}
		}

		return nil
	}

	var selected []jsonpath.Node

	for _, d := range descs {
		desc := r.pd.InputDescriptors[d]
		if desc.Constraints == nil {
			continue
		}

		for i, field := range desc.Constraints.Fields {
			node, found := firstNode(field, cred.Credential())
			if found {
				selected = append(selected, node)

				continue
			}

			if !field.Optional {
				r.outcome.add(h.name(), d, c, StatusError, "mandatory field missing", &FieldPayload{Field: i})

				return nil
			}
		}
	}

	redacted, err := redact(cred, selected)
	if err != nil {
		return fmt.Errorf("credential %d: %w", c, err)
	}

	r.outcome.Credentials[c] = redacted

	for _, d := range descs {
		status := StatusInfo
		if limitDisclosure(r.pd.InputDescriptors[d]) == nil {
			status = StatusWarn
		}

		r.outcome.add(h.name(), d, c, status, "added limit disclosure for credential", nil)
	}

	return nil
}

func redact(cred credential.Wrapped, selected []jsonpath.Node) (credential.Wrapped, error) {
	switch c := cred.(type) {
	case *credential.SDJWTCredential:
		var leaves [][]interface{}

		for _, node := range selected {
			for _, leaf := range jsonpath.Leaves(node.Path, node.Value) {
				leaves = append(leaves, leaf)
			}
		}

		return c.Present(leaves)
	case *credential.JSONLDCredential:
		paths := make([]jsonpath.Path, len(selected))
		for i := range selected {
			paths[i] = selected[i].Path
		}

		return c.WithDocument(selectSubject(c.Decoded(), paths)), nil
	case *credential.MDocCredential:
		return c, nil
	}

	return nil, fmt.Errorf("limit disclosure of %s is not supported", cred.Format())
}

// selectSubject copies doc replacing its subject claims with the first level properties named by paths.
func selectSubject(doc map[string]interface{}, paths []jsonpath.Path) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))

	for k, v := range doc {
		out[k] = v
	}

	switch subject := doc[credentialSubjectKey].(type) {
	case map[string]interface{}:
		out[credentialSubjectKey] = selectProperties(subject, paths, func(p jsonpath.Path) (string, bool) {
			return propertyAt(p, 1)
		})
	case []interface{}:
		subjects := make([]interface{}, len(subject))

		for i, s := range subject {
			m, ok := s.(map[string]interface{})
			if !ok {
				subjects[i] = s

				continue
			}

			idx := i

			subjects[i] = selectProperties(m, paths, func(p jsonpath.Path) (string, bool) {
				if len(p) < 2 || p[1] != idx {
					return "", false
				}

				return propertyAt(p, 2)
			})
		}

		out[credentialSubjectKey] = subjects
	}

	return out
}

func selectProperties(subject map[string]interface{}, paths []jsonpath.Path,
	property func(jsonpath.Path) (string, bool)) map[string]interface{} {
	out := map[string]interface{}{}

	if id, ok := subject["id"]; ok {
		out["id"] = id
	}

	for _, p := range paths {
		if len(p) == 0 || p[0] != credentialSubjectKey {
			continue
		}

		name, ok := property(p)
		if !ok {
			continue
		}

		if v, exists := subject[name]; exists {
			out[name] = v
		}
	}

	return out
}

func propertyAt(p jsonpath.Path, i int) (string, bool) {
	if len(p) <= i {
		return "", false
	}

	name, ok := p[i].(string)

	return name, ok
}
