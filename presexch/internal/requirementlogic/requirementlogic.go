/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package requirementlogic

// Status is the outcome severity of a check or a match.
type Status string

const (
	// StatusInfo means satisfied.
	StatusInfo Status = "info"
	// StatusWarn means satisfiable but ambiguous or over-satisfied.
	StatusWarn Status = "warn"
	// StatusError means not satisfiable.
	StatusError Status = "error"
)

func (s Status) severity() int {
	switch s {
	case StatusError:
		return 2
	case StatusWarn:
		return 1
	default:
		return 0
	}
}

// Worst folds statuses with precedence error > warn > info. No statuses fold to info.
func Worst(statuses ...Status) Status {
	worst := StatusInfo

	for _, s := range statuses {
		if s.severity() > worst.severity() {
			worst = s
		}
	}

	return worst
}

// CountStatus is the status of a requirement that got successCount satisfied members, given its
// bounds. A zero bound is absent. Exceeding max warns, falling short of min errors, and missing
// count errors when short and warns when over. An otherwise satisfied requirement warns when
// hasWarning is set.
func CountStatus(count, min, max, successCount int, hasWarning bool) Status {
	maxStatus := StatusInfo
	if max > 0 && successCount > max {
		maxStatus = StatusWarn
	}

	minStatus := StatusInfo
	if min > 0 && successCount < min {
		minStatus = StatusError
	}

	countStatus := StatusInfo

	switch {
	case count == 0 || successCount == count:
	case successCount < count:
		countStatus = StatusError
	default:
		countStatus = StatusWarn
	}

	status := Worst(maxStatus, minStatus, countStatus)
	if status == StatusInfo && hasWarning {
		return StatusWarn
	}

	return status
}

// Tally counts the members that succeeded (info or warn) and whether any of them warned.
func Tally(statuses []Status) (successCount int, hasWarning bool) {
	for _, s := range statuses {
		switch s {
		case StatusInfo:
			successCount++
		case StatusWarn:
			successCount++
			hasWarning = true
		case StatusError:
		}
	}

	return successCount, hasWarning
}

// RequirementLogic is a datatype for processing nested submission requirement logic.
type RequirementLogic struct {
	InputDescriptorIDs []string
	Nested             []*RequirementLogic
	Count              int
	Min                int
	Max                int
}

// Status folds the statuses of the members of r.
func (r *RequirementLogic) Status(members []Status) Status {
	successCount, hasWarning := Tally(members)

	return CountStatus(r.Count, r.Min, r.Max, successCount, hasWarning)
}

// IsSatisfiedBy returns whether the given requirement logic is satisfied by the given set of descriptors.
func (r *RequirementLogic) IsSatisfiedBy(descs DescriptorIDSet) bool {
	if len(r.Nested) == 0 {
		satisfiedDescriptors := DescriptorIDSet{}

		for _, id := range r.InputDescriptorIDs {
			if descs.Has(id) {
				satisfiedDescriptors.Add(id)
			}
		}

		return r.isLenApplicable(satisfiedDescriptors.Len())
	}

	numChildrenSatisfied := 0

	for _, logic := range r.Nested {
		if logic.IsSatisfiedBy(descs) {
			numChildrenSatisfied++
		}
	}

	return r.isLenApplicable(numChildrenSatisfied)
}

func (r *RequirementLogic) isLenApplicable(val int) bool {
	return CountStatus(r.Count, r.Min, r.Max, val, false) == StatusInfo
}

// DescriptorIDSet is a set of InputDescriptor IDs.
type DescriptorIDSet = StringSet
