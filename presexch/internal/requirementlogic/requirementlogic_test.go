/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package requirementlogic

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorst(t *testing.T) {
	require.Equal(t, StatusInfo, Worst())
	require.Equal(t, StatusInfo, Worst(StatusInfo, StatusInfo))
	require.Equal(t, StatusWarn, Worst(StatusInfo, StatusWarn, StatusInfo))
	require.Equal(t, StatusError, Worst(StatusWarn, StatusError, StatusInfo))
	require.Equal(t, StatusError, Worst(StatusError, StatusWarn))
}

func TestCountStatus(t *testing.T) {
	tests := []struct {
		name                   string
		count, min, max, found int
		hasWarning             bool
		expected               Status
	}{
		{name: "no bounds", found: 0, expected: StatusInfo},
		{name: "no bounds with warning", found: 3, hasWarning: true, expected: StatusWarn},
		{name: "count exact", count: 2, found: 2, expected: StatusInfo},
		{name: "count short", count: 2, found: 1, expected: StatusError},
		{name: "count over", count: 2, found: 3, expected: StatusWarn},
		{name: "count over with warning", count: 2, found: 3, hasWarning: true, expected: StatusWarn},
		{name: "count short with warning", count: 2, found: 1, hasWarning: true, expected: StatusError},
		{name: "min reached", min: 2, found: 2, expected: StatusInfo},
		{name: "min exceeded", min: 2, found: 5, expected: StatusInfo},
		{name: "min short", min: 2, found: 1, expected: StatusError},
		{name: "max reached", max: 2, found: 2, expected: StatusInfo},
		{name: "max exceeded", max: 1, found: 2, expected: StatusWarn},
		{name: "max with nothing found", max: 1, found: 0, expected: StatusInfo},
		{name: "min and max within", min: 1, max: 3, found: 2, expected: StatusInfo},
		{name: "min and max short", min: 2, max: 3, found: 1, expected: StatusError},
		{name: "min and max over", min: 1, max: 2, found: 3, expected: StatusWarn},
		{name: "error beats warning", count: 3, max: 1, found: 2, expected: StatusError},
	}

	for _, tc := range tests {
		tt := tc
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, CountStatus(tt.count, tt.min, tt.max, tt.found, tt.hasWarning))
		})
	}
}

func TestTally(t *testing.T) {
	count, warn := Tally(nil)
	require.Zero(t, count)
	require.False(t, warn)

	count, warn = Tally([]Status{StatusInfo, StatusError, StatusInfo})
	require.Equal(t, 2, count)
	require.False(t, warn)

	count, warn = Tally([]Status{StatusWarn, StatusError, StatusInfo})
	require.Equal(t, 2, count)
	require.True(t, warn)
}

func TestRequirementLogic_Status(t *testing.T) {
	pick := &RequirementLogic{Min: 2}

	require.Equal(t, StatusInfo, pick.Status([]Status{StatusInfo, StatusInfo, StatusError}))
	require.Equal(t, StatusWarn, pick.Status([]Status{StatusInfo, StatusWarn}))
	require.Equal(t, StatusError, pick.Status([]Status{StatusInfo, StatusError}))

	all := &RequirementLogic{Count: 2}

	require.Equal(t, StatusInfo, all.Status([]Status{StatusInfo, StatusInfo}))
	require.Equal(t, StatusError, all.Status([]Status{StatusInfo, StatusError}))
}

func TestRequirementLogic_IsSatisfiedBy(t *testing.T) {
	t.Run("flat", func(t *testing.T) {
		logic := &RequirementLogic{InputDescriptorIDs: []string{"a", "b", "c"}, Min: 2}

		require.True(t, logic.IsSatisfiedBy(InitFromSlice([]string{"a", "c"})))
		require.True(t, logic.IsSatisfiedBy(InitFromSlice([]string{"a", "b", "c", "x"})))
		require.False(t, logic.IsSatisfiedBy(InitFromSlice([]string{"a", "x", "y"})))
	})

	t.Run("max exceeded", func(t *testing.T) {
		logic := &RequirementLogic{InputDescriptorIDs: []string{"a", "b"}, Max: 1}

		require.True(t, logic.IsSatisfiedBy(InitFromSlice([]string{"b"})))
		require.False(t, logic.IsSatisfiedBy(InitFromSlice([]string{"a", "b"})))
	})

	t.Run("nested", func(t *testing.T) {
		logic := &RequirementLogic{
			Count: 2,
			Nested: []*RequirementLogic{
				{InputDescriptorIDs: []string{"a", "b"}, Count: 2},
				{InputDescriptorIDs: []string{"c", "d"}, Count: 1},
			},
		}

		require.True(t, logic.IsSatisfiedBy(InitFromSlice([]string{"a", "b", "d"})))
		require.False(t, logic.IsSatisfiedBy(InitFromSlice([]string{"a", "d"})))
		require.False(t, logic.IsSatisfiedBy(InitFromSlice([]string{"a", "b", "c", "d"})))
	})
}

func TestStringSet(t *testing.T) {
	s := InitFromSlice([]string{"x", "y", "x"})

	require.Equal(t, 2, s.Len())
	require.True(t, s.Has("x"))
	require.False(t, s.Has("z"))

	s.Add("z")
	require.True(t, s.Has("z"))

	merged := MergeAll(s, InitFromSlice([]string{"w"}), StringSet{})
	require.Equal(t, InitFromSlice([]string{"w", "x", "y", "z"}), merged)
	require.Empty(t, MergeAll())
}
