/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package testdata

import _ "embed" // required for tests only

// Sample testdata files to be used for tests only.
// nolint:gochecknoglobals
var (
	//go:embed samples/presexch/degree_definition.json
	DegreeDefinition []byte
	//go:embed samples/presexch/udc_vc.json
	SampleUDCVC []byte
	//go:embed samples/presexch/udc_vp.json
	SampleUDCPresentation []byte
)
