/*
Copyright Gen Digital Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package presexch

import (
	"github.com/piprate/json-gold/ld"

	"github.com/hyperledger/aries-pex-go/credential"
)

// SubmissionLocation tells where a presentation submission travels relative to the presentations it describes.
type SubmissionLocation int

const (
	// LocationDefault picks external for lists of presentations and non W3C presentations, embedded otherwise.
	LocationDefault SubmissionLocation = iota
	// LocationEmbedded puts the submission inside the presentation; paths are relative to that presentation.
	LocationEmbedded
	// LocationExternal sends the submission alongside the presentations; paths start at the presentation root
	// or, for a list of presentations, at the list.
	LocationExternal
)

// Options is a holder of options that can set when evaluating credentials and presentations.
type Options struct {
	HolderDIDs                     []string
	LimitDisclosureSignatureSuites []string
	RestrictToFormats              []credential.Format
	RestrictToDIDMethods           []string
	PresentationSubmission         *PresentationSubmission
	GeneratePresentationSubmission bool
	PresentationSubmissionLocation SubmissionLocation
	DocumentLoader                 ld.DocumentLoader
}

// Option is an option that sets an option for when evaluating.
type Option func(*Options)

// WithHolderDIDs sets the DIDs controlled by the holder, used by is_holder constraints.
func WithHolderDIDs(dids ...string) Option {
	return func(o *Options) {
		o.HolderDIDs = dids
	}
}

// WithLimitDisclosureSignatureSuites sets the proof types that allow deriving a credential with fewer claims.
func WithLimitDisclosureSignatureSuites(suites ...string) Option {
	return func(o *Options) {
		o.LimitDisclosureSignatureSuites = suites
	}
}

// WithRestrictToFormats restricts every input descriptor to the given claim formats.
func WithRestrictToFormats(formats ...credential.Format) Option {
	return func(o *Options) {
		o.RestrictToFormats = formats
	}
}

// WithRestrictToDIDMethods only accepts credentials issued by DIDs of the given methods.
func WithRestrictToDIDMethods(methods ...string) Option {
	return func(o *Options) {
		o.RestrictToDIDMethods = methods
	}
}

// WithPresentationSubmission provides a submission to validate instead of generating one.
func WithPresentationSubmission(submission *PresentationSubmission) Option {
	return func(o *Options) {
		o.PresentationSubmission = submission
	}
}

// WithGeneratePresentationSubmission sets whether a submission is generated when none is provided. Enabled by default.
func WithGeneratePresentationSubmission(generate bool) Option {
	return func(o *Options) {
		o.GeneratePresentationSubmission = generate
	}
}

// WithPresentationSubmissionLocation sets where the submission travels.
func WithPresentationSubmissionLocation(location SubmissionLocation) Option {
	return func(o *Options) {
		o.PresentationSubmissionLocation = location
	}
}

// WithDocumentLoader sets the JSON-LD document loader used to resolve type IRIs of schema URIs.
func WithDocumentLoader(loader ld.DocumentLoader) Option {
	return func(o *Options) {
		o.DocumentLoader = loader
	}
}

// NewOptions applies options over the defaults.
func NewOptions(options ...Option) *Options {
	opts := &Options{GeneratePresentationSubmission: true}

	for i := range options {
		options[i](opts)
	}

	return opts
}

func (o *Options) location(list bool, presentations ...credential.Presentation) SubmissionLocation {
	if o.PresentationSubmissionLocation != LocationDefault {
		return o.PresentationSubmissionLocation
	}

	if list {
		return LocationExternal
	}

	for _, p := range presentations {
		if !credential.IsW3C(p) {
			return LocationExternal
		}
	}

	return LocationEmbedded
}
