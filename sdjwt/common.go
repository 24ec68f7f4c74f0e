/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package sdjwt handles the SD-JWT combined format: splitting and serializing it, decoding
// disclosures, locating every disclosure inside the claim tree and re-selecting the disclosures
// a holder releases.
package sdjwt

import (
	"crypto"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	// registers sha-256/384/512 for crypto.Hash.
	_ "crypto/sha256"
	_ "crypto/sha512"
)

const (
	// CombinedFormatSeparator is disclosure separator.
	CombinedFormatSeparator = "~"

	SDAlgorithmKey        = "_sd_alg"
	SDKey                 = "_sd"
	ArrayElementDigestKey = "..."
)

// ErrMalformedDisclosure is returned when a disclosure cannot be decoded.
var ErrMalformedDisclosure = errors.New("malformed disclosure")

// CombinedFormatForPresentation holds SD-JWT, disclosures and optional holder binding info.
type CombinedFormatForPresentation struct {
	SDJWT       string
	Disclosures []string

	// HolderVerification contains Key Binding JWT data.
	HolderVerification string
}

// Serialize will assemble combined format for presentation.
func (cf *CombinedFormatForPresentation) Serialize() string {
	presentation := cf.SDJWT
	for _, disclosure := range cf.Disclosures {
		presentation += CombinedFormatSeparator + disclosure
	}

	presentation += CombinedFormatSeparator + cf.HolderVerification

	return presentation
}

// ParseCombinedFormatForPresentation parses combined format for presentation into CombinedFormatForPresentation parts.
func ParseCombinedFormatForPresentation(combinedFormatForPresentation string) *CombinedFormatForPresentation {
	parts := strings.Split(combinedFormatForPresentation, CombinedFormatSeparator)

	cf := &CombinedFormatForPresentation{SDJWT: parts[0]}

	if len(parts) == 1 {
		return cf
	}

	rest := parts[1:]

	// the trailing part is either empty, a key binding JWT or, in issuance form, the last disclosure.
	last := rest[len(rest)-1]
	if last == "" || strings.Count(last, ".") == 2 {
		cf.HolderVerification = last
		rest = rest[:len(rest)-1]
	}

	for _, d := range rest {
		if d != "" {
			cf.Disclosures = append(cf.Disclosures, d)
		}
	}

	return cf
}

// DisclosureClaimType distinguishes object member disclosures from array element disclosures.
type DisclosureClaimType int

const (
	// DisclosureClaimTypeObjectMember is a [salt, name, value] disclosure.
	DisclosureClaimTypeObjectMember = DisclosureClaimType(0)
	// DisclosureClaimTypeArrayElement is a [salt, value] disclosure.
	DisclosureClaimTypeArrayElement = DisclosureClaimType(1)
)

// DisclosureClaim defines claim.
type DisclosureClaim struct {
	Disclosure string
	Digest     string
	Salt       string
	Name       string
	Value      interface{}
	Type       DisclosureClaimType
}

// GetHash calculates hash of data using hash function identified by hash.
func GetHash(hash crypto.Hash, value string) (string, error) {
	if !hash.Available() {
		return "", fmt.Errorf("hash function not available for: %d", hash)
	}

	h := hash.New()

	if _, hashErr := h.Write([]byte(value)); hashErr != nil {
		return "", hashErr
	}

	return base64.RawURLEncoding.EncodeToString(h.Sum(nil)), nil
}

// GetCryptoHash returns crypto hash for the _sd_alg value.
func GetCryptoHash(sdAlg string) (crypto.Hash, error) {
	switch strings.ToLower(sdAlg) {
	case "sha-256", "":
		return crypto.SHA256, nil
	case "sha-384":
		return crypto.SHA384, nil
	case "sha-512":
		return crypto.SHA512, nil
	}

	return 0, fmt.Errorf("%s '%s' not supported", SDAlgorithmKey, sdAlg)
}

// GetCryptoHashFromClaims returns crypto hash from claims, sha-256 when _sd_alg is absent.
func GetCryptoHashFromClaims(claims map[string]interface{}) (crypto.Hash, error) {
	alg, err := GetSDAlg(claims)
	if err != nil {
		return 0, err
	}

	return GetCryptoHash(alg)
}

// GetSDAlg returns SD algorithm from claims.
func GetSDAlg(claims map[string]interface{}) (string, error) {
	obj, ok := claims[SDAlgorithmKey]
	if !ok {
		return "", nil
	}

	alg, ok := obj.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", SDAlgorithmKey)
	}

	return alg, nil
}

// GetDisclosureClaims decodes disclosures and computes their digests.
func GetDisclosureClaims(disclosures []string, hash crypto.Hash) ([]*DisclosureClaim, error) {
	claims := make([]*DisclosureClaim, 0, len(disclosures))

	for _, disclosure := range disclosures {
		claim, err := getDisclosureClaim(disclosure, hash)
		if err != nil {
			return nil, err
		}

		claims = append(claims, claim)
	}

	return claims, nil
}

func getDisclosureClaim(disclosure string, hash crypto.Hash) (*DisclosureClaim, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(disclosure)
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %s", ErrMalformedDisclosure, err.Error())
	}

	var disclosureArr []interface{}

	err = json.Unmarshal(decoded, &disclosureArr)
	if err != nil {
		return nil, fmt.Errorf("%w: unmarshal disclosure array: %s", ErrMalformedDisclosure, err.Error())
	}

	if len(disclosureArr) != 2 && len(disclosureArr) != 3 {
		return nil, fmt.Errorf("%w: disclosure array size[%d] must be 2 or 3",
			ErrMalformedDisclosure, len(disclosureArr))
	}

	salt, ok := disclosureArr[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: disclosure salt type[%T] must be string", ErrMalformedDisclosure, disclosureArr[0])
	}

	claim := &DisclosureClaim{Disclosure: disclosure, Salt: salt}

	if len(disclosureArr) == 2 {
		claim.Value = disclosureArr[1]
		claim.Type = DisclosureClaimTypeArrayElement
	} else {
		name, ok := disclosureArr[1].(string)
		if !ok {
			return nil, fmt.Errorf("%w: disclosure name type[%T] must be string",
				ErrMalformedDisclosure, disclosureArr[1])
		}

		claim.Name = name
		claim.Value = disclosureArr[2]
		claim.Type = DisclosureClaimTypeObjectMember
	}

	claim.Digest, err = GetHash(hash, disclosure)
	if err != nil {
		return nil, fmt.Errorf("get disclosure hash: %w", err)
	}

	return claim, nil
}

func stringArray(entry interface{}) ([]string, error) {
	if entry == nil {
		return nil, nil
	}

	arr, ok := entry.([]interface{})
	if !ok {
		if strs, isStrs := entry.([]string); isStrs {
			return strs, nil
		}

		return nil, fmt.Errorf("entry type[%T] is not an array", entry)
	}

	out := make([]string, len(arr))

	for i, v := range arr {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("entry item type[%T] is not a string", v)
		}

		out[i] = s
	}

	return out, nil
}
