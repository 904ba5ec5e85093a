package reconcile

import (
	"fmt"
	"strings"
)

const (
	// DefaultComprehensionMarker marks comprehension-test content, which always passes.
	DefaultComprehensionMarker = "理解度テスト"
	// DefaultCertificateMarker marks completion-certificate entries, left off certificates.
	DefaultCertificateMarker = "修了証"
)

// MissingStandardPolicy decides what happens when a content has no standard time.
type MissingStandardPolicy int

const (
	// MissingAbort fails derivation with MissingStandardTimeError.
	MissingAbort MissingStandardPolicy = iota
	// MissingAsZero treats the standard time as 00:00:00.
	MissingAsZero
)

// ParseMissingStandardPolicy accepts "abort" or "zero".
func ParseMissingStandardPolicy(s string) (MissingStandardPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "abort":
		return MissingAbort, nil
	case "zero":
		return MissingAsZero, nil
	}
	return MissingAbort, fmt.Errorf("unknown missing standard policy %q", s)
}

// Rules are the content classification knobs the engine applies.
type Rules struct {
	ComprehensionMarker string
	CertificateMarker   string
	MissingStandard     MissingStandardPolicy
}

// DefaultRules returns the markers used by the LMS exports this tool was built for.
func DefaultRules() Rules {
	return Rules{
		ComprehensionMarker: DefaultComprehensionMarker,
		CertificateMarker:   DefaultCertificateMarker,
		MissingStandard:     MissingAbort,
	}
}

// IsComprehensionTest reports whether content is exempt from the duration check.
func (r Rules) IsComprehensionTest(content string) bool {
	return r.ComprehensionMarker != "" && strings.Contains(content, r.ComprehensionMarker)
}

// IsCompletionCertificate reports whether content is a completion-certificate entry.
func (r Rules) IsCompletionCertificate(content string) bool {
	return r.CertificateMarker != "" && strings.Contains(content, r.CertificateMarker)
}
