package compliance

// Standard selects the regulatory profile an engine instance is operating
// under. The profile is recorded for reporting; all profiles currently share
// one rule table.
type Standard string

const (
	StandardGDPR     Standard = "GDPR"
	StandardCCPA     Standard = "CCPA"
	StandardHIPAA    Standard = "HIPAA"
	StandardPIPL     Standard = "PIPL"
	StandardInternal Standard = "INTERNAL"
)

var standardDescriptions = map[Standard]string{
	StandardGDPR:     "General Data Protection Regulation",
	StandardCCPA:     "California Consumer Privacy Act",
	StandardHIPAA:    "Health Insurance Portability and Accountability Act",
	StandardPIPL:     "Personal Information Protection Law",
	StandardInternal: "Internal Security Policy v4.2",
}

func (s Standard) Description() string {
	if desc, ok := standardDescriptions[s]; ok {
		return desc
	}
	return string(s)
}

// ParseStandard maps a config value to a Standard, defaulting to GDPR for
// anything unrecognized.
func ParseStandard(value string) Standard {
	switch Standard(value) {
	case StandardGDPR, StandardCCPA, StandardHIPAA, StandardPIPL, StandardInternal:
		return Standard(value)
	default:
		return StandardGDPR
	}
}

// SensitivityLevel is an ordinal classification of disclosure impact. It is
// carried on rules for reporting only; it does not gate masking.
type SensitivityLevel int

const (
	SensitivityPublic SensitivityLevel = iota
	SensitivityInternal
	SensitivityConfidential
	SensitivityRestricted
	SensitivityCritical
)

func (l SensitivityLevel) String() string {
	switch l {
	case SensitivityPublic:
		return "PUBLIC"
	case SensitivityInternal:
		return "INTERNAL"
	case SensitivityConfidential:
		return "CONFIDENTIAL"
	case SensitivityRestricted:
		return "RESTRICTED"
	case SensitivityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}
