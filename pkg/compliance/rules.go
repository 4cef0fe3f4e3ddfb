package compliance

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Masking strategy identifiers. Rules reference these by name; anything
// unrecognized falls back to a fixed asterisk mask at apply time.
const (
	StrategyHash        = "hash"
	StrategyPartialMask = "partial_mask"
	StrategyLast4Digits = "last_4_digits"
	StrategyMaskSubnet  = "mask_subnet"
	StrategyRedact      = "redact"
	StrategySuppress    = "suppress"
	StrategyLuhnMask    = "luhn_check_mask"
)

// FieldRule binds a field-name pattern and an optional value-pattern category
// to a masking strategy. Rules are evaluated in declaration order and the
// first match wins, so broader rules belong later in the table.
type FieldRule struct {
	Field       string           `yaml:"field" json:"field"`
	ValueShape  string           `yaml:"value_shape" json:"value_shape"` // pattern library key, or ".*" for none
	Strategy    string           `yaml:"strategy" json:"strategy"`
	Sensitivity SensitivityLevel `yaml:"sensitivity" json:"sensitivity"`
	Description string           `yaml:"description" json:"description"`
}

type RuleConfig struct {
	Rules []FieldRule `yaml:"rules" json:"rules"`
}

type compiledRule struct {
	rule    FieldRule
	fieldRe *regexp.Regexp
}

// LoadRules reads a rule table from a YAML file, falling back to the built-in
// table when no path is given.
func LoadRules(path string) (RuleConfig, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultRules(), err
	}

	var cfg RuleConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return RuleConfig{}, err
	}

	if len(cfg.Rules) == 0 {
		return RuleConfig{}, errors.New("no masking rules configured")
	}

	return cfg, nil
}

// DefaultRules is the shared rule table used for every compliance standard.
func DefaultRules() RuleConfig {
	return RuleConfig{Rules: []FieldRule{
		{Field: "email", ValueShape: "email", Strategy: StrategyPartialMask, Sensitivity: SensitivityConfidential, Description: "User personal email address"},
		{Field: "password", ValueShape: ".*", Strategy: StrategyHash, Sensitivity: SensitivityCritical, Description: "User authentication credential"},
		{Field: "phone", ValueShape: "phone_.*", Strategy: StrategyLast4Digits, Sensitivity: SensitivityConfidential, Description: "Mobile phone number"},
		{Field: "address", ValueShape: ".*", Strategy: StrategySuppress, Sensitivity: SensitivityConfidential, Description: "Physical billing address"},
		{Field: "ip_address", ValueShape: "ipv4", Strategy: StrategyMaskSubnet, Sensitivity: SensitivityInternal, Description: "Client source IP"},
		{Field: "credit_card", ValueShape: "credit_card", Strategy: StrategyLuhnMask, Sensitivity: SensitivityRestricted, Description: "Payment instrument"},
		{Field: "auth_token", ValueShape: ".*", Strategy: StrategyRedact, Sensitivity: SensitivityCritical, Description: "Bearer token or API key"},
		{Field: "session_id", ValueShape: ".*", Strategy: StrategyHash, Sensitivity: SensitivityInternal, Description: "Temporary session identifier"},
	}}
}

func compileRules(cfg RuleConfig) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(cfg.Rules))
	for _, rule := range cfg.Rules {
		// Field patterns use substring search semantics, case-insensitive.
		re, err := regexp.Compile("(?i)" + rule.Field)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, compiledRule{rule: rule, fieldRe: re})
	}
	return compiled, nil
}
