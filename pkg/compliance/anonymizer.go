package compliance

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Anonymizer applies the rule table to arbitrary nested records. It is
// immutable after construction, so one instance may be shared by any number
// of goroutines.
//
// Each instance carries its own random salt for hash masking. The same raw
// value therefore hashes to different outputs under different instances,
// which prevents correlating masked values across processing contexts.
type Anonymizer struct {
	standard Standard
	salt     string
	rules    []compiledRule
}

func NewAnonymizer(standard Standard, cfg RuleConfig) (*Anonymizer, error) {
	rules, err := compileRules(cfg)
	if err != nil {
		return nil, fmt.Errorf("compile masking rules: %w", err)
	}
	salt, err := newSalt()
	if err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return &Anonymizer{
		standard: standard,
		salt:     salt,
		rules:    rules,
	}, nil
}

func newSalt() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func (a *Anonymizer) Standard() Standard { return a.standard }

// Process returns a sanitized copy of record. The input is never mutated and
// the output has the same keys, nesting, and sequence lengths; only matched
// leaf values are replaced.
//
// Scalar elements inside slices are passed through unmasked. Only nested
// objects within slices are recursed into.
func (a *Anonymizer) Process(record map[string]interface{}) map[string]interface{} {
	sanitized := make(map[string]interface{}, len(record))

	for key, value := range record {
		switch v := value.(type) {
		case map[string]interface{}:
			sanitized[key] = a.Process(v)
		case []interface{}:
			items := make([]interface{}, len(v))
			for i, item := range v {
				if nested, ok := item.(map[string]interface{}); ok {
					items[i] = a.Process(nested)
				} else {
					items[i] = item
				}
			}
			sanitized[key] = items
		default:
			sanitized[key] = a.sanitizeLeaf(key, value)
		}
	}

	return sanitized
}

func (a *Anonymizer) sanitizeLeaf(key string, value interface{}) interface{} {
	for _, cr := range a.rules {
		if a.matchesRule(key, value, cr) {
			return a.applyMask(value, cr.rule.Strategy)
		}
	}
	return value
}

func (a *Anonymizer) matchesRule(key string, value interface{}, cr compiledRule) bool {
	if cr.fieldRe.MatchString(key) {
		return true
	}
	if s, ok := value.(string); ok {
		return MatchPattern(cr.rule.ValueShape, s)
	}
	return false
}

// applyMask dispatches to the rule's strategy. Masking never fails: empty or
// zero values are returned untouched and unknown strategies degrade to a
// fixed asterisk mask, so the sanitization path cannot leak by erroring.
func (a *Anonymizer) applyMask(value interface{}, strategy string) interface{} {
	if isZeroValue(value) {
		return value
	}

	s := fmt.Sprintf("%v", value)

	switch strategy {
	case StrategyHash:
		sum := sha256.Sum256([]byte(s + a.salt))
		return hex.EncodeToString(sum[:])
	case StrategyPartialMask:
		return partialMask(s)
	case StrategyLast4Digits, StrategyLuhnMask:
		// luhn_check_mask has no checksum-aware behavior yet; it masks the
		// same way last_4_digits does.
		return lastFourDigits(s)
	case StrategyMaskSubnet:
		return maskSubnet(s)
	case StrategyRedact:
		return "[REDACTED]"
	case StrategySuppress:
		return nil
	default:
		return "******"
	}
}

func isZeroValue(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case float64:
		return v == 0
	case float32:
		return v == 0
	case int:
		return v == 0
	case int64:
		return v == 0
	default:
		return false
	}
}

// partialMask keeps the shape of a value while hiding its middle. Addresses
// with exactly one "@" keep their domain and mask the local part; everything
// else keeps two characters at each end. Values shorter than four characters
// are fully masked so the prefix and suffix cannot overlap and echo the
// original back.
func partialMask(s string) string {
	if strings.Count(s, "@") == 1 {
		at := strings.Index(s, "@")
		local, domain := []rune(s[:at]), s[at+1:]
		var masked string
		switch {
		case len(local) > 2:
			masked = string(local[0]) + strings.Repeat("*", len(local)-2) + string(local[len(local)-1])
		case len(local) > 0:
			masked = string(local[0]) + "***"
		default:
			masked = "***"
		}
		return masked + "@" + domain
	}

	r := []rune(s)
	if len(r) < 4 {
		return "****"
	}
	return string(r[:2]) + "****" + string(r[len(r)-2:])
}

func lastFourDigits(s string) string {
	r := []rune(s)
	if len(r) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(r)-4) + string(r[len(r)-4:])
}

// maskSubnet keeps the network half of a dotted quad. Anything that does not
// split into four parts collapses to "0.0.0.0" rather than erroring.
func maskSubnet(s string) string {
	parts := strings.Split(s, ".")
	if len(parts) == 4 {
		return parts[0] + "." + parts[1] + ".***.***"
	}
	return "0.0.0.0"
}
