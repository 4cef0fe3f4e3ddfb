package compliance

import "regexp"

// patternLibrary holds precompiled recognizers for common PII value shapes.
// Matches are whole-string: every pattern is anchored at both ends. UUID hex
// is deliberately lower-case only.
var patternLibrary = map[string]*regexp.Regexp{
	"email":       regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`),
	"ipv4":        regexp.MustCompile(`^(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)$`),
	"phone_cn":    regexp.MustCompile(`^(\+?86)?1[3-9]\d{9}$`),
	"phone_us":    regexp.MustCompile(`^\(?([0-9]{3})\)?[-. ]?([0-9]{3})[-. ]?([0-9]{4})$`),
	"credit_card": regexp.MustCompile(`^(?:4[0-9]{12}(?:[0-9]{3})?|5[1-5][0-9]{14}|3[47][0-9]{13}|3(?:0[0-5]|[68][0-9])[0-9]{11}|6(?:011|5[0-9]{2})[0-9]{12}|(?:2131|1800|35\d{3})\d{11})$`),
	"ssn":         regexp.MustCompile(`^\d{3}-\d{2}-\d{4}$`),
	"uuid":        regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`),
	"date_iso":    regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:?\d{2})?$`),
}

// MatchPattern reports whether value matches the named category's shape.
// Unknown categories never match; no trimming or folding is applied first.
func MatchPattern(category, value string) bool {
	re, ok := patternLibrary[category]
	if !ok {
		return false
	}
	return re.MatchString(value)
}

// PatternCategories lists the recognizer names the library knows about.
func PatternCategories() []string {
	out := make([]string, 0, len(patternLibrary))
	for name := range patternLibrary {
		out = append(out, name)
	}
	return out
}
