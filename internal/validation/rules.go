package validation

import (
	"regexp"
	"strings"
)

// Failure tags reported by rules. Handlers render these as per-field
// messages; the empty string means the rule passed.
const (
	TagRequired          = "required"
	TagMinLength         = "minlength"
	TagNotOnlyWhitespace = "notOnlyWhiteSpace"
	TagPattern           = "pattern"
)

// Patterns shared by the checkout form fields.
var (
	EmailPattern        = regexp.MustCompile(`^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,4}$`)
	CardNumberPattern   = regexp.MustCompile(`^[0-9]{16}$`)
	SecurityCodePattern = regexp.MustCompile(`^[0-9]{3}$`)
)

// Rule evaluates a single field value and returns a failure tag,
// or the empty string when the value passes.
type Rule func(value string) string

func Required() Rule {
	return func(value string) string {
		if value == "" {
			return TagRequired
		}
		return ""
	}
}

// MinLength skips empty values; emptiness is Required's concern.
func MinLength(n int) Rule {
	return func(value string) string {
		if value != "" && len([]rune(value)) < n {
			return TagMinLength
		}
		return ""
	}
}

// NotOnlyWhitespace rejects values that trim down to nothing. Unlike
// Required it also catches strings made entirely of spaces.
func NotOnlyWhitespace() Rule {
	return func(value string) string {
		if strings.TrimSpace(value) == "" {
			return TagNotOnlyWhitespace
		}
		return ""
	}
}

// Pattern skips empty values, like MinLength.
func Pattern(re *regexp.Regexp) Rule {
	return func(value string) string {
		if value != "" && !re.MatchString(value) {
			return TagPattern
		}
		return ""
	}
}

// Apply runs every rule against the value and collects failure tags.
// An empty result means the value is valid.
func Apply(value string, rules []Rule) []string {
	var tags []string
	for _, rule := range rules {
		if tag := rule(value); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
