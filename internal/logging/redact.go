// Package logging keeps secrets that appear in step text out of logs.
//
// Step text frequently carries credentials ("I log in with password \"hunter2\"").
// RedactStepText masks them before a step reaches a log event, and
// FilteringWriter applies the same rules to everything written to the log file.
package logging

import (
	"regexp"
)

// RedactedValue replaces a masked secret.
const RedactedValue = "[REDACTED]"

// quotedSecret matches a quoted step argument that follows a sensitive word,
// optionally joined by a short connector: password "x", token is "x", pin: "x".
// Quotes may be JSON-escaped, as they are once an event has been encoded.
var quotedSecret = regexp.MustCompile( //nolint:gochecknoglobals // compiled once
	`(?i)\b(password|passwd|passphrase|secret|token|api[ _-]?key|credentials?|pin)(\s*(?:[:=]|\bis\b|\bof\b)?\s*)(\\?")[^"\\]*(\\?")`)

// rule masks one kind of bare secret, one that is not quoted after a keyword.
type rule struct {
	name string
	re   *regexp.Regexp
}

//nolint:gochecknoglobals // compiled once
var rules = []rule{
	{"github_token", regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{20,}`)},
	{"bearer", regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9._-]{20,}`)},
	{"assignment", regexp.MustCompile(`(?i)\b(password|passwd|secret|api[_-]?key|token)=[^\s"',;]{8,}`)},
	{"private_key", regexp.MustCompile(`-----BEGIN[A-Z ]*PRIVATE KEY-----`)},
}

// RedactStepText prepares step text for logging. Quoted arguments right after
// a sensitive word are replaced while the quotes and the rest of the sentence
// are kept, so the step stays recognizable:
//
//	I log in as "bob" with password "hunter2"
//	I log in as "bob" with password "[REDACTED]"
//
// Bare tokens (GitHub tokens, bearer headers, key=value assignments) are
// replaced whole.
func RedactStepText(text string) string {
	out := quotedSecret.ReplaceAllString(text, "$1$2$3"+RedactedValue+"$4")
	for _, r := range rules {
		out = r.re.ReplaceAllString(out, RedactedValue)
	}
	return out
}

// Sensitive reports the name of the first rule s trips, or "" when s
// looks clean.
func Sensitive(s string) string {
	if quotedSecret.MatchString(s) {
		return "quoted_argument"
	}
	for _, r := range rules {
		if r.re.MatchString(s) {
			return r.name
		}
	}
	return ""
}
