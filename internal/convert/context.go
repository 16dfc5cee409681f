package convert

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Context is the per-call conversion context.
//
// It is a plain value passed alongside every conversion and never stored on
// the Converter, so concurrent conversions for different scenarios or
// locales cannot observe each other. Build it with NewContext; the zero
// value uses English separators.
type Context struct {
	// Locale selects number separators and localized enum names.
	Locale language.Tag

	group   string
	decimal string
}

// NewContext returns a Context for the given locale with its number
// separators resolved.
func NewContext(locale language.Tag) Context {
	group, decimal := separatorsFor(locale)
	return Context{Locale: locale, group: group, decimal: decimal}
}

// GroupSeparator returns the locale's digit grouping separator.
func (c Context) GroupSeparator() string {
	if c.group == "" && c.decimal == "" {
		return ","
	}
	return c.group
}

// DecimalSeparator returns the locale's decimal separator.
func (c Context) DecimalSeparator() string {
	if c.decimal == "" {
		return "."
	}
	return c.decimal
}

// separatorsFor renders sample numbers with the locale's printer and reads
// the separators back out of them. Locales rendering non-ASCII digits fall
// back to the English separators.
func separatorsFor(tag language.Tag) (group, decimal string) {
	p := message.NewPrinter(tag)
	group, decimal = ",", "."

	if rest, ok := strings.CutPrefix(p.Sprintf("%d", 1234567), "1"); ok {
		if i := strings.Index(rest, "234"); i >= 0 {
			group = rest[:i]
		}
	}
	if rest, ok := strings.CutPrefix(p.Sprintf("%.1f", 0.5), "0"); ok {
		if sep, ok := strings.CutSuffix(rest, "5"); ok && sep != "" {
			decimal = sep
		}
	}
	return group, decimal
}

// normalizeNumber rewrites locale-formatted numeric text into the form
// strconv understands: group separators removed, decimal separator as '.'.
func (c Context) normalizeNumber(text string) string {
	text = strings.TrimSpace(text)
	group, decimal := c.GroupSeparator(), c.DecimalSeparator()

	if group != "" {
		if isSpaceSeparator(group) {
			text = strings.Map(func(r rune) rune {
				if isSpaceRune(r) {
					return -1
				}
				return r
			}, text)
		} else {
			text = strings.ReplaceAll(text, group, "")
		}
	}
	if decimal != "." {
		text = strings.ReplaceAll(text, decimal, ".")
	}
	return text
}

func isSpaceSeparator(s string) bool {
	for _, r := range s {
		if !isSpaceRune(r) {
			return false
		}
	}
	return true
}

// isSpaceRune reports separators CLDR renders as spaces; unicode.IsSpace
// includes the no-break variants (U+00A0, U+202F) used by e.g. fr and ru.
func isSpaceRune(r rune) bool {
	return unicode.IsSpace(r)
}
