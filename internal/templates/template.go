package templates

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// #region placeholder

var placeholderRe = regexp.MustCompile(`#([A-Za-z0-9_]+)`)

// Placeholders returns the slot names referenced by text, in order of first
// appearance, without duplicates.
func Placeholders(text string) []string {
	var slots []string
	seen := make(map[string]bool)
	for _, m := range placeholderRe.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			slots = append(slots, m[1])
		}
	}
	return slots
}

// #endregion placeholder

// #region template

// Template is one system action and its response pattern. Text references
// slots as #name. Default, when set, is used instead of Text whenever a slot
// of Text has no value.
type Template struct {
	Act     string
	Text    string
	Default string
	slots   []string
}

// NewTemplate parses the placeholders of text once.
func NewTemplate(act, text, def string) Template {
	return Template{Act: act, Text: text, Default: def, slots: Placeholders(text)}
}

// Slots returns the slot names referenced by Text.
func (t Template) Slots() []string {
	return append([]string(nil), t.slots...)
}

// String returns the raw pattern.
func (t Template) String() string {
	return t.Text
}

// Render substitutes slot values into the pattern. Placeholders without a
// value fall back to Default when one exists; otherwise they are left as-is.
func (t Template) Render(slots map[string]string) string {
	text := t.Text
	if t.Default != "" && !t.resolvable(slots) {
		text = t.Default
	}
	out := placeholderRe.ReplaceAllStringFunc(text, func(ph string) string {
		if v, ok := slots[ph[1:]]; ok {
			return v
		}
		return ph
	})
	return capitalize(strings.TrimSpace(out))
}

func (t Template) resolvable(slots map[string]string) bool {
	for _, s := range t.slots {
		if _, ok := slots[s]; !ok {
			return false
		}
	}
	return true
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// #endregion template
