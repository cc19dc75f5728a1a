package ffmpeg

import (
	"strconv"
	"strings"
)

// FilterBuilder assembles a single filter and its ordered key=value options
type FilterBuilder struct {
	name    string
	options []string
}

// NewFilterBuilder creates a new filter builder
func NewFilterBuilder(name string) *FilterBuilder {
	return &FilterBuilder{
		name:    name,
		options: make([]string, 0),
	}
}

// Opt adds a raw option. Empty values are skipped so chaining can continue.
func (fb *FilterBuilder) Opt(key, value string) *FilterBuilder {
	if value == "" {
		return fb
	}
	fb.options = append(fb.options, key+"="+value)
	return fb
}

// Int adds an integer option
func (fb *FilterBuilder) Int(key string, value int) *FilterBuilder {
	return fb.Opt(key, strconv.Itoa(value))
}

// Seconds adds a time option in seconds
func (fb *FilterBuilder) Seconds(key string, value float64) *FilterBuilder {
	return fb.Opt(key, FormatSeconds(value))
}

// Str adds a free-form string option such as a path or a color, escaped so
// the option parser returns it unchanged
func (fb *FilterBuilder) Str(key, value string) *FilterBuilder {
	if value == "" {
		return fb
	}
	return fb.Opt(key, EscapeOption(value))
}

// Text adds a drawtext text option. The value is escaped for text expansion
// as well as for the option parser.
func (fb *FilterBuilder) Text(key, value string) *FilterBuilder {
	if value == "" {
		return fb
	}
	return fb.Opt(key, EscapeDrawText(value))
}

// Build returns the filter as name=opt:opt, escaped for embedding in a
// -filter_complex description
func (fb *FilterBuilder) Build() string {
	if len(fb.options) == 0 {
		return fb.name
	}
	return fb.name + "=" + EscapeGraph(strings.Join(fb.options, ":"))
}

// FormatSeconds renders seconds with the shortest exact decimal, e.g. 4, 1.5
func FormatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', -1, 64)
}

// ffmpeg unescapes a filter's arguments twice: once when the graph is split
// into filters and once when the arguments are split into options. Values are
// escaped for each level instead of quoted.
var (
	optionEscaper = strings.NewReplacer(
		`\`, `\\`,
		`:`, `\:`,
		` `, `\ `,
		`'`, `\'`,
	)
	graphEscaper = strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`[`, `\[`,
		`]`, `\]`,
		`,`, `\,`,
		`;`, `\;`,
	)
	expansionEscaper = strings.NewReplacer(
		`\`, `\\`,
		`%`, `\%`,
	)
)

// EscapeOption escapes one option value: backslash, colon, space and single
// quote. strings.Replacer makes a single pass, so backslashes introduced for
// later characters are never doubled.
func EscapeOption(value string) string {
	return optionEscaper.Replace(value)
}

// EscapeGraph escapes filter arguments for the graph level of -filter_complex
func EscapeGraph(args string) string {
	return graphEscaper.Replace(args)
}

// EscapeDrawText escapes a label for a drawtext text option. drawtext expands
// backslash and percent sequences itself, so those are escaped before the
// option level.
func EscapeDrawText(text string) string {
	return EscapeOption(expansionEscaper.Replace(text))
}
