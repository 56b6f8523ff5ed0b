package graphml

import (
	"strconv"
	"strings"

	"github.com/matzehuels/stratagraph/pkg/model"
)

// Annotation is the key/value block a label may embed, written as
// "text [key:value;key:value]". Keys are matched case-insensitively.
type Annotation map[string]string

// ParseAnnotation splits a label into its display text and the first
// bracketed annotation. Labels without a well-formed block return the
// trimmed text and a nil annotation.
func ParseAnnotation(label string) (string, Annotation) {
	open := strings.IndexByte(label, '[')
	if open < 0 {
		return strings.TrimSpace(label), nil
	}
	end := strings.IndexByte(label[open:], ']')
	if end < 0 {
		return strings.TrimSpace(label), nil
	}
	end += open

	ann := Annotation{}
	for _, part := range strings.Split(label[open+1:end], ";") {
		k, v, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		ann[k] = strings.TrimSpace(v)
	}
	rest := strings.TrimSpace(label[:open] + " " + label[end+1:])
	return strings.Join(strings.Fields(rest), " "), ann
}

// Get returns the value for key, ignoring case.
func (a Annotation) Get(key string) (string, bool) {
	v, ok := a[strings.ToLower(key)]
	return v, ok
}

// List splits a comma separated value, dropping empty entries.
func (a Annotation) List(key string) []string {
	v, _ := a.Get(key)
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// parseTime reads a time bound. Placeholders ("XX", "?") and empty or
// malformed values yield model.TimeSentinel with ok false.
func parseTime(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "xx") || s == "?" {
		return model.TimeSentinel, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return model.TimeSentinel, false
	}
	return f, true
}
