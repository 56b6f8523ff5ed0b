package graphml

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/stratagraph/pkg/model"
)

func TestParseAnnotation(t *testing.T) {
	tests := []struct {
		label    string
		wantText string
		wantAnn  Annotation
	}{
		{"US1", "US1", nil},
		{"Roman [start:-50;end:100;color:#ff0]", "Roman", Annotation{"start": "-50", "end": "100", "color": "#ff0"}},
		{"[ID:VDL16; ORCID: a,b ]", "", Annotation{"id": "VDL16", "orcid": "a,b"}},
		{"before [k:v] after", "before after", Annotation{"k": "v"}},
		{"url [link:https://x.org/a]", "url", Annotation{"link": "https://x.org/a"}},
		{"broken [k:v", "broken [k:v", nil},
		{"junk [novalue;:empty;ok:1]", "junk", Annotation{"ok": "1"}},
		{"  spaced   out  ", "spaced   out", nil},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			text, ann := ParseAnnotation(tt.label)
			if text != tt.wantText {
				t.Errorf("text = %q, want %q", text, tt.wantText)
			}
			if diff := cmp.Diff(tt.wantAnn, ann); diff != "" {
				t.Errorf("annotation mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAnnotationGetAndList(t *testing.T) {
	_, ann := ParseAnnotation("[ORCID:a, ,b;License:CC0]")
	if v, ok := ann.Get("license"); !ok || v != "CC0" {
		t.Errorf("Get(license) = %q, %v", v, ok)
	}
	if v, ok := ann.Get("LICENSE"); !ok || v != "CC0" {
		t.Errorf("Get(LICENSE) = %q, %v", v, ok)
	}
	if diff := cmp.Diff([]string{"a", "b"}, ann.List("orcid")); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}
	var none Annotation
	if _, ok := none.Get("id"); ok {
		t.Error("nil annotation should miss")
	}
	if got := none.List("orcid"); got != nil {
		t.Errorf("List on nil = %v", got)
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"-50", -50, true},
		{" 100.5 ", 100.5, true},
		{"XX", model.TimeSentinel, false},
		{"xx", model.TimeSentinel, false},
		{"?", model.TimeSentinel, false},
		{"", model.TimeSentinel, false},
		{"circa 100", model.TimeSentinel, false},
	}
	for _, tt := range tests {
		got, ok := parseTime(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("parseTime(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
