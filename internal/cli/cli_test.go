package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/stratagraph/pkg/errors"
	"github.com/matzehuels/stratagraph/pkg/export"
)

func diagram(header string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<graphml xmlns="http://graphml.graphdrawing.org/xmlns" xmlns:y="http://www.yworks.com/xml/graphml">
  <key attr.name="Description" attr.type="string" for="graph" id="d0"/>
  <key for="node" id="d6" yfiles.type="nodegraphics"/>
  <key for="edge" id="d10" yfiles.type="edgegraphics"/>
  <graph edgedefault="directed" id="G">
    <data key="d0">%s</data>
    <node id="n0">
      <data key="d6">
        <y:ShapeNode>
          <y:Geometry height="30" width="90" x="0" y="0"/>
          <y:BorderStyle color="#9B3333"/>
          <y:NodeLabel>US1</y:NodeLabel>
          <y:Shape type="rectangle"/>
        </y:ShapeNode>
      </data>
    </node>
    <node id="n1">
      <data key="d6">
        <y:ShapeNode>
          <y:Geometry height="30" width="90" x="0" y="100"/>
          <y:BorderStyle color="#9B3333"/>
          <y:NodeLabel>US2</y:NodeLabel>
          <y:Shape type="rectangle"/>
        </y:ShapeNode>
      </data>
    </node>
    <edge id="e0" source="n0" target="n1">
      <data key="d10">
        <y:PolyLineEdge><y:LineStyle color="#000000" type="line" width="1.0"/></y:PolyLineEdge>
      </data>
    </edge>
  </graph>
</graphml>`, header)
}

// setup isolates config and cache directories and captures output.
func setup(t *testing.T) (dir string, stdout *bytes.Buffer) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))

	stdout = &bytes.Buffer{}
	prev := out
	out = stdout
	t.Cleanup(func() { out = prev })
	return dir, stdout
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func mustRun(t *testing.T, args ...string) {
	t.Helper()
	if err := run(t, args...); err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
}

func counts(t *testing.T, path string) map[string][2]int {
	t.Helper()
	doc, err := export.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%s): %v", path, err)
	}
	got := map[string][2]int{}
	for id, c := range export.DocCounts(doc) {
		got[id] = [2]int{c.Nodes, c.Edges}
	}
	return got
}

func TestImportExportRoundTrip(t *testing.T) {
	dir, _ := setup(t)
	src := writeFile(t, filepath.Join(dir, "site.graphml"), diagram("Villa del Lago [ID:VDL16]"))
	plain := filepath.Join(dir, "site.json")
	packed := filepath.Join(dir, "renamed.json.zst")

	mustRun(t, "import", src, "-o", plain, "--no-cache")
	want := map[string][2]int{"VDL16": {3, 1}}
	if diff := cmp.Diff(want, counts(t, plain)); diff != "" {
		t.Errorf("import counts mismatch (-want +got):\n%s", diff)
	}

	mustRun(t, "export", plain, "--rename", "VDL16=VDL17", "-o", packed)
	want = map[string][2]int{"VDL17": {3, 1}}
	if diff := cmp.Diff(want, counts(t, packed)); diff != "" {
		t.Errorf("export counts mismatch (-want +got):\n%s", diff)
	}
}

func TestImportToStdout(t *testing.T) {
	dir, stdout := setup(t)
	src := writeFile(t, filepath.Join(dir, "site.graphml"), diagram("Villa del Lago [ID:VDL16]"))

	mustRun(t, "import", src, "--no-cache")
	doc, err := export.Read(stdout)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if _, ok := doc.Graphs["VDL16"]; !ok {
		t.Errorf("stdout document should hold VDL16, got %v", doc.Graphs)
	}
}

func TestImportGlob(t *testing.T) {
	dir, _ := setup(t)
	writeFile(t, filepath.Join(dir, "dig", "a.graphml"), diagram("Trench A [ID:TA]"))
	writeFile(t, filepath.Join(dir, "dig", "deep", "b.graphml"), diagram("Trench B [ID:TB]"))
	writeFile(t, filepath.Join(dir, "dig", "notes.txt"), "ignored")
	output := filepath.Join(dir, "all.json")

	mustRun(t, "import", filepath.Join(dir, "dig", "**", "*.graphml"), "-o", output, "--no-cache")
	want := map[string][2]int{"TA": {3, 1}, "TB": {3, 1}}
	if diff := cmp.Diff(want, counts(t, output)); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
}

func TestImportErrors(t *testing.T) {
	dir, _ := setup(t)
	a := writeFile(t, filepath.Join(dir, "a.graphml"), diagram("A"))
	b := writeFile(t, filepath.Join(dir, "b.graphml"), diagram("B"))
	d1 := writeFile(t, filepath.Join(dir, "d1.graphml"), diagram("Dup [ID:DUP]"))
	d2 := writeFile(t, filepath.Join(dir, "d2.graphml"), diagram("Dup again [ID:DUP]"))

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"id with several inputs", []string{"import", a, b, "--id", "x"}, errors.ErrCodeInvalidInput},
		{"no glob match", []string{"import", filepath.Join(dir, "*.missing")}, errors.ErrCodeFileNotFound},
		{"missing file", []string{"import", filepath.Join(dir, "nope.graphml")}, errors.ErrCodeFileNotFound},
		{"bad format", []string{"import", a, "--format", "pdf"}, errors.ErrCodeInvalidFormat},
		{"duplicate graphs", []string{"import", d1, d2, "--no-cache"}, errors.ErrCodeDuplicateGraph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestImportCSV(t *testing.T) {
	dir, _ := setup(t)
	src := writeFile(t, filepath.Join(dir, "units.csv"), "id,name,material\nu1,US1,clay\nu2,US2,sand\n")
	output := filepath.Join(dir, "units.json")

	mustRun(t, "import", src, "--name-column", "name", "-o", output, "--no-cache")
	want := map[string][2]int{"units": {5, 2}}
	if diff := cmp.Diff(want, counts(t, output)); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}
}

func TestImportCache(t *testing.T) {
	dir, stdout := setup(t)
	src := writeFile(t, filepath.Join(dir, "site.graphml"), diagram("Villa del Lago [ID:VDL16]"))
	output := filepath.Join(dir, "site.json")

	mustRun(t, "import", src, "-o", output)
	mustRun(t, "import", src, "-o", output)

	stdout.Reset()
	mustRun(t, "cache", "path")
	cacheDir := strings.TrimSpace(stdout.String())
	if want := filepath.Join(dir, "cache", "stratagraph"); cacheDir != want {
		t.Fatalf("cache path = %q, want %q", cacheDir, want)
	}
	entries, _ := filepath.Glob(filepath.Join(cacheDir, "??", "*.json"))
	if len(entries) != 1 {
		t.Fatalf("cache entries = %d, want 1", len(entries))
	}

	mustRun(t, "cache", "clear")
	entries, _ = filepath.Glob(filepath.Join(cacheDir, "??", "*.json"))
	if len(entries) != 0 {
		t.Errorf("cache entries after clear = %d, want 0", len(entries))
	}
}

func TestCacheClearEmpty(t *testing.T) {
	_, stdout := setup(t)
	mustRun(t, "cache", "clear")
	if !strings.Contains(stdout.String(), "Cache is empty") {
		t.Errorf("output = %q", stdout.String())
	}
}

func TestInspectJSON(t *testing.T) {
	dir, stdout := setup(t)
	src := writeFile(t, filepath.Join(dir, "site.graphml"), diagram("Villa del Lago [ID:VDL16]"))

	mustRun(t, "inspect", src, "--json", "--chronology", "--no-cache")
	var got []struct {
		ID     string        `json:"id"`
		Name   string        `json:"name"`
		Counts export.Counts `json:"counts"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", stdout.String(), err)
	}
	if len(got) != 1 || got[0].ID != "VDL16" || got[0].Name != "Villa del Lago" {
		t.Fatalf("inspect = %+v", got)
	}
	if got[0].Counts.ByCategory[export.CategoryStratigraphic] != 2 {
		t.Errorf("stratigraphic = %d, want 2", got[0].Counts.ByCategory[export.CategoryStratigraphic])
	}
}

func TestInspectText(t *testing.T) {
	dir, stdout := setup(t)
	src := writeFile(t, filepath.Join(dir, "site.graphml"), diagram("Villa del Lago [ID:VDL16]"))

	mustRun(t, "inspect", src, "--start", "0", "--end", "100", "--no-cache")
	for _, want := range []string{"VDL16", "Villa del Lago", "Chronology"} {
		if !strings.Contains(stdout.String(), want) {
			t.Errorf("output should contain %q:\n%s", want, stdout.String())
		}
	}
}

func TestRenderDOT(t *testing.T) {
	dir, _ := setup(t)
	src := writeFile(t, filepath.Join(dir, "site.graphml"), diagram("Villa del Lago [ID:VDL16]"))
	output := filepath.Join(dir, "site.dot")

	mustRun(t, "render", src, "-f", "dot", "-o", output, "--no-cache")
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), `digraph "VDL16"`) {
		t.Errorf("output = %q, want DOT source", data)
	}
}

func TestRenderNeedsGraph(t *testing.T) {
	dir, _ := setup(t)
	a := writeFile(t, filepath.Join(dir, "a.graphml"), diagram("A [ID:A]"))
	b := writeFile(t, filepath.Join(dir, "b.graphml"), diagram("B [ID:B]"))
	both := filepath.Join(dir, "both.json")
	mustRun(t, "import", a, b, "-o", both, "--no-cache")

	if err := run(t, "render", both, "-f", "dot", "--no-cache"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
	if err := run(t, "render", both, "-g", "C", "-f", "dot", "--no-cache"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestRules(t *testing.T) {
	_, stdout := setup(t)
	mustRun(t, "rules", "--dump")
	if !strings.Contains(stdout.String(), "[edges.is_before]") {
		t.Errorf("dump should contain the is_before rule:\n%s", stdout.String())
	}

	stdout.Reset()
	mustRun(t, "rules")
	if !strings.Contains(stdout.String(), "has_first_epoch") {
		t.Errorf("listing should contain has_first_epoch:\n%s", stdout.String())
	}
}

func TestConfigFlag(t *testing.T) {
	dir, _ := setup(t)
	err := run(t, "--config", filepath.Join(dir, "missing.toml"), "rules")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}

	cfg := writeFile(t, filepath.Join(dir, "sg.toml"), "[cache]\nbackend = \"redis\"\nredis_url = \"redis://127.0.0.1:1\"\n")
	err = run(t, "--config", cfg, "cache", "path")
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("err = %v, want UNSUPPORTED", err)
	}
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a.graphml"), "")
	b := writeFile(t, filepath.Join(dir, "sub", "b.graphml"), "")

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{"plain path", []string{a}, []string{a}},
		{"missing plain path kept", []string{filepath.Join(dir, "x.json")}, []string{filepath.Join(dir, "x.json")}},
		{"doublestar", []string{filepath.Join(dir, "**", "*.graphml")}, []string{a, b}},
		{"deduplicated", []string{a, filepath.Join(dir, "*.graphml")}, []string{a}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandInputs(tt.patterns)
			if err != nil {
				t.Fatalf("expandInputs: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
