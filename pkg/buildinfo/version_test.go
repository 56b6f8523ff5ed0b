package buildinfo

import (
	"strings"
	"testing"
)

func TestGenerator(t *testing.T) {
	old := Version
	defer func() { Version = old }()

	Version = "v1.2.3"
	if got := Generator(); got != "stratagraph/v1.2.3" {
		t.Errorf("Generator() = %q", got)
	}
	if got := Current().Version; got != "v1.2.3" {
		t.Errorf("Current().Version = %q", got)
	}
	if !strings.Contains(Template(), "v1.2.3") {
		t.Errorf("Template() = %q", Template())
	}
}
