package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hamed0406/observatorycheck/internal/observatory"
)

const sampleChecks = `
init_config:
  default_timeout: 7

instances:
  - host: example.com
    tags:
      - env:prod
      - team:web
  - host: mozilla.org
    timeout: 2.5
    hidden: true
    api_url: http://localhost:57001/api/v1
  - tags: [orphan]
`

func TestLoadChecks_ResolvesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "observatory.yaml")
	if err := os.WriteFile(path, []byte(sampleChecks), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := LoadChecks(path)
	if err != nil {
		t.Fatalf("LoadChecks: %v", err)
	}
	insts := f.ResolveInstances()
	if len(insts) != 3 {
		t.Fatalf("want 3 instances, got %d", len(insts))
	}

	a := insts[0]
	if a.Host != "example.com" || a.Timeout != 7*time.Second || a.Hidden || a.APIURL != observatory.DefaultAPIURL {
		t.Fatalf("unexpected first instance: %+v", a)
	}
	if len(a.Tags) != 2 || a.Tags[0] != "env:prod" || a.Tags[1] != "team:web" {
		t.Fatalf("tags should keep order: %v", a.Tags)
	}

	b := insts[1]
	if b.Timeout != 2500*time.Millisecond || !b.Hidden || b.APIURL != "http://localhost:57001/api/v1" {
		t.Fatalf("unexpected second instance: %+v", b)
	}

	// a host-less instance loads; the check skips it at run time
	if insts[2].Host != "" {
		t.Fatalf("unexpected third instance: %+v", insts[2])
	}
}

func TestParseChecks_DefaultTimeoutFallback(t *testing.T) {
	f, err := ParseChecks([]byte("instances:\n  - host: example.com\n"))
	if err != nil {
		t.Fatalf("ParseChecks: %v", err)
	}
	if got := f.ResolveInstances()[0].Timeout; got != 5*time.Second {
		t.Fatalf("want 5s default timeout, got %v", got)
	}
}

func TestParseChecks_Invalid(t *testing.T) {
	cases := []string{
		"instances:\n  - host: a.com\n    timeout: -1\n",
		"instances:\n  - host: a.com\n    api_url: not a url\n",
		"init_config:\n  default_timeout: 0\n",
		"instances: [",
	}
	for _, c := range cases {
		if _, err := ParseChecks([]byte(c)); err == nil {
			t.Fatalf("expected error for %q", c)
		}
	}
}

func TestLoadChecks_MissingFile(t *testing.T) {
	_, err := LoadChecks(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read checks file") {
		t.Fatalf("expected read error, got %v", err)
	}
}
