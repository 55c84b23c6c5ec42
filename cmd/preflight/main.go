// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/hamed0406/observatorycheck/internal/config"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg := config.FromEnv()

	checks, err := config.LoadChecks(cfg.ChecksPath)
	if err != nil {
		fail(fmt.Sprintf("CONF_PATH=%s: %v", cfg.ChecksPath, err))
	}
	instances := checks.ResolveInstances()
	if len(instances) == 0 {
		fail("no instances configured in " + cfg.ChecksPath)
	}
	for i, inst := range instances {
		if inst.Host == "" {
			warn(fmt.Sprintf("instance %d has no host; it will be skipped at run time.", i))
		}
	}
	ok(fmt.Sprintf("%d instance(s) in %s", len(instances), cfg.ChecksPath))

	admin := strings.TrimSpace(os.Getenv("ADMIN_API_KEYS"))
	pub := strings.TrimSpace(os.Getenv("PUBLIC_API_KEYS"))
	if admin == "" && pub == "" {
		warn("no API keys set; the HTTP API is open (local dev only).")
	} else {
		if admin == "" {
			fail("ADMIN_API_KEYS is empty (POST /api/checks/run will 403).")
		}
		if pub == "" {
			warn("PUBLIC_API_KEYS is empty; only admin keys can read.")
		}
	}

	// Normalize and sanity-check lists (no spaces around commas).
	for name, v := range map[string]string{"ADMIN_API_KEYS": admin, "PUBLIC_API_KEYS": pub} {
		if strings.Contains(v, " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	ok("API_ADDR=" + cfg.Addr)

	if cfg.CheckInterval == 0 {
		warn("CHECK_INTERVAL_MS=0; scans only run on POST /api/checks/run.")
	} else {
		ok("check interval " + cfg.CheckInterval.String())
	}

	if cfg.DatabaseURL == "" {
		warn("DATABASE_URL empty; observations and grades are kept in memory.")
	} else {
		ok("DATABASE_URL present")
	}

	if len(cfg.AllowedOrigins) == 0 {
		warn("ALLOWED_ORIGINS empty; CORS allows every origin.")
	} else {
		ok("ALLOWED_ORIGINS=" + strings.Join(cfg.AllowedOrigins, ","))
	}

	if cfg.SlackWebhook == "" {
		warn("SLACK_WEBHOOK empty; grade changes are recorded but not sent.")
	} else {
		ok("SLACK_WEBHOOK present")
	}

	ok("preflight passed")
}
