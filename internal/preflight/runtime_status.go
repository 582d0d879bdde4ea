package preflight

import (
	"fmt"
	"strings"

	"tubescribe/internal/config"
	"tubescribe/internal/services/ytdlp"
)

// CheckCredentials describes which cookie source the option builder will use.
// Running without cookies passes; YouTube only sometimes requires them.
func CheckCredentials(cfg *config.Config, probe ytdlp.Probe) Result {
	const name = "Cookies"
	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	opts := ytdlp.BuildOptions(ytdlp.EnvironmentFromConfig(cfg.Fetch), probe)
	switch {
	case len(opts.CookiesFromBrowser) > 0:
		return Result{Name: name, Passed: true, Detail: "browser " + strings.Join(opts.CookiesFromBrowser, ":")}
	case opts.CookiesFile != "":
		return Result{Name: name, Passed: true, Detail: "file " + opts.CookiesFile}
	case strings.TrimSpace(cfg.Fetch.CookiesFile) != "":
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("none (%s not found)", cfg.Fetch.CookiesFile)}
	default:
		return Result{Name: name, Passed: true, Detail: "none"}
	}
}

// DescribeOptions renders the capability hints the option builder resolved,
// marking automatic choices so they are not mistaken for configuration.
func DescribeOptions(opts ytdlp.Options) []Result {
	results := make([]Result, 0, 3)

	clients := "default"
	if opts.HasExtractorArgs() {
		clients = strings.Join(opts.PlayerClients, ",")
	}
	results = append(results, Result{Name: "Player clients", Passed: true, Detail: clients})

	runtimes := "none"
	if len(opts.JSRuntimes) > 0 {
		parts := make([]string, 0, len(opts.JSRuntimes))
		for _, rt := range opts.JSRuntimes {
			if rt.Path != "" {
				parts = append(parts, rt.Name+"="+rt.Path)
			} else {
				parts = append(parts, rt.Name)
			}
		}
		runtimes = strings.Join(parts, ",")
		if opts.RuntimeProbed {
			runtimes += " (found on PATH)"
		}
	}
	results = append(results, Result{Name: "JS runtimes", Passed: true, Detail: runtimes})

	remote := "none"
	if len(opts.RemoteComponents) > 0 {
		remote = strings.Join(opts.RemoteComponents, ",")
		if opts.RemoteComponentsDefaulted {
			remote += " (automatic default)"
		}
	}
	results = append(results, Result{Name: "Remote components", Passed: true, Detail: remote})
	return results
}
