package ytdlp

import (
	"os"
	"os/exec"
	"slices"
	"strings"

	"tubescribe/internal/config"
)

const (
	// DefaultRemoteComponent is attached when no local EJS plugin exists and a
	// JavaScript runtime was resolved.
	DefaultRemoteComponent = "ejs:github"

	probedRuntime = "node"
	extractorKey  = "youtube"
)

// Environment is the string-typed fetch configuration the option builder
// consumes.
type Environment struct {
	CookiesFromBrowser string
	CookiesFile        string
	PlayerClients      string
	JSRuntimes         string
	RemoteComponents   string
	EJSPluginInstalled bool
}

// EnvironmentFromConfig copies the relevant fetch settings.
func EnvironmentFromConfig(cfg config.Fetch) Environment {
	return Environment{
		CookiesFromBrowser: cfg.CookiesFromBrowser,
		CookiesFile:        cfg.CookiesFile,
		PlayerClients:      cfg.PlayerClients,
		JSRuntimes:         cfg.JSRuntimes,
		RemoteComponents:   cfg.RemoteComponents,
		EJSPluginInstalled: cfg.EJSPluginInstalled,
	}
}

// Probe answers the two host questions the builder needs.
type Probe interface {
	LookPath(name string) (string, error)
	FileExists(path string) bool
}

// SystemProbe inspects the real PATH and filesystem.
type SystemProbe struct{}

// LookPath resolves name on PATH.
func (SystemProbe) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// FileExists reports whether path is an existing regular file.
func (SystemProbe) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// JSRuntime names a JavaScript runtime and an optional executable path.
type JSRuntime struct {
	Name string
	Path string
}

// Options holds the per-request flags. A built Options is treated as
// immutable; WithoutExtractorArgs returns a modified copy.
type Options struct {
	CookiesFromBrowser []string
	CookiesFile        string
	PlayerClients      []string
	JSRuntimes         []JSRuntime
	RemoteComponents   []string

	// RuntimeProbed is set when JSRuntimes came from a PATH probe rather
	// than configuration.
	RuntimeProbed bool
	// RemoteComponentsDefaulted is set when RemoteComponents holds the
	// automatic DefaultRemoteComponent rather than configured values.
	RemoteComponentsDefaulted bool
}

// BuildOptions assembles Options from configuration. A browser cookie spec
// always wins over a cookie file, and the file is only used when it exists.
func BuildOptions(env Environment, probe Probe) Options {
	if probe == nil {
		probe = SystemProbe{}
	}
	var opts Options

	if spec := strings.TrimSpace(env.CookiesFromBrowser); spec != "" {
		opts.CookiesFromBrowser = ParseCookiesFromBrowser(spec)
	} else if path := strings.TrimSpace(env.CookiesFile); path != "" && probe.FileExists(path) {
		opts.CookiesFile = path
	}

	opts.PlayerClients = splitList(env.PlayerClients)

	if raw := strings.TrimSpace(env.JSRuntimes); raw != "" {
		opts.JSRuntimes = parseJSRuntimes(raw)
	} else if path, err := probe.LookPath(probedRuntime); err == nil && path != "" {
		opts.JSRuntimes = []JSRuntime{{Name: probedRuntime, Path: path}}
		opts.RuntimeProbed = true
	}

	if raw := strings.TrimSpace(env.RemoteComponents); raw != "" {
		opts.RemoteComponents = splitList(raw)
	} else if !env.EJSPluginInstalled && len(opts.JSRuntimes) > 0 {
		opts.RemoteComponents = []string{DefaultRemoteComponent}
		opts.RemoteComponentsDefaulted = true
	}
	return opts
}

// ParseCookiesFromBrowser splits "browser[:profile[:keyring[:cookies_db]]]"
// into its non-empty fields. The fourth field keeps any further colons.
func ParseCookiesFromBrowser(spec string) []string {
	if !strings.Contains(spec, ":") {
		return []string{spec}
	}
	parts := strings.SplitN(spec, ":", 4)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// HasExtractorArgs reports whether a capability hint is attached.
func (o Options) HasExtractorArgs() bool {
	return len(o.PlayerClients) > 0
}

// WithoutExtractorArgs returns a copy with the capability hint removed.
func (o Options) WithoutExtractorArgs() Options {
	out := o.clone()
	out.PlayerClients = nil
	return out
}

// Args renders the options as yt-dlp command line flags.
func (o Options) Args() []string {
	var args []string
	if len(o.CookiesFromBrowser) > 0 {
		args = append(args, "--cookies-from-browser", browserArg(o.CookiesFromBrowser))
	} else if o.CookiesFile != "" {
		args = append(args, "--cookies", o.CookiesFile)
	}
	if len(o.PlayerClients) > 0 {
		args = append(args, "--extractor-args", extractorKey+":player_client="+strings.Join(o.PlayerClients, ","))
	}
	for _, rt := range o.JSRuntimes {
		value := rt.Name
		if rt.Path != "" {
			value += ":" + rt.Path
		}
		args = append(args, "--js-runtimes", value)
	}
	for _, component := range o.RemoteComponents {
		args = append(args, "--remote-components", component)
	}
	return args
}

func (o Options) clone() Options {
	out := o
	out.CookiesFromBrowser = slices.Clone(o.CookiesFromBrowser)
	out.PlayerClients = slices.Clone(o.PlayerClients)
	out.JSRuntimes = slices.Clone(o.JSRuntimes)
	out.RemoteComponents = slices.Clone(o.RemoteComponents)
	return out
}

// browserArg renders the tuple in yt-dlp's BROWSER[+KEYRING][:PROFILE][::CONTAINER]
// form, reading fields positionally as browser, profile, keyring, container.
func browserArg(fields []string) string {
	var b strings.Builder
	b.WriteString(fields[0])
	if len(fields) > 2 {
		b.WriteString("+")
		b.WriteString(fields[2])
	}
	if len(fields) > 1 {
		b.WriteString(":")
		b.WriteString(fields[1])
	}
	if len(fields) > 3 {
		b.WriteString("::")
		b.WriteString(fields[3])
	}
	return b.String()
}

func parseJSRuntimes(raw string) []JSRuntime {
	var out []JSRuntime
	index := make(map[string]int)
	for _, item := range splitList(raw) {
		name, path, _ := strings.Cut(item, "=")
		name = strings.TrimSpace(name)
		path = strings.TrimSpace(path)
		if name == "" {
			continue
		}
		if i, ok := index[name]; ok {
			out[i].Path = path
			continue
		}
		index[name] = len(out)
		out = append(out, JSRuntime{Name: name, Path: path})
	}
	return out
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
