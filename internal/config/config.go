// Package config loads server configuration from built-in defaults, a
// user-global KDL file, and a project-local KDL file, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"os"
	"runtime"
)

// Config holds everything the main-loop entry point needs to start serving.
// The fields named directly in the system spec (Project.Root,
// Feedback.InternalMode, Feedback.SupportsDecorations) are load-bearing; the rest are ambient tuning knobs
// the server needs to run at all.
type Config struct {
	Project  Project
	Watch    Watch
	Pool     Pool
	Feedback Feedback
	Include  []string
	Exclude  []string
}

// Project describes the workspace this server instance was started against.
type Project struct {
	// Root is ws_root: the workspace root passed to the workspace loader at
	// startup.
	Root string
	Name string
}

// Watch controls the filesystem-watcher registration and debouncing.
type Watch struct {
	// Glob is the pattern registered with the client via
	// DidChangeWatchedFilesRegistrationOptions, e.g. "**/*.ion".
	Glob string
	// DebounceMs coalesces bursts of watcher events before they are applied.
	DebounceMs int
}

// Pool sizes the bounded worker pool that executes request handlers.
type Pool struct {
	// Size is the number of worker goroutines. Zero means "use the default".
	Size int
}

// Feedback controls optional unsolicited notifications to the client.
type Feedback struct {
	// InternalMode enables the internal progress notifications (library
	// loaded, workspace loaded) useful for debugging the server itself.
	InternalMode bool
	// SupportsDecorations enables decoration republication alongside
	// diagnostics after every state-changing turn.
	SupportsDecorations bool
}

// DefaultPoolSize is the built-in Pool.Size. Validate fills a zero Pool.Size
// with the smaller of DefaultPoolSize and runtime.NumCPU().
const DefaultPoolSize = 8

// DefaultWatchGlob matches every source file the analysis engine cares about.
const DefaultWatchGlob = "**/*.ion"

// Load reads configuration for a workspace rooted at wsRoot, merging a
// project-local ".ionls.kdl" over a user-global "~/.ionls.kdl", then falling
// back to built-in defaults.
func Load(wsRoot string) (*Config, error) {
	cfg := defaultConfig(wsRoot)

	if home, err := os.UserHomeDir(); err == nil {
		if base, err := LoadKDL(home); err == nil && base != nil {
			cfg = mergeConfigs(cfg, base)
		}
	}

	if project, err := LoadKDL(wsRoot); err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	} else if project != nil {
		cfg = mergeConfigs(cfg, project)
	}

	cfg.Project.Root = wsRoot
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultConfig(wsRoot string) *Config {
	return &Config{
		Project: Project{Root: wsRoot},
		Watch: Watch{
			Glob:       DefaultWatchGlob,
			DebounceMs: 200,
		},
		Pool: Pool{
			Size: DefaultPoolSize,
		},
		Feedback: Feedback{
			InternalMode:        false,
			SupportsDecorations: false,
		},
		Include: []string{},
		Exclude: []string{
			"**/.git/**",
			"**/node_modules/**",
			"**/target/**",
			"**/.*/**",
		},
	}
}

// mergeConfigs overlays the non-zero fields of override onto a copy of base.
// Exclude is unioned rather than replaced, so a project file can add
// exclusions without having to repeat the global ones; a non-empty Include
// in override replaces the base Include.
func mergeConfigs(base, override *Config) *Config {
	merged := *base

	if override.Project.Root != "" {
		merged.Project.Root = override.Project.Root
	}
	if override.Project.Name != "" {
		merged.Project.Name = override.Project.Name
	}
	if override.Watch.Glob != "" {
		merged.Watch.Glob = override.Watch.Glob
	}
	if override.Watch.DebounceMs != 0 {
		merged.Watch.DebounceMs = override.Watch.DebounceMs
	}
	if override.Pool.Size != 0 {
		merged.Pool.Size = override.Pool.Size
	}
	merged.Feedback.InternalMode = merged.Feedback.InternalMode || override.Feedback.InternalMode
	merged.Feedback.SupportsDecorations = merged.Feedback.SupportsDecorations || override.Feedback.SupportsDecorations

	merged.Exclude = unionStrings(base.Exclude, override.Exclude)
	if len(override.Include) > 0 {
		merged.Include = override.Include
	}

	return &merged
}

func unionStrings(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Validate rejects configurations the main loop could not run with, and
// fills in any defaults that validation revealed were missing.
func Validate(cfg *Config) error {
	if cfg.Project.Root == "" {
		return fmt.Errorf("config: project root must not be empty")
	}
	if cfg.Pool.Size < 0 {
		return fmt.Errorf("config: pool size must not be negative, got %d", cfg.Pool.Size)
	}
	if cfg.Pool.Size == 0 {
		cfg.Pool.Size = minInt(DefaultPoolSize, maxInt(1, runtime.NumCPU()))
	}
	if cfg.Watch.DebounceMs < 0 {
		return fmt.Errorf("config: watch debounce must not be negative, got %d", cfg.Watch.DebounceMs)
	}
	if cfg.Watch.Glob == "" {
		cfg.Watch.Glob = DefaultWatchGlob
	}
	return nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
