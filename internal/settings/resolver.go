// Package settings resolves a session's effective configuration by layering
// system defaults, a named profile, and a per-session override on top of
// each other — the same copy-built-in-then-override-with-user-defined idiom
// pkg/config/merge.go applies to agents, MCP servers, and chains, but
// generalized here to arbitrary JSON-shaped settings via dario.cat/mergo
// instead of one hand-written merge function per concrete type.
package settings

import (
	"dario.cat/mergo"
)

// Defaults are the system-wide settings every profile starts from. Values
// mirror the per-Eye fallbacks each handler in internal/eyes already
// applies when a key is absent, so a profile only needs to name the keys it
// actually wants to change.
func Defaults() map[string]any {
	return map[string]any{
		"ambiguity_threshold":    0.35,
		"citation_cutoff":        0.80,
		"consistency_tolerance":  0.85,
		"require_rollback":       true,
		"mangekyo": map[string]any{
			"strictness": "normal",
		},
	}
}

// Resolve layers system defaults, then profileSettings, then
// sessionOverride, each later layer winning on key conflicts. The result is
// a new map; none of the inputs are mutated.
func Resolve(profileSettings, sessionOverride map[string]any) (map[string]any, error) {
	resolved := deepCopy(Defaults())

	if err := mergeOver(resolved, profileSettings); err != nil {
		return nil, err
	}
	if err := mergeOver(resolved, sessionOverride); err != nil {
		return nil, err
	}
	return resolved, nil
}

// mergeOver merges src onto dst in place, with src's values taking
// precedence (mergo.WithOverride), including nested maps such as
// "mangekyo" (mergo.WithOverwriteWithEmptyValue is deliberately not set, so
// an absent key in src never blanks out an existing dst value).
func mergeOver(dst, src map[string]any) error {
	if src == nil {
		return nil
	}
	return mergo.Merge(&dst, src, mergo.WithOverride)
}

func deepCopy(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			out[k] = deepCopy(nested)
			continue
		}
		out[k] = v
	}
	return out
}
