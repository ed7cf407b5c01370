package settings

// DefaultProfile is the profile a session gets when it names none
// (spec.md §3: "enterprise (default)").
const DefaultProfile = "enterprise"

// BuiltinProfiles are the three shipped profile presets a tenant can select
// before it has ever persisted a profile of its own under that name
// (spec.md §3). A session that asks for one of these without the tenant
// having customized it gets these values merged over the system defaults.
var BuiltinProfiles = map[string]map[string]any{
	"casual": {
		"ambiguity_threshold":   0.50,
		"citation_cutoff":       0.60,
		"consistency_tolerance": 0.75,
		"require_rollback":      false,
		"mangekyo": map[string]any{
			"strictness": "lenient",
		},
	},
	"enterprise": {
		"ambiguity_threshold":   0.35,
		"citation_cutoff":       0.80,
		"consistency_tolerance": 0.85,
		"require_rollback":      true,
		"mangekyo": map[string]any{
			"strictness": "normal",
		},
	},
	"security": {
		"ambiguity_threshold":   0.25,
		"citation_cutoff":       0.90,
		"consistency_tolerance": 0.95,
		"require_rollback":      true,
		"mangekyo": map[string]any{
			"strictness": "strict",
		},
	},
}

// BuiltinProfile returns the named preset, or the empty preset if name is
// unrecognized — callers fall back here when a tenant has never persisted
// a profile by that name, and persist the resolved result on first use.
func BuiltinProfile(name string) map[string]any {
	if preset, ok := BuiltinProfiles[name]; ok {
		return deepCopy(preset)
	}
	return map[string]any{}
}
