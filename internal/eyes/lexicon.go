package eyes

import (
	"regexp"
	"strings"
)

// vagueWords and unspecifiedWords carry a moderate ambiguity weight each
// time they appear in a goal (spec.md §4.4.2; original_source/constants.py
// AMBIGUITY_VAGUE_WORDS / AMBIGUITY_UNSPECIFIED_WORDS).
var vagueWords = []string{"some", "stuff", "thing", "things", "various"}
var unspecifiedWords = []string{"asap", "urgent", "improve", "better", "nice", "quickly"}

// imperativeHints is the small set of verb-like tokens that count as an
// action verb even when they don't end in "ing" (spec.md §4.4.2;
// original_source/constants.py's `_IMPERATIVE_HINTS` set in sharingan.py).
var imperativeHints = []string{"write", "summarize", "explain", "create", "draft", "analyze", "plan", "design", "fix", "build", "generate", "compare", "investigate", "update", "improve"}

// strongActionWords imply a concrete code change regardless of surrounding
// context; weakActionWords only count toward code-relatedness when another
// code signal is already present (spec.md §4.4.2;
// original_source/constants.py SHARINGAN_STRONG_CODE_ACTION_KEYWORDS and
// the non-strong remainder of SHARINGAN_CODE_ACTION_KEYWORDS).
var strongActionWords = []string{"modify", "refactor", "fix", "bug", "optimize", "diff", "patch", "change", "tests", "docs"}
var weakActionWords = []string{"write", "create", "generate", "review"}

// codeToolingKeywords, codeArtifactKeywords, and codeTechKeywords are the
// closed keyword sets sharingan's classifier scans for (spec.md §4.4.2;
// original_source/constants.py SHARINGAN_CODE_TOOLING_KEYWORDS /
// SHARINGAN_CODE_ARTIFACT_KEYWORDS / SHARINGAN_CODE_TECH_KEYWORDS).
var codeToolingKeywords = []string{"repo", "pr", "pull request", "commit", "branch", "ci", "cd", "lint", "build", "pipeline"}
var codeArtifactKeywords = []string{"function", "class", "module", "package", "api", "endpoint", "schema", "migration", "dockerfile"}
var codeTechKeywords = []string{
	"react", "next.js", "vue", "svelte", "angular", "django", "flask", "fastapi", "spring", "rails",
	"laravel", "node", "express", "nest", "prisma", "sequelize", "typeorm", "sqlalchemy", "redis",
	"kafka", "rabbitmq", "postgresql", "mysql", "mongodb", "elasticsearch", "docker", "kubernetes",
	"terraform", "aws", "gcp", "azure", "vite", "webpack", "babel", "jest", "vitest", "pytest",
	"playwright", "cypress",
}

var codeExtensionPattern = regexp.MustCompile(`\.(py|ts|tsx|js|jsx|java|rb|go|rs|cpp|c|h|css|scss|html|md|sql|yaml|yml|toml|json)\b`)
var codeFencePattern = regexp.MustCompile("```")

var todoPattern = regexp.MustCompile(`(?i)\b(todo|tbd|fixme)\b`)
var contradictionPairs = [][2]*regexp.Regexp{
	{regexp.MustCompile(`(?i)\bno\s+change\b`), regexp.MustCompile(`(?i)\b(grew|increased|declined|decreased)\b`)},
	{regexp.MustCompile(`(?i)\bnever\b`), regexp.MustCompile(`(?i)\bpreviously\b`)},
}
var changeKeywords = []string{"increase", "decrease", "grew", "declined"}

func countOccurrences(haystack string, needles []string) int {
	lower := strings.ToLower(haystack)
	n := 0
	for _, word := range needles {
		n += strings.Count(lower, strings.ToLower(word))
	}
	return n
}

func containsAny(haystack string, needles []string) bool {
	lower := strings.ToLower(haystack)
	for _, word := range needles {
		if strings.Contains(lower, strings.ToLower(word)) {
			return true
		}
	}
	return false
}
