package llm

import (
	"os"
	"regexp"
	"strings"
)

// quotedStringRe pulls every quoted string out of a models file. The file
// is a tiny JS-style export ("module.exports = [ \"a\", \"b\" ]"), so a
// minimal scan for quoted items beats a real parser.
var quotedStringRe = regexp.MustCompile(`['"]([^'"]+)['"]`)

// ResolveCandidates builds the ordered model candidate list. Precedence:
// an explicitly configured list, then a models file, then the single
// configured model. Duplicates are dropped, first occurrence wins.
func ResolveCandidates(configured []string, modelsFile, single string) []string {
	models := dedupe(configured)

	if len(models) == 0 && modelsFile != "" {
		models = loadModelsFile(modelsFile)
	}

	if len(models) == 0 && single != "" {
		models = []string{single}
	}
	return models
}

func loadModelsFile(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var models []string
	for _, m := range quotedStringRe.FindAllStringSubmatch(string(data), -1) {
		models = append(models, m[1])
	}
	return dedupe(models)
}

func dedupe(in []string) []string {
	var out []string
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
