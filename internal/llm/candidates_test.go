package llm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveCandidatesPrefersConfiguredList(t *testing.T) {
	file := writeModelsFile(t, `module.exports = ["file/model-1"]`)

	got := ResolveCandidates([]string{"cfg/model-1", "cfg/model-2"}, file, "single/model")
	require.Equal(t, []string{"cfg/model-1", "cfg/model-2"}, got)
}

func TestResolveCandidatesFallsBackToModelsFile(t *testing.T) {
	file := writeModelsFile(t, `
// ranked candidates
module.exports = [
  "deepseek/deepseek-chat:free",
  'qwen/qwen-2.5-72b:free',
  "deepseek/deepseek-chat:free",
];`)

	got := ResolveCandidates(nil, file, "single/model")
	require.Equal(t, []string{
		"deepseek/deepseek-chat:free",
		"qwen/qwen-2.5-72b:free",
	}, got)
}

func TestResolveCandidatesSingleModelLast(t *testing.T) {
	got := ResolveCandidates(nil, "", "single/model")
	require.Equal(t, []string{"single/model"}, got)
}

func TestResolveCandidatesMissingFileFallsThrough(t *testing.T) {
	got := ResolveCandidates(nil, filepath.Join(t.TempDir(), "absent.js"), "single/model")
	require.Equal(t, []string{"single/model"}, got)
}

func TestResolveCandidatesDropsBlanksAndDuplicates(t *testing.T) {
	got := ResolveCandidates([]string{" a ", "", "a", "b"}, "", "")
	require.Equal(t, []string{"a", "b"}, got)
}

func writeModelsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "openrouter-models.js")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
