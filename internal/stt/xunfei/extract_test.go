package xunfei

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// latticeBody builds a poll response with the transcript embedded in the
// nested lattice structure, json_1best serialized as an embedded JSON string
// the way the service returns it.
func latticeBody(t *testing.T, words ...string) string {
	t.Helper()

	var segments []map[string]string
	for _, w := range words {
		best := map[string]any{
			"st": map[string]any{
				"rt": []any{
					map[string]any{
						"ws": []any{
							map[string]any{
								"cw": []any{map[string]any{"w": w}},
							},
						},
					},
				},
			},
		}
		raw, err := json.Marshal(best)
		require.NoError(t, err)
		segments = append(segments, map[string]string{"json_1best": string(raw)})
	}

	orderResult, err := json.Marshal(map[string]any{"lattice": segments})
	require.NoError(t, err)

	body, err := json.Marshal(map[string]any{
		"code": "0",
		"content": map[string]any{
			"orderInfo":   map[string]any{"status": 4},
			"orderResult": string(orderResult),
		},
	})
	require.NoError(t, err)
	return string(body)
}

func TestExtractLatticeConcatenatesWordTokens(t *testing.T) {
	body := latticeBody(t, "你好", "，", "世界")

	text, err := extractText(body, raasrStrategies)
	require.NoError(t, err)
	require.Equal(t, "你好，世界", text)
}

func TestExtractResultString(t *testing.T) {
	body := `{"code":0,"result":"plain transcript"}`

	text, err := extractText(body, legacyStrategies)
	require.NoError(t, err)
	require.Equal(t, "plain transcript", text)
}

func TestExtractResultSegmentList(t *testing.T) {
	body := `{"code":0,"result":[{"onebest":"first. "},{"onebest":"second."}]}`

	text, err := extractText(body, legacyStrategies)
	require.NoError(t, err)
	require.Equal(t, "first. second.", text)
}

func TestExtractDataString(t *testing.T) {
	body := `{"code":0,"data":"from data field"}`

	text, err := extractText(body, legacyStrategies)
	require.NoError(t, err)
	require.Equal(t, "from data field", text)
}

func TestExtractPrefersLatticeOverFlatFields(t *testing.T) {
	body := latticeBody(t, "lattice text")
	// Splice in a competing flat field.
	body = strings.Replace(body, `{"code":"0"`, `{"code":"0","result":"flat text"`, 1)

	text, err := extractText(body, legacyStrategies)
	require.NoError(t, err)
	require.Equal(t, "lattice text", text)
}

func TestExtractUnrecognizedShapeReturnsParseError(t *testing.T) {
	body := `{"code":0,"content":{"something":"else"}}`

	_, err := extractText(body, raasrStrategies)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Contains(t, parseErr.Raw, `"something"`)
}

func TestParseErrorTruncatesRawPayload(t *testing.T) {
	long := `{"junk":"` + strings.Repeat("x", 2000) + `"}`

	_, err := extractText(long, legacyStrategies)
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.LessOrEqual(t, len(parseErr.Raw), rawDiagnosticLimit+3)
	require.True(t, strings.HasSuffix(parseErr.Raw, "..."))
}
