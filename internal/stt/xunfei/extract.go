package xunfei

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// rawDiagnosticLimit caps how much of an unrecognized payload is carried in
// a ParseError.
const rawDiagnosticLimit = 500

// ParseError reports a response whose shape matched none of the known
// transcript layouts. Raw holds the (truncated) payload for diagnostics.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unrecognized recognition result shape: %s", e.Raw)
}

func truncateRaw(s string) string {
	if len(s) > rawDiagnosticLimit {
		return s[:rawDiagnosticLimit] + "..."
	}
	return s
}

// extractStrategy is one named way a transcript may be embedded in a result
// payload. Strategies are tried in a fixed priority order; the first one
// resolving non-empty text wins.
type extractStrategy struct {
	name string
	fn   func(body string) string
}

// legacyStrategies covers the result shapes different lfasr server versions
// have been seen returning.
var legacyStrategies = []extractStrategy{
	{"order-result-lattice", extractOrderResultLattice},
	{"result-string", extractResultString},
	{"result-segments", extractResultSegments},
	{"data-string", extractDataString},
}

// raasrStrategies starts from the documented lattice layout and degrades to
// flatter fields.
var raasrStrategies = []extractStrategy{
	{"order-result-lattice", extractOrderResultLattice},
	{"order-result-text", extractOrderResultText},
	{"result-string", extractResultString},
	{"data-string", extractDataString},
}

func extractText(body string, strategies []extractStrategy) (string, error) {
	for _, s := range strategies {
		if text := strings.TrimSpace(s.fn(body)); text != "" {
			return text, nil
		}
	}
	return "", &ParseError{Raw: truncateRaw(body)}
}

// extractOrderResultLattice walks content.orderResult -> lattice[] ->
// json_1best -> st.rt[] -> ws[] -> cw[0].w, concatenating word tokens in
// order. orderResult and json_1best may each be embedded JSON strings or
// plain objects; gjson resolves both the same way.
func extractOrderResultLattice(body string) string {
	orderResult := gjson.Get(body, "content.orderResult").String()
	if orderResult == "" {
		return ""
	}

	lattice := gjson.Get(orderResult, "lattice")
	if !lattice.IsArray() {
		return ""
	}

	var b strings.Builder
	lattice.ForEach(func(_, seg gjson.Result) bool {
		best := seg.Get("json_1best").String()
		if best == "" {
			return true
		}
		gjson.Get(best, "st.rt").ForEach(func(_, rt gjson.Result) bool {
			rt.Get("ws").ForEach(func(_, ws gjson.Result) bool {
				b.WriteString(ws.Get("cw.0.w").String())
				return true
			})
			return true
		})
		return true
	})
	return b.String()
}

// extractOrderResultText treats a non-JSON orderResult as literal transcript
// text.
func extractOrderResultText(body string) string {
	orderResult := gjson.Get(body, "content.orderResult").String()
	if orderResult == "" || gjson.Valid(orderResult) {
		return ""
	}
	return orderResult
}

func extractResultString(body string) string {
	v := gjson.Get(body, "result")
	if v.Type != gjson.String {
		return ""
	}
	return v.String()
}

// extractResultSegments joins the onebest field of each entry when result is
// a segment list.
func extractResultSegments(body string) string {
	v := gjson.Get(body, "result")
	if !v.IsArray() {
		return ""
	}

	var b strings.Builder
	v.ForEach(func(_, seg gjson.Result) bool {
		b.WriteString(seg.Get("onebest").String())
		return true
	})
	return b.String()
}

func extractDataString(body string) string {
	v := gjson.Get(body, "data")
	if v.Type != gjson.String {
		return ""
	}
	return v.String()
}
