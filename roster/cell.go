package roster

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// CELL NORMALIZATION
// =============================================================================

// NormalizeCell converts a raw cell payload into a trimmed string. It accepts
// the scalar shapes a cell value can take (plain text, rich-text run list,
// numbers, booleans, nil). Formula cells are already unwrapped to their
// cached result by the workbook reader, so they arrive here as scalars.
func NormalizeCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case []excelize.RichTextRun:
		var b strings.Builder
		for _, run := range x {
			b.WriteString(run.Text)
		}
		return strings.TrimSpace(b.String())
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return strings.TrimSpace(x.String())
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// Fold lower-cases text and strips diacritics (NFD decomposition followed by
// combining-mark removal), producing the matching key used throughout the
// extraction tables. Idempotent: Fold(Fold(x)) == Fold(x).
func Fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
