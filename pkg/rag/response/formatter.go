package response

import (
	"fmt"
	"strings"
)

// ResultField is the key that carries the answer text in structured answers.
const ResultField = "result"

// MarkdownV2Reserved lists every character Telegram MarkdownV2 treats as markup.
const MarkdownV2Reserved = "_*[]()~`>#+-=|{}.!\\"

// Result is implemented by structured answers.
type Result interface {
	ResultText() string
}

// Text extracts the answer text from v: structured answers yield their result
// field, strings pass through, anything else is printed.
func Text(v any) string {
	switch r := v.(type) {
	case nil:
		return ""
	case string:
		return r
	case Result:
		return r.ResultText()
	case map[string]any:
		if res, ok := r[ResultField]; ok {
			return Text(res)
		}
	case map[string]string:
		if res, ok := r[ResultField]; ok {
			return res
		}
	case fmt.Stringer:
		return r.String()
	}
	return fmt.Sprint(v)
}

// EscapeMarkdown prefixes every reserved character with a backslash so the
// text renders literally.
func EscapeMarkdown(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/8)
	for _, r := range s {
		if strings.ContainsRune(MarkdownV2Reserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Format turns any answer value into escaped text ready for delivery.
func Format(v any) string {
	return EscapeMarkdown(Text(v))
}
