package content

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

const excerptRunes = 200

// skipText lists elements whose text never reaches an excerpt.
var skipText = map[string]bool{
	"script": true,
	"style":  true,
	"head":   true,
}

// PlainText extracts the visible text of an HTML fragment with collapsed whitespace.
func PlainText(fragment string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	depth := 0
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// io.EOF or a malformed tail; keep what was read.
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if skipText[string(name)] {
				depth++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if skipText[string(name)] && depth > 0 {
				depth--
			}
			b.WriteByte(' ')
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if depth == 0 {
				b.Write(tokenizer.Text())
			}
		}
	}
}

// Excerpt returns the first 200 runes of the post text, cut at a word
// boundary and ending in an ellipsis when truncated.
func Excerpt(fragment string) string {
	text := PlainText(fragment)
	runes := []rune(text)
	if len(runes) <= excerptRunes {
		return text
	}
	cut := runes[:excerptRunes]
	if !unicode.IsSpace(runes[excerptRunes]) {
		if last := lastSpace(cut); last > 0 {
			cut = cut[:last]
		}
	}
	return strings.TrimRightFunc(string(cut), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}) + "…"
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return -1
}
