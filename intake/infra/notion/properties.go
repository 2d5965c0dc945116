package notion

import (
	"strings"
	"time"
	"unicode/utf8"
)

// maxRichTextLength é o limite do Notion por objeto de rich text.
const maxRichTextLength = 2000

// Properties é o mapa nome da coluna -> valor no formato da API.
type Properties map[string]any

type textContent struct {
	Content string `json:"content"`
}

type richTextItem struct {
	Type string      `json:"type"`
	Text textContent `json:"text"`
}

type selectOption struct {
	Name string `json:"name"`
}

type dateValue struct {
	Start string `json:"start"`
}

func Title(s string) any {
	return map[string][]richTextItem{"title": richText(s)}
}

func RichText(s string) any {
	return map[string][]richTextItem{"rich_text": richText(s)}
}

func Email(s string) any {
	if s == "" {
		return map[string]any{"email": nil}
	}
	return map[string]string{"email": s}
}

func URL(s string) any {
	if s == "" {
		return map[string]any{"url": nil}
	}
	return map[string]string{"url": s}
}

// Select usa o nome como opção; vírgula não é aceita pelo Notion em opções.
func Select(name string) any {
	name = strings.TrimSpace(strings.ReplaceAll(name, ",", " "))
	return map[string]selectOption{"select": {Name: name}}
}

func Date(t time.Time) any {
	return map[string]dateValue{"date": {Start: t.UTC().Format(time.RFC3339)}}
}

// richText quebra s em pedaços de até maxRichTextLength caracteres.
func richText(s string) []richTextItem {
	if s == "" {
		return []richTextItem{}
	}

	var out []richTextItem
	for s != "" {
		cut := len(s)
		if utf8.RuneCountInString(s) > maxRichTextLength {
			n := 0
			for i := range s {
				if n == maxRichTextLength {
					cut = i
					break
				}
				n++
			}
		}
		out = append(out, richTextItem{Type: "text", Text: textContent{Content: s[:cut]}})
		s = s[cut:]
	}
	return out
}
