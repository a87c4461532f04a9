package dictionary

import (
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
)

const defineURL = "https://www.urbandictionary.com/define.php?term="

// bracketLink: [слово] в тексте определения ссылается на другое определение.
var bracketLink = regexp.MustCompile(`\[[\w ]+\]`)

// linkify экранирует текст под HTML и превращает [слова] в ссылки.
func linkify(s string) string {
	s = html.EscapeString(s)
	return bracketLink.ReplaceAllStringFunc(s, func(m string) string {
		word := m[1 : len(m)-1]
		return fmt.Sprintf(`<a href="%s%s">%s</a>`, defineURL, url.QueryEscape(html.UnescapeString(word)), word)
	})
}

// Render собирает HTML-карточку определения с номером страницы.
func Render(d Definition, index, total int) string {
	var sb strings.Builder

	if index == 0 {
		sb.WriteString("📖 <b>Urban Dictionary · Top result</b>\n")
	} else {
		fmt.Fprintf(&sb, "📖 <b>Urban Dictionary · %d/%d</b>\n", index+1, total)
	}
	if d.Permalink != "" {
		fmt.Fprintf(&sb, "<a href=\"%s\"><b>%s</b></a>\n\n", html.EscapeString(d.Permalink), html.EscapeString(d.Word))
	} else {
		fmt.Fprintf(&sb, "<b>%s</b>\n\n", html.EscapeString(d.Word))
	}

	sb.WriteString(linkify(strings.TrimSpace(d.Definition)))

	if ex := strings.TrimSpace(d.Example); ex != "" {
		sb.WriteString("\n")
		for _, line := range strings.Split(strings.ReplaceAll(ex, "\r\n", "\n"), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				fmt.Fprintf(&sb, "\n<i>%s</i>", linkify(line))
			}
		}
	}

	if d.Author != "" {
		fmt.Fprintf(&sb, "\n\n— %s", html.EscapeString(d.Author))
		if !d.WrittenOn.IsZero() {
			fmt.Fprintf(&sb, ", %s", d.WrittenOn.Format("2006-01-02"))
		}
	}
	return sb.String()
}
