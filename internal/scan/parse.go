package scan

import "strings"

// Parsed holds the structured fields of one marker line.
type Parsed struct {
	Keyword  string
	Assignee string
	Body     string
}

// Parse splits `KEYWORD(ASSIGNEE): BODY` out of a raw marker line. The
// assignee group and colon are both optional. Parsing is total: when no
// colon is present the entire remainder after the keyword becomes the body
// and no assignee is extracted.
func Parse(text string) Parsed {
	text = strings.TrimSpace(text)

	kwEnd := 0
	for kwEnd < len(text) && isWordByte(text[kwEnd]) {
		kwEnd++
	}
	p := Parsed{Keyword: text[:kwEnd]}
	rest := text[kwEnd:]

	// Structured form: optional (assignee) directly after the keyword,
	// then a colon.
	assignee := ""
	tail := rest
	if strings.HasPrefix(tail, "(") {
		if close := strings.Index(tail, ")"); close >= 0 {
			assignee = strings.TrimSpace(tail[1:close])
			tail = tail[close+1:]
		}
	}
	if after, ok := strings.CutPrefix(strings.TrimLeft(tail, " \t"), ":"); ok {
		p.Assignee = assignee
		p.Body = strings.TrimSpace(after)
		return p
	}

	p.Body = strings.TrimSpace(rest)
	return p
}

func isWordByte(b byte) bool {
	return b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '_'
}
