package block

import "regexp"

// dividerPattern matches any line containing a horizontal rule
// character. Inside a block body these lines are the section headers
// GEF and pwndbg draw between context panes, with the pane title
// embedded in the rule (e.g. "───[ registers ]───").
var dividerPattern = regexp.MustCompile(`(?m)^[^\n]*─[^\n]*(?:\r?\n|$)`)

// Pair is one (header, content) section of a completed block body. The
// header is the divider line the section followed; the content is the
// raw text up to the next divider, border padding included.
type Pair struct {
	Header  string
	Content string
}

// Split breaks a completed block body into its sections. The leading
// return is the text before the first divider, which belongs to no
// section and should rejoin the pass-through stream.
func Split(body string) (leading string, pairs []Pair) {
	locs := dividerPattern.FindAllStringIndex(body, -1)
	if len(locs) == 0 {
		return body, nil
	}
	leading = body[:locs[0][0]]
	for i, loc := range locs {
		end := len(body)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		pairs = append(pairs, Pair{
			Header:  body[loc[0]:loc[1]],
			Content: body[loc[1]:end],
		})
	}
	return leading, pairs
}

// TrimBorder strips the two leading and two trailing characters of a
// section's content, the decorative padding the debugger draws around
// each pane body. Content too short to carry a border is returned as is.
func TrimBorder(content string) string {
	r := []rune(content)
	if len(r) < 4 {
		return content
	}
	return string(r[2 : len(r)-2])
}
