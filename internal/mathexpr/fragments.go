package mathexpr

import (
	"strings"
)

var environments = map[string]bool{
	"array": true, "tabular": true,
	"aligned": true, "align": true, "align*": true,
	"matrix": true, "pmatrix": true, "bmatrix": true,
	"cases": true, "gathered": true, "gather": true, "gather*": true,
	"equation": true, "equation*": true,
}

// columnSpecEnvs take a {cc|c} argument after \begin{...}
var columnSpecEnvs = map[string]bool{"array": true, "tabular": true}

var inlinePairs = [][2]string{
	{`\(`, `\)`},
	{`\[`, `\]`},
	{"$$", "$$"},
	{"$", "$"},
}

// ExtractFragments returns the candidate formulas of a recognized text blob
// in reading order. Inline and display math are returned whole; tabular and
// aligned environments contribute one candidate per row and, for rows with
// several columns, one per cell. A blob without math markup is returned as
// its own single candidate.
func ExtractFragments(blob string) []string {
	c := &collector{seen: map[string]bool{}}
	c.scan(blob)
	if len(c.out) == 0 {
		if s := strings.TrimSpace(blob); s != "" {
			return []string{s}
		}
		return nil
	}
	return c.out
}

type collector struct {
	out  []string
	seen map[string]bool
}

func (c *collector) add(fragment string) {
	s := strings.TrimSpace(fragment)
	if s == "" || c.seen[s] {
		return
	}
	c.seen[s] = true
	c.out = append(c.out, s)
}

func (c *collector) scan(text string) {
	i := 0
	for i < len(text) {
		rest := text[i:]
		if strings.HasPrefix(rest, `\$`) {
			i += 2
			continue
		}
		if strings.HasPrefix(rest, `\begin{`) {
			if n := c.environment(rest); n > 0 {
				i += n
				continue
			}
			i += len(`\begin{`)
			continue
		}
		if n := c.inline(rest); n > 0 {
			i += n
			continue
		}
		i++
	}
}

// inline consumes one delimited span and reports how many bytes it used
func (c *collector) inline(text string) int {
	for _, pair := range inlinePairs {
		if !strings.HasPrefix(text, pair[0]) {
			continue
		}
		body := text[len(pair[0]):]
		end := strings.Index(body, pair[1])
		if pair[0] == "$" {
			end = dollarClose(body)
		}
		if end < 0 {
			return 0
		}
		// a span swallowing a \( or \[ run was opened by a stray dollar sign
		if strings.HasPrefix(pair[0], "$") && (strings.Contains(body[:end], `\(`) || strings.Contains(body[:end], `\[`)) {
			return 0
		}
		c.math(body[:end])
		return len(pair[0]) + end + len(pair[1])
	}
	return 0
}

// dollarClose finds the end of a $...$ span using the TeX convention: the
// opening $ is not followed by whitespace and the closing $ is neither
// preceded by whitespace nor followed by a digit. R$ 5 and R$5 are prices.
func dollarClose(body string) int {
	if body == "" || isSpace(body[0]) {
		return -1
	}
	for i := 1; i < len(body); i++ {
		if body[i] != '$' {
			continue
		}
		if isSpace(body[i-1]) || body[i-1] == '\\' {
			continue
		}
		if i+1 < len(body) && body[i+1] >= '0' && body[i+1] <= '9' {
			continue
		}
		return i
	}
	return -1
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func (c *collector) math(content string) {
	if strings.Contains(content, `\begin{`) {
		c.scan(content)
		return
	}
	c.add(content)
}

func (c *collector) environment(text string) int {
	open := len(`\begin{`)
	nameEnd := strings.IndexByte(text[open:], '}')
	if nameEnd < 0 {
		return 0
	}
	name := text[open : open+nameEnd]
	if !environments[name] {
		return 0
	}
	bodyStart := open + nameEnd + 1
	endTag := `\end{` + name + `}`
	end := strings.Index(text[bodyStart:], endTag)
	if end < 0 {
		return 0
	}
	body := text[bodyStart : bodyStart+end]
	if columnSpecEnvs[name] {
		body = skipBraceGroup(body)
	}
	c.rows(body)
	return bodyStart + end + len(endTag)
}

func skipBraceGroup(body string) string {
	s := strings.TrimLeft(body, " \t\n")
	if !strings.HasPrefix(s, "{") {
		return body
	}
	depth := 0
	for i, r := range s {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[i+1:]
			}
		}
	}
	return body
}

func (c *collector) rows(body string) {
	for _, row := range strings.Split(body, `\\`) {
		row = strings.ReplaceAll(row, `\hline`, " ")
		cells := strings.Split(row, "&")
		c.add(strings.Join(cells, " "))
		if len(cells) > 1 {
			for _, cell := range cells {
				c.add(cell)
			}
		}
	}
}
