package taskparser

import (
	"strconv"
	"strings"
)

// Session type markers used by the "=X" option.
const (
	TypeLong  = "="
	TypeShort = "-"
	TypeTodo  = "."
)

const (
	minTomato = 1
	maxTomato = 5
)

// Options are the fields found in one line of task description text. Once
// and Pattern keep their raw text; resolving them is up to the caller.
type Options struct {
	Title   string
	Tomato  int
	Type    string
	Once    string
	Pattern string
	Parent  string

	HasTomato bool
}

func (o Options) Scheduled() bool {
	return o.Once != "" || o.Pattern != ""
}

// ParseTaskDescription scans a line such as
//
//	Task title. #3 @Mon *m =. ^parent title^
//
// Single word options start with '@', '#', '*' or '=' and run to the next
// whitespace; '^' pairs enclose a multi word parent title; every other run
// of text is title. Later occurrences of an option replace earlier ones.
func ParseTaskDescription(line string) Options {
	var opts Options
	var title []string

	for i := 0; i < len(line); {
		c := line[i]
		switch {
		case isSingleWordPrefix(c):
			end := i + 1
			for end < len(line) && !isSpace(line[end]) {
				end++
			}
			if end == i+1 {
				// a bare marker carries no option
				title = append(title, string(c))
				i = end
				continue
			}
			applyOption(&opts, line[i:end])
			i = end
		case c == '^':
			closing := strings.IndexByte(line[i+1:], '^')
			if closing <= 0 {
				// unmatched or empty: skip the marker
				i++
				continue
			}
			opts.Parent = strings.ToLower(line[i+1 : i+1+closing])
			i += closing + 2
		default:
			end := i
			for end < len(line) && !isSingleWordPrefix(line[end]) && line[end] != '^' {
				end++
			}
			title = append(title, line[i:end])
			i = end
		}
	}

	opts.Title = cleanTitle(strings.Join(title, " "))
	return opts
}

func applyOption(opts *Options, token string) {
	body := token[1:]
	switch token[0] {
	case '@':
		opts.Once = token
	case '*':
		opts.Pattern = token
	case '#':
		if n, err := strconv.Atoi(body); err == nil {
			opts.Tomato = min(maxTomato, max(n, minTomato))
			opts.HasTomato = true
		}
	case '=':
		opts.Type = body
	}
}

// cleanTitle trims whitespace and the trailing '.' that usually ends the
// title part of a line.
func cleanTitle(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(strings.TrimSuffix(s, "."))
}

func isSingleWordPrefix(c byte) bool {
	return c == '@' || c == '#' || c == '*' || c == '='
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
