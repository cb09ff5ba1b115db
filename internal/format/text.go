// Package format provides text helpers for terminal output.
package format

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"github.com/spiffcs/codewatch/internal/constants"
)

// ansiRegex matches ANSI escape sequences
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

const (
	ellipsis = "..."
	// vs16 forces emoji presentation, widening the preceding rune to 2 columns
	vs16 = '\uFE0F'
)

// StripAnsi removes ANSI escape sequences from a string.
func StripAnsi(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// DisplayWidth returns the number of terminal columns s occupies, ignoring
// ANSI escape sequences.
func DisplayWidth(s string) int {
	width := 0
	runes := []rune(StripAnsi(s))
	for i := 0; i < len(runes); i++ {
		switch {
		case i+1 < len(runes) && runes[i+1] == vs16:
			width += 2
			i++
		case runes[i] == vs16:
		default:
			width += runewidth.RuneWidth(runes[i])
		}
	}
	return width
}

// TruncateToWidth shortens s to at most maxWidth columns, ending it with
// "..." when cut. Escape sequences are kept, followed by a reset after the
// ellipsis. It returns the result and its visible width.
func TruncateToWidth(s string, maxWidth int) (string, int) {
	if width := DisplayWidth(s); width <= maxWidth {
		return s, width
	}
	if maxWidth <= constants.TruncationSuffixWidth {
		return ellipsis[:max(maxWidth, 0)], max(maxWidth, 0)
	}

	target := maxWidth - constants.TruncationSuffixWidth
	escapes := ansiRegex.FindAllStringIndex(s, -1)

	var b strings.Builder
	width, pos, next := 0, 0, 0
	for pos < len(s) {
		if next < len(escapes) && pos == escapes[next][0] {
			b.WriteString(s[escapes[next][0]:escapes[next][1]])
			pos = escapes[next][1]
			next++
			continue
		}

		r, size := utf8.DecodeRuneInString(s[pos:])
		end, rw := pos+size, runewidth.RuneWidth(r)
		if nr, nsize := utf8.DecodeRuneInString(s[end:]); end < len(s) && nr == vs16 {
			end += nsize
			rw = 2
		}
		if r == vs16 {
			rw = 0
		}
		if width+rw > target {
			break
		}
		b.WriteString(s[pos:end])
		width += rw
		pos = end
	}

	b.WriteString(ellipsis)
	if len(escapes) > 0 {
		b.WriteString("\033[0m")
	}
	return b.String(), width + constants.TruncationSuffixWidth
}

// PadRight pads s with spaces from visibleWidth up to targetWidth.
func PadRight(s string, visibleWidth, targetWidth int) string {
	if visibleWidth >= targetWidth {
		return s
	}
	return s + strings.Repeat(" ", targetWidth-visibleWidth)
}

// FirstLine returns the first line of s without surrounding whitespace.
func FirstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return strings.TrimSpace(line)
}
