package scan

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/joshharrison/todocomb/internal/source"
)

// RawMarker is one marker-bearing comment line: the unit it came from, its
// 1-based line number, and the text from the marker keyword to the end of
// the comment on that line.
type RawMarker struct {
	Unit *source.Unit
	Line int
	Text string
}

// ExtractionError reports a unit whose content could not be decoded as
// text. The unit is skipped and recorded as a warning; the scan continues.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

var (
	errNotText = errors.New("content is not valid UTF-8")
	errBinary  = errors.New("content contains NUL bytes")
)

// Extract returns a restartable lazy sequence of marker candidates in a
// unit. Each physical line yields at most one marker: the first keyword
// occurrence wins. Lines inside a block comment are scanned independently
// with the same rule, and the closing delimiter is not part of the marker
// text. Marker-like text inside string literals is not distinguished.
// The only failure mode is undecodable content.
func Extract(u *source.Unit, profile source.Profile, keywords []string) (iter.Seq[RawMarker], error) {
	if strings.ContainsRune(u.Content, 0) {
		return nil, &ExtractionError{Path: u.Path, Err: errBinary}
	}
	if !utf8.ValidString(u.Content) {
		return nil, &ExtractionError{Path: u.Path, Err: errNotText}
	}

	return func(yield func(RawMarker) bool) {
		inBlock := false
		blockClose := ""

		for i, line := range strings.Split(u.Content, "\n") {
			region, nowInBlock, nowClose := commentRegion(line, profile, inBlock, blockClose)
			inBlock, blockClose = nowInBlock, nowClose
			if region == "" {
				continue
			}
			idx := firstKeyword(region, keywords)
			if idx < 0 {
				continue
			}
			if !yield(RawMarker{Unit: u, Line: i + 1, Text: strings.TrimSpace(region[idx:])}) {
				return
			}
		}
	}, nil
}

// commentRegion returns the comment text of one physical line and the block
// state carried into the next line. Outside a block the earliest comment
// introducer claims the line; anything after a same-line block close is
// ignored as an accepted approximation.
func commentRegion(line string, p source.Profile, inBlock bool, blockClose string) (region string, nowInBlock bool, nowClose string) {
	if inBlock {
		if idx := strings.Index(line, blockClose); idx >= 0 {
			return line[:idx], false, ""
		}
		return line, true, blockClose
	}

	best := -1
	for _, prefix := range p.LinePrefixes {
		if idx := strings.Index(line, prefix); idx >= 0 && (best < 0 || idx < best) {
			best = idx
			region = line[idx+len(prefix):]
			nowInBlock = false
			nowClose = ""
		}
	}
	for _, b := range p.Blocks {
		idx := strings.Index(line, b.Open)
		if idx < 0 || (best >= 0 && idx >= best) {
			continue
		}
		best = idx
		rest := line[idx+len(b.Open):]
		if end := strings.Index(rest, b.Close); end >= 0 {
			region = rest[:end]
			nowInBlock = false
			nowClose = ""
		} else {
			region = rest
			nowInBlock = true
			nowClose = b.Close
		}
	}
	return region, nowInBlock, nowClose
}

// firstKeyword finds the earliest boundary-delimited occurrence of any
// keyword in region, returning its byte index or -1.
func firstKeyword(region string, keywords []string) int {
	best := -1
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		from := 0
		for {
			idx := strings.Index(region[from:], kw)
			if idx < 0 {
				break
			}
			abs := from + idx
			if wordBounded(region, abs, len(kw)) {
				if best < 0 || abs < best {
					best = abs
				}
				break
			}
			from = abs + 1
		}
	}
	return best
}

// wordBounded reports whether the keyword at [idx, idx+n) is delimited by
// non-word runes on both sides, so TODO does not match inside TODOS.
func wordBounded(s string, idx, n int) bool {
	if idx > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:idx])
		if isWordRune(r) {
			return false
		}
	}
	if idx+n < len(s) {
		r, _ := utf8.DecodeRuneInString(s[idx+n:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
