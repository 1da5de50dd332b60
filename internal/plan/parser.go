package plan

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	targetPrefix = "->"
	testPrefix   = "$"
	commentMark  = "#"
	endOfLine    = "end of line"
)

// Parse turns plan text into a Plan. Either the whole text parses or a
// single *ParseError is returned.
func Parse(text string) (*Plan, error) {
	p := &Plan{}
	lines := splitLines(text)

	// current is the index of the entry accepting target and test lines, or -1
	current := -1

	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimRight(raw, " \t\r")

		switch {
		case line == "":
			current = -1

		case strings.HasPrefix(line, commentMark):
			continue

		case strings.HasPrefix(line, targetPrefix):
			if current < 0 {
				return nil, errorAt(lineNo, line, 0, "commit line before target", quoteRest(line))
			}
			entry := &p.Entries[current]
			if entry.Target != nil {
				return nil, errorAt(lineNo, line, 0, "test line or blank line", "second target for "+ShortHash(entry.Commit.Hash))
			}
			if len(entry.Tests) > 0 {
				return nil, errorAt(lineNo, line, 0, "target before test lines", "target after test")
			}
			target, err := parseTarget(lineNo, line)
			if err != nil {
				return nil, err
			}
			entry.Target = target

		case strings.HasPrefix(line, testPrefix):
			if current < 0 {
				return nil, errorAt(lineNo, line, 0, "commit line before test", quoteRest(line))
			}
			test, err := parseTest(lineNo, line)
			if err != nil {
				return nil, err
			}
			p.Entries[current].Tests = append(p.Entries[current].Tests, test)

		default:
			commit, err := parseCommit(lineNo, line)
			if err != nil {
				return nil, err
			}
			commit.Index = len(p.Entries)
			p.Entries = append(p.Entries, Entry{Commit: commit})
			current = len(p.Entries) - 1
		}
	}

	if len(p.Entries) == 0 {
		return nil, &ParseError{
			Line:     len(lines) + 1,
			Column:   1,
			Expected: "at least one commit line",
			Found:    "end of input",
		}
	}

	return p, nil
}

// parseCommit parses "<40 hex> <title>".
func parseCommit(lineNo int, line string) (CommitRecord, error) {
	n := 0
	for n < len(line) && isHexDigit(rune(line[n])) {
		n++
	}

	if n == 0 {
		r, _ := utf8.DecodeRuneInString(line)
		return CommitRecord{}, errorAt(lineNo, line, 0,
			"commit hash, target (->), test ($) or comment (#)", strconv.QuoteRune(r))
	}
	if n < len(line) && !isBlank(rune(line[n])) && n < HashLength {
		r, _ := utf8.DecodeRuneInString(line[n:])
		return CommitRecord{}, errorAt(lineNo, line, n, "hexadecimal digit", strconv.QuoteRune(r))
	}
	if n != HashLength {
		return CommitRecord{}, errorAt(lineNo, line, 0,
			fmt.Sprintf("%d hexadecimal digits", HashLength), fmt.Sprintf("%d", n))
	}
	if n == len(line) {
		return CommitRecord{}, errorAt(lineNo, line, n, "commit title", endOfLine)
	}
	if !isBlank(rune(line[n])) {
		r, _ := utf8.DecodeRuneInString(line[n:])
		return CommitRecord{}, errorAt(lineNo, line, n, "whitespace after commit hash", strconv.QuoteRune(r))
	}

	title := strings.TrimLeft(line[n:], " \t")
	if title == "" {
		return CommitRecord{}, errorAt(lineNo, line, len(line), "commit title", endOfLine)
	}

	return CommitRecord{
		Hash:  strings.ToLower(line[:n]),
		Title: title,
	}, nil
}

// parseTarget parses "-> [origin:]branch".
func parseTarget(lineNo int, line string) (*Target, error) {
	pos := len(targetPrefix)
	for pos < len(line) && isBlank(rune(line[pos])) {
		pos++
	}

	end := pos
	for end < len(line) && isAlnum(rune(line[end])) {
		end++
	}

	target := &Target{}
	if end < len(line) && line[end] == ':' {
		if end == pos {
			return nil, errorAt(lineNo, line, pos, "remote name", "':'")
		}
		target.Remote = line[pos:end]
		pos = end + 1
	}

	start := pos
	for pos < len(line) {
		r, size := utf8.DecodeRuneInString(line[pos:])
		if !isBranchRune(r) {
			return nil, errorAt(lineNo, line, pos, "branch name character [A-Za-z0-9@_/-]", strconv.QuoteRune(r))
		}
		pos += size
	}
	if start == len(line) {
		return nil, errorAt(lineNo, line, start, "branch name", endOfLine)
	}

	target.Branch = line[start:]
	return target, nil
}

// parseTest parses "$ command".
func parseTest(lineNo int, line string) (TestCommand, error) {
	pos := len(testPrefix)
	if pos == len(line) {
		return TestCommand{}, errorAt(lineNo, line, pos, "command", endOfLine)
	}
	if !isBlank(rune(line[pos])) {
		r, _ := utf8.DecodeRuneInString(line[pos:])
		return TestCommand{}, errorAt(lineNo, line, pos, "whitespace after '$'", strconv.QuoteRune(r))
	}

	command := strings.TrimLeft(line[pos:], " \t")
	if command == "" {
		return TestCommand{}, errorAt(lineNo, line, len(line), "command", endOfLine)
	}
	return TestCommand{Command: command}, nil
}

// errorAt builds a ParseError for a byte offset within line.
func errorAt(lineNo int, line string, offset int, expected, found string) *ParseError {
	if offset > len(line) {
		offset = len(line)
	}
	return &ParseError{
		Line:     lineNo,
		Column:   utf8.RuneCountInString(line[:offset]) + 1,
		Expected: expected,
		Found:    found,
	}
}

func quoteRest(line string) string {
	return strconv.Quote(line)
}

// splitLines splits on "\n", dropping the empty element after a final newline.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
