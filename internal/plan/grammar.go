package plan

import "strings"

// HashLength is the number of hex digits in a commit hash.
const HashLength = 40

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isAlnum(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isBranchRune(r rune) bool {
	return isAlnum(r) || r == '@' || r == '-' || r == '_' || r == '/'
}

func isBlank(r rune) bool {
	return r == ' ' || r == '\t'
}

// IsHash reports whether s is exactly 40 hexadecimal digits.
func IsHash(s string) bool {
	if len(s) != HashLength {
		return false
	}
	for _, r := range s {
		if !isHexDigit(r) {
			return false
		}
	}
	return true
}

// ValidRemoteName reports whether name matches the remote grammar: one or
// more alphanumeric characters.
func ValidRemoteName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !isAlnum(r) {
			return false
		}
	}
	return true
}

// ValidBranchName reports whether name matches the branch grammar and is
// usable as a git branch name.
func ValidBranchName(name string) bool {
	if name == "" || name == "@" {
		return false
	}
	for _, r := range name {
		if !isBranchRune(r) {
			return false
		}
	}
	if strings.HasPrefix(name, "-") || strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return false
	}
	if strings.Contains(name, "//") || strings.Contains(name, "@{") {
		return false
	}
	return true
}
