// Package names classifies and splits dataset, snapshot and bookmark names.
package names

import (
	"strings"
)

// MaxNameLen applies both to a full name and to each path component.
const MaxNameLen = 255

type Result int

const (
	Valid Result = iota
	Invalid
	TooLongName      // the full name exceeds MaxNameLen
	TooLongComponent // a single component exceeds MaxNameLen
)

func validChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '_' || c == '-' || c == ':' || c == '.' || c == ' ':
		return true
	}
	return false
}

func checkComponent(s string) Result {
	if s == "" {
		return Invalid
	}
	for i := 0; i < len(s); i++ {
		if !validChar(s[i]) {
			return Invalid
		}
	}
	if len(s) > MaxNameLen {
		return TooLongComponent
	}
	return Valid
}

// CheckDataset validates a filesystem or volume path: slash separated
// components, no '@' or '#'.
func CheckDataset(name string) Result {
	if name == "" || strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		return Invalid
	}
	long := false
	for _, part := range strings.Split(name, "/") {
		switch checkComponent(part) {
		case Invalid:
			return Invalid
		case TooLongComponent:
			long = true
		}
	}
	if long {
		return TooLongComponent
	}
	if len(name) > MaxNameLen {
		return TooLongName
	}
	return Valid
}

func checkSuffixed(name string, sep byte) Result {
	i := strings.IndexByte(name, sep)
	if i < 0 {
		return Invalid
	}
	ds, suffix := name[:i], name[i+1:]
	if strings.ContainsAny(suffix, "/@#") {
		return Invalid
	}
	long := false
	switch CheckDataset(ds) {
	case Invalid:
		return Invalid
	case TooLongComponent:
		long = true
	}
	switch checkComponent(suffix) {
	case Invalid:
		return Invalid
	case TooLongComponent:
		long = true
	}
	if long {
		return TooLongComponent
	}
	if len(name) > MaxNameLen {
		return TooLongName
	}
	return Valid
}

// CheckSnapshot validates a `dataset@snap` name.
func CheckSnapshot(name string) Result {
	return checkSuffixed(name, '@')
}

// CheckBookmark validates a `dataset#mark` name.
func CheckBookmark(name string) Result {
	return checkSuffixed(name, '#')
}

// IsSnapshot reports whether the name is snapshot shaped, regardless of
// whether it is otherwise valid.
func IsSnapshot(name string) bool {
	return strings.Contains(name, "@")
}

// IsBookmark reports whether the name is bookmark shaped.
func IsBookmark(name string) bool {
	return strings.Contains(name, "#")
}

// SplitSnapshot separates `dataset@snap` into its dataset and snapshot parts.
func SplitSnapshot(name string) (dataset, snap string, ok bool) {
	i := strings.IndexByte(name, '@')
	if i < 0 {
		return "", "", false
	}
	return name[:i], name[i+1:], true
}

// SplitBookmark separates `dataset#mark` into its dataset and bookmark parts.
func SplitBookmark(name string) (dataset, mark string, ok bool) {
	i := strings.IndexByte(name, '#')
	if i < 0 {
		return "", "", false
	}
	return name[:i], name[i+1:], true
}

// Pool returns the leading path component, the pool the name belongs to.
func Pool(name string) string {
	end := len(name)
	for i := 0; i < len(name); i++ {
		if name[i] == '/' || name[i] == '@' || name[i] == '#' {
			end = i
			break
		}
	}
	return name[:end]
}

// Parent returns the enclosing dataset of a dataset path. The second return
// is false for pool roots.
func Parent(name string) (string, bool) {
	i := strings.LastIndexByte(name, '/')
	if i < 0 {
		return "", false
	}
	return name[:i], true
}
