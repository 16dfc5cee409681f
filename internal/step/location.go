package step

import (
	"path/filepath"
	"strconv"
)

// Location is where a step definition was declared.
type Location struct {
	File string
	Line int
}

// String formats the location as file:line.
func (l Location) String() string {
	switch {
	case l.File == "":
		return "<unknown>"
	case l.Line <= 0:
		return l.File
	default:
		return l.File + ":" + strconv.Itoa(l.Line)
	}
}

// IsZero reports whether the location is unset.
func (l Location) IsZero() bool {
	return l.File == "" && l.Line == 0
}

// In reports whether the location is in file. A bare file name matches any
// directory; a path must match after cleaning.
func (l Location) In(file string) bool {
	if file == "" || l.File == "" {
		return false
	}
	if filepath.Base(file) == file {
		return filepath.Base(l.File) == file
	}
	return filepath.Clean(l.File) == filepath.Clean(file)
}
