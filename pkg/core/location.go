package core

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Position is a point in a source file. Lines and columns are 1-based;
// position 1:1 is the first character of the file.
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Location spans a region of a source file.
type Location struct {
	Start Position `json:"start"`
	Stop  Position `json:"stop"`
}

func (l Location) String() string {
	return fmt.Sprintf("%d:%d-%d:%d", l.Start.Line, l.Start.Column, l.Stop.Line, l.Stop.Column)
}

// Path identifies a source file on disk.
type Path string

// Absolute renders the path in absolute form for display. Relative paths
// that cannot be resolved are rendered as given.
func (p Path) Absolute() string {
	abs, err := filepath.Abs(string(p))
	if err != nil {
		return string(p)
	}
	return abs
}

// Reference is a dotted qualified name, e.g. "os.path.join".
type Reference string

func (r Reference) String() string {
	return string(r)
}

// Last returns the final component of the qualified name.
func (r Reference) Last() string {
	s := string(r)
	if idx := strings.LastIndexByte(s, '.'); idx >= 0 {
		return s[idx+1:]
	}
	return s
}

// Combine appends a component to the qualified name.
func (r Reference) Combine(name string) Reference {
	if r == "" {
		return Reference(name)
	}
	return Reference(string(r) + "." + name)
}
