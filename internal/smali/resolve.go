// Package smali maps manifest components onto their apktool smali files and
// scans those files for Intent extra usage.
package smali

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultDir is the disassembly tree apktool writes for the primary dex.
	DefaultDir = "smali"

	// Ext is the extension of a disassembled class file.
	Ext = ".smali"
)

// Resolved pairs a component name with its disassembly file.
type Resolved struct {
	Component string `json:"component"`
	Path      string `json:"path"`
}

// PathFor returns the expected disassembly file of the class name under
// root/dir. An empty dir means DefaultDir.
func PathFor(root, dir, name string) string {
	if dir == "" {
		dir = DefaultDir
	}
	rel := strings.ReplaceAll(name, ".", string(filepath.Separator)) + Ext
	return filepath.Join(root, dir, rel)
}

// Resolve returns, in input order, the names whose disassembly file exists.
// Names without a file are dropped; empty names never resolve.
func Resolve(root, dir string, names []string) []Resolved {
	var out []Resolved
	for _, name := range names {
		if name == "" {
			continue
		}
		path := PathFor(root, dir, name)
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		out = append(out, Resolved{Component: name, Path: path})
	}
	return out
}
