package smali

import (
	"context"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// ErrInvalidUTF8 is the cause of a FileReadError for undecodable content.
var ErrInvalidUTF8 = errors.New("content is not valid UTF-8")

// FileReadError names a disassembly file that could not be read.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// Profile is the Intent extra usage seen in one component's disassembly.
type Profile struct {
	Methods OrderedSet `json:"methods"`
	Extras  OrderedSet `json:"extras"`
}

// Empty reports whether nothing was recorded.
func (p *Profile) Empty() bool {
	return p.Methods.Len() == 0 && p.Extras.Len() == 0
}

// Result holds one profile per successfully scanned component. Components
// without a scanned file have no entry.
type Result struct {
	Profiles map[string]*Profile
	Failures []*FileReadError
}

// Profile returns the profile of name and whether one exists.
func (r *Result) Profile(name string) (*Profile, bool) {
	p, ok := r.Profiles[name]
	return p, ok
}

// Extractor scans disassembly text with a set of rules.
type Extractor struct {
	rules *Rules
	log   logrus.FieldLogger
}

// NewExtractor returns an extractor. Nil rules means DefaultRules.
func NewExtractor(rules *Rules, log logrus.FieldLogger) *Extractor {
	if rules == nil {
		rules = DefaultRules()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Extractor{rules: rules, log: log}
}

// Scan records every match in content into p.
func (e *Extractor) Scan(content string, p *Profile) {
	for _, r := range e.rules.rules {
		for _, m := range r.re.FindAllStringSubmatch(content, -1) {
			p.Methods.Add(m[r.method])
			p.Extras.Add(m[r.extra])
		}
	}
}

// Extract scans each file in order. Unreadable files are collected in
// Result.Failures and skipped; only context cancellation stops the scan.
func (e *Extractor) Extract(ctx context.Context, files []Resolved) (*Result, error) {
	res := &Result{Profiles: make(map[string]*Profile)}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := readText(f.Path)
		if err != nil {
			e.log.WithError(err).WithField("component", f.Component).Warn("Skipping disassembly file")
			res.Failures = append(res.Failures, err)
			continue
		}
		p, ok := res.Profiles[f.Component]
		if !ok {
			p = &Profile{}
			res.Profiles[f.Component] = p
		}
		e.Scan(content, p)
		e.log.WithFields(logrus.Fields{
			"component": f.Component,
			"methods":   p.Methods.Len(),
			"extras":    p.Extras.Len(),
		}).Debug("Scanned disassembly")
	}
	return res, nil
}

func readText(path string) (string, *FileReadError) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &FileReadError{Path: path, Err: err}
	}
	if !utf8.Valid(data) {
		return "", &FileReadError{Path: path, Err: ErrInvalidUTF8}
	}
	return string(data), nil
}
