package analyzer

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mathis2001/Triplex/internal/manifest"
	"github.com/mathis2001/Triplex/internal/report"
	"github.com/mathis2001/Triplex/internal/smali"
)

type Config struct {
	Root       string
	SmaliDir   string
	RulesFile  string
	OutputFile string
	JSON       bool
	Timeout    time.Duration
}

// Locator finds the manifest of the application rooted at root.
type Locator interface {
	Locate(ctx context.Context, root string) (string, error)
}

type Option func(*Scanner)

func WithLocator(l Locator) Option {
	return func(s *Scanner) { s.locator = l }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Scanner) { s.log = log }
}

// Scanner runs the pipeline: locate the manifest, extract exported
// components, resolve their smali files and scan them for Intent extras.
// Stages run one after another.
type Scanner struct {
	config  *Config
	locator Locator
	log     logrus.FieldLogger
	create  func(name string) (io.WriteCloser, error)
}

func NewScanner(config *Config, opts ...Option) *Scanner {
	s := &Scanner{config: config}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.locator == nil {
		s.locator = manifest.Walker{Log: s.log}
	}
	if s.create == nil {
		s.create = func(name string) (io.WriteCloser, error) { return os.Create(name) }
	}
	return s
}

func (s *Scanner) Run(ctx context.Context) (*report.Report, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	root := s.config.Root
	if err := s.validateRoot(); err != nil {
		return nil, err
	}

	rules, err := s.loadRules()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load rules")
	}

	manifestPath, err := s.locator.Locate(ctx, root)
	if err != nil {
		return nil, errors.Wrapf(err, "searching %s", root)
	}
	s.log.WithField("manifest", manifestPath).Info("Parsing manifest")

	components, err := manifest.FindExportedIntentComponents(manifestPath)
	if err != nil {
		return nil, err
	}
	if len(components) == 0 {
		return nil, ErrNoQualifyingComponents
	}
	s.log.WithField("count", len(components)).Info("Found exported components")

	names := make([]string, 0, len(components))
	for _, c := range components {
		names = append(names, c.Name)
	}
	files := smali.Resolve(root, s.config.SmaliDir, names)
	if len(files) == 0 {
		return nil, ErrNoDisassemblyFound
	}
	s.log.WithField("count", len(files)).Info("Resolved smali files")

	result, err := smali.NewExtractor(rules, s.log).Extract(ctx, files)
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan smali files")
	}

	return buildReport(root, manifestPath, components, files, result), nil
}

func (s *Scanner) validateRoot() error {
	if _, err := os.Stat(s.config.Root); err != nil {
		s.log.WithError(err).WithField("root", s.config.Root).Debug("Root check failed")
		return errors.Wrap(ErrPathNotFound, s.config.Root)
	}
	return nil
}

func (s *Scanner) loadRules() (*smali.Rules, error) {
	if s.config.RulesFile == "" {
		return smali.DefaultRules(), nil
	}
	return smali.LoadRules(s.config.RulesFile, s.log)
}

func buildReport(root, manifestPath string, components []manifest.Component, files []smali.Resolved, result *smali.Result) *report.Report {
	paths := make(map[string]string, len(files))
	for _, f := range files {
		paths[f.Component] = f.Path
	}

	r := &report.Report{
		Root:     root,
		Manifest: manifestPath,
		Failures: result.Failures,
	}
	for _, c := range components {
		e := report.Entry{Component: c}
		if p, ok := result.Profile(c.Name); ok {
			e.Disassembly = paths[c.Name]
			e.Profile = p
		}
		r.Entries = append(r.Entries, e)
	}
	return r
}

// Save writes the report to the configured output file, if any. The file
// is only reported as saved once it has been closed successfully.
func (s *Scanner) Save(r *report.Report) (err error) {
	if s.config.OutputFile == "" {
		return nil
	}

	file, err := s.create(s.config.OutputFile)
	if err != nil {
		return errors.Wrap(err, "failed to create output file")
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "closing %s", s.config.OutputFile)
		}
		if err == nil {
			s.log.WithField("file", s.config.OutputFile).Info("Results saved")
		}
	}()

	if s.config.JSON {
		err = report.WriteJSON(file, r)
	} else {
		err = report.NewTextRenderer(file, false).Render(r)
	}
	return errors.Wrapf(err, "writing %s", s.config.OutputFile)
}
