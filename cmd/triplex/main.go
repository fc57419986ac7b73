package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mathis2001/Triplex/internal/analyzer"
	"github.com/mathis2001/Triplex/internal/report"
	"github.com/mathis2001/Triplex/internal/utils"
)

const usage = "echo path/to/appRepo/ | triplex"

type options struct {
	config  analyzer.Config
	noColor bool
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "triplex [repo]",
		Short: "List exported Android components and the Intent extras they use",
		Long: `triplex reads the path of an apktool output directory from standard input,
finds the exported components that declare intent filters in AndroidManifest.xml
and scans their smali code for Intent extra keys and accessors.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, opts)
		},
	}
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		c.PrintErrln(err)
		c.PrintErr(c.UsageString())
		return err
	})

	flags := cmd.Flags()
	flags.BoolVar(&opts.config.JSON, "json", false, "Print the report as JSON")
	flags.StringVarP(&opts.config.OutputFile, "output", "o", "", "Also save the report to a file")
	flags.StringVarP(&opts.config.RulesFile, "rules", "r", "", "Extraction rules YAML file")
	flags.StringVar(&opts.config.SmaliDir, "smali-dir", "smali", "Disassembly directory under the repository root")
	flags.DurationVar(&opts.config.Timeout, "timeout", 0, "Abort the scan after this long (0 disables)")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log pipeline progress to stderr")
	return cmd
}

func run(cmd *cobra.Command, args []string, opts *options) error {
	stdout := cmd.OutOrStdout()
	palette := utils.NewPalette(stdout, !opts.noColor)

	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if opts.verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if !opts.config.JSON {
		report.Banner(stdout, palette)
	}

	root, err := readRoot(cmd.InOrStdin(), args)
	if err != nil {
		return fail(stdout, palette, err)
	}
	opts.config.Root = root

	scanner := analyzer.NewScanner(&opts.config, analyzer.WithLogger(log))
	start := time.Now()
	rep, err := scanner.Run(cmd.Context())
	if err != nil {
		return fail(stdout, palette, err)
	}
	log.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Debug("Scan finished")

	if opts.config.JSON {
		err = report.WriteJSON(stdout, rep)
	} else {
		err = report.NewTextRenderer(stdout, !opts.noColor).Render(rep)
	}
	if err != nil {
		return err
	}
	return scanner.Save(rep)
}

func readRoot(in io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return strings.TrimSpace(args[0]), nil
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", errors.Wrap(err, "reading repository path from stdin")
	}
	return strings.TrimSpace(string(data)), nil
}

func fail(w io.Writer, p utils.Palette, err error) error {
	fmt.Fprintf(w, "%s %s\n", utils.Colorize("[!]", p.Warning), message(err))
	fmt.Fprintf(w, "%s usage: %s\n", utils.Colorize("[*]", p.Info), usage)
	return err
}

func message(err error) string {
	switch {
	case errors.Is(err, analyzer.ErrPathNotFound):
		return "Repository path does not exist."
	case errors.Is(err, analyzer.ErrManifestNotFound):
		return "AndroidManifest.xml not found."
	case errors.Is(err, analyzer.ErrNoQualifyingComponents):
		return "No exported components with intents found."
	case errors.Is(err, analyzer.ErrNoDisassemblyFound):
		return "No smali files found."
	case errors.Is(err, context.DeadlineExceeded):
		return "Scan timed out."
	}
	return err.Error()
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
