// Package report renders the findings of a scan for a human or a machine.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mathis2001/Triplex/internal/manifest"
	"github.com/mathis2001/Triplex/internal/smali"
	"github.com/mathis2001/Triplex/internal/utils"
)

// Entry is one exported, intent-filtered component and what was found in
// its disassembly. Disassembly is empty and Profile nil when no file was
// resolved or the file could not be read.
type Entry struct {
	Component   manifest.Component
	Disassembly string
	Profile     *smali.Profile
}

// Report is the outcome of a successful scan.
type Report struct {
	Root     string
	Manifest string
	Entries  []Entry
	Failures []*smali.FileReadError
}

const banner = ` ____  ____  __  ____  __    ____  _  _
(_  _)(  _ \(  )(  _ \(  )  (  __)( \/ )
  )(   )   / )(  ) __// (_/\ ) _)  )  (
 (__) (__\_)(__)(__)  \____/(____)(_/\_)
`

// Banner writes the program banner.
func Banner(w io.Writer, p utils.Palette) {
	for _, line := range strings.Split(strings.TrimSuffix(banner, "\n"), "\n") {
		fmt.Fprintln(w, utils.Colorize(line, p.Header))
	}
	fmt.Fprintln(w)
}

// TextRenderer writes the analyst-facing console report.
type TextRenderer struct {
	w io.Writer
	p utils.Palette
}

func NewTextRenderer(w io.Writer, color bool) *TextRenderer {
	return &TextRenderer{w: w, p: utils.NewPalette(w, color)}
}

func (t *TextRenderer) Render(r *Report) error {
	var b strings.Builder
	for _, e := range r.Entries {
		fmt.Fprintf(&b, "%s Exported %s: %s\n",
			utils.Colorize("[+]", t.p.OK), e.Component.Type.Title(), utils.Colorize(e.Component.Name, t.p.OK))
		if e.Profile != nil {
			t.list(&b, "Extras Methods:", e.Profile.Methods.Items())
			t.list(&b, "Extras keys:", e.Profile.Extras.Items())
		}
		b.WriteString("\n")
	}
	for _, f := range r.Failures {
		fmt.Fprintf(&b, "%s Skipped %s\n", utils.Colorize("[!]", t.p.Warning), f.Error())
	}
	_, err := io.WriteString(t.w, b.String())
	return err
}

func (t *TextRenderer) list(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "    %s %s\n", utils.Colorize("[*]", t.p.Info), title)
	for _, item := range items {
		fmt.Fprintf(b, "        |_ %s\n", utils.Colorize(item, t.p.Info))
	}
}

type jsonEntry struct {
	Type         manifest.ComponentType `json:"type"`
	Name         string                 `json:"name"`
	Exported     bool                   `json:"exported"`
	IntentFilter bool                   `json:"intent_filter"`
	Disassembly  string                 `json:"disassembly,omitempty"`
	Profile      *smali.Profile         `json:"profile"`
}

type jsonFailure struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type jsonReport struct {
	Root       string        `json:"root"`
	Manifest   string        `json:"manifest"`
	Components []jsonEntry   `json:"components"`
	Failures   []jsonFailure `json:"failures,omitempty"`
}

// WriteJSON writes r as indented JSON. A component without a scanned file
// has a null profile; a scanned file without matches has empty lists.
func WriteJSON(w io.Writer, r *Report) error {
	out := jsonReport{
		Root:       r.Root,
		Manifest:   r.Manifest,
		Components: make([]jsonEntry, 0, len(r.Entries)),
	}
	for _, e := range r.Entries {
		out.Components = append(out.Components, jsonEntry{
			Type:         e.Component.Type,
			Name:         e.Component.Name,
			Exported:     e.Component.Exported,
			IntentFilter: e.Component.HasIntentFilter,
			Disassembly:  e.Disassembly,
			Profile:      e.Profile,
		})
	}
	for _, f := range r.Failures {
		out.Failures = append(out.Failures, jsonFailure{Path: f.Path, Error: f.Err.Error()})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "    ")
	return encoder.Encode(out)
}
