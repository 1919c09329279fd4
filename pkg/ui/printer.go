package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	jsoniter "github.com/json-iterator/go"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	errUtils "github.com/andreatomassetti/ansible-variables/errors"
	"github.com/andreatomassetti/ansible-variables/pkg/config"
	"github.com/andreatomassetti/ansible-variables/pkg/schema"
)

const (
	newline      = "\n"
	bulletIndent = "  * "
	deletedMark  = "DELETED"
	failedMark   = "NOT DELETED"
	yamlIndent   = 2
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Printer renders host reports in one of the supported output formats.
type Printer struct {
	w               io.Writer
	format          string
	verbosity       int
	checkDuplicates bool
	styles          *StyleSet
}

// Option configures a Printer.
type Option func(*Printer)

// WithVerbosity sets the verbosity level. At 1 and above the text output lists
// every file defining a variable.
func WithVerbosity(v int) Option {
	return func(p *Printer) {
		p.verbosity = v
	}
}

// WithDuplicateCheck switches the text output to the duplicate listing.
func WithDuplicateCheck(check bool) Option {
	return func(p *Printer) {
		p.checkDuplicates = check
	}
}

// NewPrinter creates a printer writing to w. Color is one of auto, always or never.
func NewPrinter(w io.Writer, format, color string, opts ...Option) (*Printer, error) {
	switch format {
	case "":
		format = config.FormatText
	case config.FormatText, config.FormatJSON, config.FormatYAML:
	default:
		return nil, errUtils.Build(errUtils.ErrInvalidOutputFormat).
			WithContext("format", format).
			WithHintf("Use one of `%s`, `%s` or `%s`", config.FormatText, config.FormatJSON, config.FormatYAML).
			WithExitCode(errUtils.ExitCodeOptionsError).
			Err()
	}

	p := &Printer{
		w:      w,
		format: format,
		styles: newStyleSet(newRenderer(w, color)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// newRenderer returns a lipgloss renderer bound to w with the color profile
// matching the requested mode.
func newRenderer(w io.Writer, color string) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	switch color {
	case config.ColorAlways:
		if r.ColorProfile() == termenv.Ascii {
			r.SetColorProfile(termenv.ANSI256)
		}
	case config.ColorNever:
		r.SetColorProfile(termenv.Ascii)
	default:
		if !isTerminal(w) {
			r.SetColorProfile(termenv.Ascii)
		}
	}
	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Print writes the reports.
func (p *Printer) Print(reports []schema.HostReport) error {
	switch p.format {
	case config.FormatJSON:
		return p.printJSON(reports)
	case config.FormatYAML:
		return p.printYAML(reports)
	default:
		_, err := io.WriteString(p.w, p.Text(reports))
		return err
	}
}

// Text renders the reports in the human readable format.
func (p *Printer) Text(reports []schema.HostReport) string {
	var b strings.Builder
	for _, report := range reports {
		b.WriteString(p.styles.Header.Render(fmt.Sprintf("== %s | %s ==", report.Host, report.Group)))
		b.WriteString(newline)
		for _, v := range report.Variables {
			p.writeVariable(&b, v)
		}
	}
	return b.String()
}

func (p *Printer) writeVariable(b *strings.Builder, v schema.VariableReport) {
	s := p.styles
	if !p.checkDuplicates {
		fmt.Fprintf(b, "%s: %s - %s%s", s.Name.Render(v.Name), FormatValue(v.Value), s.Source.Render(v.Source), newline)
	}
	if p.verbosity >= 1 {
		for _, path := range v.Occurrences {
			b.WriteString(path)
			b.WriteString(newline)
		}
	}
	if !p.checkDuplicates || v.Duplicates == nil {
		return
	}

	fmt.Fprintf(b, "%s. Originally in: %s duplicated in:%s",
		s.Name.Render(v.Name), s.Source.Render(v.Duplicates.Authoritative.Path), newline)
	for _, dup := range v.Duplicates.Duplicates {
		b.WriteString(bulletIndent)
		b.WriteString(s.Source.Render(dup.Path))
		switch {
		case v.Removed(dup.Path):
			b.WriteString(" " + s.Deleted.Render(deletedMark))
		case attempted(v, dup.Path):
			b.WriteString(" " + s.Failed.Render(failedMark))
		}
		b.WriteString(newline)
	}
}

func attempted(v schema.VariableReport, path string) bool {
	for _, r := range v.Removals {
		if r.Target.Path == path {
			return true
		}
	}
	return false
}

// variableView adds removal outcomes to the structured outputs.
type variableView struct {
	schema.VariableReport `yaml:",inline"`
	Removed               []string `json:"removed,omitempty" yaml:"removed,omitempty"`
	Failed                []string `json:"failed,omitempty" yaml:"failed,omitempty"`
}

type hostView struct {
	Host      string         `json:"host" yaml:"host"`
	Group     string         `json:"group" yaml:"group"`
	Variables []variableView `json:"variables" yaml:"variables"`
}

func views(reports []schema.HostReport) []hostView {
	out := make([]hostView, 0, len(reports))
	for _, report := range reports {
		hv := hostView{Host: report.Host, Group: report.Group, Variables: make([]variableView, 0, len(report.Variables))}
		for _, v := range report.Variables {
			vv := variableView{VariableReport: v}
			for _, r := range v.Removals {
				if r.OK() {
					vv.Removed = append(vv.Removed, r.Target.Path)
				} else {
					vv.Failed = append(vv.Failed, r.Target.Path)
				}
			}
			hv.Variables = append(hv.Variables, vv)
		}
		out = append(out, hv)
	}
	return out
}

func (p *Printer) printJSON(reports []schema.HostReport) error {
	data, err := json.MarshalIndent(views(reports), "", "  ")
	if err != nil {
		return errUtils.Build(err).WithExplanation("failed to encode the report as JSON").Err()
	}
	_, err = p.w.Write(append(data, '\n'))
	return err
}

func (p *Printer) printYAML(reports []schema.HostReport) error {
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(yamlIndent)
	if err := enc.Encode(views(reports)); err != nil {
		return errUtils.Build(err).WithExplanation("failed to encode the report as YAML").Err()
	}
	return enc.Close()
}

// FormatValue renders a variable value for the text output. Strings are
// printed as is, everything else as compact JSON.
func FormatValue(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	out, err := json.MarshalToString(value)
	if err != nil {
		return fmt.Sprint(value)
	}
	return out
}
