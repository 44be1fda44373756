package remake

import (
	"fmt"
	"io"

	pb "github.com/schollz/progressbar/v3"
)

// A Printer echoes commands as the build runs them.
type Printer interface {
	Print(cmd, target string, step int)
	Done(target string)
}

// NewPrinter returns the printer for style: "basic", "steps" or "progress".
func NewPrinter(style string, w io.Writer) (Printer, error) {
	switch style {
	case "", "basic":
		return &BasicPrinter{w: w}, nil
	case "steps":
		return &StepPrinter{w: w}, nil
	case "progress":
		return NewProgressPrinter(w), nil
	}
	return nil, fmt.Errorf("unknown printer style: %s", style)
}

// BasicPrinter echoes each command on its own line.
type BasicPrinter struct {
	w io.Writer
}

func (p *BasicPrinter) Done(string) {}

func (p *BasicPrinter) Print(cmd, target string, step int) {
	fmt.Fprintln(p.w, cmd)
}

// StepPrinter prefixes each command with the number of the rule it belongs
// to.
type StepPrinter struct {
	w io.Writer
}

func (p *StepPrinter) Done(string) {}

func (p *StepPrinter) Print(cmd, target string, step int) {
	fmt.Fprintf(p.w, "[%d] %s\n", step, cmd)
}

// ProgressPrinter shows a spinner naming the target being built instead of
// the commands.
type ProgressPrinter struct {
	w    io.Writer
	bar  *pb.ProgressBar
	done int
}

func NewProgressPrinter(w io.Writer) *ProgressPrinter {
	bar := pb.NewOptions64(-1,
		pb.OptionSetWriter(w),
		pb.OptionSetWidth(10),
		pb.OptionSpinnerType(14),
		pb.OptionSetPredictTime(false),
		pb.OptionSetDescription("Building"),
		pb.OptionClearOnFinish(),
	)
	return &ProgressPrinter{w: w, bar: bar}
}

func (p *ProgressPrinter) Print(cmd, target string, step int) {
	p.bar.Describe(fmt.Sprintf("Building %-40s", target))
	p.bar.RenderBlank()
}

func (p *ProgressPrinter) Done(target string) {
	p.done++
	p.bar.Describe("Built " + target)
	p.bar.Add(1)
}

// Close clears the spinner and reports how many rules were built.
func (p *ProgressPrinter) Close() error {
	if err := p.bar.Finish(); err != nil {
		return err
	}
	if p.done > 0 {
		fmt.Fprintf(p.w, "built %d rules\n", p.done)
	}
	return nil
}
