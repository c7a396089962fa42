// Package tui implements the live pedagogical display: register/flag/source panes and a command line,
// driven by the debugger package's facade over tcell/tview.
package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/arm-pedagogical/armsim/debugger"
)

// TUI is the text user interface for the debugger facade.
type TUI struct {
	Debugger *debugger.Debugger
	App      *tview.Application

	mainLayout   *tview.Flex
	sourceView   *tview.TextView
	registerView *tview.TextView
	flagsView    *tview.TextView
	outputView   *tview.TextView
	commandInput *tview.InputField

	sourceLines []string
}

// New builds a TUI over dbg, with sourceLines indexed 1-based (sourceLines[0]
// is unused padding) for the source pane.
func New(dbg *debugger.Debugger, sourceLines []string) *TUI {
	t := &TUI{
		Debugger:    dbg,
		App:         tview.NewApplication(),
		sourceLines: sourceLines,
	}
	t.build()
	return t
}

func (t *TUI) build() {
	t.sourceView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.sourceView.SetBorder(true).SetTitle(" Source ")

	t.registerView = tview.NewTextView().SetDynamicColors(true)
	t.registerView.SetBorder(true).SetTitle(" Registers ")

	t.flagsView = tview.NewTextView().SetDynamicColors(true)
	t.flagsView.SetBorder(true).SetTitle(" Flags ")

	t.outputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.outputView.SetBorder(true).SetTitle(" Output ")

	t.commandInput = tview.NewInputField().SetLabel("> ")
	t.commandInput.SetBorder(true).SetTitle(" Command ")
	t.commandInput.SetDoneFunc(func(key tcell.Key) { t.handleCommand(key) })

	rightPanel := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.registerView, 10, 0, false).
		AddItem(t.flagsView, 4, 0, false)

	content := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(t.sourceView, 0, 2, false).
		AddItem(rightPanel, 0, 1, false)

	t.mainLayout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(content, 0, 4, false).
		AddItem(t.outputView, 6, 0, false).
		AddItem(t.commandInput, 3, 0, true)

	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF10:
			t.handleCommand(tcell.KeyEnter, "next")
			return nil
		case tcell.KeyF11:
			t.handleCommand(tcell.KeyEnter, "step")
			return nil
		case tcell.KeyF5:
			t.handleCommand(tcell.KeyEnter, "continue")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		}
		return event
	})
}

// Run starts the TUI event loop.
func (t *TUI) Run() error {
	t.refresh()
	return t.App.SetRoot(t.mainLayout, true).SetFocus(t.commandInput).Run()
}

func (t *TUI) handleCommand(key tcell.Key, forced ...string) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.commandInput.GetText()
	if len(forced) > 0 {
		cmd = forced[0]
	}
	t.commandInput.SetText("")
	if cmd == "" {
		return
	}
	if cmd == "quit" || cmd == "q" {
		t.App.Stop()
		return
	}
	t.execute(cmd)
	t.refresh()
}

func (t *TUI) execute(cmd string) {
	switch cmd {
	case "step", "s":
		t.step(debugger.StepInto)
	case "next", "n":
		t.step(debugger.StepForward)
	case "finish":
		t.step(debugger.StepOut)
	case "continue", "c":
		if err := t.Debugger.Run(0); err != nil {
			t.writeOutput(fmt.Sprintf("runtime error: %v\n", err))
		}
		t.reportBreak()
	default:
		t.writeOutput(fmt.Sprintf("unrecognized command: %s\n", cmd))
	}
}

func (t *TUI) step(mode debugger.StepMode) {
	res, err := t.Debugger.Step(mode)
	if err != nil {
		t.writeOutput(fmt.Sprintf("runtime error: %v\n", err))
		return
	}
	t.writeOutput(fmt.Sprintf("stepped to 0x%08X\n", res.InstrAddr))
	t.reportBreak()
}

func (t *TUI) reportBreak() {
	if bp := t.Debugger.LastBreak; bp != nil {
		t.writeOutput(fmt.Sprintf("[red]breakpoint:[white] %s %s\n", bp.Kind, bp.Detail))
		t.Debugger.LastBreak = nil
	}
}

func (t *TUI) writeOutput(s string) {
	fmt.Fprint(t.outputView, s)
	t.outputView.ScrollToEnd()
}

func (t *TUI) refresh() {
	t.updateSource()
	t.updateRegisters()
	t.updateFlags()
	t.App.Draw()
}

func (t *TUI) updateSource() {
	line := t.Debugger.GetCurrentLine()
	var b strings.Builder
	for i, src := range t.sourceLines {
		if i == 0 {
			continue
		}
		marker := "  "
		color := "white"
		if i == line {
			marker = "->"
			color = "yellow"
		}
		fmt.Fprintf(&b, "[%s]%s %4d %s[white]\n", color, marker, i, src)
	}
	t.sourceView.SetText(b.String())
}

func (t *TUI) updateRegisters() {
	snap := t.Debugger.GetRegisters()
	var b strings.Builder
	for i := 0; i < 16; i += 4 {
		for j := 0; j < 4; j++ {
			fmt.Fprintf(&b, "R%-2d=0x%08X  ", i+j, snap.General[i+j])
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "mode=%s cycles=%d\n", snap.Mode, t.Debugger.GetCycleCount())
	t.registerView.SetText(b.String())
}

func (t *TUI) updateFlags() {
	f := t.Debugger.GetFlags()
	t.flagsView.SetText(fmt.Sprintf("N=%v Z=%v C=%v V=%v\nI=%v F=%v", f.N, f.Z, f.C, f.V, f.I, f.F))
}
