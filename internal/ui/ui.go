// Package ui provides styled terminal output and interactive prompts
// for the AutoCoder CLI.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.Color("#2CD7C7")
	colorWarning = lipgloss.Color("#F4D03F")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#5C6A72")
	colorTitle   = lipgloss.Color("#20B9B4")

	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorTitle)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess)
	styleWarning = lipgloss.NewStyle().Foreground(colorWarning)
	styleError   = lipgloss.NewStyle().Foreground(colorError)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
)

// Console writes styled messages and reads interactive answers.
type Console struct {
	out io.Writer
	in  *bufio.Reader
}

// NewConsole returns a Console over stdin/stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout, in: bufio.NewReader(os.Stdin)}
}

// NewConsoleWith returns a Console over the given streams, for tests.
func NewConsoleWith(out io.Writer, in io.Reader) *Console {
	return &Console{out: out, in: bufio.NewReader(in)}
}

// Info prints an informational message.
func (c *Console) Info(text string) {
	fmt.Fprintf(c.out, "%s %s\n", styleMuted.Render("│"), text)
}

// Success prints a success message with a checkmark.
func (c *Console) Success(text string) {
	fmt.Fprintf(c.out, "%s %s\n", styleSuccess.Render("✓"), styleSuccess.Render(text))
}

// Warn prints a warning message.
func (c *Console) Warn(text string) {
	fmt.Fprintf(c.out, "%s %s\n", styleWarning.Render("⚠"), styleWarning.Render(text))
}

// Error prints an error message.
func (c *Console) Error(text string) {
	fmt.Fprintf(c.out, "%s %s\n", styleError.Render("✗"), styleError.Render(text))
}

// Output prints raw captured program output, unstyled.
func (c *Console) Output(text string) {
	fmt.Fprintln(c.out, strings.TrimRight(text, "\n"))
}

// Step frames a blocking operation with a progress message.
func (c *Console) Step(text string) {
	fmt.Fprintf(c.out, "%s %s\n", styleMuted.Render("→"), styleMuted.Render(text))
}

// Prompt asks the user a question and returns the trimmed answer.
func (c *Console) Prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question. Anything but y/yes is a no.
func (c *Console) Confirm(question string) bool {
	answer, err := c.Prompt(question + " [y/N] ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

// Welcome prints the interactive banner.
func (c *Console) Welcome() {
	fmt.Fprintln(c.out, styleTitle.Render("AutoCoder"))
	fmt.Fprintln(c.out, styleMuted.Render("Describe a project to build it, or type 'help' for commands."))
	fmt.Fprintln(c.out)
}

// Help prints the command reference.
func (c *Console) Help() {
	fmt.Fprintln(c.out, styleTitle.Render("Commands"))
	for _, row := range [][2]string{
		{"new [description]", "generate a new project"},
		{"run [name]", "run the current (or named) project"},
		{"edit [instruction]", "change the current project"},
		{"retry", "ask the model to fix the last run error"},
		{"load [name|number]", "switch to an existing project"},
		{"list", "list all projects"},
		{"status", "show session status"},
		{"logs [filter]", "show recent log lines"},
		{"help", "show this help"},
		{"exit", "quit"},
	} {
		fmt.Fprintf(c.out, "  %-20s %s\n", row[0], styleMuted.Render(row[1]))
	}
	fmt.Fprintln(c.out, styleMuted.Render("\nAnything else is treated as an instruction: it edits the current\nproject, or creates a new one when none is loaded."))
}
