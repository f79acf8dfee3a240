package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gosuri/uitable"

	"github.com/108city/habit-tracker/internal/calendar"
	"github.com/108city/habit-tracker/internal/config"
	"github.com/108city/habit-tracker/internal/models"
	"github.com/108city/habit-tracker/internal/storage"
	"github.com/108city/habit-tracker/internal/tracker"
)

type Context struct {
	Config  *config.Config
	Store   storage.Provider
	Tracker *tracker.Service
	Out     io.Writer
	In      io.Reader
}

// Printf writes to the command output, stdout unless a test redirects it.
func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Confirm asks a yes/no question on the command input. Anything but y/yes is a no.
func Confirm(c *Context, prompt string) (bool, error) {
	c.Printf("%s [y/N]: ", prompt)
	in := c.In
	if in == nil {
		in = os.Stdin
	}
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// NewTable returns a uitable with the column layout used by every listing.
func NewTable(header ...interface{}) *uitable.Table {
	table := uitable.New()
	table.MaxColWidth = 40
	table.Wrap = true
	if len(header) > 0 {
		table.AddRow(header...)
	}
	return table
}

// PrintTable writes table followed by a newline.
func (c *Context) PrintTable(table *uitable.Table) {
	fmt.Fprintln(c.out(), table)
}

// ParseDay resolves a day reference relative to today. Accepted forms are
// "" or "today", "yesterday", "-N" for N days ago, and YYYY-MM-DD.
func ParseDay(ref string, today calendar.Day) (calendar.Day, error) {
	ref = strings.TrimSpace(strings.ToLower(ref))
	switch ref {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDays(-1), nil
	}
	if strings.HasPrefix(ref, "-") {
		n, err := strconv.Atoi(ref[1:])
		if err != nil || n < 0 {
			return calendar.Day{}, fmt.Errorf("invalid day offset %q, use -N for N days ago", ref)
		}
		return today.AddDays(-n), nil
	}
	day, err := calendar.Parse(ref)
	if err != nil {
		return calendar.Day{}, fmt.Errorf("invalid day %q, use YYYY-MM-DD, today, yesterday or -N", ref)
	}
	return day, nil
}

// ParseOptionalDay is ParseDay for flags where empty means "not set".
func ParseOptionalDay(ref string) (calendar.Day, error) {
	if strings.TrimSpace(ref) == "" {
		return calendar.Day{}, nil
	}
	return calendar.Parse(strings.TrimSpace(ref))
}

// StatusSymbol renders a status as a single grid cell.
func StatusSymbol(s models.Status) string {
	switch s {
	case models.StatusCompleted:
		return "✓"
	case models.StatusSkipped:
		return "–"
	default:
		return "·"
	}
}

// FormatPercent renders a 0-100 value with a fixed-width bar.
func FormatPercent(pct, width int) string {
	pct = min(100, max(0, pct))
	filled := pct * width / 100
	return fmt.Sprintf("%s%s %3d%%", strings.Repeat("█", filled), strings.Repeat("░", width-filled), pct)
}

// FormatDay renders a day or "-" for the zero day.
func FormatDay(d calendar.Day) string {
	if d.IsZero() {
		return "-"
	}
	return d.String()
}
