// Package render prints coordinator events to a terminal.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"shortlist-monitor/internal/models"
	"shortlist-monitor/internal/poller"
	"shortlist-monitor/internal/timeline"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	purple = lipgloss.Color("99")
	green  = lipgloss.Color("76")
	red    = lipgloss.Color("204")
	yellow = lipgloss.Color("214")
	dim    = lipgloss.Color("243")
	faint  = lipgloss.Color("238")
)

var (
	accentStyle  = lipgloss.NewStyle().Foreground(purple)
	successStyle = lipgloss.NewStyle().Foreground(green)
	errorStyle   = lipgloss.NewStyle().Foreground(red)
	warnStyle    = lipgloss.NewStyle().Foreground(yellow)
	mutedStyle   = lipgloss.NewStyle().Foreground(dim)
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

// Printer is a poller.Listener that writes a timeline whenever it changes,
// the shortlist once it arrives and a warning line per failure.
type Printer struct {
	mu   sync.Mutex
	out  io.Writer
	last string
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) OnUpdate(u poller.Update) {
	p.mu.Lock()
	defer p.mu.Unlock()

	text := Timeline(u.Snapshot, u.Timeline)

	// repeated identical reports are not reprinted
	if text == p.last {
		return
	}
	p.last = text

	fmt.Fprint(p.out, text)
}

func (p *Printer) OnResults(r poller.Results) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprint(p.out, Shortlist(r.Candidates))
}

func (p *Printer) OnFailure(f poller.Failure) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.out, warnStyle.Render("!")+" "+mutedStyle.Render(string(f.Kind))+" "+f.Error())
}

// Timeline renders the header line for a snapshot followed by its steps.
func Timeline(job models.JobStatus, steps []timeline.Step) string {

	var sb strings.Builder

	title := job.JobID
	if job.JobTitle != "" {
		title = job.JobTitle + " " + mutedStyle.Render("("+job.JobID+")")
	}

	sb.WriteString(boldStyle.Render(title) + "  " + statusLabel(job.Status) + "\n")

	for _, step := range steps {
		sb.WriteString("  " + stepLine(step) + "\n")
	}

	return sb.String()
}

func stepLine(step timeline.Step) string {

	var marker string
	switch step.Status {
	case timeline.Completed:
		marker = successStyle.Render("✓")
	default:
		marker = accentStyle.Render("●")
	}

	line := marker + " " + step.Name

	if step.Progress != nil {
		line += " " + accentStyle.Render(fmt.Sprintf("%.0f%%", *step.Progress))
	}

	if step.Detail != "" {
		line += "  " + mutedStyle.Render(step.Detail)
	}

	if step.Time != nil {
		line += "  " + mutedStyle.Render(step.Time.Local().Format(time.DateTime))
	}

	return line
}

func statusLabel(status models.Status) string {
	switch status {
	case models.StatusCompleted:
		return successStyle.Render(status.String())
	case models.StatusError:
		return errorStyle.Render(status.String())
	default:
		return warnStyle.Render(status.String())
	}
}

// Shortlist renders candidates as a table in the order given.
func Shortlist(candidates []models.Candidate) string {

	if len(candidates) == 0 {
		return mutedStyle.Render("No candidates shortlisted.") + "\n"
	}

	rows := make([][]string, 0, len(candidates))

	for i, c := range candidates {
		email := "-"
		if c.Email != nil && *c.Email != "" {
			email = *c.Email
		}

		experience := "-"
		if c.Experience != nil {
			experience = strconv.Itoa(*c.Experience) + "y"
		}

		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			c.Name,
			fmt.Sprintf("%.0f%%", c.Confidence*100),
			email,
			experience,
			strings.Join(c.Skills, ", "),
		})
	}

	return renderTable([]string{"#", "Name", "Confidence", "Email", "Experience", "Skills"}, rows)
}

// Jobs renders the job list.
func Jobs(jobs []models.JobSummary) string {

	if len(jobs) == 0 {
		return mutedStyle.Render("No jobs found.") + "\n"
	}

	rows := make([][]string, 0, len(jobs))

	for _, job := range jobs {
		created := "-"
		if !job.CreatedAt.IsZero() {
			created = job.CreatedAt.Local().Format(time.DateTime)
		}

		rows = append(rows, []string{
			job.JobID,
			job.JobTitle,
			statusLabel(job.Status),
			strconv.Itoa(job.TotalResumes),
			strconv.Itoa(job.ShortlistedCount),
			created,
		})
	}

	return renderTable([]string{"Job ID", "Title", "Status", "Resumes", "Shortlisted", "Created"}, rows)
}

func renderTable(headers []string, rows [][]string) string {

	headerStyle := lipgloss.NewStyle().Foreground(purple).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(faint)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)

	return t.Render() + "\n"
}
