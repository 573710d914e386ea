package view

import (
	"fmt"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/MrJamesThe3rd/marches/internal/analysis"
)

// pastExercises is how many budget years before the current one are offered.
const pastExercises = 3

type periodKind int

const (
	periodAll periodKind = iota
	periodExercise
	periodMonth
	periodCustom
)

// period is one entry of the picker. Year is set for exercises only.
type period struct {
	kind periodKind
	year int
}

func (p period) String() string {
	switch p.kind {
	case periodAll:
		return "All dates"
	case periodExercise:
		return "Exercise " + strconv.Itoa(p.year)
	case periodMonth:
		return "This month"
	case periodCustom:
		return "Custom range..."
	}

	return "Unknown"
}

// bounds returns the inclusive day range of p. Custom and all have none.
func (p period) bounds(now time.Time) (time.Time, time.Time) {
	switch p.kind {
	case periodExercise:
		return time.Date(p.year, time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(p.year, time.December, 31, 0, 0, 0, 0, time.UTC)
	case periodMonth:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1)
	}

	return time.Time{}, time.Time{}
}

func periods(now time.Time) []period {
	out := []period{{kind: periodAll}}
	for i := range pastExercises + 1 {
		out = append(out, period{kind: periodExercise, year: now.Year() - i})
	}

	return append(out, period{kind: periodMonth}, period{kind: periodCustom})
}

// PeriodSelectedMsg carries the chosen service-date range. From and To
// are nil for all dates.
type PeriodSelectedMsg struct {
	From *time.Time
	To   *time.Time
}

type rangeForm struct {
	from string
	to   string
}

// PeriodPicker selects a range of service dates: a budget year, the current
// month, or a custom range typed as dd/mm/yyyy or yyyy-mm-dd.
type PeriodPicker struct {
	now     time.Time
	options []period
	cursor  int

	form   *huh.Form
	fields *rangeForm
}

func NewPeriodPicker(now time.Time) PeriodPicker {
	return PeriodPicker{
		now:     now,
		options: periods(now),
		cursor:  1,
	}
}

// Choosing reports whether the list is shown, as opposed to the range form.
func (p PeriodPicker) Choosing() bool {
	return p.form == nil
}

// Reset goes back to the list with the current exercise highlighted.
func (p *PeriodPicker) Reset() {
	p.cursor = 1
	p.form = nil
	p.fields = nil
}

func (p PeriodPicker) Update(msg tea.Msg) (PeriodPicker, tea.Cmd) {
	if p.form != nil {
		return p.updateForm(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
	case "down", "j":
		if p.cursor < len(p.options)-1 {
			p.cursor++
		}
	case "enter":
		return p.choose(p.options[p.cursor])
	}

	return p, nil
}

func (p PeriodPicker) choose(opt period) (PeriodPicker, tea.Cmd) {
	switch opt.kind {
	case periodAll:
		return p, selectPeriod(nil, nil)
	case periodCustom:
		p.fields = &rangeForm{}
		p.form = buildRangeForm(p.fields)

		return p, p.form.Init()
	}

	from, to := opt.bounds(p.now)

	return p, selectPeriod(&from, &to)
}

func (p PeriodPicker) updateForm(msg tea.Msg) (PeriodPicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		p.form = nil
		return p, nil
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State != huh.StateCompleted {
		return p, cmd
	}

	from, _ := analysis.ParseDate(p.fields.from)
	to, _ := analysis.ParseDate(p.fields.to)
	p.form = nil

	return p, selectPeriod(&from, &to)
}

func selectPeriod(from, to *time.Time) tea.Cmd {
	return func() tea.Msg {
		return PeriodSelectedMsg{From: from, To: to}
	}
}

func buildRangeForm(fields *rangeForm) *huh.Form {
	validDate := func(s string) error {
		if _, ok := analysis.ParseDate(s); !ok {
			return fmt.Errorf("expected dd/mm/yyyy or yyyy-mm-dd")
		}

		return nil
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("from").
				Title("From").
				Placeholder("01/01/2025").
				Value(&fields.from).
				Validate(validDate),

			huh.NewInput().
				Key("to").
				Title("To").
				Placeholder("31/12/2025").
				Value(&fields.to).
				Validate(func(s string) error {
					if err := validDate(s); err != nil {
						return err
					}

					from, _ := analysis.ParseDate(fields.from)
					if to, _ := analysis.ParseDate(s); to.Before(from) {
						return fmt.Errorf("end date is before start date")
					}

					return nil
				}),
		),
	).WithWidth(40).WithShowHelp(false)
}

func (p PeriodPicker) View() string {
	if p.form != nil {
		return "Custom range (Esc to go back)\n\n" + p.form.View()
	}

	s := "Service dates:\n\n"
	for i, opt := range p.options {
		cursor := " "
		if i == p.cursor {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, opt)
	}

	return s + "\n(Enter to select, Esc to go back)"
}
