package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/dayslice/internal/report"
	"github.com/sadopc/dayslice/internal/store"
)

type categoriesModel struct {
	store  *store.Store
	width  int
	height int

	categories []store.Category
	cursor     int
	showHidden bool

	formActive bool
	form       *huh.Form
	formType   string // "new" or "edit"

	// Form field pointers (survive value copies)
	formValue *string
	formLabel *string
	formIcon  *string
	formColor *string

	editingID string
}

func newCategoriesModel(s *store.Store) categoriesModel {
	value, label, icon, color := "", "", "", ""
	return categoriesModel{
		store:     s,
		formValue: &value,
		formLabel: &label,
		formIcon:  &icon,
		formColor: &color,
	}
}

func (c *categoriesModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

type categoriesDataMsg struct {
	categories []store.Category
	err        error
}

func (c categoriesModel) refresh() tea.Cmd {
	showHidden := c.showHidden
	return func() tea.Msg {
		categories, err := c.store.ListCategories(showHidden)
		return categoriesDataMsg{categories: categories, err: err}
	}
}

func (c categoriesModel) update(msg tea.Msg) (categoriesModel, tea.Cmd) {
	if c.formActive && c.form != nil {
		if _, ok := msg.(categoriesDataMsg); !ok {
			return c.updateForm(msg)
		}
	}

	switch msg := msg.(type) {
	case categoriesDataMsg:
		if msg.err != nil {
			return c, statusCmd(fmt.Sprintf("Error: %v", msg.err), true)
		}
		c.categories = msg.categories
		if c.cursor >= len(c.categories) {
			c.cursor = max(0, len(c.categories)-1)
		}
		return c, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if c.cursor > 0 {
				c.cursor--
			}
		case key.Matches(msg, keys.Down):
			if c.cursor < len(c.categories)-1 {
				c.cursor++
			}
		case key.Matches(msg, keys.New):
			return c.showNewForm()
		case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
			if len(c.categories) > 0 {
				return c.showEditForm()
			}
		case key.Matches(msg, keys.Delete):
			if len(c.categories) > 0 {
				return c.toggleHidden()
			}
		case key.Matches(msg, keys.Hidden):
			c.showHidden = !c.showHidden
			return c, c.refresh()
		}
	}
	return c, nil
}

func (c categoriesModel) toggleHidden() (categoriesModel, tea.Cmd) {
	cat := c.categories[c.cursor]
	if err := c.store.SetCategoryHidden(cat.ID, !cat.Hidden); err != nil {
		return c, statusCmd(fmt.Sprintf("Error: %v", err), true)
	}
	verb := "hidden"
	if cat.Hidden {
		verb = "shown"
	}
	return c, tea.Batch(c.refresh(), statusCmd(fmt.Sprintf("%s %s", cat.ReportCategory().Name(), verb), false))
}

// colorOptions offers "automatic" (palette) plus every preset colour.
func colorOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], 0, len(report.PresetColors)+1)
	opts = append(opts, huh.NewOption("automatic", ""))
	for _, hex := range report.PresetColors {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s %s", colorDot(hex), hex), hex))
	}
	return opts
}

func (c categoriesModel) showNewForm() (categoriesModel, tea.Cmd) {
	*c.formValue = ""
	*c.formLabel = ""
	*c.formIcon = report.DefaultIcon
	*c.formColor = ""
	c.formType = "new"

	existing := make(map[string]bool, len(c.categories))
	for _, cat := range c.categories {
		existing[cat.Value] = true
	}

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Value").Description("stable key, e.g. work or study|math").
				Value(c.formValue).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					if s == "" {
						return errors.New("value is required")
					}
					if existing[s] {
						return fmt.Errorf("%q already exists", s)
					}
					return nil
				}),
			huh.NewInput().Title("Label").Description("defaults to the value").Value(c.formLabel),
			huh.NewInput().Title("Icon").Value(c.formIcon),
			huh.NewSelect[string]().Title("Color").Options(colorOptions()...).Value(c.formColor),
		),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	return c, c.form.Init()
}

func (c categoriesModel) showEditForm() (categoriesModel, tea.Cmd) {
	cat := c.categories[c.cursor]
	*c.formValue = cat.Value
	*c.formLabel = cat.Label
	*c.formIcon = cat.Icon
	*c.formColor = cat.Color
	c.formType = "edit"
	c.editingID = cat.ID

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Label").Value(c.formLabel),
			huh.NewInput().Title("Icon").Value(c.formIcon),
			huh.NewSelect[string]().Title("Color").Options(colorOptions()...).Value(c.formColor),
		),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	return c, c.form.Init()
}

func (c categoriesModel) updateForm(msg tea.Msg) (categoriesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			c.formActive = false
			c.form = nil
			return c, nil
		}
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}

	if c.form.State == huh.StateCompleted {
		c.formActive = false
		c.form = nil
		return c, c.save()
	}

	return c, cmd
}

func (c categoriesModel) save() tea.Cmd {
	label := strings.TrimSpace(*c.formLabel)
	icon := strings.TrimSpace(*c.formIcon)
	if icon == "" {
		icon = report.DefaultIcon
	}

	switch c.formType {
	case "new":
		value := strings.TrimSpace(*c.formValue)
		if label == "" {
			label = value
		}
		if _, err := c.store.CreateCategory(value, label, icon, *c.formColor); err != nil {
			return statusCmd(fmt.Sprintf("Error: %v", err), true)
		}
		return tea.Batch(c.refresh(), statusCmd("Created "+label, false))
	case "edit":
		if err := c.store.UpdateCategory(c.editingID, label, icon, *c.formColor); err != nil {
			return statusCmd(fmt.Sprintf("Error: %v", err), true)
		}
		return c.refresh()
	}
	return nil
}

func (c categoriesModel) view() string {
	if c.formActive && c.form != nil {
		title := titleStyle.Render("New Category")
		if c.formType == "edit" {
			title = titleStyle.Render("Edit Category")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", c.form.View())
		return panelStyle.Width(c.width - 4).Render(content)
	}
	return c.renderList()
}

func (c categoriesModel) renderList() string {
	w := c.width - 4
	title := titleStyle.Render("Categories")
	if c.showHidden {
		title += mutedStyle.Render("  (including hidden)")
	}

	if len(c.categories) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No categories yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("    %-3s %-22s %-22s %-9s", "", "Label", "Value", "Color"))
	rows = append(rows, header)

	for i, cat := range c.categories {
		cursor := "  "
		style := normalItemStyle
		if i == c.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		color := cat.Color
		if color == "" {
			color = "auto"
		}
		line := fmt.Sprintf("%s%s %s %-22s %-22s %-9s",
			cursor, colorDot(cat.Color), cat.Icon,
			truncate(cat.ReportCategory().Name(), 22), truncate(cat.Value, 22), color)
		if cat.Hidden {
			rows = append(rows, mutedStyle.Render(line+" hidden"))
			continue
		}
		rows = append(rows, style.Render(line))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: hide/show  a: show hidden"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
