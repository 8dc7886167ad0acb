package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/dayslice/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	idleTimeout     *string
	idleAction      *string
	defaultPeriod   *string
	showUnrecorded  *bool
	unrecordedLabel *string
}

func newSettingsModel(s *store.Store) settingsModel {
	it, ia, dp, ul := "", "", "", ""
	su := true
	return settingsModel{
		store:           s,
		idleTimeout:     &it,
		idleAction:      &ia,
		defaultPeriod:   &dp,
		showUnrecorded:  &su,
		unrecordedLabel: &ul,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
	err      error
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, err := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings, err: err}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		if _, ok := msg.(settingsDataMsg); !ok {
			return s.updateForm(msg)
		}
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		if msg.err != nil {
			return s, statusCmd(fmt.Sprintf("Error: %v", msg.err), true)
		}
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	prefs := s.store.Preferences()
	*s.idleTimeout = strconv.Itoa(int(prefs.IdleTimeout.Minutes()))
	*s.idleAction = prefs.IdleAction
	*s.defaultPeriod = prefs.DefaultPeriod
	*s.showUnrecorded = prefs.ShowUnrecorded
	*s.unrecordedLabel = prefs.UnrecordedLabel

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Idle timeout (min, 0 disables)").Value(s.idleTimeout).Validate(validateMinutes),
			huh.NewSelect[string]().Title("When idle").
				Options(
					huh.NewOption("Pause", "pause"),
					huh.NewOption("Stop", "stop"),
				).Value(s.idleAction),
		).Title("Recording"),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Default period").
				Options(
					huh.NewOption("Day", "day"),
					huh.NewOption("Week", "week"),
					huh.NewOption("Month", "month"),
				).Value(s.defaultPeriod),
			huh.NewConfirm().Title("Show unrecorded time").Value(s.showUnrecorded),
			huh.NewInput().Title("Unrecorded label").Value(s.unrecordedLabel),
		).Title("Report"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		if err := s.saveSettings(); err != nil {
			return s, statusCmd(fmt.Sprintf("Error: %v", err), true)
		}
		prefs := s.store.Preferences()
		return s, tea.Batch(
			s.refresh(),
			func() tea.Msg { return settingsSavedMsg{prefs: prefs} },
		)
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	label := strings.TrimSpace(*s.unrecordedLabel)
	values := []store.Setting{
		{Key: "idle_timeout", Value: minToSecs(*s.idleTimeout)},
		{Key: "idle_action", Value: *s.idleAction},
		{Key: "default_period", Value: *s.defaultPeriod},
		{Key: "show_unrecorded", Value: strconv.FormatBool(*s.showUnrecorded)},
	}
	if label != "" {
		values = append(values, store.Setting{Key: "unrecorded_label", Value: label})
	}
	for _, v := range values {
		if err := s.store.SetSetting(v.Key, v.Value); err != nil {
			return fmt.Errorf("save setting %s: %w", v.Key, err)
		}
	}
	return nil
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case "idle_timeout":
		if secs, err := strconv.Atoi(v); err == nil {
			if secs == 0 {
				return "off"
			}
			return fmt.Sprintf("%d min", secs/60)
		}
	case "show_unrecorded":
		if b, err := strconv.ParseBool(v); err == nil {
			if b {
				return "yes"
			}
			return "no"
		}
	}
	return v
}

func validateMinutes(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return errors.New("enter a whole number of minutes")
	}
	return nil
}

func minToSecs(s string) string {
	if mins, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return strconv.Itoa(mins * 60)
	}
	return s
}
