package main

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

// app settings represents user configurable settings
type AppSettings struct {
	ImageFormat string // export image format (PNG, JPEG, TIFF)
	PageSize    string // page size for image-to-PDF conversion
	Orientation string // portrait or landscape
	FitMode     string // fit, fill or stretch
	Concurrency int    // concurrent page renders for previews
}

// default settings
var defaultSettings = AppSettings{
	ImageFormat: "PNG",
	PageSize:    "A4",
	Orientation: "portrait",
	FitMode:     "fit",
	Concurrency: runtime.NumCPU() - 1,
}

// inputField is one text prompt in an operation's input sequence.
type inputField struct {
	prompt   string
	value    string
	optional bool
}

// model represents the state of our application
type uiModel struct {
	choices        []string
	cursor         int
	selected       bool
	operation      string
	fields         []inputField
	fieldIndex     int
	settings       AppSettings
	settingsMode   bool
	settingCursor  int
	settingOptions []string
	editingValue   bool
	editValue      string
	confirmed      bool
}

// operation keys, indexed by main menu position
var operations = []string{
	"extract",
	"combine",
	"split",
	"images",
	"convert",
	"preview",
}

// initial model setup
func initialModel() uiModel {
	return uiModel{
		choices: []string{
			"Extract Pages to a New PDF",
			"Export Combined PDF (rotate/delete/reorder)",
			"Export Individual PDFs",
			"Export Pages as Images",
			"Convert Images to PDF",
			"Render Page Thumbnails",
			"Settings",
			"Quit",
		},
		settings: defaultSettings,
		settingOptions: []string{
			"Image Format",
			"Page Size",
			"Orientation",
			"Fit Mode",
			"Concurrency",
			"Back to Main Menu",
		},
	}
}

// fieldsFor returns the input sequence for an operation.
func fieldsFor(operation string) []inputField {
	switch operation {
	case "convert":
		return []inputField{
			{prompt: "Image files (space separated)"},
			{prompt: "Output PDF path (empty for default)", optional: true},
		}
	case "extract":
		return []inputField{
			{prompt: "Input PDF file(s) (space separated)"},
			{prompt: "Pages to extract (e.g. 1,3,5-7)"},
			{prompt: "Output PDF path (empty for default)", optional: true},
		}
	case "preview":
		return []inputField{
			{prompt: "Input PDF file(s) (space separated)"},
			{prompt: "Pages (empty for all)", optional: true},
			{prompt: "Output folder (empty for current)", optional: true},
		}
	default:
		return []inputField{
			{prompt: "Input PDF file(s) (space separated)"},
			{prompt: "Pages (empty for all)", optional: true},
			{prompt: "Rotations (e.g. 3:90,5:180; empty for none)", optional: true},
			{prompt: "Output path (empty for default)", optional: true},
		}
	}
}

// define some styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(2).
			PaddingRight(2).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A49FA5"))

	settingLabelStyle = lipgloss.NewStyle().
				Width(20).
				Foreground(lipgloss.Color("#7D56F4"))

	settingValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("205"))

	promptDoneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A49FA5"))
)

// init initializes the model
func (m uiModel) Init() tea.Cmd {
	return nil
}

// update handles user interactions
func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		// only quits from the menus; inside a text prompt it is a character
		if !m.selected && !m.settingsMode {
			return m, tea.Quit
		}
		if m.settingsMode && !m.editingValue {
			m.settingsMode = false
			return m, nil
		}
	case "esc":
		if m.settingsMode && m.editingValue {
			m.editingValue = false
		} else if m.settingsMode {
			m.settingsMode = false
		} else if m.selected {
			m.selected = false
			m.fields = nil
			m.fieldIndex = 0
		}
		return m, nil
	case "up", "down":
		m.moveCursor(keyMsg.String())
		return m, nil
	case "enter":
		return m.handleEnter()
	case "backspace":
		if m.selected && m.fieldIndex < len(m.fields) {
			v := m.fields[m.fieldIndex].value
			if len(v) > 0 {
				m.fields[m.fieldIndex].value = v[:len(v)-1]
			}
		} else if m.settingsMode && m.editingValue && len(m.editValue) > 0 {
			m.editValue = m.editValue[:len(m.editValue)-1]
		}
		return m, nil
	}

	// everything else is text input for the active prompt
	if keyMsg.Type == tea.KeyRunes || keyMsg.Type == tea.KeySpace {
		text := string(keyMsg.Runes)
		if keyMsg.Type == tea.KeySpace {
			text = " "
		}
		if m.selected && m.fieldIndex < len(m.fields) {
			m.fields[m.fieldIndex].value += text
		} else if m.settingsMode && m.editingValue {
			m.editValue += text
		}
	}

	return m, nil
}

func (m *uiModel) moveCursor(direction string) {
	delta := 1
	if direction == "up" {
		delta = -1
	}

	if m.settingsMode && !m.editingValue {
		next := m.settingCursor + delta
		if next >= 0 && next < len(m.settingOptions) {
			m.settingCursor = next
		}
	} else if !m.selected {
		next := m.cursor + delta
		if next >= 0 && next < len(m.choices) {
			m.cursor = next
		}
	}
}

func (m uiModel) handleEnter() (tea.Model, tea.Cmd) {
	if m.settingsMode {
		m.applySettingEnter()
		return m, nil
	}

	if !m.selected {
		switch m.cursor {
		case len(m.choices) - 1: // quit
			return m, tea.Quit
		case len(m.choices) - 2: // settings
			m.settingsMode = true
			m.settingCursor = 0
		default:
			m.operation = operations[m.cursor]
			m.fields = fieldsFor(m.operation)
			m.fieldIndex = 0
			m.selected = true
		}
		return m, nil
	}

	// advance the input sequence
	if m.fieldIndex < len(m.fields) {
		field := m.fields[m.fieldIndex]
		if field.value == "" && !field.optional {
			return m, nil
		}
		m.fieldIndex++
	}
	if m.fieldIndex >= len(m.fields) {
		m.confirmed = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *uiModel) applySettingEnter() {
	if m.editingValue {
		switch m.settingCursor {
		case 0:
			if _, err := parseImageFormat(m.editValue); err == nil {
				m.settings.ImageFormat = strings.ToUpper(strings.TrimSpace(m.editValue))
			}
		case 1:
			if m.editValue != "" {
				m.settings.PageSize = m.editValue
			}
		case 2:
			v := strings.ToLower(strings.TrimSpace(m.editValue))
			if v == "portrait" || v == "landscape" {
				m.settings.Orientation = v
			}
		case 3:
			v := strings.ToLower(strings.TrimSpace(m.editValue))
			if v == "fit" || v == "fill" || v == "stretch" {
				m.settings.FitMode = v
			}
		case 4:
			if val, err := strconv.Atoi(m.editValue); err == nil && val > 0 {
				m.settings.Concurrency = val
			}
		}
		m.editingValue = false
		return
	}

	if m.settingCursor == len(m.settingOptions)-1 {
		m.settingsMode = false
		return
	}

	switch m.settingCursor {
	case 0:
		m.editValue = m.settings.ImageFormat
	case 1:
		m.editValue = m.settings.PageSize
	case 2:
		m.editValue = m.settings.Orientation
	case 3:
		m.editValue = m.settings.FitMode
	case 4:
		m.editValue = fmt.Sprintf("%d", m.settings.Concurrency)
	}
	m.editingValue = true
}

// View renders the UI
func (m uiModel) View() string {
	if m.settingsMode {
		return m.settingsView()
	}

	if !m.selected {
		// Main menu
		s := titleStyle.Render("PDF Page Extractor") + "\n\n"
		s += "Select an operation:\n\n"

		for i, choice := range m.choices {
			cursor := " "
			if m.cursor == i {
				cursor = ">"
				choice = selectedStyle.Render(choice)
			}
			s += fmt.Sprintf("%s %s\n", cursor, choice)
		}

		s += "\n" + infoStyle.Render("Press q to quit, arrow keys to navigate, enter to select")
		return s
	}

	// input sequence for the chosen operation
	s := titleStyle.Render("PDF Page Extractor - "+m.choices[m.cursor]) + "\n\n"
	for i, field := range m.fields {
		if i < m.fieldIndex {
			s += promptDoneStyle.Render(fmt.Sprintf("%s: %s", field.prompt, field.value)) + "\n"
		} else if i == m.fieldIndex {
			s += fmt.Sprintf("%s:\n> %s_\n", field.prompt, field.value)
		}
	}
	s += "\n" + infoStyle.Render("Press Enter to continue, Esc to go back")
	return s
}

// settingsView renders the settings menu
func (m uiModel) settingsView() string {
	s := titleStyle.Render("PDF Page Extractor - Settings") + "\n\n"

	values := []string{
		m.settings.ImageFormat,
		m.settings.PageSize,
		m.settings.Orientation,
		m.settings.FitMode,
		fmt.Sprintf("%d", m.settings.Concurrency),
	}

	for i, option := range m.settingOptions {
		cursor := " "
		if m.settingCursor == i {
			cursor = ">"
			option = selectedStyle.Render(option)
		}

		if i < len(values) {
			s += fmt.Sprintf("%s %s", cursor, settingLabelStyle.Render(option))
			if m.editingValue && m.settingCursor == i {
				s += fmt.Sprintf(": %s_\n", m.editValue)
			} else {
				s += fmt.Sprintf(": %s\n", settingValueStyle.Render(values[i]))
			}
		} else {
			// The "Back" option
			s += fmt.Sprintf("%s %s\n", cursor, option)
		}
	}

	s += "\n" + infoStyle.Render("Press Enter to edit a setting, Esc to go back")
	return s
}

// RunTerminalUI starts the terminal UI
func RunTerminalUI() {
	p := tea.NewProgram(initialModel())
	final, err := p.Run()
	if err != nil {
		fmt.Printf("Error running UI: %v\n", err)
		os.Exit(1)
	}

	m := final.(uiModel)
	if !m.confirmed {
		return
	}

	if err := runOperation(m); err != nil {
		color.Red("ERROR: %v", err)
		os.Exit(1)
	}
}

// runOperation dispatches a confirmed UI session to the same runners the
// command line uses.
func runOperation(m uiModel) error {
	value := func(i int) string {
		if i < len(m.fields) {
			return strings.TrimSpace(m.fields[i].value)
		}
		return ""
	}
	inputs := strings.Fields(value(0))

	switch m.operation {
	case "extract":
		return runExtract(&ExtractCmd{
			Inputs: inputs,
			Pages:  value(1),
			Output: value(2),
		})
	case "combine":
		return runCombine(&CombineCmd{
			Inputs: inputs,
			Pages:  value(1),
			Rotate: value(2),
			Output: value(3),
		})
	case "split":
		return runSplit(&SplitCmd{
			Inputs: inputs,
			Pages:  value(1),
			Rotate: value(2),
			Output: value(3),
			Zip:    strings.HasSuffix(strings.ToLower(value(3)), ".zip"),
		})
	case "images":
		return runImages(&ImagesCmd{
			Inputs: inputs,
			Pages:  value(1),
			Rotate: value(2),
			Output: value(3),
			Format: m.settings.ImageFormat,
			Zip:    strings.HasSuffix(strings.ToLower(value(3)), ".zip"),
		})
	case "convert":
		return runConvert(&ConvertCmd{
			Inputs:      inputs,
			Output:      value(1),
			PageSize:    m.settings.PageSize,
			Orientation: m.settings.Orientation,
			Fit:         m.settings.FitMode,
		})
	case "preview":
		output := value(2)
		if output == "" {
			output = "."
		}
		return runPreview(&PreviewCmd{
			Inputs:      inputs,
			Pages:       value(1),
			Output:      output,
			Concurrency: m.settings.Concurrency,
		})
	default:
		return fmt.Errorf("unknown operation %q", m.operation)
	}
}
