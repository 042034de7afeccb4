package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/lumenlab/lumen/pkg/lighting"
)

// previewCommand creates the preview command for interactively exploring
// fixture layouts in the terminal.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		width  string
		height string
		lux    string
		lumens string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Interactively explore fixture layouts",
		Long: `Preview renders the fixture grid in the terminal and re-computes it live
as you adjust the illuminance target and the fixture output.

Keys: left/right select a parameter, up/down adjust it, q quits.`,
		Example: `  lumen preview --width 4 --height 3 --lux 300 --lumens 900`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := parsePositive("width", width)
			if err != nil {
				return err
			}
			h, err := parsePositive("height", height)
			if err != nil {
				return err
			}
			lx, err := parsePositive("lux", lux)
			if err != nil {
				return err
			}
			lm, err := parsePositive("lumens", lumens)
			if err != nil {
				return err
			}

			model := newPreviewModel(lighting.Dimensions{Width: w, Height: h}, lx, lm)
			program := tea.NewProgram(model, tea.WithContext(cmd.Context()))
			_, err = program.Run()
			return err
		},
	}

	cmd.Flags().StringVar(&width, "width", "", "room width in meters (required)")
	cmd.Flags().StringVar(&height, "height", "", "room height in meters (required)")
	cmd.Flags().StringVar(&lux, "lux", "", "initial illuminance in lux (required)")
	cmd.Flags().StringVar(&lumens, "lumens", "", "initial luminous flux per fixture (required)")

	return cmd
}

// =============================================================================
// PreviewModel - Interactive layout preview
// =============================================================================

// Adjustable parameters.
const (
	paramLux = iota
	paramLumens
	paramCount
)

// Adjustment step sizes.
const (
	stepLux    = 25.0
	stepLumens = 100.0
)

var (
	previewSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	previewNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	previewRoomStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	previewFixtureStyle  = lipgloss.NewStyle().Foreground(colorYellow)
	previewErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// PreviewModel is the bubbletea model for the live layout preview.
type PreviewModel struct {
	Dims   lighting.Dimensions
	Lux    float64
	Lumens float64
	Param  int

	plan    *lighting.Plan
	planErr error
}

// newPreviewModel creates a preview model and computes the initial layout.
func newPreviewModel(dims lighting.Dimensions, lux, lumens float64) PreviewModel {
	m := PreviewModel{Dims: dims, Lux: lux, Lumens: lumens}
	m.recompute()
	return m
}

func (m *PreviewModel) recompute() {
	m.plan, m.planErr = lighting.Compute(m.Dims, lighting.Requirements{
		Illuminance:      m.Lux,
		LumensPerFixture: m.Lumens,
	})
}

func (m PreviewModel) Init() tea.Cmd {
	return nil
}

func (m PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "left", "h":
		m.Param = (m.Param + paramCount - 1) % paramCount
	case "right", "l", "tab":
		m.Param = (m.Param + 1) % paramCount
	case "up", "k":
		m.adjust(+1)
	case "down", "j":
		m.adjust(-1)
	}
	return m, nil
}

// adjust nudges the selected parameter, keeping it positive.
func (m *PreviewModel) adjust(direction float64) {
	switch m.Param {
	case paramLux:
		next := m.Lux + direction*stepLux
		if next > 0 {
			m.Lux = next
		}
	case paramLumens:
		next := m.Lumens + direction*stepLumens
		if next > 0 {
			m.Lumens = next
		}
	}
	m.recompute()
}

func (m PreviewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Fixture layout preview"))
	b.WriteString("\n\n")
	b.WriteString(m.paramLine())
	b.WriteString("\n\n")

	if m.planErr != nil {
		b.WriteString(previewErrorStyle.Render(m.planErr.Error()))
		b.WriteString("\n")
	} else {
		b.WriteString(m.roomView())
		b.WriteString("\n")
		b.WriteString(StyleDim.Render(fmt.Sprintf("  %d fixtures · %dx%d grid · spacing %.2f x %.2f m",
			m.plan.FixtureCount, m.plan.Columns, m.plan.Rows, m.plan.SpacingX, m.plan.SpacingY)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render("←/→ select · ↑/↓ adjust · q quit"))
	b.WriteString("\n")
	return b.String()
}

func (m PreviewModel) paramLine() string {
	params := []string{
		fmt.Sprintf("lux %.0f", m.Lux),
		fmt.Sprintf("lumens %.0f", m.Lumens),
	}
	for i, p := range params {
		if i == m.Param {
			params[i] = previewSelectedStyle.Render("[" + p + "]")
		} else {
			params[i] = previewNormalStyle.Render(" " + p + " ")
		}
	}
	return "  " + strings.Join(params, "   ")
}

// roomView draws the room as a character grid with fixture markers at
// their scaled positions.
func (m PreviewModel) roomView() string {
	// Terminal cells are roughly twice as tall as wide.
	const cellsPerMeterX = 8.0
	const cellsPerMeterY = 4.0

	cols := int(m.Dims.Width*cellsPerMeterX + 0.5)
	rows := int(m.Dims.Height*cellsPerMeterY + 0.5)
	if cols < 2 {
		cols = 2
	}
	if rows < 1 {
		rows = 1
	}
	if cols > 120 {
		cols = 120
	}
	if rows > 40 {
		rows = 40
	}

	grid := make([][]rune, rows)
	for y := range grid {
		grid[y] = make([]rune, cols)
		for x := range grid[y] {
			grid[y][x] = ' '
		}
	}
	for _, pos := range m.plan.Positions {
		x := int(pos.X / m.Dims.Width * float64(cols-1))
		y := int(pos.Y / m.Dims.Height * float64(rows-1))
		if x >= 0 && x < cols && y >= 0 && y < rows {
			grid[y][x] = '◉'
		}
	}

	lines := make([]string, rows)
	for y, row := range grid {
		lines[y] = previewFixtureStyle.Render(string(row))
	}
	return previewRoomStyle.Render(strings.Join(lines, "\n"))
}
