package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lepinkainen/videodup/match"
)

// ReviewGroup is one match group being reviewed. Files[0] is the reference;
// Distances is aligned with Files (the reference is at distance 0).
type ReviewGroup struct {
	Files        []string
	Distances    []float64
	Selected     []bool // which files are selected for deletion
	DeletedFiles []string
}

// ReviewModel is the TUI model for walking through match groups and
// deleting unwanted duplicates.
type ReviewModel struct {
	// Data
	groups       []ReviewGroup
	currentGroup int
	currentFile  int

	// UI state
	width  int
	height int

	// Interaction state
	confirmingDeletion bool
	pendingDeletion    []string
	showHelp           bool

	// Control state
	quitting bool
}

// NewReviewModel builds the review TUI from matcher output.
func NewReviewModel(groups []match.MatchGroup) ReviewModel {
	reviewGroups := make([]ReviewGroup, 0, len(groups))
	for _, g := range groups {
		files := append([]string{g.Reference}, g.Duplicates...)
		distances := append([]float64{0}, g.Distances...)
		reviewGroups = append(reviewGroups, ReviewGroup{
			Files:     files,
			Distances: distances,
			Selected:  make([]bool, len(files)),
		})
	}

	return ReviewModel{
		groups:   reviewGroups,
		showHelp: true,
	}
}

// Init implements tea.Model
func (m ReviewModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.confirmingDeletion {
			return m.handleConfirmationInput(msg)
		}
		return m.handleNormalInput(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case DeletionCompleteMsg:
		m.handleDeletionComplete(msg)
	}

	return m, nil
}

func (m ReviewModel) handleNormalInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.groups) == 0 {
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit

	case "h", "?":
		m.showHelp = !m.showHelp

	case "up", "k":
		if m.currentFile > 0 {
			m.currentFile--
		}

	case "down", "j":
		if m.currentFile < len(m.groups[m.currentGroup].Files)-1 {
			m.currentFile++
		}

	case "left", "p":
		if m.currentGroup > 0 {
			m.currentGroup--
			m.currentFile = 0
		}

	case "right", "n":
		if m.currentGroup < len(m.groups)-1 {
			m.currentGroup++
			m.currentFile = 0
		}

	case " ": // spacebar to toggle selection
		group := &m.groups[m.currentGroup]
		group.Selected[m.currentFile] = !group.Selected[m.currentFile]

	case "a": // select every duplicate in the group, keeping the reference
		group := &m.groups[m.currentGroup]
		for i := range group.Selected {
			group.Selected[i] = i != 0
		}

	case "c": // clear all selections in current group
		group := &m.groups[m.currentGroup]
		for i := range group.Selected {
			group.Selected[i] = false
		}

	case "s": // skip current group
		if m.currentGroup < len(m.groups)-1 {
			m.currentGroup++
			m.currentFile = 0
		} else {
			m.quitting = true
			return m, tea.Quit
		}

	case "enter":
		return m.handleDeleteCommand()
	}

	return m, nil
}

func (m ReviewModel) handleConfirmationInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.confirmingDeletion = false
		return m, m.executeDeleteCommand()

	case "n", "N", "ctrl+c", "esc":
		m.confirmingDeletion = false
		m.pendingDeletion = nil
	}

	return m, nil
}

func (m ReviewModel) handleDeleteCommand() (tea.Model, tea.Cmd) {
	var selectedFiles []string

	// Collect selected files from ALL groups (not just current)
	for _, group := range m.groups {
		for i, selected := range group.Selected {
			if selected {
				selectedFiles = append(selectedFiles, group.Files[i])
			}
		}
	}

	if len(selectedFiles) == 0 {
		return m, nil
	}

	m.pendingDeletion = selectedFiles
	m.confirmingDeletion = true
	return m, nil
}

func (m ReviewModel) executeDeleteCommand() tea.Cmd {
	return func() tea.Msg {
		for _, filePath := range m.pendingDeletion {
			err := os.Remove(filePath)
			if err != nil {
				return DeletionCompleteMsg{
					FilePath: filePath,
					Success:  false,
					Error:    err,
				}
			}
		}
		return DeletionCompleteMsg{Success: true}
	}
}

func (m *ReviewModel) handleDeletionComplete(msg DeletionCompleteMsg) {
	if msg.Success && msg.FilePath == "" {
		var groupsToRemove []int

		for groupIndex := range m.groups {
			group := &m.groups[groupIndex]

			var remainingFiles []string
			var remainingDistances []float64
			var remainingSelected []bool

			for fileIndex, file := range group.Files {
				deleted := false
				for _, deletedFile := range m.pendingDeletion {
					if file == deletedFile {
						deleted = true
						group.DeletedFiles = append(group.DeletedFiles, file)
						break
					}
				}
				if !deleted {
					remainingFiles = append(remainingFiles, file)
					remainingDistances = append(remainingDistances, group.Distances[fileIndex])
					remainingSelected = append(remainingSelected, group.Selected[fileIndex])
				}
			}

			group.Files = remainingFiles
			group.Distances = remainingDistances
			group.Selected = remainingSelected

			// A group with a single survivor has nothing left to review
			if len(group.Files) <= 1 {
				groupsToRemove = append(groupsToRemove, groupIndex)
			}
		}

		// Remove finished groups (in reverse order to maintain indices)
		for i := len(groupsToRemove) - 1; i >= 0; i-- {
			groupIndex := groupsToRemove[i]
			m.groups = append(m.groups[:groupIndex], m.groups[groupIndex+1:]...)

			if m.currentGroup >= groupIndex && m.currentGroup > 0 {
				m.currentGroup--
			}
		}

		if len(m.groups) == 0 {
			m.quitting = true
		} else {
			if m.currentGroup >= len(m.groups) {
				m.currentGroup = len(m.groups) - 1
			}
			if m.currentFile >= len(m.groups[m.currentGroup].Files) {
				m.currentFile = len(m.groups[m.currentGroup].Files) - 1
				if m.currentFile < 0 {
					m.currentFile = 0
				}
			}
		}
	}

	m.pendingDeletion = nil
}

// View implements tea.Model
func (m ReviewModel) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	if len(m.groups) == 0 {
		return m.renderNoGroups()
	}

	if m.confirmingDeletion {
		return m.renderConfirmationDialog()
	}

	return m.renderMainView()
}

func (m ReviewModel) renderNoGroups() string {
	style := SuccessStyle.MarginTop(2).MarginLeft(2)
	return style.Render("✅ All duplicate groups have been reviewed!\n\nPress 'q' to quit.")
}

func (m ReviewModel) renderConfirmationDialog() string {
	var content strings.Builder

	content.WriteString(HeaderStyle.Render("⚠️  Confirm Deletion"))
	content.WriteString("\n\n")
	content.WriteString(fmt.Sprintf("Are you sure you want to delete %d file(s)?\n\n", len(m.pendingDeletion)))

	for _, file := range m.pendingDeletion {
		content.WriteString(fmt.Sprintf("  • %s\n", file))
	}

	content.WriteString("\n")
	content.WriteString(ErrorStyle.Render("This action cannot be undone!"))
	content.WriteString("\n\n")
	content.WriteString("Press 'y' to confirm, 'n' to cancel")

	return content.String()
}

func (m ReviewModel) renderMainView() string {
	var content strings.Builder

	group := m.groups[m.currentGroup]

	content.WriteString(HeaderStyle.Render(fmt.Sprintf("Duplicate group %d/%d", m.currentGroup+1, len(m.groups))))
	content.WriteString("\n\n")

	for i, file := range group.Files {
		cursor := "  "
		if i == m.currentFile {
			cursor = "> "
		}

		checkbox := "[ ]"
		if group.Selected[i] {
			checkbox = "[x]"
		}

		label := filepath.Base(file)
		if i == 0 {
			label += " (reference)"
		} else {
			label += fmt.Sprintf("  d=%.3f", group.Distances[i])
		}

		line := fmt.Sprintf("%s%s %s", cursor, checkbox, label)
		if i == m.currentFile {
			content.WriteString(ProcessingStyle.Render(line))
		} else {
			content.WriteString(line)
		}
		content.WriteString("\n")
		content.WriteString(DimStyle.Render(fmt.Sprintf("      %s", file)))
		content.WriteString("\n")
	}

	if len(group.DeletedFiles) > 0 {
		content.WriteString("\n")
		content.WriteString(DimStyle.Render(fmt.Sprintf("%d file(s) deleted from this group", len(group.DeletedFiles))))
		content.WriteString("\n")
	}

	if m.showHelp {
		content.WriteString("\n")
		content.WriteString(DimStyle.Render("↑/↓ move  ←/→ group  space select  a all dupes  c clear  enter delete  s skip  q quit  ? help"))
		content.WriteString("\n")
	}

	return content.String()
}
