package ui

// TUI message types for match review

type DeletionCompleteMsg struct {
	FilePath string
	Success  bool
	Error    error
}
