// ABOUTME: TUI initialization and control
// ABOUTME: Wraps bubbletea program for the receiver UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/audlink/audlink/pkg/audio"
)

// Control holds channels carrying user intent out of the TUI
type Control struct {
	Connects chan audio.Device
	Volumes  chan VolumeChangeMsg
	Quit     chan struct{}
}

// NewControl creates a new control handler
func NewControl() *Control {
	return &Control{
		Connects: make(chan audio.Device, 10),
		Volumes:  make(chan VolumeChangeMsg, 10),
		Quit:     make(chan struct{}, 1),
	}
}

// NewModel creates a new TUI model
func NewModel(control *Control) Model {
	return Model{
		volume:  100,
		control: control,
	}
}

// Run starts the TUI
func Run(control *Control) (*tea.Program, error) {
	p := tea.NewProgram(NewModel(control), tea.WithAltScreen())
	return p, nil
}
