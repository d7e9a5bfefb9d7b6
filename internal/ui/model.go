// ABOUTME: Bubbletea model for the receiver TUI
// ABOUTME: Device selection list plus link and stream status
package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/audlink/audlink/pkg/audio"
)

// Model represents the TUI state
type Model struct {
	// Link
	accessible      bool
	transmitterName string

	// Devices
	devices []audio.Device
	cursor  int

	// Stream
	connection    audio.DeviceConnection
	hasConnection bool

	// Playback
	volume int
	muted  bool

	// Stats
	framesReceived int64

	// Dimensions
	width  int
	height int

	control *Control
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	s := ""
	s += m.renderHeader()
	s += m.renderDevices()
	s += m.renderStream()
	s += m.renderHelp()

	return s
}

// renderHeader renders link status
func (m Model) renderHeader() string {
	status := "Searching..."
	if m.transmitterName != "" {
		status = m.transmitterName
		if !m.accessible {
			status += " (unresponsive)"
		}
	}

	return fmt.Sprintf(`┌─ Audlink Receiver ───────────────────────────────────┐
│ Transmitter: %-40s │
├──────────────────────────────────────────────────────┤
`, truncate(status, 40))
}

// renderDevices renders the selectable remote device list
func (m Model) renderDevices() string {
	if len(m.devices) == 0 {
		return "│ No remote devices reported yet                       │\n"
	}

	s := "│ Remote devices:                                      │\n"
	for i, device := range m.devices {
		marker := " "
		if i == m.cursor {
			marker = ">"
		}
		line := fmt.Sprintf("%s %s (%s)", marker, device.Name, channelName(device.NumChannels))
		s += fmt.Sprintf("│ %-52s │\n", truncate(line, 52))
	}

	return s
}

// renderStream renders the active connection and playback state
func (m Model) renderStream() string {
	muteIcon := ""
	if m.muted {
		muteIcon = " (muted)"
	}

	stream := "none"
	if m.hasConnection {
		stream = fmt.Sprintf("%s @ %dHz", m.connection.Device.Name, m.connection.SampleRate)
	}

	return fmt.Sprintf("│                                                      │\n"+
		"│ Stream: %-44s │\n"+
		"│ Volume: [%s] %d%%%s%-17s │\n"+
		"│ Frames received: %-35d │\n",
		truncate(stream, 44),
		renderBar(m.volume, 100, 10), m.volume, muteIcon, "",
		m.framesReceived)
}

// renderHelp renders keyboard shortcuts
func (m Model) renderHelp() string {
	return `│ ↑/↓:Select  enter:Connect  +/-:Volume  m:Mute  q:Quit│
└──────────────────────────────────────────────────────┘
`
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if m.control != nil {
			select {
			case m.control.Quit <- struct{}{}:
			default:
			}
		}
		return m, tea.Quit
	case "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down":
		if m.cursor < len(m.devices)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(m.devices) && m.control != nil {
			select {
			case m.control.Connects <- m.devices[m.cursor]:
			default:
			}
		}
	case "+":
		m.volume += 5
		if m.volume > 100 {
			m.volume = 100
		}
		m.pushVolume()
	case "-":
		m.volume -= 5
		if m.volume < 0 {
			m.volume = 0
		}
		m.pushVolume()
	case "m":
		m.muted = !m.muted
		m.pushVolume()
	}

	return m, nil
}

func (m Model) pushVolume() {
	if m.control == nil {
		return
	}
	select {
	case m.control.Volumes <- VolumeChangeMsg{Volume: m.volume, Muted: m.muted}:
	default:
	}
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Accessible != nil {
		m.accessible = *msg.Accessible
	}
	if msg.TransmitterName != "" {
		m.transmitterName = msg.TransmitterName
	}
	if msg.Devices != nil {
		m.devices = msg.Devices
		if m.cursor >= len(m.devices) {
			m.cursor = 0
		}
	}
	if msg.Connection != nil {
		m.connection = *msg.Connection
		m.hasConnection = true
	}
	if msg.FramesReceived != 0 {
		m.framesReceived = msg.FramesReceived
	}
}

// StatusMsg updates TUI state
type StatusMsg struct {
	Accessible      *bool
	TransmitterName string
	Devices         []audio.Device
	Connection      *audio.DeviceConnection
	FramesReceived  int64
}

// VolumeChangeMsg carries a playback volume change to the app
type VolumeChangeMsg struct {
	Volume int
	Muted  bool
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	if length <= 3 {
		return s[:length]
	}
	return s[:length-3] + "..."
}

func channelName(channels int) string {
	if channels == 1 {
		return "Mono"
	}
	return fmt.Sprintf("%dch", channels)
}
