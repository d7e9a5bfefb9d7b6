// ABOUTME: Entry point for the audlink receiver
// ABOUTME: Parses CLI flags and runs the receive/playback loop
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/audlink/audlink/internal/comms"
	"github.com/audlink/audlink/internal/config"
	"github.com/audlink/audlink/internal/discovery"
	"github.com/audlink/audlink/internal/remote"
	"github.com/audlink/audlink/internal/sink"
	"github.com/audlink/audlink/internal/ui"
	"github.com/audlink/audlink/pkg/audio"
)

var (
	configPath = flag.String("config", "", "Config file path")
	target     = flag.String("target", "", "Manual transmitter address (skip mDNS)")
	listenAddr = flag.String("listen", ":4243", "Local UDP address to bind")
	recordPath = flag.String("record", "", "Record to WAV file instead of playing back")
	logFile    = flag.String("log-file", "audlink-rx.log", "Log file path")
	noTUI      = flag.Bool("no-tui", false, "Disable TUI, use streaming logs instead")
)

// countingConsumer forwards audio to the real sink while tracking how
// many frames have arrived, for the TUI stats line.
type countingConsumer struct {
	next   audio.Consumer
	frames int64
}

func (c *countingConsumer) ConsumeBuffer(buffer audio.Buffer) error {
	c.frames += int64(buffer.FrameCount())
	return c.next.ConsumeBuffer(buffer)
}

func main() {
	flag.Parse()

	if err := config.Load(*configPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	useTUI := !*noTUI

	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()

	if useTUI {
		// TUI mode: log only to file
		log.SetOutput(f)
	} else {
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}

	// TUI setup
	var tuiProg *tea.Program
	var control *ui.Control

	if useTUI {
		control = ui.NewControl()
		tuiProg, err = ui.Run(control)
		if err != nil {
			log.Fatalf("Failed to start TUI: %v", err)
		}
		go tuiProg.Run()
	}

	updateTUI := func(msg ui.StatusMsg) {
		if tuiProg != nil {
			tuiProg.Send(msg)
		}
	}

	transmitterAddr := *target
	if transmitterAddr == "" {
		transmitterAddr = config.Target()
	}
	transmitterName := transmitterAddr

	if transmitterAddr == "" {
		log.Printf("Browsing for transmitters...")
		disc := discovery.NewManager()
		disc.Browse()

		select {
		case info := <-disc.Transmitters():
			transmitterAddr = info.Addr()
			transmitterName = info.Name
			log.Printf("Discovered transmitter at %s", transmitterAddr)
		case <-time.After(10 * time.Second):
			log.Fatalf("No transmitter found after 10 seconds")
		}
		disc.Stop()
	}

	remoteAddr, err := net.ResolveUDPAddr("udp", transmitterAddr)
	if err != nil {
		log.Fatalf("Failed to resolve transmitter address %q: %v", transmitterAddr, err)
	}

	socket, err := comms.BindUDP(*listenAddr)
	if err != nil {
		log.Fatalf("Failed to bind %q: %v", *listenAddr, err)
	}

	receiver, err := remote.NewReceiver(comms.Sockets{Socket: socket, Target: remoteAddr})
	if err != nil {
		log.Fatalf("Failed to launch receiver: %v", err)
	}

	updateTUI(ui.StatusMsg{TransmitterName: transmitterName})

	capturePath := *recordPath
	if capturePath == "" {
		capturePath = config.Record()
	}

	playback := sink.NewPlayback()
	playback.SetVolume(config.Volume())

	var recorder *sink.WAVRecorder
	counting := &countingConsumer{}

	// The sink needs the negotiated stream format, so it is attached
	// once the transmitter announces a connection.
	attachSink := func(connection audio.DeviceConnection) error {
		channels := connection.Channels.Count()

		if capturePath != "" {
			recorder, err = sink.NewWAVRecorder(capturePath, connection.SampleRate, channels)
			if err != nil {
				return fmt.Errorf("failed to start recording: %w", err)
			}
			log.Printf("Recording to %s", capturePath)
			counting.next = recorder
		} else {
			if err := playback.Initialize(connection.SampleRate, channels); err != nil {
				return fmt.Errorf("failed to start playback: %w", err)
			}
			counting.next = playback
		}

		receiver.AttachConsumer(counting)
		return nil
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	statsTicker := time.NewTicker(500 * time.Millisecond)
	defer statsTicker.Stop()

	sinkAttached := false

	log.Printf("Receiver listening on %s, linked to %s", *listenAddr, transmitterAddr)

	running := true
	for running {
		select {
		case <-ticker.C:
			if err := receiver.ProcessEvents(); err != nil {
				log.Printf("Receiver error: %v", err)
			}

			if connection, ok := receiver.ConnectedDevice(); ok && !sinkAttached {
				if err := attachSink(connection); err != nil {
					log.Fatalf("%v", err)
				}
				sinkAttached = true
				updateTUI(ui.StatusMsg{Connection: &connection})
			}

			accessible := receiver.IsAccessible()
			updateTUI(ui.StatusMsg{
				Accessible: &accessible,
				Devices:    receiver.ListDevices(),
			})

		case <-statsTicker.C:
			updateTUI(ui.StatusMsg{FramesReceived: counting.frames})

		case device := <-connectRequests(control):
			selection := defaultSelection(device)
			log.Printf("Connecting to %s with channels %v", device.Name, selection.Channels())
			if err := receiver.Connect(device, selection); err != nil {
				log.Printf("Connect failed: %v", err)
			}
			sinkAttached = false

		case change := <-volumeChanges(control):
			playback.SetVolume(change.Volume)
			playback.SetMuted(change.Muted)

		case <-quitRequests(control):
			log.Printf("Received quit signal from TUI")
			running = false

		case <-sigChan:
			log.Printf("Shutdown signal received")
			running = false
		}
	}

	if tuiProg != nil {
		tuiProg.Quit()
	}

	receiver.Close()
	playback.Close()
	if recorder != nil {
		if err := recorder.Close(); err != nil {
			log.Printf("Failed to finalize recording: %v", err)
		}
	}

	log.Printf("Receiver stopped")
}

// connectRequests returns the TUI's connect channel, or a nil channel
// that never fires when the TUI is disabled.
func connectRequests(control *ui.Control) <-chan audio.Device {
	if control == nil {
		return nil
	}
	return control.Connects
}

func volumeChanges(control *ui.Control) <-chan ui.VolumeChangeMsg {
	if control == nil {
		return nil
	}
	return control.Volumes
}

func quitRequests(control *ui.Control) <-chan struct{} {
	if control == nil {
		return nil
	}
	return control.Quit
}

// defaultSelection picks up to the first two channels of the device.
func defaultSelection(device audio.Device) audio.ChannelSelection {
	if device.NumChannels >= 2 {
		return audio.Range(0, 2)
	}
	return audio.Mono(0)
}
