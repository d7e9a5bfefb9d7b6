// ABOUTME: Entry point for the audlink transmitter
// ABOUTME: Serves a local audio source to a remote receiver over UDP
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/audlink/audlink/internal/comms"
	"github.com/audlink/audlink/internal/config"
	"github.com/audlink/audlink/internal/discovery"
	"github.com/audlink/audlink/internal/remote"
	"github.com/audlink/audlink/internal/source"
	"github.com/audlink/audlink/pkg/audio"
)

var (
	configPath = flag.String("config", "", "Config file path")
	port       = flag.Int("port", 0, "UDP port to listen on")
	peer       = flag.String("peer", "127.0.0.1:4243", "Receiver address to stream to")
	sourceKind = flag.String("source", "", "Audio source: 'tone' or a path to an MP3 file")
	toneFreq   = flag.Float64("tone-freq", 0, "Test tone frequency in Hz")
	name       = flag.String("name", "", "Instance name for mDNS (default: hostname-<id>)")
	logFile    = flag.String("log-file", "audlink-tx.log", "Log file path")
)

func main() {
	flag.Parse()

	if err := config.Load(*configPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	f, err := os.OpenFile(*logFile, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening log file: %v", err)
	}
	defer func() { _ = f.Close() }()
	log.SetOutput(io.MultiWriter(os.Stdout, f))

	listenPort := *port
	if listenPort == 0 {
		listenPort = config.Port()
	}

	instance := *name
	if instance == "" {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "audlink"
		}
		instance = fmt.Sprintf("%s-%s", hostname, uuid.NewString()[:8])
	}

	src, err := buildSource()
	if err != nil {
		log.Fatalf("Failed to build audio source: %v", err)
	}
	if closer, ok := src.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	peerAddr, err := net.ResolveUDPAddr("udp", *peer)
	if err != nil {
		log.Fatalf("Failed to resolve receiver address %q: %v", *peer, err)
	}

	socket, err := comms.BindUDP(fmt.Sprintf(":%d", listenPort))
	if err != nil {
		log.Fatalf("Failed to bind port %d: %v", listenPort, err)
	}

	transmitter, err := remote.NewTransmitter(comms.Sockets{Socket: socket, Target: peerAddr}, src)
	if err != nil {
		log.Fatalf("Failed to launch transmitter: %v", err)
	}

	disc := discovery.NewManager()
	if err := disc.Advertise(instance, listenPort); err != nil {
		log.Printf("mDNS advertisement failed: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	log.Printf("Transmitter %q listening on port %d, streaming to %s", instance, listenPort, *peer)

	running := true
	for running {
		select {
		case <-ticker.C:
			if err := transmitter.ProcessEvents(); err != nil {
				log.Printf("Transmitter error: %v", err)
			}
		case <-sigChan:
			log.Printf("Shutdown signal received")
			running = false
		}
	}

	disc.Stop()
	transmitter.Close()

	log.Printf("Transmitter stopped")
}

// buildSource resolves the -source flag (or config) into an audio source.
func buildSource() (audio.Source, error) {
	kind := *sourceKind
	if kind == "" {
		kind = config.Source()
	}

	if kind == "tone" {
		frequency := *toneFreq
		if frequency == 0 {
			frequency = config.ToneFrequency()
		}
		log.Printf("Using %.0fHz test tone source", frequency)
		return source.NewTone(frequency), nil
	}

	if strings.HasSuffix(strings.ToLower(kind), ".mp3") {
		log.Printf("Using MP3 source %s", kind)
		src, err := source.NewMP3File(kind)
		if err != nil {
			return nil, err
		}
		return src, nil
	}

	return nil, fmt.Errorf("unknown source %q", kind)
}
