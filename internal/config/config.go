// ABOUTME: Viper-backed configuration for the audlink binaries
// ABOUTME: Defaults plus an optional config file per binary
package config

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/viper"
)

// DefaultPort is the UDP port transmitters listen on.
const DefaultPort = 4242

func setDefaults() {
	viper.SetDefault("port", DefaultPort)
	viper.SetDefault("logfile", "")
	viper.SetDefault("source", "tone")
	viper.SetDefault("tone_frequency", 440.0)
	viper.SetDefault("target", "")
	viper.SetDefault("record", "")
	viper.SetDefault("volume", 100)
}

// Load applies defaults and reads the config file at path, if one
// exists. An empty path loads defaults only.
func Load(path string) error {
	setDefaults()

	if path == "" {
		return nil
	}

	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			log.Printf("No config file at %s, using defaults", path)
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	return nil
}

// Port returns the UDP port to listen or dial on.
func Port() int { return viper.GetInt("port") }

// LogFile returns the log destination, or empty for stderr.
func LogFile() string { return viper.GetString("logfile") }

// Source returns the transmitter source kind ("tone" or an mp3 path).
func Source() string { return viper.GetString("source") }

// ToneFrequency returns the test tone frequency in Hz.
func ToneFrequency() float64 { return viper.GetFloat64("tone_frequency") }

// Target returns the transmitter endpoint to dial, or empty to browse.
func Target() string { return viper.GetString("target") }

// Record returns the WAV capture path, or empty to play back instead.
func Record() string { return viper.GetString("record") }

// Volume returns the initial playback volume (0-100).
func Volume() int { return viper.GetInt("volume") }
