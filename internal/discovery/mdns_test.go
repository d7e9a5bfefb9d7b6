// ABOUTME: Tests for mDNS discovery
// ABOUTME: Tests manager construction and endpoint formatting
package discovery

import (
	"testing"
)

func TestNewManager(t *testing.T) {
	mgr := NewManager()
	if mgr == nil {
		t.Fatal("expected manager to be created")
	}
	mgr.Stop()
}

func TestTransmitterAddr(t *testing.T) {
	info := TransmitterInfo{Name: "studio-tx", Host: "192.168.1.20", Port: 4242}
	if info.Addr() != "192.168.1.20:4242" {
		t.Errorf("unexpected endpoint: %s", info.Addr())
	}
}
