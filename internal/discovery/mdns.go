// ABOUTME: mDNS discovery of audio transmitters on the local network
// ABOUTME: Handles both advertisement (transmitter) and browsing (receiver)
package discovery

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the mDNS service transmitters advertise under.
const ServiceType = "_audlink-tx._udp"

const queryTimeout = 3 * time.Second

// TransmitterInfo describes a discovered transmitter.
type TransmitterInfo struct {
	Name string
	Host string
	Port int
}

// Addr formats the transmitter's UDP endpoint.
func (t TransmitterInfo) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// Manager advertises this process or browses for transmitters.
type Manager struct {
	ctx          context.Context
	cancel       context.CancelFunc
	transmitters chan TransmitterInfo
}

// NewManager creates an idle discovery manager.
func NewManager() *Manager {
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		ctx:          ctx,
		cancel:       cancel,
		transmitters: make(chan TransmitterInfo, 10),
	}
}

// Advertise announces a transmitter at the given UDP port until Stop.
func (m *Manager) Advertise(instance string, port int) error {
	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		instance,
		ServiceType,
		"",
		"",
		port,
		ips,
		[]string{"proto=audlink"},
	)
	if err != nil {
		return fmt.Errorf("failed to create mdns service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	log.Printf("Advertising %s as %q on port %d", ServiceType, instance, port)

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

// Browse starts a background search for transmitters. Discovered
// transmitters arrive on Transmitters until Stop.
func (m *Manager) Browse() {
	go m.browseLoop()
}

func (m *Manager) browseLoop() {
	for {
		select {
		case <-m.ctx.Done():
			return
		default:
		}

		entries := make(chan *mdns.ServiceEntry, 10)

		go func() {
			for entry := range entries {
				if entry.AddrV4 == nil {
					continue
				}

				info := TransmitterInfo{
					Name: entry.Name,
					Host: entry.AddrV4.String(),
					Port: entry.Port,
				}

				log.Printf("Discovered transmitter %s at %s", info.Name, info.Addr())

				select {
				case m.transmitters <- info:
				case <-m.ctx.Done():
					return
				}
			}
		}()

		params := &mdns.QueryParam{
			Service: ServiceType,
			Domain:  "local",
			Timeout: queryTimeout,
			Entries: entries,
		}

		if err := mdns.Query(params); err != nil {
			log.Printf("mDNS query failed: %v", err)
		}
		close(entries)
	}
}

// Transmitters returns the channel of discovered transmitters.
func (m *Manager) Transmitters() <-chan TransmitterInfo {
	return m.transmitters
}

// Stop shuts down advertisement and browsing.
func (m *Manager) Stop() {
	m.cancel()
}

// getLocalIPs returns the non-loopback IPv4 addresses of up interfaces.
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
