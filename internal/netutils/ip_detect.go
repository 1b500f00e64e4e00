// Package netutils finds the local address a device should use to reach
// this host, for GENA callback URLs.
package netutils

import (
	"errors"
	"net"
	"net/url"
	"sort"
	"strings"
	"time"
)

var ErrNoLocalIP = errors.New("no suitable local IP found")

// GuessLocalIP returns the best-guess private IPv4 address of this host, in
// order of preference: eth0 > en* > wl* > any other interface.
func GuessLocalIP() (string, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "", err
	}

	type scoredIP struct {
		ip    net.IP
		score int
	}

	var candidates []scoredIP

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			if ip == nil || ip.To4() == nil || !ip.IsPrivate() {
				continue
			}
			candidates = append(candidates, scoredIP{ip: ip, score: scoreInterfaceName(iface.Name)})
		}
	}

	if len(candidates) == 0 {
		return "", ErrNoLocalIP
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	return candidates[0].ip.String(), nil
}

func scoreInterfaceName(name string) int {
	switch {
	case name == "eth0":
		return 100
	case strings.HasPrefix(name, "en"):
		return 80
	case name == "wlan0" || strings.HasPrefix(name, "wl"):
		return 60
	default:
		return 10
	}
}

// LocalIPFor returns the local address used to reach the host of target, a
// device URL. It opens and closes a short TCP connection.
func LocalIPFor(target string, timeout time.Duration) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", err
	}
	host := u.Host
	if u.Port() == "" {
		port := "80"
		if u.Scheme == "https" {
			port = "443"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}

	conn, err := net.DialTimeout("tcp", host, timeout)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	local, _, err := net.SplitHostPort(conn.LocalAddr().String())
	if err != nil {
		return "", err
	}
	return local, nil
}

// CallbackHost picks the host to advertise in callback URLs: the address
// facing target when it can be reached, else GuessLocalIP, else loopback.
func CallbackHost(target string) string {
	if target != "" {
		if ip, err := LocalIPFor(target, time.Second); err == nil {
			return ip
		}
	}
	if ip, err := GuessLocalIP(); err == nil {
		return ip
	}
	return "127.0.0.1"
}
