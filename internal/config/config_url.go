// Partwise - Auto Parts Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/partwise

package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// natsSchemes are the URL schemes nats.Connect accepts.
var natsSchemes = map[string]bool{"nats": true, "tls": true, "ws": true, "wss": true}

// validateNATSURL checks a NATS server list. Like nats.Connect, it accepts
// several comma-separated URLs; each needs a known scheme and a host.
func validateNATSURL(raw string) error {
	for _, server := range strings.Split(raw, ",") {
		server = strings.TrimSpace(server)
		if server == "" {
			return fmt.Errorf("empty server in list %q", raw)
		}
		u, err := url.Parse(server)
		if err != nil {
			return fmt.Errorf("parse %q: %w", server, err)
		}
		if !natsSchemes[u.Scheme] {
			return fmt.Errorf("%q: scheme must be nats, tls, ws or wss", server)
		}
		if u.Hostname() == "" {
			return fmt.Errorf("%q: host is required", server)
		}
		if p := u.Port(); p != "" {
			if err := validatePort(p); err != nil {
				return fmt.Errorf("%q: %w", server, err)
			}
		}
	}
	return nil
}

// validateHostPort checks a go-redis style "host:port" address.
func validateHostPort(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return err
	}
	if host == "" {
		return fmt.Errorf("host is required in %q", addr)
	}
	return validatePort(port)
}

func validatePort(p string) error {
	n, err := strconv.Atoi(p)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("port %q out of range", p)
	}
	return nil
}
