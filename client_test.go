// Copyright 2013 The Gorilla WebSocket Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package websocket

import (
	"net/url"
	"testing"
)

var parseURLTests = []struct {
	s          string
	useTLS     bool
	host, port string
}{
	{"ws://example.com/foo", false, "example.com", ":80"},
	{"wss://example.com/foo", true, "example.com", ":443"},
	{"ws://example.com:8080/foo", false, "example.com", ":8080"},
	{"ws://[::1]:8080/foo", false, "[::1]", ":8080"},
}

func TestParseURL(t *testing.T) {
	for _, tt := range parseURLTests {
		useTLS, host, port, _, err := parseURL(tt.s)
		if err != nil {
			t.Errorf("parseURL(%q): %v", tt.s, err)
			continue
		}
		if useTLS != tt.useTLS || host != tt.host || port != tt.port {
			t.Errorf("parseURL(%q) = (%v, %q, %q), want (%v, %q, %q)",
				tt.s, useTLS, host, port, tt.useTLS, tt.host, tt.port)
		}
	}
}

func TestParseURLRejectsNonWebsocketScheme(t *testing.T) {
	if _, _, _, _, err := parseURL("http://example.com"); err != errMalformedURL {
		t.Errorf("got %v, want errMalformedURL", err)
	}
}

var hostPortNoPortTests = []struct {
	u              url.URL
	hostPort, host string
}{
	{url.URL{Scheme: "ws", Host: "example.com"}, "example.com:80", "example.com"},
	{url.URL{Scheme: "wss", Host: "example.com"}, "example.com:443", "example.com"},
	{url.URL{Scheme: "ws", Host: "example.com:7777"}, "example.com:7777", "example.com"},
	{url.URL{Scheme: "wss", Host: "example.com:7777"}, "example.com:7777", "example.com"},
}

func TestHostPortNoPort(t *testing.T) {
	for _, tt := range hostPortNoPortTests {
		hostPort, host := hostPortNoPort(&tt.u)
		if hostPort != tt.hostPort || host != tt.host {
			t.Errorf("hostPortNoPort(%v) = (%q, %q), want (%q, %q)", tt.u, hostPort, host, tt.hostPort, tt.host)
		}
	}
}
