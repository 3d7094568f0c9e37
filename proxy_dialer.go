// Copyright 2017 The Gorilla WebSocket Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package websocket

import (
	"net/url"
	"strings"

	"golang.org/x/net/proxy"
)

// proxy_Dialer and proxy_RegisterDialerType alias golang.org/x/net/proxy's
// exported names under this package's historical lowercase spelling, kept
// so proxy.go and proxy_https.go read the same as the rest of this file's
// neighbors without an x/net-shaped import at every call site.
type proxy_Dialer = proxy.Dialer

var proxy_RegisterDialerType = proxy.RegisterDialerType
var proxy_FromURL = proxy.FromURL

// hostPortNoPort splits u.Host into a host:port pair, defaulting the port
// to 80 (ws) or 443 (wss) when the URL did not specify one, and a bare
// host with no port for use as a TLS ServerName.
func hostPortNoPort(u *url.URL) (hostPort, hostNoPort string) {
	hostPort = u.Host
	hostNoPort = u.Host
	if i := strings.LastIndex(u.Host, ":"); i != -1 {
		hostNoPort = hostPort[:i]
	} else {
		switch u.Scheme {
		case "wss":
			hostPort += ":443"
		default:
			hostPort += ":80"
		}
	}
	return hostPort, hostNoPort
}
