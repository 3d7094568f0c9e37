// Copyright 2017 The Gorilla WebSocket Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package websocket

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strconv"
)

// SOCKS5 constants from RFC 1928.
const (
	socks5Version     byte = 0x05
	socks5CmdConnect  byte = 0x01
	socks5NoAuth      byte = 0x00
	socks5AuthByCreds byte = 0x02

	socks5AuthCredsVersion byte = 0x01
	socks5AuthSucceeded    byte = 0x00

	socks5AddrIPv4 byte = 0x01
	socks5AddrFQDN byte = 0x03
	socks5AddrIPv6 byte = 0x04
)

func init() {
	proxy_RegisterDialerType("socks5", func(proxyURL *url.URL, forwardDialer proxy_Dialer) (proxy_Dialer, error) {
		return &socks5ProxyDialer{proxyURL: proxyURL, forwardDial: forwardDialer.Dial}, nil
	})
}

type socks5ProxyDialer struct {
	proxyURL    *url.URL
	forwardDial func(network, addr string) (net.Conn, error)
}

func (s *socks5ProxyDialer) Dial(network, addr string) (net.Conn, error) {
	conn, err := s.forwardDial(network, s.proxyURL.Host)
	if err != nil {
		return nil, err
	}

	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		conn.Close()
		return nil, err
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		conn.Close()
		return nil, err
	}

	var username, password string
	hasCreds := false
	if user := s.proxyURL.User; user != nil {
		hasCreds = true
		username = user.Username()
		password, _ = user.Password()
	}

	if err := socks5Handshake(conn, host, uint16(port), hasCreds, username, password); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// socks5Handshake performs the client side of a SOCKS5 negotiation and
// CONNECT request as described in RFC 1928, discarding the bound address
// the server returns since the WebSocket client never needs it.
func socks5Handshake(conn net.Conn, host string, port uint16, hasCreds bool, username, password string) error {
	greeting := make([]byte, 0, 4)
	greeting = append(greeting, socks5Version)
	if hasCreds {
		greeting = append(greeting, 2, socks5NoAuth, socks5AuthByCreds)
	} else {
		greeting = append(greeting, 1, socks5NoAuth)
	}
	if _, err := conn.Write(greeting); err != nil {
		return err
	}

	reply := make([]byte, 2)
	if _, err := io.ReadFull(conn, reply); err != nil {
		return err
	}
	if reply[0] != socks5Version {
		return fmt.Errorf("socks5: unexpected protocol version: %d", int(reply[0]))
	}

	switch reply[1] {
	case socks5NoAuth:
	case socks5AuthByCreds:
		if !hasCreds {
			return errors.New("socks5: server requires authentication")
		}
		if len(username) == 0 || len(username) > 255 || len(password) > 255 {
			return errors.New("socks5: invalid username/password")
		}
		creds := []byte{socks5AuthCredsVersion}
		creds = append(creds, byte(len(username)))
		creds = append(creds, username...)
		creds = append(creds, byte(len(password)))
		creds = append(creds, password...)
		if _, err := conn.Write(creds); err != nil {
			return err
		}
		authResp := make([]byte, 2)
		if _, err := io.ReadFull(conn, authResp); err != nil {
			return err
		}
		if authResp[0] != socks5AuthCredsVersion {
			return errors.New("socks5: invalid username/password version")
		}
		if authResp[1] != socks5AuthSucceeded {
			return errors.New("socks5: username/password authentication failed")
		}
	default:
		return errors.New("socks5: no acceptable authentication methods")
	}

	req := make([]byte, 0, 7+len(host))
	req = append(req, socks5Version, socks5CmdConnect, 0)
	if ip := net.ParseIP(host); ip != nil {
		if ip4 := ip.To4(); ip4 != nil {
			req = append(req, socks5AddrIPv4)
			req = append(req, ip4...)
		} else {
			req = append(req, socks5AddrIPv6)
			req = append(req, ip.To16()...)
		}
	} else {
		if len(host) > 255 {
			return errors.New("socks5: host name too long")
		}
		req = append(req, socks5AddrFQDN, byte(len(host)))
		req = append(req, host...)
	}
	req = append(req, byte(port>>8), byte(port))

	if _, err := conn.Write(req); err != nil {
		return err
	}

	head := make([]byte, 4)
	if _, err := io.ReadFull(conn, head); err != nil {
		return err
	}
	if head[0] != socks5Version {
		return fmt.Errorf("socks5: unexpected protocol version: %d", int(head[0]))
	}
	if head[1] != socks5AuthSucceeded {
		return fmt.Errorf("socks5: connect failed: %s", socks5ReplyCodeString(head[1]))
	}

	var addrLen int
	switch head[3] {
	case socks5AddrIPv4:
		addrLen = net.IPv4len
	case socks5AddrIPv6:
		addrLen = net.IPv6len
	case socks5AddrFQDN:
		lenByte := make([]byte, 1)
		if _, err := io.ReadFull(conn, lenByte); err != nil {
			return err
		}
		addrLen = int(lenByte[0])
	default:
		return fmt.Errorf("socks5: unknown address type: %d", int(head[3]))
	}

	// Discard bound address + port; the WebSocket client has no use for it.
	if _, err := io.ReadFull(conn, make([]byte, addrLen+2)); err != nil {
		return err
	}
	return nil
}

func socks5ReplyCodeString(code byte) string {
	switch code {
	case 0x01:
		return "general SOCKS server failure"
	case 0x02:
		return "connection not allowed by ruleset"
	case 0x03:
		return "network unreachable"
	case 0x04:
		return "host unreachable"
	case 0x05:
		return "connection refused"
	case 0x06:
		return "TTL expired"
	case 0x07:
		return "command not supported"
	case 0x08:
		return "address type not supported"
	default:
		return fmt.Sprintf("unknown code: %d", int(code))
	}
}
