// Copyright 2017 The Gorilla WebSocket Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package websocket

import (
	"bufio"
	"encoding/base64"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// proxyDialerEx extends the generated proxy_Dialer
type proxyDialerEx interface {
	proxy_Dialer
	// UsesTLS indicates whether we expect to dial to a TLS proxy
	UsesTLS() bool
}

type netDialerFunc struct {
	fn      func(network, addr string) (net.Conn, error)
	usesTLS bool
}

func (ndf *netDialerFunc) Dial(network, addr string) (net.Conn, error) {
	return ndf.fn(network, addr)
}

func (ndf *netDialerFunc) UsesTLS() bool {
	return ndf.usesTLS
}

func init() {
	proxy_RegisterDialerType("http", func(proxyURL *url.URL, forwardDialer proxy_Dialer) (proxy_Dialer, error) {
		return &httpProxyDialer{proxyURL: proxyURL, forwardDial: forwardDialer.Dial, usesTLS: false}, nil
	})
	registerDialerHttps()
}

type httpProxyDialer struct {
	proxyURL    *url.URL
	forwardDial func(network, addr string) (net.Conn, error)
	usesTLS     bool
}

func (hpd *httpProxyDialer) Dial(network string, addr string) (net.Conn, error) {
	hostPort, _ := hostPortNoPort(hpd.proxyURL)
	conn, err := hpd.forwardDial(network, hostPort)
	if err != nil {
		return nil, err
	}

	connectHeader := make(http.Header)
	if user := hpd.proxyURL.User; user != nil {
		proxyUser := user.Username()
		if proxyPassword, passwordSet := user.Password(); passwordSet {
			credential := base64.StdEncoding.EncodeToString([]byte(proxyUser + ":" + proxyPassword))
			connectHeader.Set("Proxy-Authorization", "Basic "+credential)
		}
	}

	connectReq := &http.Request{
		Method: http.MethodConnect,
		URL:    &url.URL{Opaque: addr},
		Host:   addr,
		Header: connectHeader,
	}

	if err := connectReq.Write(conn); err != nil {
		conn.Close()
		return nil, err
	}

	// Read response. It's OK to use and discard buffered reader here becaue
	// the remote server does not speak until spoken to.
	br := bufio.NewReader(conn)
	resp, err := http.ReadResponse(br, connectReq)
	if err != nil {
		conn.Close()
		return nil, err
	}

	if resp.StatusCode != 200 {
		conn.Close()
		f := strings.SplitN(resp.Status, " ", 2)
		return nil, errors.New(f[1])
	}

	// The proxy may have pipelined bytes of the tunneled protocol right
	// after its response line; br.Buffered() still holds them even
	// though br itself is about to be discarded.
	leftover := make([]byte, br.Buffered())
	if _, err := br.Read(leftover); err != nil && len(leftover) > 0 {
		conn.Close()
		return nil, err
	}
	return newMergedNetConnReader(conn, leftover), nil
}

func (hpd *httpProxyDialer) UsesTLS() bool {
	return hpd.usesTLS
}
