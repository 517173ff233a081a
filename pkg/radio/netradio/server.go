package netradio

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/golang/glog"

	fx "github.com/robotalks/rcvehicle/pkg/framework"
	"github.com/robotalks/rcvehicle/pkg/transport"
	"github.com/robotalks/rcvehicle/pkg/transport/stream"
	"github.com/robotalks/rcvehicle/pkg/transport/websocket"
)

// WebSocketPath is where the websocket radio endpoint is served.
const WebSocketPath = "/radio"

// ServeListener accepts stream connections from ln and serves each of
// them until ctx is done.
func (t *Transceiver) ServeListener(ctx context.Context, ln net.Listener) error {
	return fx.RunWithContextCloser(ctx, ln, func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return err
			}
			go t.serveConn(ctx, conn.RemoteAddr().String(), stream.New(conn))
		}
	})
}

// WebSocketHandler serves radio connections over websocket.
func (t *Transceiver) WebSocketHandler(ctx context.Context) http.Handler {
	return websocket.Handler(func(conn *websocket.ReadWriter) {
		t.serveConn(ctx, "websocket", conn)
	})
}

func (t *Transceiver) serveConn(ctx context.Context, peer string, conn transport.PacketConn) {
	glog.Infof("netradio: %s connected", peer)
	err := t.Serve(ctx, conn)
	glog.Infof("netradio: %s disconnected: %v", peer, err)
}

// Dial connects to a vehicle by URL: tcp://host:port (or host:port) for
// the stream transport, ws://host:port/radio for websocket.
func Dial(rawURL string) (transport.PacketConn, error) {
	if !strings.Contains(rawURL, "://") {
		rawURL = "tcp://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "tcp":
		conn, err := net.Dial("tcp", u.Host)
		if err != nil {
			return nil, err
		}
		return stream.New(conn), nil
	case "ws", "wss":
		if u.Path == "" {
			u.Path = WebSocketPath
		}
		conn, err := websocket.Dial(u.String())
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
	return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
}
