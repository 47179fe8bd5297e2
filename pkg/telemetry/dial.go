package telemetry

import (
	"fmt"
	"net"
	"net/url"

	"github.com/robotalks/ps2serial/pkg/telemetry/mqtt"
	"github.com/robotalks/ps2serial/pkg/telemetry/stream"
	"github.com/robotalks/ps2serial/pkg/telemetry/websocket"
)

// Dial connects to a telemetry endpoint:
//
//	mqtt://[user:pass@]host:port/prefix   events on <prefix><id>/event, commands on <prefix><id>/cmd
//	ws://host:port/path                   one message per packet
//	tcp://host:port                       length-prefixed packets
//
// The returned Link may also be a Runnable which must be run.
func Dial(rawURL, adapterID string) (Link, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "mqtt", "mqtts":
		q, err := mqtt.NewQueueFromURL(rawURL)
		if err != nil {
			return nil, err
		}
		token := q.Connect()
		token.Wait()
		if err := token.Error(); err != nil {
			return nil, err
		}
		return mqtt.NewPacketReadWriter(q).ForAdapter(adapterID), nil
	case "ws", "wss":
		return websocket.Dial(rawURL)
	case "tcp", "stream":
		conn, err := net.Dial("tcp", u.Host)
		if err != nil {
			return nil, err
		}
		return stream.New(conn), nil
	}
	return nil, fmt.Errorf("unsupported telemetry url %q", rawURL)
}
