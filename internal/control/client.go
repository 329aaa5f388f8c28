package control

import (
	"encoding/json"
	"fmt"
	"net"

	"noter/internal/config"
)

// dial connects to the daemon's control socket.
func dial(cfg *config.Config) (net.Conn, error) {
	conn, err := net.Dial("unix", cfg.Paths.SocketPath)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to daemon: %w", err)
	}
	return conn, nil
}

// roundTrip sends one request and decodes the single-line reply into out.
func roundTrip(cfg *config.Config, req Request, out any) error {
	conn, err := dial(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()
	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return err
	}
	return json.NewDecoder(conn).Decode(out)
}

// simpleRequest sends a request expecting a SimpleResponse and prints
// the daemon's message.
func simpleRequest(cfg *config.Config, req Request) error {
	var resp SimpleResponse
	if err := roundTrip(cfg, req, &resp); err != nil {
		return err
	}
	if !resp.OK {
		return fmt.Errorf("%s: %s", req.Op, resp.Message)
	}
	fmt.Println(resp.Message)
	return nil
}
