package webtui

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/gorilla/websocket"
)

type wsMsg struct {
	Type string `json:"type"`
	Cols int    `json:"cols"`
	Rows int    `json:"rows"`
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  32 * 1024,
	WriteBufferSize: 32 * 1024,
	CheckOrigin:     sameOrigin,
}

func sameOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	host := strings.TrimSpace(r.Host)
	return strings.HasSuffix(origin, "://"+host)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response.
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	ptmx, cmd, cleanup, err := s.startPTYSession()
	if err != nil {
		s.logger.Error("start trial pty", "err", err)
		_ = conn.WriteMessage(websocket.TextMessage, []byte("failed to start trial: "+err.Error()))
		return
	}
	defer cleanup()
	s.logger.Info("terminal trial started", "pid", cmd.Process.Pid, "remote", r.RemoteAddr)

	var wg sync.WaitGroup
	errCh := make(chan error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		errCh <- pumpPTYToWS(ctx, ptmx, conn)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		errCh <- pumpWSToPTY(ctx, conn, ptmx)
	}()

	select {
	case <-ctx.Done():
	case <-errCh:
	}
	cancel()

	// Closing the PTY and the socket unblocks both pumps.
	_ = cmd.Process.Kill()
	_ = ptmx.Close()
	_ = conn.Close()

	wg.Wait()
	s.logger.Info("terminal trial ended", "pid", cmd.Process.Pid)
}

// childArgs is the command line of one terminal trial.
func (s *Server) childArgs() []string {
	args := []string{"run"}
	if p := strings.TrimSpace(s.cfg.ConfigPath); p != "" {
		args = append(args, "--config", p)
	}
	return args
}

func (s *Server) startPTYSession() (*os.File, *exec.Cmd, func(), error) {
	exe := strings.TrimSpace(s.cfg.Exe)
	if exe == "" {
		var err error
		if exe, err = os.Executable(); err != nil {
			return nil, nil, nil, err
		}
	}

	cmd := exec.Command(exe, s.childArgs()...)
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"COLORTERM=truecolor",
	)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: 120, Rows: 40})
	if err != nil {
		return nil, nil, nil, err
	}

	cleanup := func() {
		_ = ptmx.Close()
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	}

	return ptmx, cmd, cleanup, nil
}

func pumpPTYToWS(ctx context.Context, ptmx io.Reader, conn *websocket.Conn) error {
	buf := make([]byte, 32*1024)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		n, err := ptmx.Read(buf)
		if n > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if werr := conn.WriteMessage(websocket.BinaryMessage, buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

func pumpWSToPTY(ctx context.Context, conn *websocket.Conn, ptmx *os.File) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		mt, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		// Resize requests are JSON text frames; everything else is keystrokes.
		if m, ok := parseControl(mt, data); ok {
			if m.Type == "resize" {
				_ = pty.Setsize(ptmx, &pty.Winsize{Cols: uint16(m.Cols), Rows: uint16(m.Rows)})
			}
			continue
		}

		if len(data) == 0 {
			continue
		}
		if _, err := ptmx.Write(data); err != nil {
			return err
		}
	}
}

// parseControl recognises a control frame. Malformed JSON frames and
// resizes without a size are swallowed rather than typed into the trial.
func parseControl(mt int, data []byte) (wsMsg, bool) {
	if mt != websocket.TextMessage || len(data) == 0 || data[0] != '{' {
		return wsMsg{}, false
	}
	var m wsMsg
	if err := json.Unmarshal(data, &m); err != nil {
		return wsMsg{Type: "invalid"}, true
	}
	m.Type = strings.ToLower(strings.TrimSpace(m.Type))
	if m.Type == "resize" && (m.Cols <= 0 || m.Rows <= 0 || m.Cols > 1000 || m.Rows > 1000) {
		m.Type = "invalid"
	}
	return m, true
}
