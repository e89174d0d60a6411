// Package bridge exposes Intcode machines over websockets. Each connection
// gets its own machine: client text messages become input values and every
// output value is sent back as a text message.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/colorfulnotion/intcode/host"
	"github.com/colorfulnotion/intcode/log"
	"github.com/colorfulnotion/intcode/vmerrors"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024

	// StatusHalt is the last message of a run that halted normally.
	StatusHalt = "halt"
	// StatusErrorPrefix starts the last message of a run that failed.
	StatusErrorPrefix = "error: "
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ProgramSource resolves a program reference, such as a store name or hash.
type ProgramSource interface {
	Program(ref string) ([]int64, error)
}

// Server is an http.Handler serving /run?program=<ref>.
type Server struct {
	source   ProgramSource
	capacity int
	trace    bool
	mux      *http.ServeMux
}

// NewServer returns a bridge resolving programs through source. capacity
// sizes each machine's channels.
func NewServer(source ProgramSource, capacity int, trace bool) *Server {
	s := &Server{source: source, capacity: capacity, trace: trace, mux: http.NewServeMux()}
	s.mux.HandleFunc("/run", s.serveRun)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ParseValues parses a comma separated list of integers. An empty message
// yields no values.
func ParseValues(msg string) ([]int64, error) {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return nil, nil
	}
	parts := strings.Split(msg, ",")
	values := make([]int64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("value %d %q: %w", i, p, err)
		}
		values[i] = v
	}
	return values, nil
}

func (s *Server) serveRun(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("program")
	if ref == "" {
		http.Error(w, "missing program parameter", http.StatusBadRequest)
		return
	}
	program, err := s.source.Program(ref)
	if errors.Is(err, vmerrors.ErrProgramNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn(log.BridgeMonitoring, "upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	m := host.NewIO(s.capacity)
	m.VM.Identifier = conn.RemoteAddr().String()
	m.VM.Trace = s.trace
	if err := m.Load(program); err != nil {
		writeStatus(conn, err)
		return
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)
	log.Info(log.BridgeMonitoring, "run started", "program", ref, "remote", m.VM.Identifier)

	m.Start(ctx)
	go readPump(ctx, cancel, conn, m)

	for {
		v, err := m.Out.Recv(ctx)
		if err != nil {
			break
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, []byte(strconv.FormatInt(v, 10))); err != nil {
			cancel(err)
			break
		}
	}

	runErr := m.Wait()
	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		runErr = cause
	}
	writeStatus(conn, runErr)
	log.Info(log.BridgeMonitoring, "run finished", "program", ref, "remote", m.VM.Identifier, "steps", m.VM.Steps(), "err", runErr)
}

// readPump forwards client messages to the machine input. An empty message
// closes the input; a closed connection or a malformed message stops the
// run.
func readPump(ctx context.Context, cancel context.CancelCauseFunc, conn *websocket.Conn, m *host.Machine) {
	conn.SetReadLimit(maxMessageSize)
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Trace(log.BridgeMonitoring, "websocket close error", "err", err)
			}
			cancel(context.Canceled)
			return
		}
		values, err := ParseValues(string(message))
		if err != nil {
			cancel(fmt.Errorf("bad input message: %w", err))
			return
		}
		if len(values) == 0 {
			m.In.Close()
			continue
		}
		for _, v := range values {
			if err := m.In.Send(ctx, v); err != nil {
				return
			}
		}
	}
}

func writeStatus(conn *websocket.Conn, err error) {
	status := StatusHalt
	if err != nil {
		status = StatusErrorPrefix + err.Error()
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if werr := conn.WriteMessage(websocket.TextMessage, []byte(status)); werr != nil {
		return
	}
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
