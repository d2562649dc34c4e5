package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/ramigb/semantic-skeletonizer/internal/index"
	"github.com/ramigb/semantic-skeletonizer/internal/logging"
	"github.com/ramigb/semantic-skeletonizer/internal/rpcerrors"
)

const component = "rpc"

// maxLineSize bounds a single stdin line; a request larger than this is
// treated like any other malformed line rather than panicking the
// bufio.Scanner.
const maxLineSize = 16 * 1024 * 1024

// Server owns stdin, stdout, and the change-tick receiver, serializing
// every write onto stdout so exactly one JSON document is emitted per
// line.
type Server struct {
	idx     *index.Index
	root    string
	changes <-chan struct{}

	in  io.Reader
	out io.Writer

	writeMu sync.Mutex
}

// New builds a Server reading requests from in, writing responses and
// notifications to out, serving idx, and rooted at root (used by
// get_implementation to reparse files fresh from disk).
func New(root string, idx *index.Index, changes <-chan struct{}, in io.Reader, out io.Writer) *Server {
	return &Server{idx: idx, root: root, changes: changes, in: in, out: out}
}

// Run executes the cooperative loop: it alternates between the next stdin
// line and the next change tick until stdin hits EOF, at which point it
// returns nil for a graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	lines := make(chan string)
	scanErrs := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		scanner.Buffer(make([]byte, 64*1024), maxLineSize)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		if err := scanner.Err(); err != nil {
			scanErrs <- err
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErrs:
					return err
				default:
					return nil
				}
			}
			s.handleLine(line)

		case <-s.changes:
			s.writeNotification(Notification{
				JSONRPC: "2.0",
				Method:  "notifications/resources/updated",
				Params:  map[string]string{"uri": globalResourceURI},
			})
		}
	}
}

func (s *Server) handleLine(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}

	var req Request
	if err := json.Unmarshal([]byte(trimmed), &req); err != nil {
		s.writeResponse(Response{JSONRPC: "2.0", ID: json.RawMessage("null"), Error: rpcerrors.Parsef()})
		return
	}

	if req.IsNotification() {
		// Notifications are dispatched for their side effects only; no
		// response is ever emitted.
		_, _ = s.dispatch(req.Method, req.Params)
		return
	}

	result, rpcErr := s.dispatch(req.Method, req.Params)
	resp := Response{JSONRPC: "2.0", ID: req.ID}
	if rpcErr != nil {
		resp.Error = rpcErr
	} else {
		resp.Result = result
	}
	s.writeResponse(resp)
}

func (s *Server) writeResponse(resp Response) {
	s.writeLine(resp)
}

func (s *Server) writeNotification(n Notification) {
	s.writeLine(n)
}

// writeLine marshals v and writes it as exactly one line to stdout,
// serialized against concurrent notification writes.
func (s *Server) writeLine(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Warn(component, "failed to marshal outbound message: %v", err)
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_, _ = s.out.Write(data)
	_, _ = s.out.Write([]byte("\n"))
}
