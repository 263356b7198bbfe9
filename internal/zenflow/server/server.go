// Package server implements the MCP server shell (C13): it wraps
// github.com/metoro-io/mcp-golang's stdio transport, registers each tool
// with its typed argument struct, and converts every handler error
// (including recovered panics) into the uniform Envelope so the MCP host
// never sees a raw Go error.
package server

import (
	"context"
	"encoding/json"
	"fmt"

	mcp "github.com/metoro-io/mcp-golang"
	"github.com/metoro-io/mcp-golang/transport/stdio"

	"github.com/zenflow/zenflow-mcp/internal/zenflow/logging"
)

// Handler is a tool's business logic: parse its already-unmarshaled
// typed args (T), run the tool, and return the response envelope.
type Handler[T any] func(ctx context.Context, args T) (Envelope, error)

// Server wraps the underlying MCP transport and server, tracking nothing
// beyond what mcp-golang itself needs — all tool state lives in the
// shared registry/convo.Store/workflow.Engine instances each handler
// closes over.
type Server struct {
	inner *mcp.Server
	log   logging.Logger
}

// New constructs a Server communicating over stdio, matching the
// teacher's own transport choice for an MCP host launched as a
// subprocess.
func New(log logging.Logger) *Server {
	if log == nil {
		log = logging.NoopLogger{}
	}
	transport := stdio.NewStdioServerTransport()
	return &Server{inner: mcp.NewServer(transport), log: log}
}

// Register installs one tool under name, converting its Handler into the
// *mcp.ToolResponse shape the transport expects and guarding every call
// with a panic recovery that degrades to an error Envelope rather than
// crashing the server process.
func Register[T any](s *Server, name, description string, h Handler[T]) error {
	return s.inner.RegisterTool(name, description, func(args T) (resp *mcp.ToolResponse, err error) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error(context.Background(), "tool handler panicked", logging.F("tool", name), logging.F("panic", fmt.Sprintf("%v", r)))
				resp, err = envelopeResponse(Error(fmt.Sprintf("internal error in tool %q", name)))
			}
		}()

		env, handlerErr := h(context.Background(), args)
		if handlerErr != nil {
			s.log.Warn(context.Background(), "tool handler returned error", logging.F("tool", name), logging.F("error", handlerErr.Error()))
			return envelopeResponse(Error(handlerErr.Error()))
		}
		return envelopeResponse(env)
	})
}

func envelopeResponse(env Envelope) (*mcp.ToolResponse, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return mcp.NewToolResponse(mcp.NewTextContent(fmt.Sprintf(`{"status":"error","content":%q,"content_type":"text"}`, err.Error()))), nil
	}
	return mcp.NewToolResponse(mcp.NewTextContent(string(body))), nil
}

// Serve blocks, running the MCP stdio loop until the transport closes.
func (s *Server) Serve() error {
	return s.inner.Serve()
}
