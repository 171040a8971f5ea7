// Package mcp serves the tool surface over the Model Context Protocol's
// stdio transport: newline-framed JSON-RPC 2.0 requests on stdin, one
// response per line on stdout. Logging must never touch stdout.
package mcp

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/dgnsrekt/browser_agent/internal/tools"
)

const protocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32603
)

// Request is one incoming JSON-RPC 2.0 message. A nil ID marks a
// notification; notifications get no response.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is one outgoing JSON-RPC 2.0 message.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is the JSON-RPC 2.0 error member.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Tool is one entry of a tools/list result.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ContentBlock is one element of a tool result's content array. Text
// blocks carry Text; image blocks carry base64 Data plus MimeType.
type ContentBlock struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Data     string `json:"data,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// ToolResult is the result member of a tools/call response.
type ToolResult struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

type initializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	ServerInfo      serverInfo   `json:"serverInfo"`
	Capabilities    capabilities `json:"capabilities"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type capabilities struct {
	Tools toolsCapability `json:"tools"`
}

type toolsCapability struct{}

type toolsListResult struct {
	Tools []Tool `json:"tools"`
}

type toolCallParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// Server dispatches JSON-RPC messages to the registered tool handlers.
type Server struct {
	name    string
	version string

	defs     []tools.Definition
	handlers map[string]tools.Handler

	outMu sync.Mutex
	out   io.Writer
}

// NewServer builds a stdio MCP server over the given tool definitions.
func NewServer(name, version string, defs []tools.Definition, out io.Writer) *Server {
	handlers := make(map[string]tools.Handler, len(defs))
	for _, d := range defs {
		handlers[d.Name] = d.Handler
	}
	return &Server{
		name:     name,
		version:  version,
		defs:     defs,
		handlers: handlers,
		out:      out,
	}
}

// Serve reads newline-framed requests from in until EOF or ctx
// cancellation. Malformed lines answer with a parse error instead of
// tearing the transport down.
func (s *Server) Serve(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeError(nil, codeParseError, "parse error: "+err.Error())
			continue
		}
		s.dispatch(ctx, req)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	return nil
}

func (s *Server) dispatch(ctx context.Context, req Request) {
	slog.Debug("rpc request", "method", req.Method, "id", req.ID)

	switch req.Method {
	case "initialize":
		s.writeResult(req.ID, initializeResult{
			ProtocolVersion: protocolVersion,
			ServerInfo:      serverInfo{Name: s.name, Version: s.version},
			Capabilities:    capabilities{},
		})
	case "notifications/initialized", "notifications/cancelled":
		// Notifications carry no response.
	case "ping":
		s.writeResult(req.ID, struct{}{})
	case "tools/list":
		s.writeResult(req.ID, toolsListResult{Tools: s.toolList()})
	case "tools/call":
		s.handleToolCall(ctx, req)
	default:
		if req.ID == nil {
			return
		}
		s.writeError(req.ID, codeMethodNotFound, "method not found: "+req.Method)
	}
}

func (s *Server) toolList() []Tool {
	list := make([]Tool, 0, len(s.defs))
	for _, d := range s.defs {
		list = append(list, Tool{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: d.InputSchema,
		})
	}
	return list
}

func (s *Server) handleToolCall(ctx context.Context, req Request) {
	var params toolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.writeError(req.ID, codeInvalidParams, "invalid tools/call params: "+err.Error())
		return
	}
	handler, ok := s.handlers[params.Name]
	if !ok {
		s.writeError(req.ID, codeInvalidParams, "unknown tool: "+params.Name)
		return
	}

	result, err := handler(ctx, params.Arguments)
	if err != nil {
		// Tool failures are in-band: an isError result, not a protocol
		// error, so the client sees the taxonomy-coded message.
		slog.Warn("tool call failed", "tool", params.Name, "error", err)
		s.writeResult(req.ID, ToolResult{
			Content: []ContentBlock{{Type: "text", Text: err.Error()}},
			IsError: true,
		})
		return
	}
	s.writeResult(req.ID, toolResultBlocks(result))
}

// toolResultBlocks converts a tool outcome into MCP content blocks.
func toolResultBlocks(r tools.Result) ToolResult {
	blocks := []ContentBlock{{Type: "text", Text: r.Text}}
	if len(r.Image) > 0 {
		blocks = append(blocks, ContentBlock{
			Type:     "image",
			Data:     base64.StdEncoding.EncodeToString(r.Image),
			MimeType: r.ImageMime,
		})
	}
	return ToolResult{Content: blocks}
}

func (s *Server) writeResult(id any, result any) {
	data, err := json.Marshal(result)
	if err != nil {
		s.writeError(id, codeInternalError, "encode result: "+err.Error())
		return
	}
	s.write(Response{JSONRPC: "2.0", ID: id, Result: data})
}

func (s *Server) writeError(id any, code int, message string) {
	s.write(Response{JSONRPC: "2.0", ID: id, Error: &RPCError{Code: code, Message: message}})
}

// write emits exactly one JSON payload plus one newline. The mutex keeps
// concurrent tool completions from interleaving on the transport.
func (s *Server) write(resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		slog.Error("encode response", "error", err)
		return
	}
	s.outMu.Lock()
	defer s.outMu.Unlock()
	if _, err := s.out.Write(append(data, '\n')); err != nil {
		slog.Error("write response", "error", err)
	}
}
