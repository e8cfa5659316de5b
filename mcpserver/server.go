// Package mcpserver exposes a service as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/wippyai/mecab-bridge/service"
)

// DictionaryURI names the dictionary listing resource.
const DictionaryURI = "mecab://dictionary"

// TokenizeArgs are the arguments of the tokenize tool.
type TokenizeArgs struct {
	Text   string `json:"text"`
	Format string `json:"format,omitempty"`
}

// NBestArgs are the arguments of the nbest tool.
type NBestArgs struct {
	Text string `json:"text"`
	N    int    `json:"n"`
}

// DictionaryResponse is the output of dictionary_info.
type DictionaryResponse struct {
	Version      string                   `json:"version"`
	Dictionaries []service.DictionaryInfo `json:"dictionaries"`
}

// Server registers the analyzer tools on an MCP server.
type Server struct {
	svc       *service.Service
	logger    *zap.Logger
	mcpServer *server.MCPServer
}

// New creates the MCP server for svc.
func New(svc *service.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		svc:       svc,
		logger:    logger,
		mcpServer: server.NewMCPServer("mecab", svc.Version(),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves over stdin and stdout until the input closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("tokenize",
		mcp.WithDescription("Split Japanese text into morphemes with their part-of-speech features."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to analyze")),
		mcp.WithString("format", mcp.Description("Output format type such as lattice or wakati")),
		mcp.WithOutputSchema[service.Result](),
	), mcp.NewStructuredToolHandler(s.handleTokenize))

	s.mcpServer.AddTool(mcp.NewTool("nbest",
		mcp.WithDescription("Return the n best segmentations of a text, best first."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to analyze")),
		mcp.WithNumber("n", mcp.Required(), mcp.Description("Number of analyses")),
		mcp.WithOutputSchema[service.Result](),
	), mcp.NewStructuredToolHandler(s.handleNBest))

	s.mcpServer.AddTool(mcp.NewTool("dictionary_info",
		mcp.WithDescription("Describe the loaded dictionaries."),
		mcp.WithOutputSchema[DictionaryResponse](),
	), mcp.NewStructuredToolHandler(s.handleDictionary))
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(DictionaryURI, "Loaded dictionaries",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		resp, err := s.dictionaries()
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(resp)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      DictionaryURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func (s *Server) handleTokenize(ctx context.Context, _ mcp.CallToolRequest, args TokenizeArgs) (service.Result, error) {
	res, err := s.svc.Parse(ctx, service.Request{Text: args.Text, Format: args.Format})
	if err != nil {
		s.logger.Debug("tokenize failed", zap.Error(err))
		return service.Result{}, err
	}
	return *res, nil
}

func (s *Server) handleNBest(ctx context.Context, _ mcp.CallToolRequest, args NBestArgs) (service.Result, error) {
	if args.N < 1 {
		return service.Result{}, fmt.Errorf("n must be at least 1, got %d", args.N)
	}
	res, err := s.svc.Parse(ctx, service.Request{Text: args.Text, NBest: args.N})
	if err != nil {
		s.logger.Debug("nbest failed", zap.Error(err))
		return service.Result{}, err
	}
	return *res, nil
}

func (s *Server) handleDictionary(_ context.Context, _ mcp.CallToolRequest, _ struct{}) (DictionaryResponse, error) {
	return s.dictionaries()
}

func (s *Server) dictionaries() (DictionaryResponse, error) {
	infos, err := s.svc.Dictionaries()
	if err != nil {
		return DictionaryResponse{}, err
	}
	return DictionaryResponse{Version: s.svc.Version(), Dictionaries: infos}, nil
}
