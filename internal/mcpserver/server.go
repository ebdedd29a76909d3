// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Professor's reference validation tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/professor/internal/refcheck"
)

const formatURI = "professor://reference-format"

// URLChecker probes a single URL. *refcheck.Checker satisfies it.
type URLChecker interface {
	Check(ctx context.Context, rawURL string) refcheck.Outcome
}

// DomainLister reports the hosts whose timeouts count as reachable.
// *trust.Set satisfies it.
type DomainLister interface {
	Domains() []string
}

// Server wraps the MCP server with Professor tools.
type Server struct {
	mcp     *server.MCPServer
	refiner *refcheck.Refiner
	checker URLChecker
	trusted DomainLister
}

// New creates a new MCP server with all Professor tools registered. trusted
// may be nil, in which case the reference format lists no hosts.
func New(refiner *refcheck.Refiner, checker URLChecker, trusted DomainLister) *Server {
	s := &Server{refiner: refiner, checker: checker, trusted: trusted}

	s.mcp = server.NewMCPServer(
		"Professor",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("validate_references",
		mcp.WithDescription("Check every http(s) link in a Markdown reference list, remove lines "+
			"with dead links and report whether the list should be regenerated. "+
			"Read the format first via get_reference_format or the "+formatURI+" resource."),
		mcp.WithString("markdown", mcp.Required(), mcp.Description("Markdown reference list")),
	), s.validateReferences)

	s.mcp.AddTool(mcp.NewTool("check_url",
		mcp.WithDescription("Probe a single URL for liveness with HEAD, falling back to GET."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Absolute http or https URL")),
	), s.checkURL)

	s.mcp.AddTool(mcp.NewTool("extract_links",
		mcp.WithDescription("List the http(s) URLs of all inline Markdown links, in order, duplicates included."),
		mcp.WithString("markdown", mcp.Required(), mcp.Description("Markdown text")),
	), s.extractLinks)

	s.mcp.AddTool(mcp.NewTool("get_reference_format",
		mcp.WithDescription("Returns the Markdown reference list format the validator expects."),
	), s.getReferenceFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Reference Format",
			mcp.WithResourceDescription("Markdown reference list format understood by the link validator."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readReferenceFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

type validationResult struct {
	refcheck.Result
	Links []refcheck.Outcome `json:"links"`
}

func (s *Server) validateReferences(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	markdown, err := req.RequireString("markdown")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, outcomes := s.refiner.Inspect(ctx, markdown)
	return jsonResult(validationResult{Result: res, Links: outcomes})
}

func (s *Server) checkURL(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	u, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.checker.Check(ctx, u))
}

func (s *Server) extractLinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	markdown, err := req.RequireString("markdown")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	urls := refcheck.ExtractURLs(markdown)
	if urls == nil {
		urls = []string{}
	}
	return jsonResult(urls)
}

// referenceFormat is the format contract followed by the current trusted
// hosts, read on every call so edits to the trust file show up.
func (s *Server) referenceFormat() string {
	if s.trusted == nil {
		return ReferenceFormatContract
	}
	domains := s.trusted.Domains()
	if len(domains) == 0 {
		return ReferenceFormatContract
	}
	var b strings.Builder
	b.WriteString(ReferenceFormatContract)
	b.WriteString("\n## Trusted Hosts\n\n")
	for _, d := range domains {
		b.WriteString("- " + d + "\n")
	}
	return b.String()
}

func (s *Server) getReferenceFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.referenceFormat()), nil
}

func (s *Server) readReferenceFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     s.referenceFormat(),
		},
	}, nil
}
