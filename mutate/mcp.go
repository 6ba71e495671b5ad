package mutate

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/iwa/kit"
	"github.com/hazyhaar/iwa/palette"
)

// RegisterMCP exposes the engine's operations as MCP tools, so evaluation
// harnesses can drive mutations without an HTTP hop.
func (e *Engine) RegisterMCP(srv *mcp.Server) {
	e.registerMutate(srv)
	e.registerPlanPreview(srv)
	registerPaletteValidate(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func (e *Engine) registerMutate(srv *mcp.Server) {
	type req struct {
		HTML string `json:"html"`
		URL  string `json:"url"`
		Seed int    `json:"seed"`
	}
	type resp struct {
		HTML       string   `json:"html"`
		PlanSource string   `json:"plan_source"`
		Phases     []string `json:"phases"`
		AuditID    string   `json:"audit_id,omitempty"`
	}

	tool := &mcp.Tool{
		Name:        "iwa_mutate",
		Description: "Apply seed-controlled HTML mutations for this project",
		InputSchema: inputSchema(map[string]any{
			"html": map[string]any{"type": "string", "description": "Origin HTML"},
			"url":  map[string]any{"type": "string", "description": "Page URL"},
			"seed": map[string]any{"type": "integer", "description": "Mutation seed"},
		}, []string{"html", "url", "seed"}),
	}

	endpoint := func(ctx context.Context, r any) (any, error) {
		p := r.(*req)
		res, err := e.Mutate(ctx, p.HTML, p.URL, p.Seed)
		if err != nil {
			return nil, err
		}
		return &resp{
			HTML:       res.HTML,
			PlanSource: string(res.Source),
			Phases:     e.cfg.phases(),
			AuditID:    res.AuditID,
		}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeJSON[req])
}

func (e *Engine) registerPlanPreview(srv *mcp.Server) {
	type req struct {
		URL  string `json:"url"`
		Seed int    `json:"seed"`
	}

	tool := &mcp.Tool{
		Name:        "iwa_plan_preview",
		Description: "Render the mutation plan for (url, seed) without applying it",
		InputSchema: inputSchema(map[string]any{
			"url":  map[string]any{"type": "string", "description": "Page URL"},
			"seed": map[string]any{"type": "integer", "description": "Mutation seed"},
		}, []string{"url", "seed"}),
	}

	endpoint := func(_ context.Context, r any) (any, error) {
		p := r.(*req)
		return e.PreviewPlan(p.URL, p.Seed), nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeJSON[req])
}

func registerPaletteValidate(srv *mcp.Server) {
	type req struct {
		Document string `json:"document"`
	}
	type resp struct {
		OK        bool   `json:"ok"`
		ProjectID string `json:"project_id,omitempty"`
		Templates int    `json:"templates,omitempty"`
		Error     string `json:"error,omitempty"`
	}

	tool := &mcp.Tool{
		Name:        "iwa_palette_validate",
		Description: "Validate a palette YAML document",
		InputSchema: inputSchema(map[string]any{
			"document": map[string]any{"type": "string", "description": "Palette YAML"},
		}, []string{"document"}),
	}

	endpoint := func(_ context.Context, r any) (any, error) {
		p := r.(*req)
		pal, err := palette.ParseDocument([]byte(p.Document))
		if err != nil {
			return &resp{OK: false, Error: err.Error()}, nil
		}
		return &resp{OK: true, ProjectID: pal.ProjectID, Templates: len(pal.Templates)}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeJSON[req])
}

// decodeJSON builds the standard decode function for a typed request.
func decodeJSON[T any](r *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	var p T
	if err := json.Unmarshal(r.Params.Arguments, &p); err != nil {
		return nil, err
	}
	return &kit.MCPDecodeResult{Request: &p}, nil
}
