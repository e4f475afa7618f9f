package server

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/image-template-mapper/internal/colorspace"
	"github.com/ironsheep/image-template-mapper/internal/engine"
	"github.com/ironsheep/image-template-mapper/internal/imaging"
	"github.com/ironsheep/image-template-mapper/internal/mapper"
	"github.com/ironsheep/image-template-mapper/internal/report"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "image_map").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Calls the imaging or mapper function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Template Operations
	case "image_palette":
		return s.handleImagePalette(args)

	// Mapping Operations
	case "image_map":
		return s.handleImageMap(args)
	case "image_map_compare":
		return s.handleImageMapCompare(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Template Handlers ===

type imagePaletteArgs struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

func (s *Server) handleImagePalette(args json.RawMessage) (interface{}, error) {
	var a imagePaletteArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.TemplatePalette(img, a.Count), nil
}

// === Mapping Handlers ===

type imageMapArgs struct {
	ColorsPath   string `json:"colors_path"`
	TemplatePath string `json:"template_path"`
	ColorSpace   string `json:"color_space"`
	Strategy     string `json:"strategy"`
	Workers      int    `json:"workers"`
	Filter       string `json:"filter"`
	OutputPath   string `json:"output_path"`
	ReportPath   string `json:"report_path"`
	Runs         int    `json:"runs"`
}

// options applies defaults and validates the mapping arguments.
func (a *imageMapArgs) options() (mapper.Options, error) {
	if a.ColorSpace == "" {
		a.ColorSpace = "RGB"
	}
	if a.Strategy == "" {
		a.Strategy = "serial"
	}

	mode, err := colorspace.ParseMode(a.ColorSpace)
	if err != nil {
		return mapper.Options{}, err
	}
	strategy, err := engine.StrategyByName(a.Strategy, a.Workers)
	if err != nil {
		return mapper.Options{}, err
	}
	return mapper.Options{Mode: mode, Strategy: strategy, Filter: a.Filter}, nil
}

// loadPair loads the colors and template images through the cache.
func (s *Server) loadPair(a *imageMapArgs) (colors, template image.Image, err error) {
	if colors, err = s.cache.Load(a.ColorsPath); err != nil {
		return nil, nil, err
	}
	if template, err = s.cache.Load(a.TemplatePath); err != nil {
		return nil, nil, err
	}
	return colors, template, nil
}

// MapResult is the image_map response.
type MapResult struct {
	Mode           colorspace.Mode       `json:"mode"`
	Strategy       string                `json:"strategy"`
	Width          int                   `json:"width"`
	Height         int                   `json:"height"`
	Regions        int                   `json:"regions"`
	ElapsedSeconds float64               `json:"elapsed_seconds"`
	OutputPath     string                `json:"output_path,omitempty"`
	ReportPath     string                `json:"report_path,omitempty"`
	Image          *imaging.EncodedImage `json:"image,omitempty"`
}

func (s *Server) handleImageMap(args json.RawMessage) (interface{}, error) {
	var a imageMapArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts, err := a.options()
	if err != nil {
		return nil, err
	}

	colors, template, err := s.loadPair(&a)
	if err != nil {
		return nil, err
	}

	res, err := mapper.Map(colors, template, opts)
	if err != nil {
		return nil, err
	}

	out := &MapResult{
		Mode:           res.Mode,
		Strategy:       res.Strategy,
		Width:          res.Output.Width,
		Height:         res.Output.Height,
		Regions:        len(res.Colors),
		ElapsedSeconds: res.Elapsed.Seconds(),
	}

	if a.ReportPath != "" {
		rep, err := report.Build(res.Result)
		if err != nil {
			return nil, err
		}
		if err := report.WriteFile(a.ReportPath, rep); err != nil {
			return nil, err
		}
		out.ReportPath = a.ReportPath
	}

	if a.OutputPath != "" {
		if err := imaging.Save(res.Image, a.OutputPath); err != nil {
			return nil, err
		}
		out.OutputPath = a.OutputPath
		return out, nil
	}

	out.Image, err = imaging.EncodePNG(res.Image)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Server) handleImageMapCompare(args json.RawMessage) (interface{}, error) {
	var a imageMapArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Runs == 0 {
		a.Runs = 1
	}
	// The comparison always times both strategies; only workers applies.
	a.Strategy = "parallel"
	opts, err := a.options()
	if err != nil {
		return nil, err
	}

	colors, template, err := s.loadPair(&a)
	if err != nil {
		return nil, err
	}

	return mapper.Compare(colors, template, opts, a.Runs)
}
