package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema of an image path argument.
func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

// mappingProperties are the arguments shared by image_map and image_map_compare.
func mappingProperties() map[string]interface{} {
	return map[string]interface{}{
		"colors_path":   pathProperty("Absolute path to the image that supplies the colors"),
		"template_path": pathProperty("Absolute path to the template image whose exact colors define the regions"),
		"color_space": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"RGB", "HSV", "LAB"},
			"description": "Working space in which region colors are averaged. Default RGB",
			"default":     "RGB",
		},
		"filter": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"nearest", "box", "linear", "catmullrom", "lanczos"},
			"description": "Resampling filter used to resize the colors image to the template size. Default catmullrom",
			"default":     "catmullrom",
		},
		"workers": map[string]interface{}{
			"type":        "integer",
			"description": "Goroutines for the parallel strategy; 0 lets the runtime decide",
			"default":     0,
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	mapProps := mappingProperties()
	mapProps["strategy"] = map[string]interface{}{
		"type":        "string",
		"enum":        []string{"serial", "parallel"},
		"description": "Execution strategy. Both produce the same image. Default serial",
		"default":     "serial",
	}
	mapProps["output_path"] = pathProperty("Optional file to write the result to; the format follows the extension. When omitted the result is returned as base64 PNG")
	mapProps["report_path"] = pathProperty("Optional file to write a per-region JSON report to; a .zst suffix compresses it with zstd")

	compareProps := mappingProperties()
	compareProps["runs"] = map[string]interface{}{
		"type":        "integer",
		"description": "Timed runs per strategy. Default 1",
		"default":     1,
	}

	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and number of distinct colors. The image stays cached for later calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				},
				"required": []string{"path"},
			},
		},

		// Template Operations
		{
			Name:        "image_palette",
			Description: "List the exact colors of a template image with pixel counts, most common first. Each color becomes one region when the image is used as a template.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the template image"),
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of colors to return; 0 returns all",
						"default":     0,
					},
				},
				"required": []string{"path"},
			},
		},

		// Mapping Operations
		{
			Name:        "image_map",
			Description: "Recolor a template: every region of identically colored template pixels is painted with the average color of the matching pixels of the colors image.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": mapProps,
				"required":   []string{"colors_path", "template_path"},
			},
		},
		{
			Name:        "image_map_compare",
			Description: "Run the serial and parallel strategies on the same images, report their average run time and verify that they agree.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": compareProps,
				"required":   []string{"colors_path", "template_path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
