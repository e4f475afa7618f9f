package server

import (
	"encoding/json"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	if len(tools) == 0 {
		t.Fatal("GetToolDefinitions returned empty slice")
	}

	expectedTools := []string{
		"image_load",
		"image_dimensions",
		"image_palette",
		"image_map",
		"image_map_compare",
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		if _, dup := toolMap[tool.Name]; dup {
			t.Errorf("Tool %s defined twice", tool.Name)
		}
		toolMap[tool.Name] = tool
	}

	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
	if len(tools) != len(expectedTools) {
		t.Errorf("Expected %d tools, got %d", len(expectedTools), len(tools))
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	tools := GetToolDefinitions()

	for _, tool := range tools {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}

			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok || len(props) == 0 {
				t.Fatal("InputSchema properties missing")
			}

			// Every required argument must be a declared property
			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("'required' should be a string slice")
			}
			for _, r := range required {
				if _, ok := props[r]; !ok {
					t.Errorf("required argument %s is not a property", r)
				}
			}
		})
	}
}

func TestToolDefinitions_MappingArguments(t *testing.T) {
	tests := []struct {
		tool     string
		required []string
		optional []string
	}{
		{"image_map", []string{"colors_path", "template_path"}, []string{"color_space", "strategy", "workers", "filter", "output_path", "report_path"}},
		{"image_map_compare", []string{"colors_path", "template_path"}, []string{"color_space", "workers", "filter", "runs"}},
		{"image_palette", []string{"path"}, []string{"count"}},
	}

	toolMap := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		toolMap[tool.Name] = tool
	}

	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			tool := toolMap[tt.tool]
			props := tool.InputSchema["properties"].(map[string]interface{})
			required := tool.InputSchema["required"].([]string)

			if len(required) != len(tt.required) {
				t.Errorf("required: got %v, want %v", required, tt.required)
			}
			for _, name := range append(tt.required, tt.optional...) {
				if _, ok := props[name]; !ok {
					t.Errorf("missing property %s", name)
				}
			}
		})
	}
}

func TestToolDefinitions_ColorSpaceEnum(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		props := tool.InputSchema["properties"].(map[string]interface{})
		cs, ok := props["color_space"].(map[string]interface{})
		if !ok {
			continue
		}
		enum, _ := cs["enum"].([]string)
		if len(enum) != 3 || enum[0] != "RGB" || enum[1] != "HSV" || enum[2] != "LAB" {
			t.Errorf("%s: color_space enum %v", tool.Name, enum)
		}
		if cs["default"] != "RGB" {
			t.Errorf("%s: color_space default %v, want RGB", tool.Name, cs["default"])
		}
	}
}

func TestToolDefinitions_Marshal(t *testing.T) {
	data, err := json.Marshal(GetToolDefinitions())
	if err != nil {
		t.Fatalf("Failed to marshal tools: %v", err)
	}

	var decoded []map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to unmarshal tools: %v", err)
	}
	for _, tool := range decoded {
		if _, ok := tool["inputSchema"]; !ok {
			t.Errorf("tool %v: inputSchema key missing in JSON", tool["name"])
		}
	}
}
