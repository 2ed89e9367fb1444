package chain

// 各内容类型的 json_schema。以“最小可用”为目标，避免过度约束导致模型输出失败。

func plotJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"title", "plot_summary"},
		"properties": map[string]any{
			"title":        map[string]any{"type": "string"},
			"plot_summary": map[string]any{"type": "string"},
			"genre":        map[string]any{"type": "string"},
			"subgenre":     map[string]any{"type": "string"},
			"microgenre":   map[string]any{"type": "string"},
			"trope":        map[string]any{"type": "string"},
			"tone":         map[string]any{"type": "string"},
			"audience": map[string]any{
				"type":                 "object",
				"additionalProperties": true,
				"properties": map[string]any{
					"age_group":   map[string]any{"type": "string"},
					"gender":      map[string]any{"type": "string"},
					"orientation": map[string]any{"type": "string"},
				},
			},
		},
	}
}

func authorJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"author_name", "biography", "writing_style"},
		"properties": map[string]any{
			"author_name":   map[string]any{"type": "string"},
			"pen_name":      map[string]any{"type": "string"},
			"biography":     map[string]any{"type": "string"},
			"writing_style": map[string]any{"type": "string"},
		},
	}
}

func worldJSONSchema() map[string]any {
	section := map[string]any{
		"type":                 "object",
		"additionalProperties": true,
		"properties": map[string]any{
			"note": map[string]any{"type": "string"},
		},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"world_name", "world_type", "overview"},
		"properties": map[string]any{
			"world_name": map[string]any{"type": "string"},
			"world_type": map[string]any{
				"type": "string",
				"enum": []any{"high_fantasy", "urban_fantasy", "science_fiction", "historical_fiction", "contemporary", "dystopian", "other"},
			},
			"overview":        map[string]any{"type": "string"},
			"geography":       section,
			"politics":        section,
			"culture":         section,
			"economics":       section,
			"history":         section,
			"power_systems":   section,
			"languages":       section,
			"religions":       section,
			"unique_elements": section,
		},
	}
}

func charactersJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"character_count", "characters"},
		"properties": map[string]any{
			"character_count": map[string]any{"type": "integer"},
			"characters": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"name"},
					"properties": map[string]any{
						"name":        map[string]any{"type": "string"},
						"role":        map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
						"personality": map[string]any{"type": "string"},
						"backstory":   map[string]any{"type": "string"},
					},
				},
			},
			"relationships": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"from", "to"},
					"properties": map[string]any{
						"from":        map[string]any{"type": "string"},
						"to":          map[string]any{"type": "string"},
						"type":        map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}

func loreJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"entries"},
		"properties": map[string]any{
			"entries": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []any{"topic", "content"},
					"properties": map[string]any{
						"topic":   map[string]any{"type": "string"},
						"content": map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}

func critiqueJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"summary"},
		"properties": map[string]any{
			"strengths":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"weaknesses":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"suggestions": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"summary":     map[string]any{"type": "string"},
		},
	}
}

func enhanceJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"enhanced_content"},
		"properties": map[string]any{
			"enhanced_content": map[string]any{"type": "string"},
			"rationale":        map[string]any{"type": "string"},
		},
	}
}

func scoreJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"required":             []any{"overall_score"},
		"properties": map[string]any{
			"overall_score": map[string]any{"type": "number"},
			"breakdown": map[string]any{
				"type":                 "object",
				"additionalProperties": true,
				"properties": map[string]any{
					"content_quality": map[string]any{"type": "number"},
					"structure":       map[string]any{"type": "number"},
					"style":           map[string]any{"type": "number"},
					"genre_fit":       map[string]any{"type": "number"},
					"technical":       map[string]any{"type": "number"},
				},
			},
		},
	}
}
