package llm

// BuildLVJSONSchema returns a JSON-Schema (draft 2020-12 subset) as a generic map.
// It is sent with the prompt and used locally to validate the answer.
func BuildLVJSONSchema() map[string]any {
	position := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"position_number": map[string]any{"type": "string", "minLength": 1, "maxLength": 32},
			"title":           map[string]any{"type": "string"},
			"quantity":        numberProp(),
			"unit":            map[string]any{"type": "string", "enum": []string{"m", "m²", "m³", "Stk", "kg", "t", "l", "h", "psch"}},
			"unit_price":      numberProp(),
			"total_price":     numberProp(),
			"page":            map[string]any{"type": "integer", "minimum": 1},
		},
		"required": []string{"position_number", "title"},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"positions": map[string]any{"type": "array", "items": position},
		},
		"required": []string{"positions"},
	}
}

func numberProp() map[string]any {
	return map[string]any{"type": "number", "minimum": 0}
}
