package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/clarencejohnson126/angebotsagent/internal/core/germannum"
	"github.com/clarencejohnson126/angebotsagent/internal/core/lv"
)

// German column names models like to echo back.
var positionSynonyms = map[string]string{
	"oz":            "position_number",
	"ordnungszahl":  "position_number",
	"position":      "position_number",
	"kurztext":      "title",
	"bezeichnung":   "title",
	"menge":         "quantity",
	"einheit":       "unit",
	"ep":            "unit_price",
	"einheitspreis": "unit_price",
	"gp":            "total_price",
	"gesamtpreis":   "total_price",
	"seite":         "page",
}

var positionKeys = map[string]struct{}{
	"position_number": {}, "title": {}, "quantity": {}, "unit": {},
	"unit_price": {}, "total_price": {}, "page": {},
}

var numberKeys = []string{"quantity", "unit_price", "total_price"}

// NormalizeAndSanitizeJSON
// - Renames German column synonyms (menge -> quantity)
// - Coerces German number strings ("1.234,50") to numbers
// - Maps unit spellings to canonical units; unknown units are dropped
// - Drops null/empty optionals and unknown keys
// - Drops positions without an ordinal number
func NormalizeAndSanitizeJSON(raw []byte, logger *zap.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var dropped []string
	items, _ := doc["positions"].([]any)
	kept := make([]any, 0, len(items))
	for i, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			dropped = append(dropped, fmt.Sprintf("positions[%d](type)", i))
			continue
		}
		for _, d := range sanitizePosition(m) {
			dropped = append(dropped, fmt.Sprintf("positions[%d].%s", i, d))
		}
		if _, ok := m["position_number"]; !ok {
			dropped = append(dropped, fmt.Sprintf("positions[%d](no number)", i))
			continue
		}
		kept = append(kept, m)
	}
	for k := range doc {
		if k != "positions" {
			dropped = append(dropped, k+"(unknown)")
		}
	}

	out, err := json.Marshal(map[string]any{"positions": kept})
	if err != nil {
		return nil, dropped, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(dropped) > 0 {
		logger.Warn("llm.extract.normalize_sanitize", zap.Strings("dropped", dropped))
	}
	return out, dropped, nil
}

func sanitizePosition(m map[string]any) []string {
	var dropped []string

	for from, to := range positionSynonyms {
		v, ok := m[from]
		if !ok {
			continue
		}
		if _, exists := m[to]; !exists {
			m[to] = v
		}
		delete(m, from)
		dropped = append(dropped, from+"->"+to)
	}

	for k := range m {
		if _, ok := positionKeys[k]; !ok {
			delete(m, k)
			dropped = append(dropped, k+"(unknown)")
		}
	}

	for _, k := range []string{"position_number", "title"} {
		switch v := m[k].(type) {
		case string:
			s := strings.Join(strings.Fields(v), " ")
			if s == "" && k == "position_number" {
				delete(m, k)
				dropped = append(dropped, k+"(empty)")
				continue
			}
			m[k] = s
		case float64:
			// a bare ordinal such as 3 came back as a number
			m[k] = strconv.FormatFloat(v, 'f', -1, 64)
		case nil:
			if _, present := m[k]; present {
				delete(m, k)
				dropped = append(dropped, k+"(null)")
			}
		default:
			delete(m, k)
			dropped = append(dropped, k+"(type)")
		}
	}
	if _, ok := m["title"]; !ok {
		m["title"] = ""
	}

	for _, k := range numberKeys {
		v, present := m[k]
		if !present {
			continue
		}
		f, ok := coerceNumber(v)
		if !ok || f < 0 {
			delete(m, k)
			dropped = append(dropped, k+"(invalid)")
			continue
		}
		m[k] = f
	}

	if v, present := m["unit"]; present {
		s, _ := v.(string)
		if u, ok := lv.ParseEinheit(s); ok {
			m["unit"] = u.String()
		} else {
			delete(m, "unit")
			dropped = append(dropped, "unit(unknown)")
		}
	}

	if v, present := m["page"]; present {
		f, ok := coerceNumber(v)
		if !ok || f < 1 || f != math.Trunc(f) {
			delete(m, "page")
			dropped = append(dropped, "page(invalid)")
		} else {
			m["page"] = int(f)
		}
	}
	return dropped
}

func coerceNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		return germannum.Parse(t)
	default:
		return 0, false
	}
}
