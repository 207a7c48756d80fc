package skills

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Proficiency labels in descending order of mastery.
const (
	LabelMaster       = "Master"
	LabelAdvanced     = "Advanced"
	LabelIntermediate = "Intermediate"
	LabelBeginner     = "Beginner"
)

// Normalized is the canonical rendering of a raw proficiency value. For
// unrecognized input the raw text is preserved verbatim as the label and
// every numeric field is nil.
type Normalized struct {
	Percent  *int   `json:"percent"`
	Label    string `json:"label"`
	RangeMin *int   `json:"range_min"`
	RangeMax *int   `json:"range_max"`
}

var percentRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*%$`)

var keywordPercents = map[string]int{
	"master":       95,
	"expert":       95,
	"advanced":     85,
	"intermediate": 70,
	"beginner":     30,
}

// Normalize coerces a heterogeneous proficiency value to a percent and
// label. Coercion order: number, "NN%" string, numeric string, keyword,
// verbatim passthrough. It never errors; raw values are stored untouched
// and normalized per response.
func Normalize(raw any) Normalized {
	switch v := raw.(type) {
	case nil:
		return passthrough("")
	case int:
		return fromPercent(float64(v))
	case int32:
		return fromPercent(float64(v))
	case int64:
		return fromPercent(float64(v))
	case float32:
		return fromPercent(float64(v))
	case float64:
		return fromPercent(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return fromPercent(f)
		}
		return passthrough(v.String())
	case string:
		return normalizeString(v)
	case *string:
		if v == nil {
			return passthrough("")
		}
		return normalizeString(*v)
	default:
		return passthrough(fmt.Sprint(raw))
	}
}

func normalizeString(raw string) Normalized {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return passthrough(raw)
	}

	if m := percentRe.FindStringSubmatch(trimmed); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			return fromPercent(f)
		}
	}

	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return fromPercent(f)
	}

	if pct, ok := keywordPercents[strings.ToLower(trimmed)]; ok {
		return fromPercent(float64(pct))
	}

	return passthrough(raw)
}

func fromPercent(value float64) Normalized {
	pct := int(math.Round(value))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	var label string
	var lo, hi int
	switch {
	case pct >= 90:
		label, lo, hi = LabelMaster, 90, 100
	case pct >= 61:
		label, lo, hi = LabelAdvanced, 61, 89
	case pct >= 31:
		label, lo, hi = LabelIntermediate, 31, 60
	default:
		label, lo, hi = LabelBeginner, 0, 30
	}

	return Normalized{
		Percent:  &pct,
		Label:    label,
		RangeMin: &lo,
		RangeMax: &hi,
	}
}

func passthrough(raw string) Normalized {
	return Normalized{Label: raw}
}

// RawLevelText renders a JSON level value to its stored text form. Numbers
// keep their shortest decimal rendering; strings are kept verbatim.
func RawLevelText(level any) *string {
	switch v := level.(type) {
	case nil:
		return nil
	case string:
		return &v
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		return &s
	case int:
		s := strconv.Itoa(v)
		return &s
	case json.Number:
		s := v.String()
		return &s
	default:
		s := fmt.Sprint(v)
		return &s
	}
}
