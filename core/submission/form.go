package submission

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

const criterionFieldPrefix = "criterion_"

// ParseCriterionScores reads "criterion_<id>" form fields into a score set.
// Fields whose id or value is not an integer are left out, so the grader reports them as missing.
func ParseCriterionScores(form url.Values) map[int]int {
	scores := make(map[int]int)
	for key, values := range form {
		if !strings.HasPrefix(key, criterionFieldPrefix) || len(values) == 0 {
			continue
		}
		id, err := strconv.Atoi(strings.TrimPrefix(key, criterionFieldPrefix))
		if err != nil {
			continue
		}
		pts, err := strconv.Atoi(strings.TrimSpace(values[0]))
		if err != nil {
			continue
		}
		scores[id] = pts
	}
	return scores
}

// ParseJSONScores keeps the integer scores of a JSON score object, keyed by criterion id.
// Like form fields, integer strings are accepted and anything else is left out.
func ParseJSONScores(raw map[int]json.RawMessage) map[int]int {
	scores := make(map[int]int, len(raw))
	for id, msg := range raw {
		dec := json.NewDecoder(bytes.NewReader(msg))
		dec.UseNumber()
		var v interface{}
		if err := dec.Decode(&v); err != nil {
			continue
		}
		switch val := v.(type) {
		case json.Number:
			if pts, err := strconv.Atoi(val.String()); err == nil {
				scores[id] = pts
			}
		case string:
			if pts, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
				scores[id] = pts
			}
		}
	}
	return scores
}
