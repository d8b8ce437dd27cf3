package selection

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Entry kinds
const (
	KindCourse = "course"
	KindCard   = "card"
)

// Card is what a class tile displays.
type Card struct {
	Title       string `json:"title"`
	CourseCode  string `json:"course_code"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

// Entry is one item of a class selection: a reference to a course or an ad hoc card.
type Entry struct {
	Kind     string
	CourseID int  // KindCourse
	Card     Card // KindCard
}

func CourseEntry(id int) Entry { return Entry{Kind: KindCourse, CourseID: id} }

func CardEntry(c Card) Entry { return Entry{Kind: KindCard, Card: c} }

// MarshalJSON encodes course references as bare ids and cards as objects.
func (e Entry) MarshalJSON() ([]byte, error) {
	if e.Kind == KindCard {
		return json.Marshal(e.Card)
	}
	return json.Marshal(e.CourseID)
}

// Selection is the ordered list of classes a user follows.
type Selection struct {
	UserID  int
	Entries []Entry
}

// DecodeEntries reads a stored selection list. Besides the shapes MarshalJSON writes,
// it accepts numeric strings and {"course_id": n} or {"id": n} objects as course references.
// Items of any other shape are skipped.
func DecodeEntries(data []byte) ([]Entry, error) {
	if len(data) == 0 {
		return []Entry{}, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding class selection")
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		if e, ok := decodeEntry(item); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// EncodeEntries is the inverse of DecodeEntries.
func EncodeEntries(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.Marshal(entries)
	return data, errors.Wrap(err, "encoding class selection")
}

func decodeEntry(item json.RawMessage) (Entry, bool) {
	var v interface{}
	dec := json.NewDecoder(strings.NewReader(string(item)))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return Entry{}, false
	}

	switch val := v.(type) {
	case json.Number:
		return courseEntryFrom(val.String())
	case string:
		return courseEntryFrom(val)
	case map[string]interface{}:
		if title, _ := val["title"].(string); title != "" {
			return CardEntry(Card{
				Title:       title,
				CourseCode:  cardField(val["course_code"]),
				Description: cardField(val["description"]),
				Link:        cardField(val["link"]),
			}), true
		}
		for _, key := range []string{"course_id", "id"} {
			switch id := val[key].(type) {
			case json.Number:
				return courseEntryFrom(id.String())
			case string:
				return courseEntryFrom(id)
			}
		}
	}
	return Entry{}, false
}

// cardField renders numbers and booleans as text; other shapes are dropped.
func cardField(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	}
	return ""
}

func courseEntryFrom(s string) (Entry, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return Entry{}, false
	}
	return CourseEntry(id), true
}
