package models

import (
	"bytes"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// StringSlice stores a string list as a JSON array in a text column.
type StringSlice []string

// Value implements the driver.Valuer interface. HTML characters are not escaped
// so that LIKE patterns see the literal tag text.
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]string(s)); err != nil {
		return nil, err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Lower returns a copy with every element lower-cased.
func (s StringSlice) Lower() StringSlice {
	out := make(StringSlice, len(s))
	for i, v := range s {
		out[i] = strings.ToLower(v)
	}
	return out
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	var bytesToParse []byte
	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("StringSlice Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*s = StringSlice{}
		return nil
	}
	return json.Unmarshal(bytesToParse, s)
}

// Question is a row of the questions table.
type Question struct {
	ID           string         `db:"id"`
	Subject      string         `db:"subject"`
	Topic        sql.NullString `db:"topic"`
	Difficulty   int            `db:"difficulty"`
	QuestionType string         `db:"question_type"`
	Title        sql.NullString `db:"title"`
	Body         string         `db:"body"`
	Tags         StringSlice    `db:"tags"`
	Choices      StringSlice    `db:"choices"`
	Answer       sql.NullString `db:"answer"`
	Explanation  sql.NullString `db:"explanation"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

// SearchRow is a Question with its computed relevance.
type SearchRow struct {
	Question
	Relevance int `db:"relevance"`
}
