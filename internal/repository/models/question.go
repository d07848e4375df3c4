package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// StringSlice stores a string array as JSON text
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		// nil 슬라이스인 경우 DB에 빈 JSON 배열 문자열 "[]"로 저장
		return "[]", nil
	}
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil // []byte 대신 string 반환
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{} // DB NULL은 빈 슬라이스로
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
	ID             string         `db:"id"`
	Question       string         `db:"question"`
	Options        StringSlice    `db:"options"`
	CorrectAnswer  string         `db:"correct_answer"`
	Topic          sql.NullString `db:"topic"`
	DiscussionLink sql.NullString `db:"discussion_link"`
	IsMultiselect  bool           `db:"is_multiselect"`
}
