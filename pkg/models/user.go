package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ID is a backend-native user identifier: an integer key for the SQL and
// memory backends, a hex ObjectID for the document store.
type ID struct {
	num int64
	str string
}

// IntID wraps an integer primary key.
func IntID(n int64) ID { return ID{num: n} }

// StringID wraps an opaque string identifier.
func StringID(s string) ID { return ID{str: s} }

// IsZero reports whether no identifier has been assigned.
func (id ID) IsZero() bool { return id.num == 0 && id.str == "" }

// Int returns the integer form and whether the ID is integer-backed.
func (id ID) Int() (int64, bool) { return id.num, id.str == "" && id.num != 0 }

func (id ID) String() string {
	if id.str != "" {
		return id.str
	}
	return strconv.FormatInt(id.num, 10)
}

// MarshalJSON emits a JSON number for integer ids and a JSON string otherwise.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.str != "" {
		return json.Marshal(id.str)
	}
	return []byte(strconv.FormatInt(id.num, 10)), nil
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = StringID(s)
		return nil
	}
	n, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	*id = IntID(n)
	return nil
}

// User represents a user in one of the backing stores. The id is a JSON
// number for postgres, sqlite and memory and a 24-hex ObjectID string for mongo.
type User struct {
	ID        ID        `json:"id" swaggertype:"string" example:"1"`
	Name      string    `json:"name" example:"Dave"`
	Email     string    `json:"email" example:"dave@example.com"`
	Phone     string    `json:"phone" example:"555-0100"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UserInput carries the writable fields for create and update. The
// notblank rule is registered on gin's validator by the api package.
type UserInput struct {
	Name  string `json:"name" binding:"required,notblank" example:"Dave"`
	Email string `json:"email" binding:"required,notblank" example:"dave@example.com"`
	Phone string `json:"phone" binding:"required,notblank" example:"555-0100"`
}

// RelaxedUserInput is the memory backend's payload: phone may be omitted.
type RelaxedUserInput struct {
	Name  string `json:"name" binding:"required,notblank" example:"Dave"`
	Email string `json:"email" binding:"required,notblank" example:"dave@example.com"`
	Phone string `json:"phone" example:"555-0100"`
}

// Input converts the relaxed payload into the common input type.
func (r RelaxedUserInput) Input() UserInput {
	return UserInput{Name: r.Name, Email: r.Email, Phone: r.Phone}
}
