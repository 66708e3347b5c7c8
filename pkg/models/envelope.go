package models

// Envelope is the JSON shape of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Count   *int        `json:"count,omitempty"`
}

// OK wraps a single payload.
func OK(data interface{}) Envelope {
	return Envelope{Success: true, Data: data}
}

// OKList wraps a list payload together with its length.
func OKList(users []User) Envelope {
	if users == nil {
		users = []User{}
	}
	n := len(users)
	return Envelope{Success: true, Data: users, Count: &n}
}

// OKMessage is a success response without data.
func OKMessage(msg string) Envelope {
	return Envelope{Success: true, Message: msg}
}

// Fail is an error response.
func Fail(msg string) Envelope {
	return Envelope{Success: false, Message: msg}
}
