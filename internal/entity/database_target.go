package entity

// DatabaseTarget identifies the persistent store confirmed by the user.
// Once confirmed it is cached on the session and reused for every write.
type DatabaseTarget struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Schema map[string]string `json:"schema,omitempty"` // property name -> type, when known
}
