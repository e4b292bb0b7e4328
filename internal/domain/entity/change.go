package entity

// ChangeType is the kind of row-level change delivered by the realtime stream.
type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
)

// Valid reports whether t is one of the known change types.
func (t ChangeType) Valid() bool {
	switch t {
	case ChangeInsert, ChangeUpdate, ChangeDelete:
		return true
	}
	return false
}

// ChangeEvent is a realtime notification about a single row of the articles table.
// New is set for inserts and updates; OldID is set for deletes.
type ChangeEvent struct {
	Type  ChangeType
	Table string
	New   *RemoteRow
	OldID string
}
