package model

import "time"

// ChangeKind classifies a change notification.
type ChangeKind string

const (
	ChangeCreate   ChangeKind = "CREATE"
	ChangeUpdate   ChangeKind = "UPDATE"
	ChangeDelete   ChangeKind = "DELETE"
	ChangeUndelete ChangeKind = "UNDELETE"
)

// IsValid checks whether the change kind is a known value.
func (k ChangeKind) IsValid() bool {
	switch k {
	case ChangeCreate, ChangeUpdate, ChangeDelete, ChangeUndelete:
		return true
	}
	return false
}

// ChangeNotification describes a remote change to one or more shipment
// requests. It is produced by decoding a change-stream payload.
type ChangeNotification struct {
	RecordIDs     []string   `json:"record_ids"`
	Kind          ChangeKind `json:"kind"`
	ChangedFields []string   `json:"changed_fields,omitempty"`
	CommitTime    time.Time  `json:"commit_time"`
	CommitUser    string     `json:"commit_user,omitempty"`
	ReplayID      int64      `json:"replay_id"`
}
