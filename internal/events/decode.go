package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alfredjeanlab/shipdesk/internal/model"
)

// ErrDecode matches every error returned by Decode.
var ErrDecode = errors.New("decode change event")

// DecodeError describes why a change-stream payload was rejected.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode change event: %s: %v", e.Reason, e.Err)
	}
	return "decode change event: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// Decode interprets a raw change-stream payload. It has no side effects;
// callers decide how to report failures.
func Decode(raw []byte) (model.ChangeNotification, error) {
	var ev ChangeEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return model.ChangeNotification{}, &DecodeError{Reason: "invalid JSON", Err: err}
	}
	if ev.Header == nil {
		return model.ChangeNotification{}, &DecodeError{Reason: "missing header"}
	}
	h := ev.Header
	if !h.ChangeType.IsValid() {
		return model.ChangeNotification{}, &DecodeError{Reason: fmt.Sprintf("unknown change type %q", h.ChangeType)}
	}

	ids := make([]string, 0, len(h.RecordIDs))
	for _, id := range h.RecordIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return model.ChangeNotification{}, &DecodeError{Reason: "missing record ids"}
	}

	return model.ChangeNotification{
		RecordIDs:     ids,
		Kind:          h.ChangeType,
		ChangedFields: h.ChangedFields,
		CommitTime:    h.CommitTime,
		CommitUser:    h.CommitUser,
		ReplayID:      ev.ReplayID,
	}, nil
}
