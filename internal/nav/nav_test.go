package nav

import (
	"bytes"
	"testing"
)

func TestLinkNavigator(t *testing.T) {
	var buf bytes.Buffer
	n := NewLinkNavigator("http://localhost:8080/", &buf)

	ref := PageRef{RecordID: "sr-1", ObjectType: "shipment_request", Action: ActionEdit}
	if got, want := n.URL(ref), "http://localhost:8080/r/shipment_request/sr-1/edit"; got != want {
		t.Errorf("URL = %q, want %q", got, want)
	}

	n.Navigate(ref)
	if got, want := buf.String(), "-> http://localhost:8080/r/shipment_request/sr-1/edit\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Navigate(PageRef{RecordID: "a", Action: ActionView})
	r.Navigate(PageRef{RecordID: "b", Action: ActionEdit})
	refs := r.Refs()
	if len(refs) != 2 || refs[0].RecordID != "a" || refs[1].Action != ActionEdit {
		t.Errorf("Refs = %+v", refs)
	}
}
