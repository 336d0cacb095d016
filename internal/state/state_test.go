package state

import (
	"reflect"
	"testing"
)

type unknownAction struct{}

func (unknownAction) isAction() {}

func TestReduceUnknownActionLeavesStateUnchanged(t *testing.T) {
	s := Initial()
	s.SessionID = "abc"
	s.Messages = []ChatMessage{NewMessage(KindUser, "hi")}

	got := Reduce(s, unknownAction{})

	if !reflect.DeepEqual(got, s) {
		t.Fatalf("unknown action changed state: %+v != %+v", got, s)
	}
	if &got.Messages[0] != &s.Messages[0] {
		t.Fatal("unknown action reallocated the transcript")
	}
}

func TestSetErrorForcesLoadingOff(t *testing.T) {
	for _, loading := range []bool{true, false} {
		s := Initial()
		s.Loading = loading
		got := Reduce(s, SetError{Message: "boom"})
		if got.Err != "boom" {
			t.Fatalf("error not recorded, got %q", got.Err)
		}
		if got.Loading {
			t.Fatalf("loading still true after SetError (was %v)", loading)
		}
	}
}

func TestClearChatPreservesFileAndSession(t *testing.T) {
	s := Initial()
	s.PDFFile = &FileHandle{Name: "paper.pdf", Size: 1024}
	s.SessionID = "sess-1"
	s.Err = "stale"
	s = Reduce(s, AddChatMessage{Message: NewMessage(KindUser, "q")})
	s = Reduce(s, AddCitation{Citation: Citation{Page: 3}})

	got := Reduce(s, ClearChat{})

	if len(got.Messages) != 0 || len(got.Citations) != 0 {
		t.Fatalf("transcript not emptied: %d messages, %d citations", len(got.Messages), len(got.Citations))
	}
	if got.Err != "" {
		t.Fatalf("error not cleared: %q", got.Err)
	}
	if got.PDFFile != s.PDFFile || got.SessionID != "sess-1" {
		t.Fatal("clear chat must keep the loaded file and session")
	}
}

func TestResetStateYieldsInitialDefaults(t *testing.T) {
	s := Initial()
	s.PDFFile = &FileHandle{Name: "paper.pdf"}
	s.SessionID = "sess-1"
	s.TotalPages = 12
	s.CurrentPage = 7
	s.Loading = true
	s.Err = "boom"
	s = Reduce(s, AddChatMessage{Message: NewMessage(KindUser, "q")})

	got := Reduce(s, ResetState{})

	if !reflect.DeepEqual(got, Initial()) {
		t.Fatalf("reset did not restore defaults: %+v", got)
	}
}

func TestAddChatMessageKeepsInsertionOrder(t *testing.T) {
	s := Initial()
	contents := []string{"one", "two", "three", "four", "five"}
	for _, c := range contents {
		s = Reduce(s, AddChatMessage{Message: NewMessage(KindUser, c)})
	}
	if len(s.Messages) != len(contents) {
		t.Fatalf("transcript length %d, want %d", len(s.Messages), len(contents))
	}
	for i, c := range contents {
		if s.Messages[i].Content != c {
			t.Fatalf("message %d is %q, want %q", i, s.Messages[i].Content, c)
		}
	}
}

func TestAppendDoesNotMutateOldSnapshots(t *testing.T) {
	s := Initial()
	s = Reduce(s, AddChatMessage{Message: NewMessage(KindUser, "first")})
	before := s.Messages

	s = Reduce(s, AddChatMessage{Message: NewMessage(KindAssistant, "second")})

	if len(before) != 1 || before[0].Content != "first" {
		t.Fatalf("old snapshot mutated: %+v", before)
	}
	if len(s.Messages) != 2 {
		t.Fatalf("new snapshot length %d, want 2", len(s.Messages))
	}
}

func TestNextMessageIDIsUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NextMessageID()
		if seen[id] {
			t.Fatalf("duplicate message id %q", id)
		}
		seen[id] = true
	}
}

func TestStoreDispatchAndSnapshot(t *testing.T) {
	store := NewStore()
	store.Dispatch(SetSessionID{SessionID: "sess-9"})
	store.Dispatch(SetLoading{Loading: true})

	snap := store.Snapshot()
	if snap.SessionID != "sess-9" || !snap.Loading {
		t.Fatalf("snapshot out of date: %+v", snap)
	}

	store.Dispatch(SetError{Message: "nope"})
	if got := store.Snapshot(); got.Loading || got.Err != "nope" {
		t.Fatalf("SetError not applied through store: %+v", got)
	}
	if snap.Err != "" {
		t.Fatal("earlier snapshot should be unaffected")
	}
}
