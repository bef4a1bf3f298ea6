package kafka

import (
	"encoding/json"
	"testing"
)

func TestEncode(t *testing.T) {
	events := []Event{
		{Key: "run-1", Value: map[string]int{"doc_id": 1}},
		{Key: "run-1", Value: map[string]int{"doc_id": 2}},
	}
	msgs, err := encode(events)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("len = %d, want 2", len(msgs))
	}
	var got map[string]int
	if err := json.Unmarshal(msgs[1].Value, &got); err != nil {
		t.Fatal(err)
	}
	if string(msgs[1].Key) != "run-1" || got["doc_id"] != 2 {
		t.Errorf("message = %s %s", msgs[1].Key, msgs[1].Value)
	}
}

func TestEncodeRejectsUnmarshalable(t *testing.T) {
	if _, err := encode([]Event{{Key: "x", Value: make(chan int)}}); err == nil {
		t.Fatal("expected marshal error")
	}
}
