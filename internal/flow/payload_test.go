package flow

import (
	"errors"
	"testing"
)

func TestDecodePayloadStripsSurroundingProse(t *testing.T) {
	var payload questionPayload
	output := "Sure! Here is the JSON you asked for:\n```json\n{\"next_question\": \"How are your sleep patterns?\"}\n```\nLet me know if you need anything else."

	if err := decodePayload(output, &payload); err != nil {
		t.Fatalf("decodePayload: %v", err)
	}
	if payload.NextQuestion != "How are your sleep patterns?" {
		t.Errorf("next_question = %q", payload.NextQuestion)
	}
}

func TestDecodePayloadNoBraces(t *testing.T) {
	var payload questionPayload
	err := decodePayload("I could not produce JSON, sorry.", &payload)
	if !errors.Is(err, errNoPayload) {
		t.Errorf("err = %v, want errNoPayload", err)
	}
}

func TestDecodePayloadMalformedJSON(t *testing.T) {
	var payload questionPayload
	if err := decodePayload(`{"next_question": `+"\n}", &payload); err == nil {
		t.Error("malformed JSON decoded without error")
	}
	// Truncated object: closing brace exists but body is broken.
	if err := decodePayload(`{"next_question": "x", }`, &payload); err == nil {
		t.Error("trailing comma accepted")
	}
}
