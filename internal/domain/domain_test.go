package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/cwrk-planet/chat-service/pkg/errs"
)

func TestParseParty(t *testing.T) {
	p, err := ParseParty("bot")
	if err != nil || !p.IsBot() {
		t.Fatalf("bot: got %+v, %v", p, err)
	}
	p, err = ParseParty(" 42 ")
	if err != nil || p != User("42") {
		t.Fatalf("user: got %+v, %v", p, err)
	}
	if _, err := ParseParty(""); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("empty party should be invalid input, got %v", err)
	}
}

func TestParty_JSON(t *testing.T) {
	in := Message{SenderID: User("A"), ReceiverID: Bot, RoomID: "A_bot", Text: "hi"}
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	_ = json.Unmarshal(b, &raw)
	if raw["senderId"] != "A" || raw["receiverId"] != "bot" {
		t.Fatalf("unexpected wire form: %s", b)
	}

	var out Message
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.SenderID != User("A") || !out.ReceiverID.IsBot() {
		t.Fatalf("roundtrip mismatch: %+v", out)
	}

	if err := json.Unmarshal([]byte(`{"senderId":""}`), &out); err == nil {
		t.Fatalf("empty senderId must not decode")
	}
}

func TestRoomIDFor_IsSymmetric(t *testing.T) {
	a, b := User("A"), User("B")
	if got := RoomIDFor(a, b); got != "A_B" {
		t.Fatalf("RoomIDFor(A,B) = %q", got)
	}
	if RoomIDFor(a, b) != RoomIDFor(b, a) {
		t.Fatalf("room id depends on direction")
	}
	if got := RoomIDFor(User("z"), Bot); got != "bot_z" {
		t.Fatalf("RoomIDFor(z,bot) = %q", got)
	}
}

func TestConversation_AddParticipants(t *testing.T) {
	c := Conversation{Participants: []string{"A"}}
	if !c.AddParticipants("B", "A", "B") {
		t.Fatalf("expected change")
	}
	if len(c.Participants) != 2 || c.Participants[0] != "A" || c.Participants[1] != "B" {
		t.Fatalf("participants = %v", c.Participants)
	}
	if c.AddParticipants("A") {
		t.Fatalf("no change expected")
	}
}

func TestDomainErrors_Kinds(t *testing.T) {
	if !errors.Is(ErrNotificationNotFound, errs.ErrNotFound) {
		t.Fatalf("not found kind lost")
	}
	if !errors.Is(ErrTextTooLong, errs.ErrInvalidInput) {
		t.Fatalf("invalid input kind lost")
	}
}
