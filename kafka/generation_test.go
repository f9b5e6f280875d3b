package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"reelsmith/types"
)

func TestTypedHandlerInvalidJSON(t *testing.T) {
	h := &TypedMessageHandler[types.GenerationRequest]{
		Process: func(ctx context.Context, msg *types.GenerationRequest) error {
			t.Fatal("Process called for invalid JSON")
			return nil
		},
		AlwaysMark: true,
	}
	mark, err := h.HandleMessage(context.Background(), []byte("not json"))
	if err != nil {
		t.Fatalf("HandleMessage error: %v", err)
	}
	if !mark {
		t.Fatal("invalid message not marked for skip")
	}
}

func TestTypedHandlerValidationFailure(t *testing.T) {
	processed := false
	h := &TypedMessageHandler[types.GenerationRequest]{
		Validate: func(msg *types.GenerationRequest) bool { return msg.UserInput != "" },
		Process: func(ctx context.Context, msg *types.GenerationRequest) error {
			processed = true
			return nil
		},
		AlwaysMark: true,
	}

	payload, _ := json.Marshal(types.GenerationRequest{UUID: "j1"})
	mark, err := h.HandleMessage(context.Background(), payload)
	if err != nil {
		t.Fatalf("HandleMessage error: %v", err)
	}
	if !mark {
		t.Fatal("rejected message not marked for skip")
	}
	if processed {
		t.Fatal("Process called despite failed validation")
	}
}

func TestTypedHandlerProcessError(t *testing.T) {
	h := &TypedMessageHandler[types.GenerationRequest]{
		Process: func(ctx context.Context, msg *types.GenerationRequest) error {
			return errors.New("downstream unavailable")
		},
		AlwaysMark: true,
	}

	payload, _ := json.Marshal(types.GenerationRequest{UUID: "j2", UserInput: "x"})
	mark, err := h.HandleMessage(context.Background(), payload)
	if err == nil {
		t.Fatal("expected error from Process")
	}
	if mark {
		t.Fatal("failed message marked; retry lost")
	}
}

func TestTypedHandlerSuccess(t *testing.T) {
	var got *types.GenerationRequest
	h := &TypedMessageHandler[types.GenerationRequest]{
		Validate: func(msg *types.GenerationRequest) bool { return msg.UserInput != "" },
		Process: func(ctx context.Context, msg *types.GenerationRequest) error {
			got = msg
			return nil
		},
	}

	payload, _ := json.Marshal(types.GenerationRequest{UUID: "j3", UserInput: "a sunset over hills"})
	mark, err := h.HandleMessage(context.Background(), payload)
	if err != nil {
		t.Fatalf("HandleMessage error: %v", err)
	}
	if !mark {
		t.Fatal("successful message not marked")
	}
	if got == nil || got.UUID != "j3" {
		t.Fatalf("processed message = %+v", got)
	}
}
