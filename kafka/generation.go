package kafka

import (
	"context"
	"log"

	"github.com/google/uuid"

	"reelsmith/types"
	"reelsmith/workflow"
)

// NewGenerationHandler builds the handler for the generation-requests topic.
// Each valid message is registered with the state manager and run through the
// workflow; failures are retried by leaving the message unmarked.
func NewGenerationHandler(manager *workflow.Manager, runner *workflow.Runner) MessageHandler {
	return &TypedMessageHandler[types.GenerationRequest]{
		Validate: func(msg *types.GenerationRequest) bool {
			if msg.UserInput == "" {
				log.Printf("Skipping generation request with empty user input")
				return false
			}
			return true
		},
		Process: func(ctx context.Context, msg *types.GenerationRequest) error {
			if msg.UUID == "" {
				msg.UUID = uuid.NewString()
			}
			log.Printf("Processing generation request %s", msg.UUID)
			manager.NewJob(msg.UUID)
			return runner.Run(ctx, *msg)
		},
		AlwaysMark: true, // Invalid payloads are skipped, not retried
	}
}
