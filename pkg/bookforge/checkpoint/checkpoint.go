package checkpoint

import (
	"encoding/json"
	"time"
)

// Version is the current checkpoint format version.
// Increment when making breaking changes to checkpoint structure.
const Version = 1

// Checkpoint is the persisted snapshot of a workflow run.
// It contains everything needed to resume: the serialized book state
// and the stage the router chose next.
type Checkpoint struct {
	// Metadata
	Version   int       `json:"version"`
	RunID     string    `json:"run_id"`
	Stage     string    `json:"stage"`
	Sequence  int       `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`

	// Execution state
	State     json.RawMessage `json:"state"`
	NextStage string          `json:"next_stage"`

	// Execution context
	Attempt   int    `json:"attempt"`
	PrevStage string `json:"prev_stage,omitempty"`
}

// Marshal serializes a checkpoint to JSON.
func (c *Checkpoint) Marshal() ([]byte, error) {
	return json.Marshal(c)
}

// Unmarshal deserializes a checkpoint from JSON.
func Unmarshal(data []byte) (*Checkpoint, error) {
	var c Checkpoint
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// New creates a new checkpoint with the given parameters.
// State must already be JSON-serialized.
func New(runID, stage string, sequence int, state []byte, nextStage string) *Checkpoint {
	return &Checkpoint{
		Version:   Version,
		RunID:     runID,
		Stage:     stage,
		Sequence:  sequence,
		Timestamp: time.Now().UTC(),
		State:     state,
		NextStage: nextStage,
		Attempt:   1,
	}
}

// WithAttempt sets the attempt number for retry tracking.
func (c *Checkpoint) WithAttempt(attempt int) *Checkpoint {
	c.Attempt = attempt
	return c
}

// WithPrevStage sets the previous stage for debugging.
func (c *Checkpoint) WithPrevStage(prevStage string) *Checkpoint {
	c.PrevStage = prevStage
	return c
}
