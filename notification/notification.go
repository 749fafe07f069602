// Package notification parses the JSON payload Codex passes to its notify
// hook program.
package notification

import (
	"encoding/json"
	"strings"

	"github.com/grovetools/codex-wakatime/errors"
)

// TypeAgentTurnComplete is the only notification type that triggers
// heartbeat reporting.
const TypeAgentTurnComplete = "agent-turn-complete"

// Notification is the payload Codex serializes as the single CLI argument
// of the notify hook. A null last-assistant-message decodes to the empty
// string.
type Notification struct {
	Type                 string   `json:"type"`
	ThreadID             string   `json:"thread-id"`
	TurnID               string   `json:"turn-id"`
	Cwd                  string   `json:"cwd"`
	InputMessages        []string `json:"input-messages"`
	LastAssistantMessage string   `json:"last-assistant-message"`
}

// Parse decodes a notification payload. Malformed JSON or an empty
// argument is an input error; callers treat it as "no notification".
func Parse(data []byte) (Notification, error) {
	var n Notification
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return n, errors.New(errors.ErrCodeNotificationInvalid, "empty notification payload")
	}
	if err := json.Unmarshal([]byte(trimmed), &n); err != nil {
		return n, errors.Wrap(err, errors.ErrCodeNotificationInvalid, "failed to parse notification payload")
	}
	return n, nil
}

// IsAgentTurnComplete reports whether this notification should be handled.
func (n Notification) IsAgentTurnComplete() bool {
	return n.Type == TypeAgentTurnComplete
}
