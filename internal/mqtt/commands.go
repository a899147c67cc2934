package mqtt

import (
	"encoding/json"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/hollowpine/StorylineEngine/internal/events"
)

// CommandSink receives remote engine commands. Implemented by the run
// registry, which queues each command for the next frame.
type CommandSink interface {
	EnqueueCommand(name, slot string) error
}

// CommandListener subscribes to the engine's command topic and forwards
// remote commands (skip_all, pause_all, kill_all, save, load) to the sink.
type CommandListener struct {
	client *Client
	sink   CommandSink
}

func NewCommandListener(client *Client, sink CommandSink) *CommandListener {
	return &CommandListener{client: client, sink: sink}
}

// Topic returns the command topic for an engine ID.
func Topic(engineID string) string {
	return "storyline/" + engineID + "/command"
}

// Start subscribes to the command topic. Idempotent subscription handling is
// delegated to the broker session (clean-session false reconnects resubscribe
// via paho's auto-reconnect).
func (l *CommandListener) Start(engineID string) error {
	return l.client.Subscribe(Topic(engineID), l.handle)
}

type commandMessage struct {
	Command string `json:"command"`
	Slot    string `json:"slot,omitempty"`
}

func (l *CommandListener) handle(_ paho.Client, msg paho.Message) {
	var cmd commandMessage
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		events.Emit("warning", "system.error", "malformed command payload", map[string]interface{}{
			"topic": msg.Topic(),
			"error": err.Error(),
		})
		return
	}
	if err := l.sink.EnqueueCommand(cmd.Command, cmd.Slot); err != nil {
		events.Emit("warning", "system.error", "rejected command", map[string]interface{}{
			"topic":   msg.Topic(),
			"command": cmd.Command,
			"error":   err.Error(),
		})
	}
}
