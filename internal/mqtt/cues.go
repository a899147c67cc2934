package mqtt

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/hollowpine/StorylineEngine/internal/config"
	"github.com/hollowpine/StorylineEngine/internal/events"
)

// CuePublisher publishes show-control cues (audio, lighting, animation
// triggers) on behalf of cue actions, validating each cue against the
// channels declared in cues.yaml. It implements cutscene.CueSender.
type CuePublisher struct {
	mu     sync.RWMutex
	client *Client
	cfg    *config.CuesConfig
}

func NewCuePublisher(client *Client, cfg *config.CuesConfig) *CuePublisher {
	return &CuePublisher{client: client, cfg: cfg}
}

// ValidateCue checks that the channel is declared and accepts the signal.
func (p *CuePublisher) ValidateCue(channel, signal string) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.cfg == nil {
		return fmt.Errorf("no cue channels configured")
	}
	ch, ok := p.cfg.Channels[channel]
	if !ok {
		return fmt.Errorf("unknown cue channel: %s", channel)
	}
	for _, s := range ch.Signals {
		if s == signal {
			return nil
		}
	}
	return fmt.Errorf("signal %s not allowed on channel %s", signal, channel)
}

// Topic returns the MQTT topic for a channel, defaulting to cue/<channel>.
func (p *CuePublisher) Topic(channel string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.cfg != nil {
		if ch, ok := p.cfg.Channels[channel]; ok && ch.Topic != "" {
			return ch.Topic
		}
	}
	return "cue/" + channel
}

// SendCue validates and publishes one cue. Implements cutscene.CueSender.
func (p *CuePublisher) SendCue(channel, signal string, payload interface{}) error {
	if err := p.ValidateCue(channel, signal); err != nil {
		p.emitError(channel, signal, "", err.Error())
		return err
	}

	topic := p.Topic(channel)
	body, err := json.Marshal(map[string]interface{}{
		"signal":  signal,
		"payload": payload,
	})
	if err != nil {
		p.emitError(channel, signal, topic, fmt.Sprintf("failed to marshal cue: %v", err))
		return fmt.Errorf("failed to marshal cue: %w", err)
	}

	if p.client == nil || !p.client.IsConnected() {
		p.emitError(channel, signal, topic, "MQTT client not connected")
		return fmt.Errorf("mqtt client not connected")
	}
	if err := p.client.Publish(topic, body); err != nil {
		p.emitError(channel, signal, topic, fmt.Sprintf("MQTT publish failed: %v", err))
		return err
	}

	events.Emit("info", "cue.sent", "", map[string]interface{}{
		"channel": channel,
		"signal":  signal,
		"topic":   topic,
	})
	return nil
}

func (p *CuePublisher) emitError(channel, signal, topic, msg string) {
	fields := map[string]interface{}{
		"channel": channel,
		"signal":  signal,
		"error":   msg,
	}
	if topic != "" {
		fields["topic"] = topic
	}
	events.Emit("error", "cue.error", msg, fields)
}
