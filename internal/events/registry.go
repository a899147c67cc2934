package events

import "fmt"

var allowedEvents = map[string]struct{}{
	// cutscene (one per running graph lifecycle transition)
	"cutscene.started":   {},
	"cutscene.completed": {},
	"cutscene.stopped":   {},
	"cutscene.paused":    {},
	"cutscene.resumed":   {},
	"cutscene.skipped":   {},
	"cutscene.killed":    {},
	"cutscene.error":     {},

	// action
	"action.started":   {},
	"action.completed": {},
	"action.skipped":   {},
	"action.error":     {},

	// registry
	"registry.skip_all":  {},
	"registry.kill_all":  {},
	"registry.blocked":   {},
	"registry.unblocked": {},

	// game mode
	"mode.changed": {},

	// persistence
	"save.created": {},
	"save.loaded":  {},
	"save.dropped": {},
	"save.error":   {},

	// show control
	"cue.sent":        {},
	"cue.error":       {},
	"signal.received": {},

	// assets
	"asset.loaded": {},
	"asset.error":  {},

	// remote commands
	"command.received": {},

	// system
	"system.startup":         {},
	"system.shutdown":        {},
	"system.startup_restore": {},
	"system.error":           {},
}

func Validate(event string) error {
	if _, ok := allowedEvents[event]; !ok {
		return fmt.Errorf("unknown event: %s", event)
	}
	return nil
}
