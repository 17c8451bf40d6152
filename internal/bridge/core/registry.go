package core

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Command names.
const (
	CommandHelp  = "help"
	CommandTurn  = "buggy_turn"
	CommandDrive = "buggy_drive"
	CommandSpeed = "buggy_speed"
)

// Wire event types carrying a command payload as their content.
const (
	EventTypePrefix = "uk.half-shot.matrix-poweredup."

	EventTurn  = EventTypePrefix + "buggy.turn"
	EventDrive = EventTypePrefix + "buggy.drive"
	EventSpeed = EventTypePrefix + "buggy.speed"
)

// Payload is the command arguments. Wire events use their content as-is, so
// numbers are float64; text commands produce float64 too, with NaN for
// numeric text that does not parse.
type Payload map[string]any

// DefaultHandlerFunc runs after the command handler has accepted a command.
type DefaultHandlerFunc func(ctx context.Context, cc *CommandContext) error

// Definition describes one command.
type Definition struct {
	Name string

	// Pattern matches the full text of a chat message.
	Pattern *regexp.Regexp

	// FromText builds the payload from Pattern's submatches. It may return nil.
	FromText func(groups []string) Payload

	// EventType, if set, is the wire event type for this command.
	EventType string

	// Usage is a one-line description shown by help.
	Usage string

	DefaultHandler DefaultHandlerFunc
}

// Registry is an ordered, closed set of command definitions.
type Registry struct {
	defs []*Definition
}

// NewRegistry returns a registry matching definitions in the given order.
func NewRegistry(defs ...*Definition) *Registry {
	return &Registry{defs: defs}
}

// Commands returns the bot's registry: help, buggy_turn, buggy_drive,
// buggy_speed, in that order.
func Commands() *Registry {
	r := NewRegistry(
		&Definition{
			Name:     CommandHelp,
			Pattern:  regexp.MustCompile(`^help$`),
			FromText: func([]string) Payload { return nil },
			Usage:    "help: show this message",
		},
		&Definition{
			Name:      CommandTurn,
			Pattern:   regexp.MustCompile(`^buggy turn (left|right) (\d+)?$`),
			EventType: EventTurn,
			Usage:     "buggy turn <left|right> <degrees>: steer, up to 30 degrees either side",
			FromText: func(g []string) Payload {
				p := Payload{"direction": g[1]}
				if g[2] != "" {
					p["angle"] = parseNumber(g[2])
				}
				return p
			},
		},
		&Definition{
			Name:      CommandDrive,
			Pattern:   regexp.MustCompile(`^buggy drive (forward|reverse) (\d+) (\d+)$`),
			EventType: EventDrive,
			Usage:     "buggy drive <forward|reverse> <power 0-100> <duration ms>: drive, then stop",
			FromText: func(g []string) Payload {
				return Payload{"direction": g[1], "power": parseNumber(g[2]), "duration": parseNumber(g[3])}
			},
		},
		&Definition{
			Name:      CommandSpeed,
			Pattern:   regexp.MustCompile(`^buggy speed (-?\d+)$`),
			EventType: EventSpeed,
			Usage:     "buggy speed <-100..100>: set the drive motor speed",
			FromText: func(g []string) Payload {
				return Payload{"speed": parseNumber(g[1])}
			},
		},
	)
	r.defs[0].DefaultHandler = helpHandler(r)
	return r
}

// Definitions returns the definitions in match order.
func (r *Registry) Definitions() []*Definition {
	return r.defs
}

// Match returns the first definition whose pattern matches text.
func (r *Registry) Match(text string) (*Definition, Payload, bool) {
	for _, def := range r.defs {
		if def.Pattern == nil {
			continue
		}
		groups := def.Pattern.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		var p Payload
		if def.FromText != nil {
			p = def.FromText(groups)
		}
		return def, p, true
	}
	return nil, nil, false
}

// ByEventType returns the definition whose wire event type is exactly t.
func (r *Registry) ByEventType(t string) (*Definition, bool) {
	if t == "" {
		return nil, false
	}
	for _, def := range r.defs {
		if def.EventType == t {
			return def, true
		}
	}
	return nil, false
}

func parseNumber(s string) float64 {
	n, err := strconv.Atoi(s)
	if err != nil {
		return math.NaN()
	}
	return float64(n)
}

func helpHandler(r *Registry) DefaultHandlerFunc {
	return func(ctx context.Context, cc *CommandContext) error {
		var b strings.Builder
		b.WriteString("Commands:")
		for _, def := range r.defs {
			if def.Usage != "" {
				b.WriteString("\n")
				b.WriteString(def.Usage)
			}
		}
		return cc.Notice(ctx, b.String())
	}
}
