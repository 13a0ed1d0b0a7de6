package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stardrift-sim/stardrift/internal/combat/ship"
)

// ErrOutOfRange indicates a target beyond an action's maximum range.
var ErrOutOfRange = errors.New("target is out of range")

// Catalog is an immutable lookup of action configurations.
type Catalog struct {
	configs map[string]ActionConfig
}

// New builds the catalog from the built-in rules table.
func New() *Catalog {
	return FromConfigs(defaultConfigs)
}

// FromConfigs builds a catalog from explicit rows, used by tests and
// scenario tooling to load trimmed rule sets.
func FromConfigs(configs []ActionConfig) *Catalog {
	byName := make(map[string]ActionConfig, len(configs))
	for _, config := range configs {
		byName[config.Name] = config
	}
	return &Catalog{configs: byName}
}

// Get returns the configuration for an action name.
func (c *Catalog) Get(name string) (ActionConfig, bool) {
	config, ok := c.configs[name]
	return config, ok
}

// Names returns every configured action name.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.configs))
	for name := range c.configs {
		names = append(names, name)
	}
	return names
}

// IsBuff reports whether the action is a simple buff.
func (c *Catalog) IsBuff(name string) bool {
	config, ok := c.configs[name]
	return ok && config.Type == TypeBuff
}

// IsTaskRoll reports whether the action requires a task roll.
func (c *Catalog) IsTaskRoll(name string) bool {
	config, ok := c.configs[name]
	return ok && config.Type == TypeTaskRoll
}

// IsToggle reports whether the action flips a ship flag.
func (c *Catalog) IsToggle(name string) bool {
	config, ok := c.configs[name]
	return ok && config.Type == TypeToggle
}

// IsMajor classifies an action as major (turn-ending) or minor.
//
// An explicit override on the config wins. Otherwise task rolls are
// major, specials are major except Change Position, and buffs and
// toggles are minor. Unknown actions are treated as major so an
// unrecognized action ends the turn instead of granting a free one.
func (c *Catalog) IsMajor(name string) bool {
	config, ok := c.configs[name]
	if !ok {
		return true
	}
	if config.Major != nil {
		return *config.Major
	}
	switch config.Type {
	case TypeTaskRoll:
		return true
	case TypeSpecial:
		return name != "Change Position"
	default:
		return false
	}
}

// RequiredSystem resolves the ship system an action depends on,
// consulting the declared config first and the special-actions table
// for actions not otherwise configured. An empty result means the
// action has no system dependency.
func (c *Catalog) RequiredSystem(name string) (ship.SystemType, bool) {
	if config, ok := c.configs[name]; ok && config.RequiredSystem != "" {
		if system, ok := ship.ParseSystemType(config.RequiredSystem); ok {
			return system, true
		}
	}
	if declared, ok := specialActionSystems[name]; ok {
		if system, ok := ship.ParseSystemType(declared); ok {
			return system, true
		}
	}
	return "", false
}

// IsAvailable reports whether the acting ship can still use the
// action. The reason string is populated when the required system has
// accumulated breach potency at or above its rating.
func (c *Catalog) IsAvailable(name string, s *ship.Starship) (bool, string) {
	system, ok := c.RequiredSystem(name)
	if !ok || s == nil {
		return true, ""
	}
	if s.IsSystemDisabled(system) {
		return false, fmt.Sprintf("%s DESTROYED", strings.ToUpper(string(system)))
	}
	return true, ""
}

// BreachDifficultyModifier returns the summed breach potency on the
// action's required system; it adds directly to roll difficulty.
func (c *Catalog) BreachDifficultyModifier(name string, s *ship.Starship) int {
	system, ok := c.RequiredSystem(name)
	if !ok || s == nil {
		return 0
	}
	return s.BreachPotency(system)
}

// MaxRange returns the action's maximum target distance in hexes;
// zero means the action is not range-limited.
func (c *Catalog) MaxRange(name string) int {
	config, ok := c.configs[name]
	if !ok {
		return 0
	}
	return config.MaxRange
}

// DifficultyPerRange returns the difficulty added per hex of distance
// for ranged actions.
func (c *Catalog) DifficultyPerRange(name string) int {
	config, ok := c.configs[name]
	if !ok {
		return 0
	}
	return config.DifficultyPerRange
}

// CheckRange validates a target distance against the action's maximum
// range.
func (c *Catalog) CheckRange(name string, hexDistance int) error {
	maxRange := c.MaxRange(name)
	if maxRange > 0 && hexDistance > maxRange {
		return fmt.Errorf("%w: %s reaches %d hexes, target is at %d", ErrOutOfRange, name, maxRange, hexDistance)
	}
	return nil
}

// RangeDifficultyModifier returns the distance-scaled difficulty
// increase for the action.
func (c *Catalog) RangeDifficultyModifier(name string, hexDistance int) int {
	if hexDistance < 0 {
		hexDistance = 0
	}
	return hexDistance * c.DifficultyPerRange(name)
}
