package game

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sort"
)

// Keybind action names. Stored settings key on these.
const (
	ActionMoveUp       = "moveUp"
	ActionMoveDown     = "moveDown"
	ActionMoveLeft     = "moveLeft"
	ActionMoveRight    = "moveRight"
	ActionZoomIn       = "zoomIn"
	ActionZoomOut      = "zoomOut"
	ActionToggleView   = "toggleView"
	ActionAttack       = "attack"
	ActionCenterCamera = "centerCamera"
	ActionReplaySlower = "replaySlower"
	ActionReplayFaster = "replayFaster"
	ActionModifier     = "modifierKey"
	ActionAlt          = "altKey"
	ActionBuild1       = "build1"
	ActionBuild2       = "build2"
	ActionBuild3       = "build3"
	ActionBuild4       = "build4"
	ActionBuild5       = "build5"
)

// keybindUnbound is the sentinel stored for an explicitly unbound
// action. It is rejected on load: the hardcoded default stays active.
const keybindUnbound = "Null"

// Keybinds maps action names to physical key codes ("KeyW", "ArrowUp",
// browser-style). Defaults are always complete; persisted overrides
// are merged on top after validation.
type Keybinds struct {
	byAction map[string]string
	byCode   map[string]string
}

// DefaultKeybinds returns the hardcoded bindings. The modifier key
// defaults to Cmd on macOS and Ctrl elsewhere.
func DefaultKeybinds() *Keybinds {
	modifier := "ControlLeft"
	if runtime.GOOS == "darwin" {
		modifier = "MetaLeft"
	}
	kb := &Keybinds{byAction: map[string]string{
		ActionMoveUp:       "KeyW",
		ActionMoveDown:     "KeyS",
		ActionMoveLeft:     "KeyA",
		ActionMoveRight:    "KeyD",
		ActionZoomIn:       "KeyE",
		ActionZoomOut:      "KeyQ",
		ActionToggleView:   "Space",
		ActionAttack:       "KeyF",
		ActionCenterCamera: "KeyC",
		ActionReplaySlower: "Comma",
		ActionReplayFaster: "Period",
		ActionModifier:     modifier,
		ActionAlt:          "AltLeft",
		ActionBuild1:       "Digit1",
		ActionBuild2:       "Digit2",
		ActionBuild3:       "Digit3",
		ActionBuild4:       "Digit4",
		ActionBuild5:       "Digit5",
	}}
	kb.reindex()
	return kb
}

// LoadKeybinds reads persisted overrides from path and merges them
// over the defaults. Any malformed content is logged and ignored;
// defaults are always available. A missing file is not an error.
func LoadKeybinds(path string) *Keybinds {
	kb := DefaultKeybinds()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("keybinds: read %s: %v", path, err)
		}
		return kb
	}
	overrides, err := parseKeybindOverrides(data)
	if err != nil {
		log.Printf("keybinds: malformed %s: %v (using defaults)", path, err)
		return kb
	}
	for action, code := range overrides {
		kb.byAction[action] = code
	}
	kb.reindex()
	return kb
}

// KeybindsPath returns the per-user settings file location.
func KeybindsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "keybinds.json"
	}
	return filepath.Join(dir, "landgrab", "keybinds.json")
}

// parseKeybindOverrides decodes the stored flat string map. Two legacy
// shapes are tolerated per entry: a plain string value, and the old
// nested object form {"key": <action>, "value": <code>}. Non-string
// values and the "Null" unbound sentinel are rejected entry-by-entry.
func parseKeybindOverrides(data []byte) (map[string]string, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(raw))
	for action, v := range raw {
		code, ok := keybindValue(v)
		if !ok {
			log.Printf("keybinds: ignoring %q: unusable value %v", action, v)
			continue
		}
		out[action] = code
	}
	return out, nil
}

func keybindValue(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		if val == "" || val == keybindUnbound {
			return "", false
		}
		return val, true
	case map[string]any:
		// Legacy nested form.
		if inner, ok := val["value"]; ok {
			return keybindValue(inner)
		}
	}
	return "", false
}

// Code returns the key code bound to an action.
func (kb *Keybinds) Code(action string) string {
	return kb.byAction[action]
}

// Action returns the action bound to a key code, or "".
func (kb *Keybinds) Action(code string) string {
	return kb.byCode[code]
}

// reindex rebuilds the code-to-action index. Actions are applied in
// sorted order, so when two actions share a code the lexicographically
// last action wins on every run.
func (kb *Keybinds) reindex() {
	actions := make([]string, 0, len(kb.byAction))
	for action := range kb.byAction {
		actions = append(actions, action)
	}
	sort.Strings(actions)
	kb.byCode = make(map[string]string, len(actions))
	for _, action := range actions {
		kb.byCode[kb.byAction[action]] = action
	}
}
