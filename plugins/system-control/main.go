// Package main is the system-control plugin: macOS output volume via AppleScript.
package main

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"slices"
)

// Request represents the input from the plugin executor.
type Request struct {
	Action  string          `json:"action"`
	Gesture string          `json:"gesture"`
	Config  json.RawMessage `json:"config"`
	Params  json.RawMessage `json:"params"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// options is read from the binding config. Zero values fall back to defaults.
type options struct {
	Step  int  `json:"step"`
	Level *int `json:"level"`
}

const defaultStep = 10

// scriptBuilder returns the AppleScript for an action.
type scriptBuilder func(opts options) (string, error)

var actions = map[string]scriptBuilder{
	"volume-up":   volumeUp,
	"volume-down": volumeDown,
	"volume-mute": volumeMute,
	"volume-set":  volumeSet,

	"volume-roulette": volumeRoulette,
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode request: %v", err)})
		return
	}

	script, err := buildScript(req)
	if err != nil {
		writeResponse(Response{Error: err.Error()})
		return
	}

	if err := runAppleScript(script); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("action %s failed: %v", req.Action, err)})
		return
	}

	writeResponse(Response{Success: true})
}

// buildScript resolves the action and its options into a script.
func buildScript(req Request) (string, error) {
	build, ok := actions[req.Action]
	if !ok {
		return "", fmt.Errorf("unknown action: %s", req.Action)
	}

	var opts options
	if len(req.Config) > 0 {
		if err := json.Unmarshal(req.Config, &opts); err != nil {
			return "", fmt.Errorf("invalid config: %v", err)
		}
	}
	return build(opts)
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}

func runAppleScript(script string) error {
	cmd := exec.Command("osascript", "-e", script)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}

func step(opts options) int {
	if opts.Step <= 0 {
		return defaultStep
	}
	return clampVolume(opts.Step)
}

// clampVolume bounds a level to the 0-100 range osascript accepts.
func clampVolume(level int) int {
	return max(0, min(100, level))
}

func volumeUp(opts options) (string, error) {
	return fmt.Sprintf(`set volume output volume ((output volume of (get volume settings)) + %d)`, step(opts)), nil
}

func volumeDown(opts options) (string, error) {
	return fmt.Sprintf(`set volume output volume ((output volume of (get volume settings)) - %d)`, step(opts)), nil
}

func volumeMute(options) (string, error) {
	return `set volume output muted (not (output muted of (get volume settings)))`, nil
}

func volumeSet(opts options) (string, error) {
	if opts.Level == nil {
		return "", fmt.Errorf("volume-set requires a level")
	}
	return fmt.Sprintf(`set volume output volume %d`, clampVolume(*opts.Level)), nil
}

// spin is one roulette result: the pocket, the change applied on red or
// black, and the level set on green.
type spin struct {
	Number int
	Change int
	Level  int
}

// spinWheel draws a pocket in 0-36, a change in 10-30 and a level in 0-100.
var spinWheel = func() spin {
	return spin{
		Number: rand.IntN(37),
		Change: 10 + rand.IntN(21),
		Level:  rand.IntN(101),
	}
}

var redPockets = []int{1, 3, 5, 7, 9, 12, 14, 16, 18, 19, 21, 23, 25, 27, 30, 32, 34, 36}

func pocketColor(n int) string {
	switch {
	case n == 0:
		return "green"
	case slices.Contains(redPockets, n):
		return "red"
	default:
		return "black"
	}
}

// volumeRoulette raises the volume on red, lowers it on black and sets a
// random level on green.
func volumeRoulette(options) (string, error) {
	return rouletteScript(spinWheel()), nil
}

func rouletteScript(s spin) string {
	switch pocketColor(s.Number) {
	case "green":
		return fmt.Sprintf(`set volume output volume %d`, clampVolume(s.Level))
	case "red":
		return fmt.Sprintf(`set volume output volume ((output volume of (get volume settings)) + %d)`, s.Change)
	default:
		return fmt.Sprintf(`set volume output volume ((output volume of (get volume settings)) - %d)`, s.Change)
	}
}
