// Package action decodes tile interaction payloads into typed actions.
package action

import (
	"encoding/json"
	"fmt"
)

// Action is a decoded tile action. The concrete type identifies which
// tile kind was pressed.
type Action interface {
	action()
}

// RecordingOp names the recording sub-actions a tile can be configured with.
type RecordingOp string

const (
	RecordStartStop   RecordingOp = "StartStop"
	RecordStart       RecordingOp = "Start"
	RecordStop        RecordingOp = "Stop"
	RecordPauseResume RecordingOp = "PauseResume"
	RecordPause       RecordingOp = "Pause"
	RecordResume      RecordingOp = "Resume"
)

type StreamOp string

const (
	StreamStartStop StreamOp = "StartStop"
	StreamStart     StreamOp = "Start"
	StreamStop      StreamOp = "Stop"
)

type VirtualCamOp string

const (
	VirtualCamStartStop VirtualCamOp = "StartStop"
	VirtualCamStart     VirtualCamOp = "Start"
	VirtualCamStop      VirtualCamOp = "Stop"
)

// Recording controls the recording output. An empty Action means the tile
// has not been configured yet.
type Recording struct {
	Action RecordingOp `json:"action"`
}

type Streaming struct {
	Action StreamOp `json:"action"`
}

type VirtualCamera struct {
	Action VirtualCamOp `json:"action"`
}

// SwitchScene switches the program scene to the scene with the given uuid.
type SwitchScene struct {
	Scene string `json:"scene"`
}

// SwitchProfile switches the active OBS profile by name.
type SwitchProfile struct {
	Profile string `json:"profile"`
}

func (*Recording) action()     {}
func (*Streaming) action()     {}
func (*VirtualCamera) action() {}
func (*SwitchScene) action()   {}
func (*SwitchProfile) action() {}

// Decode maps an action identifier and its tile properties to a typed
// action. An unknown identifier returns (nil, nil) so the caller can
// silently ignore tiles that belong to nobody.
func Decode(actionID string, properties json.RawMessage) (Action, error) {
	var dst Action

	switch actionID {
	case "recording":
		dst = &Recording{}
	case "streaming":
		dst = &Streaming{}
	case "virtual_camera":
		dst = &VirtualCamera{}
	case "switch_scene":
		dst = &SwitchScene{}
	case "switch_profile":
		dst = &SwitchProfile{}
	default:
		return nil, nil
	}

	if len(properties) > 0 {
		if err := json.Unmarshal(properties, dst); err != nil {
			return nil, fmt.Errorf("decode %s properties: %w", actionID, err)
		}
	}
	return dst, nil
}
