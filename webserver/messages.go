package webserver

import "github.com/dh1tw/dspout/audio"

// AudioControlVolume is used to get / set the output volume in percent.
type AudioControlVolume struct {
	Volume *int `json:"volume,omitempty"`
}

// Backend describes an output backend (sink kind and audio device).
type Backend struct {
	Kind   *string `json:"kind,omitempty"`
	Device *string `json:"device,omitempty"`
}

// Sinks lists the available sink kinds and the active backend.
type Sinks struct {
	Kinds  []string `json:"kinds"`
	Active Backend  `json:"active"`
}

// State is pushed to the websocket clients.
type State struct {
	Volume  int         `json:"volume"`
	Backend Backend     `json:"backend"`
	Stats   audio.Stats `json:"stats"`
}
