package audio

import "sync/atomic"

type stats struct {
	pushed    atomic.Uint64
	dropped   atomic.Uint64
	callbacks atomic.Uint64
	underruns atomic.Uint64
	padded    atomic.Uint64
}

// Stats is a snapshot of the OutputStage counters.
type Stats struct {
	Pushed    uint64 `json:"pushed"`    // sample pairs accepted by the queue
	Dropped   uint64 `json:"dropped"`   // sample pairs dropped on overflow
	Callbacks uint64 `json:"callbacks"` // device buffers served
	Underruns uint64 `json:"underruns"` // device buffers which had to be padded
	Padded    uint64 `json:"padded"`    // sample pairs padded with the last frame
	Buffered  int    `json:"buffered"`
}

// Stats returns the current counters of the OutputStage.
func (s *OutputStage) Stats() Stats {
	return Stats{
		Pushed:    s.stats.pushed.Load(),
		Dropped:   s.stats.dropped.Load(),
		Callbacks: s.stats.callbacks.Load(),
		Underruns: s.stats.underruns.Load(),
		Padded:    s.stats.padded.Load(),
		Buffered:  s.queue.Len(),
	}
}
