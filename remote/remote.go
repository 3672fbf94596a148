// Package remote allows controlling the audio output through a NATS
// message broker. Volume and output backend can be changed by sending
// requests to <subject>.volume and <subject>.backend; the current state is
// published periodically on <subject>.state.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/dh1tw/dspout/audio"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// Output is implemented by the audio output stage which is controlled
// through NATS.
type Output interface {
	SetOutputBackend(kind, deviceID string) error
	Backend() (kind, deviceID string)
	Stats() audio.Stats
}

// VolumeControl gives access to the output volume.
type VolumeControl interface {
	Set(float32)
	Volume() float32
}

// VolumeMsg sets the linear output volume [0...1].
type VolumeMsg struct {
	Volume *float32 `json:"volume,omitempty"`
}

// BackendMsg selects a new output backend.
type BackendMsg struct {
	Kind   *string `json:"kind,omitempty"`
	Device *string `json:"device,omitempty"`
}

// Reply is sent in response to every request.
type Reply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// StateMsg is published periodically.
type StateMsg struct {
	ID      string      `json:"id"`
	Volume  float32     `json:"volume"`
	Kind    string      `json:"kind"`
	Device  string      `json:"device"`
	Stats   audio.Stats `json:"stats"`
	Updated time.Time   `json:"updated"`
}

// Remote subscribes to the control subjects on a NATS broker.
type Remote struct {
	options Options
	id      string
	output  Output
	volume  VolumeControl
	conn    *nats.Conn
}

// NewRemote returns a Remote controlling output and volume.
func NewRemote(output Output, volume VolumeControl, opts ...Option) *Remote {
	r := &Remote{
		options: Options{
			URL:           nats.DefaultURL,
			Subject:       "dspout",
			StateInterval: time.Second * 5,
		},
		id:     uuid.New().String(),
		output: output,
		volume: volume,
	}

	for _, option := range opts {
		option(&r.options)
	}

	return r
}

// ID returns the unique id of this instance which is contained in every
// state message.
func (r *Remote) ID() string {
	return r.id
}

// Run connects to the broker and serves requests until ctx is canceled.
func (r *Remote) Run(ctx context.Context) error {

	nopts := nats.GetDefaultOptions()
	nopts.Servers = []string{r.options.URL}
	nopts.User = r.options.Username
	nopts.Password = r.options.Password
	nopts.Name = r.options.Subject + ":" + r.id
	nopts.MaxReconnect = -1
	nopts.DisconnectedErrCB = func(_ *nats.Conn, err error) {
		if err != nil {
			log.Println("nats disconnected:", err)
		}
	}
	nopts.ReconnectedCB = func(nc *nats.Conn) {
		log.Println("nats reconnected to", nc.ConnectedUrl())
	}

	conn, err := nopts.Connect()
	if err != nil {
		return fmt.Errorf("unable to connect to nats broker %s: %w", r.options.URL, err)
	}
	r.conn = conn
	defer conn.Drain()

	subs := map[string]func([]byte) Reply{
		r.options.Subject + ".volume":  r.applyVolume,
		r.options.Subject + ".backend": r.applyBackend,
	}

	for subject, apply := range subs {
		_, err := conn.Subscribe(subject, func(msg *nats.Msg) {
			reply := apply(msg.Data)
			r.publishState()
			if msg.Reply == "" {
				return
			}
			data, err := json.Marshal(reply)
			if err != nil {
				log.Println(err)
				return
			}
			if err := msg.Respond(data); err != nil {
				log.Println(err)
			}
		})
		if err != nil {
			return fmt.Errorf("unable to subscribe to %s: %w", subject, err)
		}
	}

	log.Printf("listening for control messages on %s.*\n", r.options.Subject)

	ticker := time.NewTicker(r.options.StateInterval)
	defer ticker.Stop()

	r.publishState()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.publishState()
		}
	}
}

func (r *Remote) applyVolume(data []byte) Reply {
	var msg VolumeMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return Reply{Error: "invalid JSON"}
	}
	if msg.Volume == nil || *msg.Volume < 0 || *msg.Volume > 1 {
		return Reply{Error: "volume must be within [0...1]"}
	}
	r.volume.Set(*msg.Volume)
	return Reply{OK: true}
}

func (r *Remote) applyBackend(data []byte) Reply {
	var msg BackendMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return Reply{Error: "invalid JSON"}
	}
	if msg.Kind == nil {
		return Reply{Error: "sink kind missing"}
	}
	device := "default"
	if msg.Device != nil {
		device = *msg.Device
	}
	if err := r.output.SetOutputBackend(*msg.Kind, device); err != nil {
		return Reply{Error: err.Error()}
	}
	return Reply{OK: true}
}

func (r *Remote) state() StateMsg {
	kind, device := r.output.Backend()
	return StateMsg{
		ID:      r.id,
		Volume:  r.volume.Volume(),
		Kind:    kind,
		Device:  device,
		Stats:   r.output.Stats(),
		Updated: time.Now(),
	}
}

func (r *Remote) publishState() {
	if r.conn == nil {
		return
	}
	data, err := json.Marshal(r.state())
	if err != nil {
		log.Println(err)
		return
	}
	if err := r.conn.Publish(r.options.Subject+".state", data); err != nil {
		log.Println(err)
	}
}
