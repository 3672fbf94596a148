package webserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dh1tw/dspout/audio"
	"github.com/dh1tw/dspout/config"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutput struct {
	sync.Mutex
	kind, device string
}

func (o *fakeOutput) SetOutputBackend(kind, device string) error {
	switch kind {
	case "null", "wav":
	case "portaudio":
		return fmt.Errorf("device %s busy", device)
	default:
		return fmt.Errorf("%w %s", audio.ErrUnknownSink, kind)
	}
	o.Lock()
	defer o.Unlock()
	o.kind, o.device = kind, device
	return nil
}

func (o *fakeOutput) Backend() (string, string) {
	o.Lock()
	defer o.Unlock()
	return o.kind, o.device
}

func (o *fakeOutput) Kinds() []string { return []string{"null", "portaudio", "wav"} }

func (o *fakeOutput) Stats() audio.Stats { return audio.Stats{Pushed: 160, Underruns: 2} }

func newTestServer(t *testing.T) (*httptest.Server, *fakeOutput, *config.Volume) {
	t.Helper()
	out := &fakeOutput{kind: "null", device: "default"}
	vol := config.NewVolume(0.5)
	web := NewWebServer("", out, vol)

	ctx, cancel := context.WithCancel(context.Background())
	go web.runHub(ctx)

	srv := httptest.NewServer(web.Handler())
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv, out, vol
}

func do(t *testing.T, method, url, body string) (int, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(data)
}

func TestVolumeHdlr(t *testing.T) {
	srv, _, vol := newTestServer(t)

	code, body := do(t, "GET", srv.URL+"/api/v1.0/volume", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"volume": 50}`, body)

	code, _ = do(t, "PUT", srv.URL+"/api/v1.0/volume", `{"volume": 80}`)
	assert.Equal(t, http.StatusOK, code)
	assert.InDelta(t, 0.8, vol.Volume(), 1e-6)

	code, _ = do(t, "PUT", srv.URL+"/api/v1.0/volume", `{"volume": 101}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, "PUT", srv.URL+"/api/v1.0/volume", `{"volume":`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, "DELETE", srv.URL+"/api/v1.0/volume", "")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}

func TestUnversionedAPI(t *testing.T) {
	srv, _, _ := newTestServer(t)

	code, body := do(t, "GET", srv.URL+"/api/volume", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"volume": 50}`, body)
}

func TestSinksHdlr(t *testing.T) {
	srv, _, _ := newTestServer(t)

	code, body := do(t, "GET", srv.URL+"/api/v1.0/sinks", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"kinds":["null","portaudio","wav"],"active":{"kind":"null","device":"default"}}`, body)
}

func TestBackendHdlr(t *testing.T) {
	srv, out, _ := newTestServer(t)

	code, _ := do(t, "PUT", srv.URL+"/api/v1.0/backend", `{"kind":"wav","device":"/tmp/out.wav"}`)
	assert.Equal(t, http.StatusOK, code)
	kind, device := out.Backend()
	assert.Equal(t, "wav", kind)
	assert.Equal(t, "/tmp/out.wav", device)

	code, body := do(t, "GET", srv.URL+"/api/v1.0/backend", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"kind":"wav","device":"/tmp/out.wav"}`, body)

	code, _ = do(t, "PUT", srv.URL+"/api/v1.0/backend", `{"kind":"null"}`)
	assert.Equal(t, http.StatusOK, code)
	_, device = out.Backend()
	assert.Equal(t, "default", device)

	code, body = do(t, "PUT", srv.URL+"/api/v1.0/backend", `{"kind":"alsa"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body, "unknown sink alsa")

	code, _ = do(t, "PUT", srv.URL+"/api/v1.0/backend", `{"kind":"portaudio"}`)
	assert.Equal(t, http.StatusInternalServerError, code)

	code, _ = do(t, "PUT", srv.URL+"/api/v1.0/backend", `{"device":"x"}`)
	assert.Equal(t, http.StatusBadRequest, code)

	kind, _ = out.Backend()
	assert.Equal(t, "null", kind)
}

func TestStatsHdlr(t *testing.T) {
	srv, _, _ := newTestServer(t)

	code, body := do(t, "GET", srv.URL+"/api/v1.0/stats", "")
	assert.Equal(t, http.StatusOK, code)

	var st audio.Stats
	require.NoError(t, json.Unmarshal([]byte(body), &st))
	assert.Equal(t, uint64(160), st.Pushed)
	assert.Equal(t, uint64(2), st.Underruns)
}

func TestWebSocket(t *testing.T) {
	srv, _, vol := newTestServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var st State
	require.NoError(t, conn.ReadJSON(&st))
	assert.Equal(t, 50, st.Volume)
	require.NotNil(t, st.Backend.Kind)
	assert.Equal(t, "null", *st.Backend.Kind)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"volume": 20}`)))

	assert.Eventually(t, func() bool {
		return vol.Volume() > 0.19 && vol.Volume() < 0.21
	}, 2*time.Second, 5*time.Millisecond)

	// the change is pushed back to the client
	for {
		require.NoError(t, conn.ReadJSON(&st))
		if st.Volume == 20 {
			break
		}
	}
}
