package webserver

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"regexp"
	"time"

	"github.com/dh1tw/dspout/audio"
	"github.com/gorilla/mux"
)

// Output is implemented by the audio output stage which is controlled
// through the webserver.
type Output interface {
	SetOutputBackend(kind, deviceID string) error
	Backend() (kind, deviceID string)
	Kinds() []string
	Stats() audio.Stats
}

// VolumeControl gives access to the output volume.
type VolumeControl interface {
	Set(float32)
	Volume() float32
}

// WebServer provides a REST API and a websocket to control the audio
// output at runtime.
type WebServer struct {
	url            string
	apiVersion     string
	apiMatch       *regexp.Regexp
	router         *mux.Router
	output         Output
	volume         VolumeControl
	statusInterval time.Duration
	wsClients      map[*wsClient]struct{}
	addWsClient    chan *wsClient
	removeWsClient chan *wsClient
	update         chan struct{}
	done           chan struct{}
}

// NewWebServer returns a WebServer listening on url (e.g. "localhost:8080").
func NewWebServer(url string, output Output, volume VolumeControl) *WebServer {

	web := &WebServer{
		url:            url,
		apiVersion:     "1.0",
		apiMatch:       regexp.MustCompile(`api/v\d+\.\d+`),
		router:         mux.NewRouter().StrictSlash(true),
		output:         output,
		volume:         volume,
		statusInterval: time.Second,
		wsClients:      make(map[*wsClient]struct{}),
		addWsClient:    make(chan *wsClient),
		removeWsClient: make(chan *wsClient),
		update:         make(chan struct{}, 1),
		done:           make(chan struct{}),
	}

	web.routes()

	return web
}

// Handler returns the http.Handler serving the API.
func (web *WebServer) Handler() http.Handler {
	return web.apiRedirectRouter(web.router)
}

// Start launches the websocket hub and the http server. It blocks until
// ctx is canceled or the http server fails.
func (web *WebServer) Start(ctx context.Context) error {

	go web.runHub(ctx)

	srv := &http.Server{
		Addr:              web.url,
		Handler:           web.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("webserver listening on %s\n", web.url)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// runHub keeps track of the websocket clients and sends them the current
// state whenever it changed and periodically.
func (web *WebServer) runHub(ctx context.Context) {

	ticker := time.NewTicker(web.statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			close(web.done)
			for c := range web.wsClients {
				close(c.send)
			}
			return

		case c := <-web.addWsClient:
			web.wsClients[c] = struct{}{}
			web.sendState(c)

		case c := <-web.removeWsClient:
			if _, ok := web.wsClients[c]; ok {
				delete(web.wsClients, c)
				close(c.send)
			}

		case <-web.update:
			web.broadcastState()

		case <-ticker.C:
			web.broadcastState()
		}
	}
}

// updateWsClients signals the hub that the state has changed.
func (web *WebServer) updateWsClients() {
	select {
	case web.update <- struct{}{}:
	default:
	}
}

func (web *WebServer) state() State {
	kind, device := web.output.Backend()
	return State{
		Volume:  int(web.volume.Volume()*100 + 0.5),
		Backend: Backend{Kind: &kind, Device: &device},
		Stats:   web.output.Stats(),
	}
}

func (web *WebServer) broadcastState() {
	if len(web.wsClients) == 0 {
		return
	}
	for c := range web.wsClients {
		web.sendState(c)
	}
}

func (web *WebServer) sendState(c *wsClient) {
	data, err := json.Marshal(web.state())
	if err != nil {
		log.Println(err)
		return
	}
	// slow clients miss updates instead of blocking the hub
	select {
	case c.send <- data:
	default:
	}
}
