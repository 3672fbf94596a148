package webserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/dh1tw/dspout/audio"
)

func (web *WebServer) volumeHdlr(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")

	switch req.Method {
	case "GET":
		vol := int(web.volume.Volume()*100 + 0.5)
		volCtlMsg := &AudioControlVolume{
			Volume: &vol,
		}
		if err := json.NewEncoder(w).Encode(volCtlMsg); err != nil {
			log.Println(err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("500 - unable to encode AudioControlVolume msg"))
		}

	case "PUT":
		var volCtlMsg AudioControlVolume
		dec := json.NewDecoder(req.Body)

		if err := dec.Decode(&volCtlMsg); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("400 - invalid JSON"))
			return
		}
		if volCtlMsg.Volume == nil || *volCtlMsg.Volume < 0 || *volCtlMsg.Volume > 100 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("400 - invalid Request"))
			return
		}
		web.volume.Set(float32(*volCtlMsg.Volume) / 100)
		web.updateWsClients()

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (web *WebServer) sinksHdlr(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")

	kind, device := web.output.Backend()
	sinksMsg := &Sinks{
		Kinds:  web.output.Kinds(),
		Active: Backend{Kind: &kind, Device: &device},
	}

	if err := json.NewEncoder(w).Encode(sinksMsg); err != nil {
		log.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("500 - unable to encode Sinks msg"))
	}
}

func (web *WebServer) backendHdlr(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")

	switch req.Method {
	case "GET":
		kind, device := web.output.Backend()
		if err := json.NewEncoder(w).Encode(&Backend{Kind: &kind, Device: &device}); err != nil {
			log.Println(err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("500 - unable to encode Backend msg"))
		}

	case "PUT":
		var backendMsg Backend
		dec := json.NewDecoder(req.Body)

		if err := dec.Decode(&backendMsg); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("400 - invalid JSON"))
			return
		}
		if backendMsg.Kind == nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("400 - invalid Request"))
			return
		}
		device := "default"
		if backendMsg.Device != nil {
			device = *backendMsg.Device
		}

		err := web.output.SetOutputBackend(*backendMsg.Kind, device)
		switch {
		case errors.Is(err, audio.ErrUnknownSink):
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(fmt.Sprintf("400 - %v", err)))
			return
		case err != nil:
			log.Println(err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(fmt.Sprintf("500 - unable to set output backend %s", *backendMsg.Kind)))
			return
		}
		web.updateWsClients()

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (web *WebServer) statsHdlr(w http.ResponseWriter, req *http.Request) {
	defer req.Body.Close()
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")

	if err := json.NewEncoder(w).Encode(web.output.Stats()); err != nil {
		log.Println(err)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("500 - unable to encode Stats msg"))
	}
}
