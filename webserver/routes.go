package webserver

func (web *WebServer) routes() {
	web.router.HandleFunc("/api/v1.0/volume", web.volumeHdlr)
	web.router.HandleFunc("/api/v1.0/sinks", web.sinksHdlr).Methods("GET")
	web.router.HandleFunc("/api/v1.0/backend", web.backendHdlr)
	web.router.HandleFunc("/api/v1.0/stats", web.statsHdlr).Methods("GET")
	web.router.HandleFunc("/ws", web.webSocketHdlr)
}
