// Command bf2-server runs the BF2 facade mesh engine behind an HTTP API.
package main

import (
	"log"
	"net/http"

	"github.com/arxos/bf2/internal/api"
	"github.com/arxos/bf2/internal/apiauth"
	"github.com/arxos/bf2/internal/config"
	"github.com/arxos/bf2/internal/store"
)

func main() {
	cfg := config.FromEnv()

	st, err := store.Open(cfg)
	if err != nil {
		log.Fatalf("bf2-server: failed to open store: %v", err)
	}
	defer st.Close()

	auth := apiauth.NewIssuer(cfg.JWTSecret, 0)
	server := api.NewServer(st, auth, cfg.CORSOrigins)

	log.Printf("bf2-server: listening on %s", cfg.ListenAddr)
	if err := http.ListenAndServe(cfg.ListenAddr, server); err != nil {
		log.Fatalf("bf2-server: server exited: %v", err)
	}
}
