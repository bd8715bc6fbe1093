// Package api is the BF2 HTTP service shell: it exposes the facade/
// engine pipeline over chi, the way the composition engine's
// ArxObjectAdapter exposes ComposeWalls to its callers: validate,
// delegate to the engine, wrap errors, never duplicate engine logic.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/arxos/bf2/facade/engine"
	"github.com/arxos/bf2/facade/mesh"
	"github.com/arxos/bf2/facade/mesherr"
	"github.com/arxos/bf2/facade/spec"
	"github.com/arxos/bf2/internal/api/ratelimit"
	"github.com/arxos/bf2/internal/apiauth"
	"github.com/arxos/bf2/internal/progress"
	"github.com/arxos/bf2/internal/store"
)

// Server bundles the dependencies every handler needs.
type Server struct {
	Store   *store.Store
	Auth    *apiauth.Issuer
	Limiter *ratelimit.Limiter
	Hub     *progress.Hub
	router  chi.Router
}

// NewServer wires the chi router, rs/cors middleware, and route table.
func NewServer(st *store.Store, auth *apiauth.Issuer, corsOrigins []string) *Server {
	s := &Server{
		Store:   st,
		Auth:    auth,
		Limiter: ratelimit.New(),
		Hub:     progress.NewHub(progress.DefaultServerConfig()),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler)
	r.Use(s.Limiter.Middleware(s.callerKeyAndTier))

	r.Get("/healthz", s.handleHealth)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/keys", s.handleCreateAPIKey)
		r.Post("/token", s.handleExchangeAPIKey)
	})
	r.Route("/builds", func(r chi.Router) {
		r.Post("/", s.handleCreateBuild)
		r.Get("/{buildID}", s.handleGetBuild)
		r.Get("/{buildID}/progress", s.handleBuildProgress)
	})
	r.Route("/materials", func(r chi.Router) {
		r.Get("/", s.handleListMaterials)
		r.Post("/", s.handleUpsertMaterial)
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) callerKeyAndTier(r *http.Request) (string, ratelimit.Tier) {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && auth[:7] == "Bearer " {
		claims, err := s.Auth.Verify(auth[7:])
		if err == nil {
			return claims.UserID.String(), ratelimit.Tier(claims.Tier)
		}
	}
	return r.RemoteAddr, ratelimit.TierAnonymous
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Health(); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateBuild accepts a BuildingSpec, persists it, runs the BF2
// pipeline synchronously, and returns the resulting mesh summary or the
// BuildError that stopped it.
func (s *Server) handleCreateBuild(w http.ResponseWriter, r *http.Request) {
	var bs spec.BuildingSpec
	if err := json.NewDecoder(r.Body).Decode(&bs); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid building spec: %w", err))
		return
	}

	ownerID := s.ownerIDFromRequest(r)
	buildID, err := s.Store.CreateBuild(ownerID, bs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	cfg := engine.DefaultBuildConfig()
	cfg.EmitDebugTrace = true
	broadcast := s.Hub.OnState(buildID)
	onState := func(st engine.State) {
		broadcast(st)
		if err := s.Store.UpdateBuildStatus(buildID, st.String()); err != nil {
			log.Printf("api: failed to persist build status: %v", err)
		}
	}

	m, warnings, buildErr := engine.Build(bs, cfg, onState)
	if buildErr != nil {
		var be *mesherr.BuildError
		if errors.As(buildErr, &be) {
			if err := s.Store.FailBuild(buildID, be); err != nil {
				log.Printf("api: failed to record build failure: %v", err)
			}
			writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
				"build_id": buildID,
				"error":    be.Error(),
				"kind":     be.Kind.String(),
			})
			return
		}
		writeError(w, http.StatusInternalServerError, buildErr)
		return
	}

	summary := mesh.Summarize(m)
	if err := s.Store.CompleteBuild(buildID, summary, warnings); err != nil {
		log.Printf("api: failed to record build completion: %v", err)
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"build_id": buildID,
		"summary":  summary.String(),
		"warnings": warnings,
	})
}

func (s *Server) handleGetBuild(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "buildID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid build id: %w", err))
		return
	}
	rec, err := s.Store.GetBuild(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleBuildProgress(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "buildID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid build id: %w", err))
		return
	}
	s.Hub.ServeHTTP(id, w, r)
}

type createAPIKeyRequest struct {
	Label string `json:"label"`
	Tier  string `json:"tier"`
}

// handleCreateAPIKey mints a new API key: a random secret, returned to
// the caller exactly once, with only its bcrypt hash persisted.
func (s *Server) handleCreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req createAPIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid api key request: %w", err))
		return
	}
	if req.Tier == "" {
		req.Tier = string(ratelimit.TierFree)
	}
	if _, ok := ratelimit.TierConfigs[ratelimit.Tier(req.Tier)]; !ok {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown tier %q", req.Tier))
		return
	}

	ownerID := s.ownerIDFromRequest(r)
	secret := uuid.NewString()
	hash, err := apiauth.HashPassword(secret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	keyID, err := s.Store.CreateAPIKey(ownerID, req.Label, req.Tier, hash)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"key_id":  keyID.String(),
		"api_key": fmt.Sprintf("%s.%s", keyID, secret),
	})
}

type exchangeTokenRequest struct {
	APIKey string `json:"api_key"`
}

// handleExchangeAPIKey verifies a "<key id>.<secret>" credential against
// its stored bcrypt hash and issues a JWT for the key's owner and tier.
func (s *Server) handleExchangeAPIKey(w http.ResponseWriter, r *http.Request) {
	var req exchangeTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid token request: %w", err))
		return
	}
	parts := strings.SplitN(req.APIKey, ".", 2)
	if len(parts) != 2 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("malformed api key"))
		return
	}
	keyID, err := uuid.Parse(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("malformed api key id: %w", err))
		return
	}

	rec, err := s.Store.GetAPIKey(keyID)
	if err != nil || !apiauth.CheckPassword(rec.KeyHash, parts[1]) {
		writeError(w, http.StatusUnauthorized, fmt.Errorf("invalid api key"))
		return
	}
	if err := s.Store.TouchAPIKey(rec.ID); err != nil {
		log.Printf("api: failed to record api key use: %v", err)
	}

	token, err := s.Auth.Issue(rec.OwnerID, rec.Tier)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleListMaterials(w http.ResponseWriter, r *http.Request) {
	materials, err := s.Store.ListMaterials()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, materials)
}

type upsertMaterialRequest struct {
	MaterialID string `json:"material_id"`
	Name       string `json:"name"`
	TextureURL string `json:"texture_url"`
}

func (s *Server) handleUpsertMaterial(w http.ResponseWriter, r *http.Request) {
	var req upsertMaterialRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid material: %w", err))
		return
	}
	if err := s.Store.UpsertMaterial(spec.MaterialID(req.MaterialID), req.Name, req.TextureURL); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) ownerIDFromRequest(r *http.Request) uuid.UUID {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && auth[:7] == "Bearer " {
		if claims, err := s.Auth.Verify(auth[7:]); err == nil {
			return claims.UserID
		}
	}
	return uuid.New() // anonymous callers get a synthetic owner id for this build
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
