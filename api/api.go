package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/okulov/cipherpost/api/middleware"
	"github.com/okulov/cipherpost/api/rest"
	"github.com/okulov/cipherpost/api/ws"
	"github.com/okulov/cipherpost/cache"
	"github.com/okulov/cipherpost/service"
	"github.com/okulov/cipherpost/store"
	"github.com/okulov/cipherpost/web"
)

type CipherPostAPI struct {
	restHandler *rest.Handler
	wsHandler   *ws.Handler
	limiter     *middleware.LimiterStore
	shutdownCtx context.Context
}

func NewCipherPostAPI(blobStore store.BlobStore, inboxCache cache.InboxCache, shutdownCtx context.Context) *CipherPostAPI {
	wsHub := ws.NewHub(inboxCache)
	go wsHub.Run()

	svc := service.NewService(blobStore, inboxCache)

	return &CipherPostAPI{
		restHandler: rest.NewHandler(svc),
		wsHandler:   ws.NewHandler(wsHub),
		limiter:     middleware.NewLimiterStore(120, 30, 5*time.Minute),
		shutdownCtx: shutdownCtx,
	}
}

func (cipherPostAPI *CipherPostAPI) RegisterRoutes(router *mux.Router, allowedOrigin string) {
	// Health check endpoint (not rate limited)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods(http.MethodGet)

	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(cipherPostAPI.limiter.Middleware)
	apiRouter.HandleFunc("/test", cipherPostAPI.restHandler.HandleTest).Methods(http.MethodGet)
	apiRouter.HandleFunc("/messages/send", cipherPostAPI.restHandler.HandleSend).Methods(http.MethodPost)
	apiRouter.HandleFunc("/messages/decrypt", cipherPostAPI.restHandler.HandleDecrypt).Methods(http.MethodPost)
	apiRouter.HandleFunc("/messages/{username}", cipherPostAPI.restHandler.HandleList).Methods(http.MethodGet)

	wsUpgrader := cipherPostAPI.wsHandler.NewWsUpgrader(allowedOrigin)
	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		cipherPostAPI.wsHandler.ServeWS(wsUpgrader, w, r, cipherPostAPI.shutdownCtx)
	})

	// Everything else is the front-end
	router.PathPrefix("/").Handler(web.Handler()).Methods(http.MethodGet)
}
