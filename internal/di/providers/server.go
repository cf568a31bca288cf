package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/bookstacksapp/bookstacks-server/internal/api"
	"github.com/bookstacksapp/bookstacks-server/internal/auth"
	"github.com/bookstacksapp/bookstacks-server/internal/config"
	"github.com/bookstacksapp/bookstacks-server/internal/logger"
	"github.com/bookstacksapp/bookstacks-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server, listening in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	provider := do.MustInvoke[auth.Provider](i)
	limiterHandle := do.MustInvoke[*SignupLimiterHandle](i)

	userService := do.MustInvoke[*service.UserService](i)
	bookService := do.MustInvoke[*service.BookService](i)
	collectionService := do.MustInvoke[*service.CollectionService](i)

	// Rebuild the search index from the store before serving; the index
	// is derived state and may be stale or freshly recreated.
	if err := bookService.Reindex(context.Background()); err != nil {
		return nil, fmt.Errorf("rebuild search index: %w", err)
	}

	handler := api.NewServer(api.Options{
		Store:             storeHandle.Store,
		Provider:          provider,
		UserService:       userService,
		BookService:       bookService,
		CollectionService: collectionService,
		SignupLimiter:     limiterHandle.KeyedLimiter,
		CORSOrigins:       cfg.Server.CORSOrigins,
		Logger:            log.Logger,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: server}, nil
}
