package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookstacksapp/bookstacks-server/internal/auth"
	"github.com/bookstacksapp/bookstacks-server/internal/config"
	"github.com/bookstacksapp/bookstacks-server/internal/logger"
	"github.com/bookstacksapp/bookstacks-server/internal/ratelimit"
	"github.com/bookstacksapp/bookstacks-server/internal/service"
)

// ProvideAuthProvider provides the identity provider client.
func ProvideAuthProvider(i do.Injector) (auth.Provider, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return auth.NewClient(cfg.Identity.BaseURL, cfg.Identity.APIKey, log.Logger), nil
}

// SignupLimiterHandle wraps the signup limiter with shutdown capability.
type SignupLimiterHandle struct {
	*ratelimit.KeyedLimiter
}

// Shutdown implements do.Shutdownable.
func (h *SignupLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideSignupLimiter provides the per-IP signup rate limiter.
func ProvideSignupLimiter(i do.Injector) (*SignupLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	return &SignupLimiterHandle{
		KeyedLimiter: ratelimit.New(cfg.Signup.RatePerSecond, cfg.Signup.Burst),
	}, nil
}

// ProvideUserService provides the user service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	provider := do.MustInvoke[auth.Provider](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, provider, log.Logger), nil
}

// ProvideBookService provides the book service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, searchHandle.Index, log.Logger), nil
}

// ProvideCollectionService provides the collection service.
func ProvideCollectionService(i do.Injector) (*service.CollectionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	searchHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCollectionService(storeHandle.Store, searchHandle.Index, log.Logger), nil
}
