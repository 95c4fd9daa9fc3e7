package setup

import (
	"context"

	chromedpAdapter "github.com/osiro/laudo/internal/adapter/chromedp"
	fsAdapter "github.com/osiro/laudo/internal/adapter/fs"
	gormAdapter "github.com/osiro/laudo/internal/adapter/gorm"
	htmlAdapter "github.com/osiro/laudo/internal/adapter/html"
	"github.com/osiro/laudo/internal/config"
	"github.com/osiro/laudo/internal/core/service"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

var getRenderCacheFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*fsAdapter.RenderCache, error) {
	cache := fsAdapter.NewRenderCache(afero.NewOsFs(), conf.Storage.Cache.Directory, conf.Storage.Cache.Enabled)

	return cache, nil
})

var getRenderManagerFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*service.RenderManager, error) {
	provider, err := getDocumentProviderFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cache, err := getRenderCacheFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	compositor, err := htmlAdapter.NewCompositor()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	engine := chromedpAdapter.NewRenderEngine(
		chromedpAdapter.WithRenderEngineTimeout(conf.Render.Timeout),
	)

	renderManager := service.NewRenderManager(provider, compositor, engine, cache,
		service.WithRenderManagerWarmDebounce(conf.Render.WarmDebounce),
	)

	return renderManager, nil
})

func NewRenderManagerFromConfig(ctx context.Context, conf *config.Config) (*service.RenderManager, error) {
	renderManager, err := getRenderManagerFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return renderManager, nil
}

var getPublicLinkManagerFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*service.PublicLinkManager, error) {
	db, err := getGormDatabaseFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	store := gormAdapter.NewPublicLinkStore(db)

	linkManager := service.NewPublicLinkManager(store,
		service.WithPublicLinkDefaultTTLDays(conf.PublicLink.DefaultTTLDays),
	)

	return linkManager, nil
})
