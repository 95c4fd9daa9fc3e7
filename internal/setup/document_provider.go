package setup

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"mime"
	"path/filepath"

	"github.com/bornholm/go-x/slogx"
	gormAdapter "github.com/osiro/laudo/internal/adapter/gorm"
	"github.com/osiro/laudo/internal/config"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

var getDocumentProviderFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (*gormAdapter.DocumentProvider, error) {
	db, err := getGormDatabaseFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	logoRef, err := loadLogoRef(ctx, conf.Render.LogoPath)
	if err != nil {
		slog.WarnContext(ctx, "could not load logo, rendering without it", slogx.Error(err))
		logoRef = ""
	}

	provider := gormAdapter.NewDocumentProvider(db,
		gormAdapter.WithDocumentProviderLogoRef(logoRef),
	)

	return provider, nil
})

// loadLogoRef turns the configured logo file into a data URL so rendered
// documents never depend on an external asset being reachable.
func loadLogoRef(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", nil
	}

	data, err := afero.ReadFile(afero.NewOsFs(), path)
	if err != nil {
		return "", errors.WithStack(err)
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType = "image/png"
	}

	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)), nil
}
