package warm

import (
	"log/slog"
	"strconv"

	"github.com/osiro/laudo/internal/config"
	"github.com/osiro/laudo/internal/core/model"
	"github.com/osiro/laudo/internal/setup"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

const flagKind = "kind"

// Command renders the given documents synchronously so their cache
// entries are ready before the server takes traffic.
func Command() *cli.Command {
	return &cli.Command{
		Name:      "warm",
		Usage:     "Render documents into the cache",
		ArgsUsage: "DOCUMENT_ID...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     flagKind,
				Aliases:  []string{"k"},
				Usage:    "Document kind ('tasks' or 'budgets')",
				Required: true,
			},
		},
		Action: func(cCtx *cli.Context) error {
			ctx := cCtx.Context

			kind, err := model.ParseDocumentKind(cCtx.String(flagKind))
			if err != nil {
				return errors.WithStack(err)
			}

			if cCtx.NArg() == 0 {
				return errors.New("at least one document id is required")
			}

			conf, err := config.Parse()
			if err != nil {
				return errors.Wrap(err, "could not parse config")
			}

			renderManager, err := setup.NewRenderManagerFromConfig(ctx, conf)
			if err != nil {
				return errors.Wrap(err, "could not setup render manager")
			}

			failed := 0

			for _, raw := range cCtx.Args().Slice() {
				documentID, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					return errors.Wrapf(err, "invalid document id '%s'", raw)
				}

				if _, err := renderManager.GetOrRender(ctx, kind, documentID, true); err != nil {
					failed++
					slog.ErrorContext(ctx, "could not warm document", slog.Int64("document", documentID), slog.Any("error", errors.WithStack(err)))
					continue
				}

				slog.InfoContext(ctx, "document warmed", slog.Int64("document", documentID))
			}

			if failed > 0 {
				return errors.Errorf("%d document(s) failed to warm", failed)
			}

			return nil
		},
	}
}
