package public

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/bornholm/go-x/slogx"
	"github.com/osiro/laudo/internal/core/model"
	"github.com/osiro/laudo/internal/core/port"
	"github.com/pkg/errors"
)

var pageTemplate = template.Must(template.New("").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
	<meta charset="utf-8" />
	<meta name="viewport" content="width=device-width, initial-scale=1" />
	<meta name="robots" content="noindex" />
	<title>{{ .Title }}</title>
	<style>
		body { margin: 0; font-family: Helvetica, Arial, sans-serif; background: #f3f4f6; }
		.toolbar { display: flex; justify-content: space-between; align-items: center; padding: 12px 16px; background: #1f2937; color: #fff; }
		.toolbar a { color: #fff; background: #2563eb; text-decoration: none; padding: 8px 12px; border-radius: 4px; margin-left: 8px; }
		.toolbar .badge { background: #059669; padding: 4px 8px; border-radius: 4px; font-size: 12px; margin-left: 8px; }
		.viewer { height: calc(100vh - 56px); }
		.viewer embed { width: 100%; height: 100%; }
		.approve { padding: 16px; background: #fff; border-top: 1px solid #d1d5db; }
		.approve canvas { border: 1px dashed #9ca3af; background: #fff; touch-action: none; }
		.approve input[type=text] { padding: 6px; margin: 4px 0; width: 240px; }
		.approve button { padding: 8px 12px; }
	</style>
</head>
<body>
	<div class="toolbar">
		<span>{{ .Title }}{{ if .Approved }}<span class="badge">Aprovado</span>{{ end }}</span>
		<span>
			<a href="{{ .RefreshURL }}">Atualizar</a>
			<a href="{{ .RenderURL }}" target="_blank">Baixar PDF</a>
		</span>
	</div>
	<div class="viewer">
		<embed src="{{ .RenderURL }}" type="application/pdf" />
	</div>
	{{ if .CanApprove }}
	<div class="approve">
		<form method="post" action="{{ .ApproveURL }}">
			<div>
				<input type="text" name="name" placeholder="Nome" required />
				<input type="text" name="document" placeholder="CPF/CNPJ" />
			</div>
			<canvas id="signature" width="400" height="120"></canvas>
			<input type="hidden" name="signature" id="signature-data" />
			<div>
				<button type="submit">Aprovar e assinar</button>
			</div>
		</form>
	</div>
	<script>
		(function () {
			var canvas = document.getElementById("signature");
			var ctx = canvas.getContext("2d");
			var drawing = false;
			var point = function (e) {
				var rect = canvas.getBoundingClientRect();
				var source = e.touches ? e.touches[0] : e;
				return { x: source.clientX - rect.left, y: source.clientY - rect.top };
			};
			var start = function (e) { drawing = true; var p = point(e); ctx.beginPath(); ctx.moveTo(p.x, p.y); e.preventDefault(); };
			var move = function (e) { if (!drawing) return; var p = point(e); ctx.lineTo(p.x, p.y); ctx.stroke(); e.preventDefault(); };
			var stop = function () { drawing = false; };
			canvas.addEventListener("mousedown", start);
			canvas.addEventListener("mousemove", move);
			canvas.addEventListener("mouseup", stop);
			canvas.addEventListener("touchstart", start);
			canvas.addEventListener("touchmove", move);
			canvas.addEventListener("touchend", stop);
			canvas.closest("form").addEventListener("submit", function (e) {
				e.preventDefault();
				document.getElementById("signature-data").value = canvas.toDataURL("image/png");
				fetch(e.target.action, { method: "POST", body: new FormData(e.target) })
					.then(function (res) { if (res.ok) { window.location.reload(); } });
			});
		})();
	</script>
	{{ end }}
</body>
</html>
`))

type pageVModel struct {
	Title      string
	RenderURL  string
	RefreshURL string
	ApproveURL string
	CanApprove bool
	Approved   bool
}

func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	link := ctxPublicLink(ctx)

	snapshot, err := h.provider.FetchSnapshot(ctx, link.Kind(), link.DocumentID())
	if err != nil {
		if errors.Is(err, port.ErrNotFound) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}

		slog.ErrorContext(ctx, "could not load document", slogx.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := url.Values{}
	query.Set("token", link.Token())

	base := fmt.Sprintf("%d", link.DocumentID())

	refreshQuery := url.Values{}
	refreshQuery.Set("token", link.Token())
	refreshQuery.Set("refresh", "true")

	vmodel := pageVModel{
		Title:      pageTitle(snapshot),
		RenderURL:  fmt.Sprintf("%s/render?%s", base, query.Encode()),
		RefreshURL: fmt.Sprintf("%s/render?%s", base, refreshQuery.Encode()),
		ApproveURL: fmt.Sprintf("%s/approve?%s", base, query.Encode()),
		CanApprove: canApprove(snapshot),
		Approved:   clientSigned(snapshot),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := pageTemplate.Execute(w, vmodel); err != nil {
		slog.ErrorContext(ctx, "could not execute template", slog.Any("error", errors.WithStack(err)))
	}
}

func pageTitle(snapshot *model.DocumentSnapshot) string {
	switch snapshot.Kind {
	case model.KindTask:
		return fmt.Sprintf("Ordem de serviço #%d", snapshot.ID)
	case model.KindBudget:
		return fmt.Sprintf("Orçamento #%d", snapshot.ID)
	default:
		return fmt.Sprintf("Documento #%d", snapshot.ID)
	}
}

// canApprove reports whether a client signature would still change the
// document. Already client-signed documents only show the PDF.
func canApprove(snapshot *model.DocumentSnapshot) bool {
	var mode string

	switch {
	case snapshot.Task != nil:
		mode = snapshot.Task.Signature.Mode
	case snapshot.Budget != nil:
		mode = snapshot.Budget.Signature.Mode
	}

	return mode == "none" || mode == "tech"
}

func clientSigned(snapshot *model.DocumentSnapshot) bool {
	var mode string

	switch {
	case snapshot.Task != nil:
		mode = snapshot.Task.Signature.Mode
	case snapshot.Budget != nil:
		mode = snapshot.Budget.Signature.Mode
	}

	return mode == "client" || mode == "both"
}
