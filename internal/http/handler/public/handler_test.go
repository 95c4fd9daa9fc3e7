package public

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	fsadapter "github.com/osiro/laudo/internal/adapter/fs"
	"github.com/osiro/laudo/internal/adapter/html"
	"github.com/osiro/laudo/internal/core/model"
	"github.com/osiro/laudo/internal/core/port"
	"github.com/osiro/laudo/internal/core/service"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

type stubProvider struct {
	snapshot *model.DocumentSnapshot
}

func (p *stubProvider) FetchSnapshot(ctx context.Context, kind model.DocumentKind, documentID int64) (*model.DocumentSnapshot, error) {
	if kind != p.snapshot.Kind || documentID != p.snapshot.ID {
		return nil, errors.WithStack(port.ErrNotFound)
	}

	return p.snapshot, nil
}

type stubRecorder struct {
	mutex      sync.Mutex
	signatures []model.ClientSignature
}

func (r *stubRecorder) RecordClientSignature(ctx context.Context, kind model.DocumentKind, documentID int64, signature model.ClientSignature) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.signatures = append(r.signatures, signature)

	return nil
}

func (r *stubRecorder) recorded() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return len(r.signatures)
}

type stubEngine struct{}

func (e *stubEngine) Render(ctx context.Context, html string) ([]byte, error) {
	return []byte("%PDF-1.7 stub"), nil
}

type stubLink struct {
	id        model.PublicLinkID
	kind      model.DocumentKind
	document  int64
	token     string
	expiresAt *time.Time
	revokedAt *time.Time
}

func (l *stubLink) ID() model.PublicLinkID   { return l.id }
func (l *stubLink) Kind() model.DocumentKind { return l.kind }
func (l *stubLink) DocumentID() int64        { return l.document }
func (l *stubLink) Token() string            { return l.token }
func (l *stubLink) ExpiresAt() *time.Time    { return l.expiresAt }
func (l *stubLink) RevokedAt() *time.Time    { return l.revokedAt }
func (l *stubLink) LastUsedAt() *time.Time   { return nil }
func (l *stubLink) CreatedBy() *string       { return nil }
func (l *stubLink) CreatedAt() time.Time     { return time.Time{} }
func (l *stubLink) UpdatedAt() time.Time     { return time.Time{} }

type stubLinkStore struct {
	mutex sync.Mutex
	links []*stubLink
}

func (s *stubLinkStore) CreatePublicLink(ctx context.Context, link model.PublicLink) (model.PersistedPublicLink, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	stored := &stubLink{
		id:        link.ID(),
		kind:      link.Kind(),
		document:  link.DocumentID(),
		token:     link.Token(),
		expiresAt: link.ExpiresAt(),
	}
	s.links = append(s.links, stored)

	return stored, nil
}

func (s *stubLinkStore) FindActivePublicLink(ctx context.Context, kind model.DocumentKind, documentID int64, now time.Time) (model.PersistedPublicLink, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, link := range s.links {
		if link.kind == kind && link.document == documentID && model.IsPublicLinkActive(link, now) {
			return link, nil
		}
	}

	return nil, errors.WithStack(port.ErrNotFound)
}

func (s *stubLinkStore) FindPublicLinkByToken(ctx context.Context, kind model.DocumentKind, documentID int64, token string) (model.PersistedPublicLink, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, link := range s.links {
		if link.kind == kind && link.document == documentID && link.token == token {
			return link, nil
		}
	}

	return nil, errors.WithStack(port.ErrNotFound)
}

func (s *stubLinkStore) GetPublicLinkByID(ctx context.Context, id model.PublicLinkID) (model.PersistedPublicLink, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, link := range s.links {
		if link.id == id {
			return link, nil
		}
	}

	return nil, errors.WithStack(port.ErrNotFound)
}

func (s *stubLinkStore) TouchPublicLink(ctx context.Context, id model.PublicLinkID, usedAt time.Time) error {
	return nil
}

func (s *stubLinkStore) RevokePublicLink(ctx context.Context, id model.PublicLinkID, revokedAt time.Time) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, link := range s.links {
		if link.id == id && link.revokedAt == nil {
			link.revokedAt = &revokedAt
		}
	}

	return nil
}

var _ port.DocumentDataProvider = &stubProvider{}
var _ port.SignatureRecorder = &stubRecorder{}
var _ port.RenderEngine = &stubEngine{}
var _ port.PublicLinkStore = &stubLinkStore{}

type fixture struct {
	handler  *Handler
	store    *stubLinkStore
	links    *service.PublicLinkManager
	recorder *stubRecorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	compositor, err := html.NewCompositor()
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	provider := &stubProvider{
		snapshot: &model.DocumentSnapshot{
			Kind: model.KindTask,
			ID:   42,
			Client: &model.ClientInfo{
				ID:   7,
				Name: "ACME Ltda",
			},
			Task: &model.TaskSnapshot{
				ID:        42,
				Title:     "Instalação",
				Status:    "scheduled",
				CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
				Signature: model.SignatureState{Mode: "none", Scope: "all"},
			},
		},
	}

	cache := fsadapter.NewRenderCache(afero.NewMemMapFs(), "/cache", true)
	renderManager := service.NewRenderManager(provider, compositor, &stubEngine{}, cache)

	store := &stubLinkStore{}
	linkManager := service.NewPublicLinkManager(store)

	recorder := &stubRecorder{}

	return &fixture{
		handler:  NewHandler(renderManager, linkManager, provider, recorder),
		store:    store,
		links:    linkManager,
		recorder: recorder,
	}
}

func TestPublicHandlerTokenGate(t *testing.T) {
	f := newFixture(t)

	link, err := f.links.Issue(context.Background(), model.KindTask, 42, nil)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	get := func(target string) *httptest.ResponseRecorder {
		res := httptest.NewRecorder()
		f.handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, target, nil))
		return res
	}

	if e, g := http.StatusUnauthorized, get("/tasks/42").Code; e != g {
		t.Errorf("missing token: expected %d, got %d", e, g)
	}

	if e, g := http.StatusForbidden, get("/tasks/42?token=wrong").Code; e != g {
		t.Errorf("wrong token: expected %d, got %d", e, g)
	}

	if e, g := http.StatusNotFound, get("/invoices/42?token="+link.Token()).Code; e != g {
		t.Errorf("unknown kind: expected %d, got %d", e, g)
	}

	res := get("/tasks/42?token=" + link.Token())
	if e, g := http.StatusOK, res.Code; e != g {
		t.Fatalf("valid token: expected %d, got %d", e, g)
	}

	if !strings.Contains(res.Body.String(), "Baixar PDF") {
		t.Errorf("wrapper page is missing the download link")
	}

	if err := f.links.Revoke(context.Background(), link.ID()); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	if e, g := http.StatusForbidden, get("/tasks/42?token="+link.Token()).Code; e != g {
		t.Errorf("revoked token: expected %d, got %d", e, g)
	}
}

func TestPublicHandlerExpiredToken(t *testing.T) {
	f := newFixture(t)

	expiresAt := time.Now().Add(-time.Hour)
	f.store.links = append(f.store.links, &stubLink{
		id:        model.NewPublicLinkID(),
		kind:      model.KindTask,
		document:  42,
		token:     "expired-token",
		expiresAt: &expiresAt,
	})

	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/tasks/42?token=expired-token", nil))

	if e, g := http.StatusForbidden, res.Code; e != g {
		t.Errorf("expired token: expected %d, got %d", e, g)
	}
}

func TestPublicHandlerRender(t *testing.T) {
	f := newFixture(t)

	link, err := f.links.Issue(context.Background(), model.KindTask, 42, nil)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/tasks/42/render?token="+link.Token(), nil))

	if e, g := http.StatusOK, res.Code; e != g {
		t.Fatalf("expected %d, got %d: %s", e, g, res.Body.String())
	}

	if e, g := "application/pdf", res.Header().Get("Content-Type"); e != g {
		t.Errorf("content type: expected %q, got %q", e, g)
	}

	if !strings.HasPrefix(res.Body.String(), "%PDF") {
		t.Errorf("response is not a pdf")
	}
}

func TestPublicHandlerApprove(t *testing.T) {
	f := newFixture(t)

	link, err := f.links.Issue(context.Background(), model.KindTask, 42, nil)
	if err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	form := url.Values{}
	form.Set("signature", "data:image/png;base64,AAAA")
	form.Set("name", "Maria Silva")

	req := httptest.NewRequest(http.MethodPost, "/tasks/42/approve?token="+link.Token(), strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res := httptest.NewRecorder()
	f.handler.ServeHTTP(res, req)

	if e, g := http.StatusOK, res.Code; e != g {
		t.Fatalf("expected %d, got %d: %s", e, g, res.Body.String())
	}

	if !strings.Contains(res.Body.String(), `"ok":true`) {
		t.Errorf("unexpected body %q", res.Body.String())
	}

	if e, g := 1, f.recorder.recorded(); e != g {
		t.Errorf("recorded signatures: expected %d, got %d", e, g)
	}

	// A payload that is not an inline image is rejected before it reaches
	// the recorder.
	bad := url.Values{}
	bad.Set("signature", "javascript:alert(1)")

	req = httptest.NewRequest(http.MethodPost, "/tasks/42/approve?token="+link.Token(), strings.NewReader(bad.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res = httptest.NewRecorder()
	f.handler.ServeHTTP(res, req)

	if e, g := http.StatusBadRequest, res.Code; e != g {
		t.Errorf("expected %d, got %d", e, g)
	}

	if e, g := 1, f.recorder.recorded(); e != g {
		t.Errorf("recorded signatures: expected %d, got %d", e, g)
	}
}
