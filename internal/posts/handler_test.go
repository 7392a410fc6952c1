package posts

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/inkwell-app/inkwell/internal/rbac"
	"github.com/inkwell-app/inkwell/internal/shared"
)

func newTestRouter(repo *memoryRepo) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, nil)
	mw := rbac.Middleware{Matrix: rbac.DefaultMatrix()}
	h := NewHandler(logger, svc, mw, rbac.NewOwnershipResolver(repo, nil))

	r := chi.NewRouter()
	r.Route("/api/posts", h.MountRoutes)
	return r
}

func asPrincipal(req *http.Request, p shared.Principal) *http.Request {
	return req.WithContext(shared.ContextWithPrincipal(req.Context(), p))
}

func TestViewerCanReadNotWrite(t *testing.T) {
	repo := newMemoryRepo()
	repo.add(1, "hello")
	router := newTestRouter(repo)
	viewer := shared.Principal{SubjectID: 9, Role: rbac.RoleViewer}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asPrincipal(httptest.NewRequest(http.MethodGet, "/api/posts/", nil), viewer))
	if rec.Code != http.StatusOK {
		t.Fatalf("read status = %d, body = %s", rec.Code, rec.Body.String())
	}

	body := strings.NewReader(`{"title":"t","content":"c"}`)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, asPrincipal(httptest.NewRequest(http.MethodPost, "/api/posts/", body), viewer))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("create status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestEditorOwnsItsUpdates(t *testing.T) {
	repo := newMemoryRepo()
	mine := repo.add(7, "mine")
	theirs := repo.add(8, "theirs")
	router := newTestRouter(repo)
	editor := shared.Principal{SubjectID: 7, Role: rbac.RoleEditor}

	update := func(id int64) *httptest.ResponseRecorder {
		body := strings.NewReader(`{"title":"edited","content":"c"}`)
		req := httptest.NewRequest(http.MethodPut, "/api/posts/"+itoa(id), body)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, asPrincipal(req, editor))
		return rec
	}

	if rec := update(mine.ID); rec.Code != http.StatusOK {
		t.Fatalf("own update status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec := update(theirs.ID); rec.Code != http.StatusForbidden {
		t.Fatalf("foreign update status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestAdminDeletesAnyPost(t *testing.T) {
	repo := newMemoryRepo()
	post := repo.add(8, "someone else's")
	router := newTestRouter(repo)
	admin := shared.Principal{SubjectID: 1, Role: rbac.RoleAdmin}

	req := httptest.NewRequest(http.MethodDelete, "/api/posts/"+itoa(post.ID), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asPrincipal(req, admin))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if _, ok := repo.posts[post.ID]; ok {
		t.Fatal("post not deleted")
	}
}

func TestMineQueryFilter(t *testing.T) {
	repo := newMemoryRepo()
	repo.add(7, "mine")
	repo.add(8, "theirs")
	router := newTestRouter(repo)
	editor := shared.Principal{SubjectID: 7, Role: rbac.RoleEditor}

	req := httptest.NewRequest(http.MethodGet, "/api/posts/?mine=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, asPrincipal(req, editor))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Posts []Post `json:"posts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Posts) != 1 || resp.Posts[0].AuthorID != 7 {
		t.Fatalf("posts = %+v", resp.Posts)
	}
}

func TestCreateValidation(t *testing.T) {
	router := newTestRouter(newMemoryRepo())
	editor := shared.Principal{SubjectID: 7, Role: rbac.RoleEditor}

	for _, body := range []string{`{}`, `{"title":"t"}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/api/posts/", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, asPrincipal(req, editor))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want %d", body, rec.Code, http.StatusBadRequest)
		}
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
