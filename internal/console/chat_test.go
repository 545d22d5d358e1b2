package console

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arguide/backoffice/internal/resources/revisions"
)

func stubThread(f *fixture) {
	f.backend.Result(http.MethodGet, "/api/v1/revision-requests/rv1", revisions.Request{
		ID: "rv1", Title: "Swap hull texture", CourseTitle: "Ship maintenance", ModelName: "hull.glb",
		Description: "Please use the weathered texture", Status: revisions.StatusPending,
	})
	f.backend.List("/api/v1/revision-requests/rv1/messages", []revisions.Message{
		{ID: "m1", Kind: revisions.KindText, AuthorName: "Jun", Body: `Looks good<script>alert(1)</script>`},
	}, 1)
}

func TestChatShowsSanitizedThread(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	stubThread(f)

	rec := f.get("/revisions/rv1")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Swap hull texture")
	assert.Contains(t, body, "Please use the weathered texture")
	assert.Contains(t, body, "Looks good")
	assert.NotContains(t, body, "<script>alert(1)</script>")
}

func TestChatRendersMessagesBeyondFirstPage(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	f.backend.Result(http.MethodGet, "/api/v1/revision-requests/rv1", revisions.Request{ID: "rv1", Title: "Long thread", Status: revisions.StatusPending})
	msgs := make([]revisions.Message, 0, 120)
	for i := 1; i <= 120; i++ {
		msgs = append(msgs, revisions.Message{ID: "m" + strconv.Itoa(i), Kind: revisions.KindText, AuthorName: "Jun", Body: "note #" + strconv.Itoa(i)})
	}
	f.backend.PagedList("/api/v1/revision-requests/rv1/messages", msgs)

	rec := f.get("/revisions/rv1")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "note #1<")
	assert.Contains(t, body, "note #120<")
	assert.NotContains(t, body, "Showing the first")
}

func TestChatPostRedirectsBackToThread(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	stubThread(f)
	f.backend.Result(http.MethodPost, "/api/v1/revision-requests/rv1/messages", revisions.Message{ID: "m2", Body: "On it"})

	rec := f.post("/revisions/rv1/messages", url.Values{"body": {"On it"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/revisions/rv1", rec.Header().Get("Location"))
	muts := f.backend.Mutations()
	require.Len(t, muts, 1)
	assert.Equal(t, "On it", muts[0].Body["body"])
}

func TestChatRejectsInvalidMessageAndKeepsDraft(t *testing.T) {
	f := newFixture(t)
	f.signIn()
	stubThread(f)

	long := strings.Repeat("x", revisions.MaxMessageLength+1)
	rec := f.post("/revisions/rv1/messages", url.Values{"body": {long}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), long)

	rec = f.post("/revisions/rv1/messages", url.Values{"body": {"   "}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, f.backend.Mutations())
}
