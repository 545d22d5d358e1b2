package revisions

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arguide/backoffice/internal/listctl"
	"github.com/arguide/backoffice/internal/resources"
	"github.com/arguide/backoffice/internal/resources/resourcetest"
)

func TestCatalog(t *testing.T) {
	catalog := Catalog(resources.Deps{})
	resourcetest.AssertCatalog(t, catalog, Statuses)
	assert.Equal(t, []string{"cancel"}, resourcetest.ActionKeys(catalog, StatusPending))
	assert.Equal(t, []string{"cancel"}, resourcetest.ActionKeys(catalog, StatusProcessing))
	assert.Empty(t, resourcetest.ActionKeys(catalog, StatusDone))
	assert.Empty(t, resourcetest.ActionKeys(catalog, StatusCancelled))
}

func TestThreadStartsWithRequestCard(t *testing.T) {
	backend := resourcetest.New(t)
	backend.Result(http.MethodGet, "/api/v1/revision-requests/rv1", Request{
		ID: "rv1", Title: "Wrong valve colour", Description: "<p>Valve should be <b>red</b></p><script>x()</script>",
		Requester: "Park", Status: StatusProcessing,
	})
	backend.List("/api/v1/revision-requests/rv1/messages", []Message{
		{ID: "m1", Kind: KindText, AuthorName: "Modeler", Body: `<a href="javascript:alert(1)">fixed</a> in v2`},
	}, 1)

	thread, err := NewChat(backend.Client(), nil).Thread(context.Background(), "rv1")
	require.NoError(t, err)
	require.Len(t, thread.Messages, 2)

	card := thread.Messages[0]
	assert.Equal(t, KindRequestCard, card.Kind)
	require.NotNil(t, card.Card)
	assert.Equal(t, "Wrong valve colour", card.Card.Title)
	assert.Equal(t, "In progress", card.Card.StatusView().Label)
	assert.NotContains(t, string(card.HTML()), "<script>")
	assert.Contains(t, string(card.HTML()), "<b>red</b>")

	assert.NotContains(t, string(thread.Messages[1].HTML()), "javascript:")
}

func numberedMessages(n int) []Message {
	msgs := make([]Message, 0, n)
	for i := 1; i <= n; i++ {
		msgs = append(msgs, Message{ID: "m" + strconv.Itoa(i), Kind: KindText, AuthorName: "Modeler", Body: "update " + strconv.Itoa(i)})
	}
	return msgs
}

func TestThreadLoadsEveryPage(t *testing.T) {
	backend := resourcetest.New(t)
	backend.Result(http.MethodGet, "/api/v1/revision-requests/rv1", Request{ID: "rv1", Status: StatusProcessing})
	backend.PagedList("/api/v1/revision-requests/rv1/messages", numberedMessages(250))

	thread, err := NewChat(backend.Client(), nil).Thread(context.Background(), "rv1")
	require.NoError(t, err)
	require.Len(t, thread.Messages, 251)
	assert.Equal(t, "m1", thread.Messages[1].ID)
	assert.Equal(t, "m250", thread.Messages[250].ID)
	assert.Equal(t, 250, thread.Total)
	assert.False(t, thread.Truncated)

	var pages []string
	for _, r := range backend.Requests() {
		if strings.HasSuffix(r.Path, "/messages") {
			pages = append(pages, r.Query.Get("page"))
			assert.Equal(t, "100", r.Query.Get("size"))
		}
	}
	assert.Equal(t, []string{"0", "1", "2"}, pages)
}

func TestThreadReportsTruncation(t *testing.T) {
	backend := resourcetest.New(t)
	backend.Result(http.MethodGet, "/api/v1/revision-requests/rv1", Request{ID: "rv1", Status: StatusProcessing})
	backend.PagedList("/api/v1/revision-requests/rv1/messages", numberedMessages(25))

	chat := NewChat(backend.Client(), nil)
	chat.pageSize = 10
	chat.maxPages = 2
	thread, err := chat.Thread(context.Background(), "rv1")
	require.NoError(t, err)
	assert.Len(t, thread.Messages, 21)
	assert.Equal(t, 25, thread.Total)
	assert.True(t, thread.Truncated)
}

func TestPostValidatesBeforeSending(t *testing.T) {
	backend := resourcetest.New(t)
	chat := NewChat(backend.Client(), nil)

	_, err := chat.Post(context.Background(), "rv1", "   ")
	var verr *listctl.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "is required", verr.Fields["body"])

	_, err = chat.Post(context.Background(), "rv1", strings.Repeat("x", MaxMessageLength+1))
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, backend.Requests())
}

func TestPostAppendsOnlyAcknowledged(t *testing.T) {
	backend := resourcetest.New(t)
	backend.Result(http.MethodPost, "/api/v1/revision-requests/rv1/messages", Message{ID: "m2", AuthorName: "Admin", Body: "On it"})
	chat := NewChat(backend.Client(), nil)

	thread := Thread{Messages: []Message{{ID: "card-rv1", Kind: KindRequestCard}}}
	msg, err := chat.Post(context.Background(), "rv1", "On it")
	require.NoError(t, err)
	thread.Append(msg)

	require.Len(t, thread.Messages, 2)
	assert.Equal(t, KindText, thread.Messages[1].Kind)
	assert.Equal(t, "On it", string(thread.Messages[1].HTML()))
	assert.Equal(t, "On it", backend.Requests()[0].Body["body"])

	backend.Fail(http.MethodPost, "/api/v1/revision-requests/rv2/messages", http.StatusBadGateway, "", "upstream down")
	_, err = chat.Post(context.Background(), "rv2", "hello")
	require.Error(t, err)
	assert.Len(t, thread.Messages, 2)
}
