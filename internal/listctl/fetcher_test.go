package listctl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcherPagesTwelveRowsByFive(t *testing.T) {
	src := newMemorySource(12)
	f := NewFetcher[item](src, FetcherOptions{Resource: "items"})

	snap, err := f.Fetch(context.Background(), Query{Page: 0, PageSize: 5})
	require.NoError(t, err)
	require.Len(t, snap.Rows, 5)
	assert.Equal(t, 12, snap.TotalCount)
	assert.Equal(t, "1", snap.Rows[0].ID)
	assert.Equal(t, "5", snap.Rows[4].ID)

	snap, err = f.Fetch(context.Background(), Query{Page: 2, PageSize: 5})
	require.NoError(t, err)
	require.Len(t, snap.Rows, 2)
	assert.Equal(t, "11", snap.Rows[0].ID)
	assert.Equal(t, "12", snap.Rows[1].ID)
	assert.Equal(t, 12, snap.TotalCount)
}

func TestFetcherPageInvariants(t *testing.T) {
	for _, total := range []int{0, 1, 7, 12, 30} {
		src := newMemorySource(total)
		f := NewFetcher[item](src, FetcherOptions{Resource: "items"})
		for _, size := range []int{1, 3, 5, 10} {
			for page := 0; page <= total/size+1; page++ {
				snap, err := f.Fetch(context.Background(), Query{Page: page, PageSize: size})
				require.NoError(t, err)
				assert.LessOrEqual(t, len(snap.Rows), size)
				assert.LessOrEqual(t, len(snap.Rows), snap.TotalCount)
			}
		}
	}
}

func TestFetcherNormalizesOversizedPage(t *testing.T) {
	src := SourceFunc[item](func(ctx context.Context, q Query) (PageResult[item], error) {
		return PageResult[item]{Rows: []item{{ID: "a"}, {ID: "b"}, {ID: "c"}}, TotalCount: 1}, nil
	})
	f := NewFetcher[item](src, FetcherOptions{Resource: "items"})

	snap, err := f.Fetch(context.Background(), Query{PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, snap.Rows, 2)
	assert.Equal(t, 2, snap.TotalCount)
}

func TestFetcherRejectsInvalidQuery(t *testing.T) {
	src := newMemorySource(3)
	f := NewFetcher[item](src, FetcherOptions{Resource: "items"})

	_, err := f.Fetch(context.Background(), Query{Page: -1, PageSize: 5})
	assert.ErrorIs(t, err, ErrInvalidQuery)
	_, err = f.Fetch(context.Background(), Query{PageSize: 0})
	assert.ErrorIs(t, err, ErrInvalidQuery)
	assert.Empty(t, src.served())
}

func TestFetcherKeepsRowsOnFailure(t *testing.T) {
	src := newMemorySource(12)
	notes := &recordingNotifier{}
	f := NewFetcher[item](src, FetcherOptions{Resource: "items", Notifier: notes})

	_, err := f.Fetch(context.Background(), Query{Page: 0, PageSize: 5})
	require.NoError(t, err)

	src.setErr(errBoom)
	snap, err := f.Fetch(context.Background(), Query{Page: 1, PageSize: 5})
	require.ErrorIs(t, err, errBoom)
	assert.False(t, snap.Loading)
	assert.ErrorIs(t, snap.Err, errBoom)
	require.Len(t, snap.Rows, 5)
	assert.Equal(t, "1", snap.Rows[0].ID, "previous rows must stay visible")
	assert.Equal(t, 0, snap.Query.Page)
	assert.Equal(t, KindError, notes.last().Kind)

	// No automatic retry: exactly the two dispatched calls reached the source.
	assert.Len(t, src.served(), 2)

	src.setErr(nil)
	snap, err = f.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Query.Page, "refresh re-issues the last dispatched query")
	assert.Nil(t, snap.Err)
}

func TestFetcherDiscardsStaleResponse(t *testing.T) {
	src := newGatedSource()
	f := NewFetcher[item](src, FetcherOptions{Resource: "items"})

	type result struct {
		snap Snapshot[item]
		err  error
	}
	first := make(chan result, 1)
	second := make(chan result, 1)

	go func() {
		snap, err := f.Fetch(context.Background(), Query{Page: 1, PageSize: 5})
		first <- result{snap, err}
	}()
	call1 := <-src.calls

	go func() {
		snap, err := f.Fetch(context.Background(), Query{Page: 2, PageSize: 5})
		second <- result{snap, err}
	}()
	call2 := <-src.calls

	// The superseded request is cancelled.
	select {
	case <-call1.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("expected superseded fetch to be cancelled")
	}

	call2.release <- PageResult[item]{Rows: []item{{ID: "page-2"}}, TotalCount: 11}
	r2 := <-second
	require.NoError(t, r2.err)

	call1.release <- PageResult[item]{Rows: []item{{ID: "page-1"}}, TotalCount: 11}
	r1 := <-first
	assert.ErrorIs(t, r1.err, ErrStale)

	snap := f.Snapshot()
	require.Len(t, snap.Rows, 1)
	assert.Equal(t, "page-2", snap.Rows[0].ID)
	assert.Equal(t, 2, snap.Query.Page)
	assert.False(t, snap.Loading)
}

func TestFetcherCloseIgnoresLateCompletion(t *testing.T) {
	src := newGatedSource()
	notes := &recordingNotifier{}
	f := NewFetcher[item](src, FetcherOptions{Resource: "items", Notifier: notes})

	done := make(chan error, 1)
	go func() {
		_, err := f.Fetch(context.Background(), Query{PageSize: 5})
		done <- err
	}()
	call := <-src.calls

	f.Close()
	select {
	case <-call.ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("expected in-flight fetch to be cancelled on close")
	}
	call.release <- PageResult[item]{Rows: []item{{ID: "late"}}, TotalCount: 1}

	assert.ErrorIs(t, <-done, ErrClosed)
	assert.Empty(t, f.Snapshot().Rows)
	assert.Empty(t, notes.all())

	_, err := f.Fetch(context.Background(), Query{PageSize: 5})
	assert.True(t, errors.Is(err, ErrClosed))
}
