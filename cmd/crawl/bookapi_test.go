package crawl

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lepinkainen/booksuggest/internal/errors"
)

func TestUserBooks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json/alice", r.URL.Path)
		assert.Equal(t, "0", r.URL.Query().Get("category"))
		assert.Equal(t, "99999", r.URL.Query().Get("count"))
		fmt.Fprint(w, `{"books":[
			{"url":"https://booklog.jp/item/1/4087474232","title":"Kingdom 1"},
			{"url":"https://booklog.jp/item/1/4088725158","title":"One Piece 1"}
		]}`)
	}))
	defer server.Close()

	client := NewBookAPIClientWithBaseURL(server.URL)

	entries, err := client.UserBooks(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, []BookEntry{
		{ID: "4087474232", Title: "Kingdom 1"},
		{ID: "4088725158", Title: "One Piece 1"},
	}, entries)
}

func TestUserBooksPrivateLog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewBookAPIClientWithBaseURL(server.URL)

	entries, err := client.UserBooks(context.Background(), "private-user")
	require.NoError(t, err)
	assert.Nil(t, entries)
}

func TestUserBooksMalformedPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>maintenance page</html>`)
	}))
	defer server.Close()

	client := NewBookAPIClientWithBaseURL(server.URL)

	_, err := client.UserBooks(context.Background(), "alice")
	require.Error(t, err)
	assert.True(t, apperrors.IsMalformedResponseError(err))
	assert.Contains(t, err.Error(), "maintenance page")
}

func TestUserBooksEmptyLog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"books":[]}`)
	}))
	defer server.Close()

	client := NewBookAPIClientWithBaseURL(server.URL)

	entries, err := client.UserBooks(context.Background(), "empty-user")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
