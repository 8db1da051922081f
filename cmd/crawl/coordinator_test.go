package crawl

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lepinkainen/booksuggest/internal/errors"
	"github.com/lepinkainen/booksuggest/internal/store"
	"github.com/lepinkainen/booksuggest/internal/testutil"
)

type fakeBrowser struct {
	pages       map[string]string
	timeoutURLs map[string]bool
	current     string
}

func (b *fakeBrowser) Navigate(url string) error {
	b.current = url
	return nil
}

func (b *fakeBrowser) WaitForElement(selector string, timeout time.Duration) error {
	if b.timeoutURLs[b.current] {
		return apperrors.NewCrawlTimeoutError(selector, b.current, timeout)
	}
	return nil
}

func (b *fakeBrowser) HTML() (string, error) {
	html, ok := b.pages[b.current]
	if !ok {
		return "", fmt.Errorf("no fixture for %s", b.current)
	}
	return html, nil
}

type fakeLister struct {
	books map[string][]BookEntry
	calls map[string]int
}

func newFakeLister(books map[string][]BookEntry) *fakeLister {
	return &fakeLister{books: books, calls: make(map[string]int)}
}

func (l *fakeLister) UserBooks(_ context.Context, userID string) ([]BookEntry, error) {
	l.calls[userID]++
	return l.books[userID], nil
}

func rankingHTML(bookURLs ...string) string {
	var items strings.Builder
	for _, u := range bookURLs {
		fmt.Fprintf(&items, `<li><div class="desc"><h3><a href="%s">t</a></h3></div></li>`, u)
	}
	return `<div class="autopagerize_page_element"><ul class="ranking-list">` + items.String() + `</ul></div>`
}

func reviewersHTML(userIDs ...string) string {
	var items strings.Builder
	for _, id := range userIDs {
		fmt.Fprintf(&items, `<li><div class="summary"><div class="user-info-area"><div>`+
			`<div class="user-name-area"><p><a href="/users/%s">%s</a></p></div>`+
			`</div></div></div></li>`, id, id)
	}
	return `<div id="reviewLine"><ul>` + items.String() + `</ul></div>`
}

func tagUsersHTML(userIDs ...string) string {
	var items strings.Builder
	for _, id := range userIDs {
		fmt.Fprintf(&items, `<div class="tagListArea"><div><a href="/users/%s">%s</a></div></div>`, id, id)
	}
	return `<div class="autopagerize_page_element">` + items.String() + `</div>`
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st := store.NewSQLiteStore(testutil.NewTestEnv(t).Path("test.db"))
	require.NoError(t, st.Connect())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newTestCoordinator(t *testing.T, browser *fakeBrowser, st *store.SQLiteStore, lister *fakeLister, checkpointPath string) *Coordinator {
	t.Helper()
	c := NewCoordinator(browser, st, lister, Config{
		CheckpointPath:   checkpointPath,
		MaxRankingPages:  1,
		MaxReviewerPages: 1,
		MaxTagPages:      100,
		WaitTimeout:      time.Second,
	})
	c.sleep = func(time.Duration) {}
	return c
}

func rankingFixtures() (map[string]string, map[string][]BookEntry) {
	pages := map[string]string{
		"https://booklog.jp/ranking/annual/2015/book?page=1": rankingHTML("/item/b1", "/item/b2"),
		"https://booklog.jp/item/b1?page=1":                  reviewersHTML("alice", "bob"),
		"https://booklog.jp/item/b2?page=1":                  reviewersHTML("bob", "carol"),
	}
	books := map[string][]BookEntry{
		"alice": {{ID: "100", Title: "Book 100"}, {ID: "200", Title: "Book 200"}},
		"bob":   {{ID: "100", Title: "Book 100"}, {ID: "300", Title: "Book 300"}},
		"carol": {{ID: "200", Title: "Book 200"}},
	}
	return pages, books
}

func TestRunRankingFreshCrawl(t *testing.T) {
	pages, books := rankingFixtures()
	browser := &fakeBrowser{pages: pages}
	lister := newFakeLister(books)
	st := newTestStore(t)
	checkpointPath := testutil.NewTestEnv(t).Path("checkpoint.yaml")

	c := newTestCoordinator(t, browser, st, lister, checkpointPath)
	require.NoError(t, c.RunRanking(context.Background(), 2015, 2015))

	users, err := st.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, 3, users)

	booksCount, err := st.CountBooks()
	require.NoError(t, err)
	assert.Equal(t, 3, booksCount)

	edges, err := st.CountInteractions()
	require.NoError(t, err)
	assert.Equal(t, 5, edges)

	// bob appears under both books but is only ingested once.
	assert.Equal(t, 1, lister.calls["bob"])

	cp, err := LoadCheckpoint(checkpointPath)
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, Checkpoint{Year: 2015, Page: 1, BookIndex: 1, UserIndex: 1}, *cp)
}

func TestRunRankingIdempotentRecrawl(t *testing.T) {
	pages, books := rankingFixtures()
	browser := &fakeBrowser{pages: pages}
	lister := newFakeLister(books)
	st := newTestStore(t)
	checkpointPath := testutil.NewTestEnv(t).Path("checkpoint.yaml")

	c := newTestCoordinator(t, browser, st, lister, checkpointPath)
	require.NoError(t, c.RunRanking(context.Background(), 2015, 2015))

	edgesBefore, err := st.CountInteractions()
	require.NoError(t, err)

	// Second run over the same range with the checkpoint in place. Only the
	// checkpointed user is reattempted.
	lister2 := newFakeLister(books)
	c2 := newTestCoordinator(t, &fakeBrowser{pages: pages}, st, lister2, checkpointPath)
	require.NoError(t, c2.RunRanking(context.Background(), 2015, 2015))

	edgesAfter, err := st.CountInteractions()
	require.NoError(t, err)
	assert.Equal(t, edgesBefore, edgesAfter)

	assert.Equal(t, map[string]int{"carol": 1}, lister2.calls)
}

func TestRunRankingTimeoutAborts(t *testing.T) {
	pages, books := rankingFixtures()
	browser := &fakeBrowser{
		pages:       pages,
		timeoutURLs: map[string]bool{"https://booklog.jp/item/b2?page=1": true},
	}
	lister := newFakeLister(books)
	st := newTestStore(t)
	checkpointPath := testutil.NewTestEnv(t).Path("checkpoint.yaml")

	c := newTestCoordinator(t, browser, st, lister, checkpointPath)
	err := c.RunRanking(context.Background(), 2015, 2015)
	require.Error(t, err)
	assert.True(t, apperrors.IsCrawlTimeoutError(err))

	// The checkpoint reflects the last fully completed user, not the
	// in-flight book.
	cp, err := LoadCheckpoint(checkpointPath)
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, Checkpoint{Year: 2015, Page: 1, BookIndex: 0, UserIndex: 1}, *cp)

	users, err := st.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, 2, users)
}

func TestRunTags(t *testing.T) {
	pages := map[string]string{
		"https://booklog.jp/profiletags":            `<ul class="tagList"><li><a>読書(1523)</a></li></ul>`,
		"https://booklog.jp/profiletag/読書?page=1": tagUsersHTML("carol", "dave"),
	}
	books := map[string][]BookEntry{
		"carol": {{ID: "200", Title: "Book 200"}},
		"dave":  {{ID: "300", Title: "Book 300"}},
	}
	browser := &fakeBrowser{pages: pages}
	lister := newFakeLister(books)
	st := newTestStore(t)
	require.NoError(t, st.InsertUser("carol"))

	c := newTestCoordinator(t, browser, st, lister, testutil.NewTestEnv(t).Path("checkpoint.yaml"))
	require.NoError(t, c.RunTags(context.Background()))

	// carol already existed and is skipped; a short page ends the tag.
	assert.Equal(t, map[string]int{"dave": 1}, lister.calls)

	users, err := st.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, 2, users)
}

func TestRunTagsTimeoutAborts(t *testing.T) {
	pages := map[string]string{
		"https://booklog.jp/profiletags": `<ul class="tagList"><li><a>読書(1523)</a></li></ul>`,
	}
	browser := &fakeBrowser{
		pages:       pages,
		timeoutURLs: map[string]bool{"https://booklog.jp/profiletag/読書?page=1": true},
	}
	st := newTestStore(t)

	c := newTestCoordinator(t, browser, st, newFakeLister(nil), testutil.NewTestEnv(t).Path("checkpoint.yaml"))
	err := c.RunTags(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.IsCrawlTimeoutError(err))
}
