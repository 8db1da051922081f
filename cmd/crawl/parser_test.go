package crawl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rankingPageHTML = `
<html><body>
<div class="autopagerize_page_element">
  <ul class="ranking-list">
    <li><div class="desc"><h3><a href="/item/4087474232">Kingdom 1</a></h3></div></li>
    <li><div class="desc"><h3><a href="/item/4088725158">One Piece 1</a></h3></div></li>
    <li><div class="desc"><h3><a>no href here</a></h3></div></li>
  </ul>
</div>
</body></html>`

const reviewerPageHTML = `
<html><body>
<div id="reviewLine">
  <ul>
    <li><div class="summary"><div class="user-info-area"><div>
      <div class="user-name-area"><p><a href="/users/alice">alice</a></p></div>
    </div></div></div></li>
    <li><div class="summary"><div class="user-info-area"><div>
      <div class="user-name-area"><p><a href="/users/bob">bob</a></p></div>
    </div></div></div></li>
  </ul>
</div>
</body></html>`

const profileTagsHTML = `
<html><body>
<ul class="tagList">
  <li><a href="/profiletag/読書">読書(1523)</a></li>
  <li><a href="/profiletag/漫画">漫画(847)</a></li>
</ul>
</body></html>`

const tagPageHTML = `
<html><body>
<div class="autopagerize_page_element">
  <div class="tagListArea"><div><a href="/users/carol">carol</a></div></div>
  <div class="tagListArea"><div><a href="/users/dave">dave</a></div></div>
</div>
</body></html>`

func TestParseRankingBookURLs(t *testing.T) {
	urls, err := parseRankingBookURLs(rankingPageHTML)
	require.NoError(t, err)
	assert.Equal(t, []string{"/item/4087474232", "/item/4088725158"}, urls)
}

func TestParseRankingBookURLsEmptyPage(t *testing.T) {
	urls, err := parseRankingBookURLs("<html><body></body></html>")
	require.NoError(t, err)
	assert.Empty(t, urls)
}

func TestParseReviewerIDs(t *testing.T) {
	ids, err := parseReviewerIDs(reviewerPageHTML)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, ids)
}

func TestParseProfileTags(t *testing.T) {
	tags, err := parseProfileTags(profileTagsHTML)
	require.NoError(t, err)
	assert.Equal(t, []string{"読書", "漫画"}, tags)
}

func TestParseTagUserIDs(t *testing.T) {
	ids, err := parseTagUserIDs(tagPageHTML)
	require.NoError(t, err)
	assert.Equal(t, []string{"carol", "dave"}, ids)
}

func TestLastPathSegment(t *testing.T) {
	assert.Equal(t, "alice", lastPathSegment("/users/alice"))
	assert.Equal(t, "alice", lastPathSegment("/users/alice/"))
	assert.Equal(t, "4087474232", lastPathSegment("https://booklog.jp/item/4087474232"))
	assert.Equal(t, "plain", lastPathSegment("plain"))
}
