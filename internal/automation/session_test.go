package automation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/lepinkainen/booksuggest/internal/errors"
)

func TestBuildExecAllocatorOptions(t *testing.T) {
	headless := buildExecAllocatorOptions(Options{Headless: true})
	windowed := buildExecAllocatorOptions(Options{Headless: false})

	assert.NotEmpty(t, headless)
	assert.Equal(t, len(headless), len(windowed))
}

func TestWaitForElementMapsDeadlineToTimeoutError(t *testing.T) {
	original := chromedpRunner
	defer func() { chromedpRunner = original }()

	chromedpRunner = func(ctx context.Context, actions ...chromedp.Action) error {
		return context.DeadlineExceeded
	}

	s := &Session{ctx: context.Background(), currentURL: "https://booklog.jp/item/1/42"}
	err := s.WaitForElement("#reviewLine", 3*time.Second)

	assert.True(t, apperrors.IsCrawlTimeoutError(err),
		"deadline exceeded must surface as CrawlTimeoutError, got %v", err)
}

func TestWaitForElementPassesThroughOtherErrors(t *testing.T) {
	original := chromedpRunner
	defer func() { chromedpRunner = original }()

	browserErr := errors.New("browser crashed")
	chromedpRunner = func(ctx context.Context, actions ...chromedp.Action) error {
		return browserErr
	}

	s := &Session{ctx: context.Background()}
	err := s.WaitForElement("#reviewLine", time.Second)

	assert.False(t, apperrors.IsCrawlTimeoutError(err))
	assert.ErrorIs(t, err, browserErr)
}

func TestNavigateRecordsCurrentURL(t *testing.T) {
	original := chromedpRunner
	defer func() { chromedpRunner = original }()

	chromedpRunner = func(ctx context.Context, actions ...chromedp.Action) error {
		return nil
	}

	s := &Session{ctx: context.Background()}
	assert.NoError(t, s.Navigate("https://booklog.jp/profiletags"))
	assert.Equal(t, "https://booklog.jp/profiletags", s.currentURL)
}
