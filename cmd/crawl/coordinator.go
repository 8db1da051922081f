package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lepinkainen/booksuggest/internal/store"
)

const siteDefaultBaseURL = "https://booklog.jp"

// Browser is the subset of the automation session the crawl needs.
type Browser interface {
	Navigate(url string) error
	WaitForElement(selector string, timeout time.Duration) error
	HTML() (string, error)
}

// BookLister fetches a user's reading log.
type BookLister interface {
	UserBooks(ctx context.Context, userID string) ([]BookEntry, error)
}

// Config bounds the crawl traversal and its pacing.
type Config struct {
	CheckpointPath   string
	MaxRankingPages  int
	MaxReviewerPages int
	MaxTagPages      int
	WaitTimeout      time.Duration
	PageSettle       time.Duration
	CooldownEvery    int
	Cooldown         time.Duration
}

// DefaultConfig returns the traversal bounds used in production crawls.
func DefaultConfig(checkpointPath string) Config {
	return Config{
		CheckpointPath:   checkpointPath,
		MaxRankingPages:  6,
		MaxReviewerPages: 1,
		MaxTagPages:      100,
		WaitTimeout:      3 * time.Second,
		PageSettle:       3 * time.Second,
		CooldownEvery:    100,
		Cooldown:         60 * time.Second,
	}
}

// Coordinator drives the sequential ingestion walk. One browser tab, one
// user at a time; any element-wait timeout or malformed payload aborts the
// whole run so the checkpoint never advances past unverified work.
type Coordinator struct {
	browser Browser
	store   store.Store
	books   BookLister
	cfg     Config
	baseURL string

	// sleep is replaceable in tests to skip real cooldowns.
	sleep func(time.Duration)

	processed int
}

// NewCoordinator creates a crawl coordinator.
func NewCoordinator(browser Browser, st store.Store, books BookLister, cfg Config) *Coordinator {
	return &Coordinator{
		browser: browser,
		store:   st,
		books:   books,
		cfg:     cfg,
		baseURL: siteDefaultBaseURL,
		sleep:   time.Sleep,
	}
}

// RunRanking walks annual rankings from startYear down to endYear inclusive.
// Progress is checkpointed after every completed user; on restart the walk
// skips everything the checkpoint covers and reattempts the checkpoint
// position itself once, in case that user's books were only partly ingested.
func (c *Coordinator) RunRanking(ctx context.Context, startYear, endYear int) error {
	resume, err := LoadCheckpoint(c.cfg.CheckpointPath)
	if err != nil {
		return err
	}
	if resume != nil {
		slog.Info("Resuming ranking crawl",
			"year", resume.Year, "page", resume.Page,
			"book", resume.BookIndex, "user", resume.UserIndex)
	}

	for year := startYear; year >= endYear; year-- {
		if resume != nil && year > resume.Year {
			continue
		}
		slog.Info("Processing year", "year", year)

		for page := 1; page <= c.cfg.MaxRankingPages; page++ {
			if resume != nil && year == resume.Year && page < resume.Page {
				continue
			}

			bookURLs, err := c.rankingBookURLs(year, page)
			if err != nil {
				return err
			}
			if len(bookURLs) == 0 {
				continue
			}

			for bookIdx, bookURL := range bookURLs {
				if resume != nil && year == resume.Year && page == resume.Page && bookIdx < resume.BookIndex {
					continue
				}

				userIDs, err := c.reviewerIDs(bookURL)
				if err != nil {
					return err
				}

				for userIdx, userID := range userIDs {
					if resume.Covers(year, page, bookIdx, userIdx) {
						continue
					}

					atResume := resume.At(year, page, bookIdx, userIdx)
					exists, err := c.store.UserExists(userID)
					if err != nil {
						return err
					}
					if exists && !atResume {
						slog.Debug("User already ingested", "user_id", userID)
						continue
					}

					slog.Info("Processing user",
						"year", year, "page", page,
						"book", fmt.Sprintf("%d/%d", bookIdx+1, len(bookURLs)),
						"user", fmt.Sprintf("%d/%d", userIdx+1, len(userIDs)),
						"user_id", userID)

					if err := c.ingestUser(ctx, userID); err != nil {
						return err
					}
					if err := SaveCheckpoint(c.cfg.CheckpointPath, Checkpoint{
						Year:      year,
						Page:      page,
						BookIndex: bookIdx,
						UserIndex: userIdx,
					}); err != nil {
						return err
					}
					c.cooldown()
				}
			}
		}
	}

	slog.Info("Ranking crawl completed", "processed", c.processed)
	return nil
}

// RunTags walks the popular profile tag listings. The tag walk shares the
// dedup, cooldown and abort rules with the ranking walk but has no per-book
// fan-out and no checkpoint.
func (c *Coordinator) RunTags(ctx context.Context) error {
	tags, err := c.popularTags()
	if err != nil {
		return err
	}
	slog.Info("Found popular profile tags", "count", len(tags))

	for tagIdx, tag := range tags {
		slog.Info("Processing tag", "tag", tag, "progress", fmt.Sprintf("%d/%d", tagIdx+1, len(tags)))

		for page := 1; page <= c.cfg.MaxTagPages; page++ {
			userIDs, err := c.tagUserIDs(tag, page)
			if err != nil {
				return err
			}

			for _, userID := range userIDs {
				exists, err := c.store.UserExists(userID)
				if err != nil {
					return err
				}
				if exists {
					slog.Debug("User already ingested", "user_id", userID)
					continue
				}

				slog.Info("Processing user", "tag", tag, "user_id", userID)
				if err := c.ingestUser(ctx, userID); err != nil {
					return err
				}
				c.cooldown()
			}

			// A short page means the tag's listing is exhausted.
			if len(userIDs) < 10 {
				break
			}
		}
	}

	slog.Info("Tag crawl completed", "processed", c.processed)
	return nil
}

// ingestUser records the user, their books and the interaction edges. All
// inserts are insert-if-absent so revisiting a user never duplicates data.
func (c *Coordinator) ingestUser(ctx context.Context, userID string) error {
	if err := c.store.InsertUser(userID); err != nil {
		return err
	}

	entries, err := c.books.UserBooks(ctx, userID)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := c.store.InsertBook(entry.ID, entry.Title); err != nil {
			return err
		}
		if err := c.store.InsertInteraction(userID, entry.ID); err != nil {
			return err
		}
	}

	c.processed++
	return nil
}

func (c *Coordinator) cooldown() {
	if c.cfg.CooldownEvery <= 0 || c.cfg.Cooldown <= 0 {
		return
	}
	if c.processed > 0 && c.processed%c.cfg.CooldownEvery == 0 {
		slog.Info("Cooling down", "processed", c.processed, "duration", c.cfg.Cooldown)
		c.sleep(c.cfg.Cooldown)
	}
}

func (c *Coordinator) rankingBookURLs(year, page int) ([]string, error) {
	url := fmt.Sprintf("%s/ranking/annual/%d/book?page=%d", c.baseURL, year, page)
	if err := c.browser.Navigate(url); err != nil {
		return nil, err
	}
	c.sleep(c.cfg.PageSettle)

	html, err := c.browser.HTML()
	if err != nil {
		return nil, err
	}
	return parseRankingBookURLs(html)
}

func (c *Coordinator) reviewerIDs(bookURL string) ([]string, error) {
	var ids []string
	for page := 1; page <= c.cfg.MaxReviewerPages; page++ {
		url := fmt.Sprintf("%s%s?page=%d", c.baseURL, bookURL, page)
		if err := c.browser.Navigate(url); err != nil {
			return nil, err
		}
		if err := c.browser.WaitForElement("#reviewLine", c.cfg.WaitTimeout); err != nil {
			return nil, err
		}

		html, err := c.browser.HTML()
		if err != nil {
			return nil, err
		}
		pageIDs, err := parseReviewerIDs(html)
		if err != nil {
			return nil, err
		}
		ids = append(ids, pageIDs...)
	}
	return ids, nil
}

func (c *Coordinator) popularTags() ([]string, error) {
	if err := c.browser.Navigate(c.baseURL + "/profiletags"); err != nil {
		return nil, err
	}
	c.sleep(c.cfg.PageSettle)

	html, err := c.browser.HTML()
	if err != nil {
		return nil, err
	}
	return parseProfileTags(html)
}

func (c *Coordinator) tagUserIDs(tag string, page int) ([]string, error) {
	url := fmt.Sprintf("%s/profiletag/%s?page=%d", c.baseURL, tag, page)
	if err := c.browser.Navigate(url); err != nil {
		return nil, err
	}
	if err := c.browser.WaitForElement(".autopagerize_page_element", c.cfg.WaitTimeout); err != nil {
		return nil, err
	}

	html, err := c.browser.HTML()
	if err != nil {
		return nil, err
	}
	return parseTagUserIDs(html)
}
