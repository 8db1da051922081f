package crawl

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	rankingBookSelector = "div.autopagerize_page_element > ul.ranking-list > li > div.desc > h3 > a"
	reviewerSelector    = "div#reviewLine > ul > li > div.summary > div.user-info-area > div > div.user-name-area > p > a"
	profileTagSelector  = "ul.tagList > li > a"
	tagUserSelector     = "div.autopagerize_page_element > div.tagListArea"
)

// parseRankingBookURLs extracts book page paths from an annual ranking page.
func parseRankingBookURLs(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var urls []string
	doc.Find(rankingBookSelector).Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok && href != "" {
			urls = append(urls, href)
		}
	})
	return urls, nil
}

// parseReviewerIDs extracts user ids from a book's reviewer listing. The
// profile link's last path segment is the user id.
func parseReviewerIDs(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var ids []string
	doc.Find(reviewerSelector).Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			if id := lastPathSegment(href); id != "" {
				ids = append(ids, id)
			}
		}
	})
	return ids, nil
}

// parseProfileTags extracts popular profile tag names. The link text carries
// a trailing usage count in parentheses which is stripped.
func parseProfileTags(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var tags []string
	doc.Find(profileTagSelector).Each(func(_ int, s *goquery.Selection) {
		name := strings.TrimSpace(strings.SplitN(s.Text(), "(", 2)[0])
		if name != "" {
			tags = append(tags, name)
		}
	})
	return tags, nil
}

// parseTagUserIDs extracts user ids from a profile tag listing page.
func parseTagUserIDs(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var ids []string
	doc.Find(tagUserSelector).Each(func(_ int, s *goquery.Selection) {
		link := s.Find("div > a").First()
		if href, ok := link.Attr("href"); ok {
			if id := lastPathSegment(href); id != "" {
				ids = append(ids, id)
			}
		}
	})
	return ids, nil
}

func lastPathSegment(href string) string {
	href = strings.TrimSuffix(href, "/")
	idx := strings.LastIndex(href, "/")
	if idx < 0 {
		return href
	}
	return href[idx+1:]
}
