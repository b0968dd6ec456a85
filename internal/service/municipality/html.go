// internal/service/municipality/html.go

package municipality

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/stelios-avg/locom/internal/domain/municipality"
)

const (
	nicosiaBaseURL = "https://www.nicosia.org.cy"

	// readMoreMarker ends the announcement body on the municipal site
	readMoreMarker = "Περισσότερα"

	htmlMaxContent = 800
	htmlMaxPosts   = 20
)

var (
	// "05 Νοε. 2025 (13:40)" opens every announcement
	htmlDateStampRe = regexp.MustCompile(`\d{1,2}\s+\p{L}+\.?\s+\d{4}\s+\(\d{2}:\d{2}\)`)
	htmlDatePartsRe = regexp.MustCompile(`(\d{1,2})\s+(\p{L}+\.?)\s+(\d{4})\s+\((\d{2}):(\d{2})\)`)
	htmlBeforeMore  = regexp.MustCompile(`(?is)^(.*?)` + readMoreMarker)
)

// greekMonths maps abbreviated and genitive month names to time.Month
var greekMonths = map[string]time.Month{
	"ιαν": time.January, "φεβ": time.February, "μαρ": time.March, "απρ": time.April,
	"μαϊ": time.May, "μαι": time.May, "ιουν": time.June, "ιουλ": time.July,
	"αυγ": time.August, "σεπ": time.September, "οκτ": time.October, "νοε": time.November,
	"δεκ": time.December,
	"ιανου": time.January, "φεβρου": time.February, "μαρτιου": time.March,
	"απριλιου": time.April, "μαιου": time.May, "ιουνιου": time.June,
	"ιουλιου": time.July, "αυγουστου": time.August, "σεπτεμβριου": time.September,
	"οκτωβριου": time.October, "νοεμβριου": time.November, "δεκεμβριου": time.December,
}

// defaultMonth is assumed when a month name is not recognized
const defaultMonth = time.November

// HTMLSource scrapes the announcements page of the Nicosia municipality
type HTMLSource struct {
	// BaseURL makes relative links absolute
	BaseURL string

	// Location interprets the page's wall-clock timestamps
	Location *time.Location
}

// NewHTMLSource creates a scraper for the municipal site
func NewHTMLSource() HTMLSource {
	return HTMLSource{BaseURL: nicosiaBaseURL, Location: time.Local}
}

// Kind implements Source
func (HTMLSource) Kind() SourceKind { return SourceHTML }

// Parse implements Source. The page is split on date stamps and each segment
// becomes one announcement. Segments without both a heading and a body are
// dropped only when both are missing.
func (s HTMLSource) Parse(body []byte) ([]municipality.ImportedPost, error) {
	page := string(body)
	if !utf8.ValidString(page) {
		return nil, fmt.Errorf("parse html feed: document is not valid UTF-8")
	}

	stamps := htmlDateStampRe.FindAllStringIndex(page, -1)

	posts := make([]municipality.ImportedPost, 0, len(stamps))
	for i, loc := range stamps {
		end := len(page)
		if i+1 < len(stamps) {
			end = stamps[i+1][0]
		}

		post, ok := s.parseSegment(page[loc[0]:loc[1]], page[loc[1]:end])
		if !ok {
			continue
		}
		posts = append(posts, post)
	}

	if len(posts) > htmlMaxPosts {
		posts = posts[:htmlMaxPosts]
	}
	return posts, nil
}

func (s HTMLSource) parseSegment(stamp, block string) (municipality.ImportedPost, bool) {
	var post municipality.ImportedPost

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(block))
	if err != nil {
		return post, false
	}

	post.Title = strings.TrimSpace(doc.Find("h4, h5, h6").First().Text())
	if post.Title == "" {
		post.Title = strings.TrimSpace(doc.Find("strong").First().Text())
	}

	bodyHTML := block
	if m := htmlBeforeMore.FindStringSubmatch(block); m != nil {
		bodyHTML = m[1]
	}
	post.Content = truncateRunes(collapse(bodyHTML), htmlMaxContent)

	if post.Title == "" && post.Content == "" {
		return post, false
	}

	post.Link = s.absolute(findLink(doc))
	post.PublishedDate = s.parseStamp(stamp)

	return post, true
}

// findLink prefers the anchor carrying the read-more marker, then any href
func findLink(doc *goquery.Document) string {
	var link string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.Contains(a.Text(), readMoreMarker) {
			link, _ = a.Attr("href")
			return false
		}
		return true
	})
	if link != "" {
		return link
	}

	link, _ = doc.Find("[href]").First().Attr("href")
	return link
}

func (s HTMLSource) absolute(link string) string {
	if link == "" || strings.HasPrefix(link, "http") {
		return link
	}
	base := strings.TrimSuffix(s.BaseURL, "/")
	if strings.HasPrefix(link, "/") {
		return base + link
	}
	return base + "/" + link
}

func (s HTMLSource) parseStamp(stamp string) *time.Time {
	m := htmlDatePartsRe.FindStringSubmatch(stamp)
	if m == nil {
		return nil
	}

	day, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[3])
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])

	loc := s.Location
	if loc == nil {
		loc = time.Local
	}

	t := time.Date(year, monthFromGreek(m[2]), day, hour, minute, 0, 0, loc)
	return &t
}

// monthFromGreek resolves a month name, falling back to its first three
// letters and then to November
func monthFromGreek(name string) time.Month {
	key := strings.Replace(strings.ToLower(name), ".", "", 1)
	if month, ok := greekMonths[key]; ok {
		return month
	}

	if utf8.RuneCountInString(key) > 3 {
		if month, ok := greekMonths[truncateRunes(key, 3)]; ok {
			return month
		}
	}

	return defaultMonth
}
