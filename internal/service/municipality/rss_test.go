package municipality

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
<channel>
<title>Δήμος</title>
<item>
  <title><![CDATA[Road works]]></title>
  <description>&lt;p&gt;Main street closed&lt;/p&gt;</description>
  <link>https://example.gov/1</link>
  <pubDate>Mon, 03 Nov 2025 10:00:00 +0200</pubDate>
  <enclosure url="https://example.gov/1.jpg" type="image/jpeg" length="100"/>
</item>
<item>
  <title>Concert</title>
  <description>Free concert in the park</description>
  <link>https://example.gov/2</link>
  <media:content url="https://example.gov/2.png" medium="image"/>
</item>
<item>
  <title>Notice</title>
  <description>Plain notice</description>
  <pubDate>not a date</pubDate>
  <media:content url="https://example.gov/video.mp4"/>
</item>
</channel>
</rss>`

func TestRSSSource_Parse(t *testing.T) {
	posts, err := RSSSource{}.Parse([]byte(sampleRSS))
	require.NoError(t, err)
	require.Len(t, posts, 3)

	assert.Equal(t, "Road works", posts[0].Title)
	assert.Equal(t, "Main street closed", posts[0].Content)
	assert.Equal(t, "https://example.gov/1", posts[0].Link)
	assert.Equal(t, "https://example.gov/1.jpg", posts[0].ImageURL)
	require.NotNil(t, posts[0].PublishedDate)
	assert.True(t, posts[0].PublishedDate.Equal(time.Date(2025, 11, 3, 8, 0, 0, 0, time.UTC)))

	assert.Equal(t, "https://example.gov/2.png", posts[1].ImageURL)
	assert.Nil(t, posts[1].PublishedDate)

	assert.Empty(t, posts[2].ImageURL)
	assert.Empty(t, posts[2].Link)
	assert.Nil(t, posts[2].PublishedDate)
}

func TestRSSSource_AtomFallback(t *testing.T) {
	atom := `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>City</title>
  <entry>
    <title>Atom news</title>
    <link href="https://example.gov/a"/>
    <summary>Summary text</summary>
    <published>2025-11-01T10:00:00Z</published>
    <updated>2025-11-01T10:00:00Z</updated>
  </entry>
</feed>`

	posts, err := RSSSource{}.Parse([]byte(atom))
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Atom news", posts[0].Title)
	assert.Equal(t, "Summary text", posts[0].Content)
	assert.Equal(t, "https://example.gov/a", posts[0].Link)
	assert.NotNil(t, posts[0].PublishedDate)
}

func TestRSSSource_EmptyChannel(t *testing.T) {
	posts, err := RSSSource{}.Parse([]byte(`<rss version="2.0"><channel><title>x</title></channel></rss>`))
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestRSSSource_Unrecognized(t *testing.T) {
	_, err := RSSSource{}.Parse([]byte(`<html><body>nothing here</body></html>`))
	assert.Error(t, err)
}
