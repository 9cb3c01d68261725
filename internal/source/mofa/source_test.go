package mofa

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mofa_notifier/internal/domain"
)

func testLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	return loc
}

func testSource(t *testing.T, url string) *Source {
	t.Helper()
	return New(Config{
		URL:      url,
		Timeout:  5 * time.Second,
		Location: testLocation(t),
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func serveFile(t *testing.T, path string) *httptest.Server {
	t.Helper()
	body, err := os.ReadFile(path)
	require.NoError(t, err)

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/xml", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/xml; charset=utf-8")
		_, _ = w.Write(body)
	}))
}

func TestSource_FetchNotices(t *testing.T) {
	srv := serveFile(t, "testdata/newarrival.xml")
	defer srv.Close()

	notices, err := testSource(t, srv.URL).FetchNotices(context.Background())
	require.NoError(t, err)
	require.Len(t, notices, 3)

	first := notices[0]
	assert.Equal(t, "T40", first.TypeCode)
	assert.Equal(t, "危険情報", first.TypeName)
	assert.Equal(t, "海外安全情報(危険情報)", first.TypeNameLong)
	assert.Equal(t, "0066", first.CountryCode)
	assert.Equal(t, "タイ", first.CountryName)
	assert.Equal(t, "10", first.AreaCode)
	assert.Equal(t, "アジア", first.AreaName)
	assert.Equal(t, "在タイ日本国大使館", first.OfficeName)
	assert.Equal(t, "0066001", first.OfficeCode)
	assert.Equal(t, []int{2, 1}, first.RiskLevels.Descending())
	assert.False(t, first.InfectionLevels.Any())
	require.NotNil(t, first.PublishedAt)
	assert.True(t, time.Date(2026, 10, 19, 8, 30, 0, 0, testLocation(t)).Equal(*first.PublishedAt))
	assert.Equal(t, "Asia/Tokyo", first.PublishedAt.Location().String())
	assert.Equal(t, "2026/10/19 08:30:00", first.PublishedAtRaw)

	second := notices[1]
	assert.Equal(t, "R20", second.TypeCode)
	assert.Empty(t, second.OfficeName)
	assert.False(t, second.RiskLevels.Any())
}

func TestSource_FetchNotices_UnparseableDateKept(t *testing.T) {
	srv := serveFile(t, "testdata/newarrival.xml")
	defer srv.Close()

	notices, err := testSource(t, srv.URL).FetchNotices(context.Background())
	require.NoError(t, err)

	third := notices[2]
	assert.Nil(t, third.PublishedAt)
	assert.Equal(t, "not a date", third.PublishedAtRaw)
	assert.Empty(t, third.CountryName)
	assert.Empty(t, third.AreaName)
	assert.Empty(t, third.TypeNameLong)
	assert.Equal(t, []int{4, 2}, third.InfectionLevels.Descending())
}

func TestSource_FetchNotices_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	notices, err := testSource(t, srv.URL).FetchNotices(context.Background())
	require.Error(t, err)
	assert.Nil(t, notices)
	assert.True(t, errors.Is(err, domain.ErrNetwork))
	assert.Contains(t, err.Error(), "503")
}

func TestSource_FetchNotices_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := testSource(t, url).FetchNotices(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNetwork))
}

func TestSource_FetchNotices_MalformedXML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<opendata><mail><infoType>T40</infoType></opendata>`))
	}))
	defer srv.Close()

	_, err := testSource(t, srv.URL).FetchNotices(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrParse))
	assert.False(t, errors.Is(err, domain.ErrNetwork))
}

func TestDecode_NestedMailAndEmptyDocument(t *testing.T) {
	mails, err := Decode(strings.NewReader(`<root><group><mail><infoType>R10</infoType></mail></group></root>`))
	require.NoError(t, err)
	require.Len(t, mails, 1)
	assert.Equal(t, "R10", mails[0].InfoType)

	mails, err = Decode(strings.NewReader(`<opendata></opendata>`))
	require.NoError(t, err)
	assert.Empty(t, mails)
}

func TestDecode_EmptyBody(t *testing.T) {
	for _, body := range []string{"", `<?xml version="1.0" encoding="UTF-8"?>`} {
		mails, err := Decode(strings.NewReader(body))
		assert.True(t, errors.Is(err, domain.ErrParse), body)
		assert.Nil(t, mails)
	}
}

func TestDecode_TrailingContent(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "second root element", body: `<opendata><mail><infoType>R10</infoType></mail></opendata><junk/>`},
		{name: "text after root", body: `<opendata><mail><infoType>R10</infoType></mail></opendata>trailing text`},
		{name: "text before root", body: `junk<opendata><mail><infoType>R10</infoType></mail></opendata>`},
		{name: "mail after root", body: `<opendata></opendata><mail><infoType>R10</infoType></mail>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mails, err := Decode(strings.NewReader(tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrParse))
			assert.Nil(t, mails)
		})
	}
}

func TestDecode_TrailingWhitespaceAndComments(t *testing.T) {
	body := "<?xml version=\"1.0\"?>\n<opendata><mail><infoType>R10</infoType></mail></opendata>\n<!-- generated -->\n\n"

	mails, err := Decode(strings.NewReader(body))
	require.NoError(t, err)
	assert.Len(t, mails, 1)
}

func TestDecode_ShiftJIS(t *testing.T) {
	f, err := os.Open("testdata/newarrival_sjis.xml")
	require.NoError(t, err)
	defer f.Close()

	mails, err := Decode(f)
	require.NoError(t, err)
	require.Len(t, mails, 1)

	n, err := mails[0].toNotice(testLocation(t))
	require.NoError(t, err)
	assert.Equal(t, "領事メール(一般)", n.TypeNameLong)
	assert.Equal(t, "韓国", n.CountryName)
	assert.Equal(t, "アジア", n.AreaName)
	assert.Equal(t, "デモ行進に関する注意喚起", n.Title)
	assert.Equal(t, "在大韓民国日本国大使館", n.OfficeName)
}

func TestParseLeaveDate(t *testing.T) {
	loc := testLocation(t)

	got, err := ParseLeaveDate("2026/01/02 03:04:05", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, loc), got)
	assert.Equal(t, "Asia/Tokyo", got.Location().String())

	for _, raw := range []string{"", "2026-01-02 03:04:05", "2026/13/02 03:04:05", "2026/01/02"} {
		_, err := ParseLeaveDate(raw, loc)
		assert.True(t, errors.Is(err, domain.ErrDateParse), raw)
	}
}

func TestParseLeaveDate_UTCFallback(t *testing.T) {
	got, err := ParseLeaveDate("2026/01/02 03:04:05", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), got)
}
