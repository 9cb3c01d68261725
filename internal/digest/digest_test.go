package digest

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mofa_notifier/internal/domain"
	"mofa_notifier/internal/lookup"
)

var jst = time.FixedZone("JST", 9*60*60)

func testFormatter() *Formatter {
	return NewFormatter(lookup.New(map[string]string{"0066": "タイ"}, nil))
}

func at(hour, minute int) *time.Time {
	t := time.Date(2026, 10, 19, hour, minute, 0, 0, jst)
	return &t
}

func TestBuild_Empty(t *testing.T) {
	text, ok := testFormatter().Build(nil, time.Now())
	assert.False(t, ok)
	assert.Empty(t, text)
}

func TestBuild_FullBlock(t *testing.T) {
	var risk domain.SeverityFlags
	risk = risk.Set(1).Set(2)
	var infection domain.SeverityFlags
	infection = infection.Set(3)

	notices := []domain.Notice{{
		TypeCode:        "T40",
		TypeName:        "危険情報",
		PublishedAtRaw:  "2026/10/19 08:30:00",
		PublishedAt:     at(8, 30),
		CountryCode:     "0066",
		CountryName:     "タイ王国",
		AreaName:        "アジア",
		Title:           "タイの危険情報",
		DetailURL:       "https://example.com/t40",
		OfficeCode:      "0066001",
		OfficeName:      "在タイ日本国大使館",
		RiskLevels:      risk,
		InfectionLevels: infection,
	}}

	text, ok := testFormatter().Build(notices, time.Date(2026, 10, 19, 9, 5, 0, 0, jst))
	require.True(t, ok)

	want := strings.Join([]string{
		"*【外務省 海外安全情報オープンデータ 新着】*",
		"取得時刻（JST）: 2026-10-19 09:05",
		"",
		"• *タイ*（アジア）\n" +
			"　種別: 海外安全情報(危険情報)（T40）\n" +
			"　日時: 2026/10/19 08:30\n" +
			"　発出公館: 在タイ日本国大使館（0066001）\n" +
			"　危険情報レベル: L2 / L1 / 感染症危険レベル: L3\n" +
			"　タイトル: タイの危険情報\n" +
			"　詳細: https://example.com/t40\n",
	}, "\n")

	if diff := cmp.Diff(want, text); diff != "" {
		t.Errorf("Build() mismatch (-want +got):\n%s", diff)
	}
}

func TestBlock_OptionalLinesOmitted(t *testing.T) {
	n := &domain.Notice{
		TypeCode:       "X99",
		TypeName:       "新種別",
		PublishedAtRaw: "2026/10/19 07:00:00",
		PublishedAt:    at(7, 0),
		CountryCode:    "9999",
		Title:          "タイトル",
		DetailURL:      "https://example.com/x",
	}

	want := "• *国不明（国コード: 9999）*（）\n" +
		"　種別: 新種別（X99）\n" +
		"　日時: 2026/10/19 07:00\n" +
		"　タイトル: タイトル\n" +
		"　詳細: https://example.com/x\n"

	if diff := cmp.Diff(want, testFormatter().Block(n)); diff != "" {
		t.Errorf("Block() mismatch (-want +got):\n%s", diff)
	}
}

func TestBlock_RawDateWhenUnparsed(t *testing.T) {
	n := &domain.Notice{TypeCode: "C30", PublishedAtRaw: "garbage"}
	assert.Contains(t, testFormatter().Block(n), "　日時: garbage\n")
}

func TestLevelLine_InfectionTiersDescending(t *testing.T) {
	var infection domain.SeverityFlags
	infection = infection.Set(2).Set(4)

	n := &domain.Notice{InfectionLevels: infection}

	assert.Equal(t, "L4 / L2", Tiers(n.InfectionLevels))
	assert.Equal(t, "感染症危険レベル: L4 / L2", LevelLine(n))
}

func TestFormatter_NilTableFallsBackToFeedNames(t *testing.T) {
	n := &domain.Notice{
		TypeCode:     "T40",
		TypeNameLong: "海外安全情報(危険情報)",
		CountryCode:  "0066",
		CountryName:  "タイ王国",
		AreaName:     "アジア",
	}

	assert.True(t, strings.HasPrefix(NewFormatter(nil).Block(n), "• *タイ王国*（アジア）\n"))
}

func TestLevelLine_NoneFlagged(t *testing.T) {
	n := &domain.Notice{TypeCode: "R10", PublishedAt: at(1, 0)}

	assert.Empty(t, LevelLine(n))
	assert.NotContains(t, testFormatter().Block(n), "レベル")
}

func TestBuild_SortsByPublishTime(t *testing.T) {
	notices := []domain.Notice{
		{TypeCode: "R10", Title: "first", PublishedAt: at(6, 0)},
		{TypeCode: "R10", Title: "third", PublishedAt: at(8, 0)},
		{TypeCode: "R10", Title: "second", PublishedAt: at(7, 0)},
	}

	text, ok := testFormatter().Build(notices, time.Date(2026, 10, 19, 9, 0, 0, 0, jst))
	require.True(t, ok)

	first := strings.Index(text, "タイトル: first")
	second := strings.Index(text, "タイトル: second")
	third := strings.Index(text, "タイトル: third")
	require.True(t, first >= 0 && second >= 0 && third >= 0)
	assert.Less(t, first, second)
	assert.Less(t, second, third)

	assert.Equal(t, "first", notices[0].Title, "input must not be reordered")
}

func TestBuild_StableForEqualTimes(t *testing.T) {
	notices := []domain.Notice{
		{TypeCode: "R10", Title: "a", PublishedAt: at(6, 0)},
		{TypeCode: "R10", Title: "b", PublishedAt: at(6, 0)},
		{TypeCode: "R10", Title: "c", PublishedAt: at(5, 0)},
	}

	text, _ := testFormatter().Build(notices, time.Now())

	c := strings.Index(text, "タイトル: c")
	a := strings.Index(text, "タイトル: a")
	b := strings.Index(text, "タイトル: b")
	assert.Less(t, c, a)
	assert.Less(t, a, b)
}
