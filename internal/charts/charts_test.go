package charts

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespro-go/internal/testutil"
	"salespro-go/internal/types"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestTrend(t *testing.T) {
	points := []types.DailyPoint{
		{Date: testutil.Day(1), Label: "2024-03-01", Sales: 150},
		{Date: testutil.Day(2), Label: "2024-03-02", Sales: 220},
		{Date: testutil.Day(3), Label: "2024-03-03", Sales: 180},
	}

	img, err := Trend(points, PNG)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	svg, err := Trend(points, SVG)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
}

func TestTrend_SinglePointAndUndatedLabels(t *testing.T) {
	img, err := Trend([]types.DailyPoint{{Date: testutil.Day(5), Label: "2024-03-05", Sales: 10}}, PNG)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	img, err = Trend([]types.DailyPoint{{Label: "неделя 1", Sales: 10}, {Label: "неделя 2", Sales: 30}}, PNG)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))
}

func TestTrend_Empty(t *testing.T) {
	_, err := Trend(nil, PNG)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestChannelPie(t *testing.T) {
	shares := []types.ChannelShare{
		{Channel: "Город", Sales: 400, Share: 0.57},
		{Channel: "Область", Sales: 200, Share: 0.29},
		{Channel: "Хорека", Sales: 100, Share: 0.14},
	}

	img, err := ChannelPie(shares, PNG)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, pngMagic))

	svg, err := ChannelPie(shares, SVG)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "<svg")
}

func TestChannelPie_NoSales(t *testing.T) {
	_, err := ChannelPie([]types.ChannelShare{{Channel: "Город"}}, PNG)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("svg")
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", f.ContentType())

	_, err = ParseFormat("gif")
	assert.Error(t, err)
}
