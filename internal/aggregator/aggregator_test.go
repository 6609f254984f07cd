package aggregator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespro-go/internal/types"
)

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func rec(d int, branch, channel string, v float64) types.SalesRecord {
	return types.SalesRecord{Date: day(d), DateLabel: day(d).Format("2006-01-02"), Branch: branch, Channel: channel, Sales: v}
}

func TestAggregate(t *testing.T) {
	records := []types.SalesRecord{
		rec(3, "A", "Город", 10),
		rec(1, "A", "Город", 30),
		rec(1, "A", "Область", 5),
		rec(2, "B", "Хорека", 15),
	}

	ins := Aggregate(records)

	assert.Equal(t, 60.0, ins.Total)
	assert.Equal(t, map[string]float64{"Город": 40, "Область": 5, "Хорека": 15}, ins.ByChannel)
	assert.Equal(t, map[string]float64{"A": 45, "B": 15}, ins.ByBranch)
	assert.Equal(t, 3, ins.Days)
	assert.True(t, ins.LastDate.Equal(day(3)))

	require.Len(t, ins.Trend, 3)
	assert.Equal(t, "2024-03-01", ins.Trend[0].Label)
	assert.Equal(t, 35.0, ins.Trend[0].Sales)
	assert.Equal(t, "2024-03-03", ins.Trend[2].Label)
}

func TestAggregate_UndatedLabelsSortAfterDates(t *testing.T) {
	records := []types.SalesRecord{
		{DateLabel: "неделя 2", Channel: "Город", Sales: 1},
		rec(5, "A", "Город", 2),
		{DateLabel: "неделя 1", Channel: "Город", Sales: 3},
	}

	ins := Aggregate(records)

	require.Len(t, ins.Trend, 3)
	assert.Equal(t, []string{"2024-03-05", "неделя 1", "неделя 2"},
		[]string{ins.Trend[0].Label, ins.Trend[1].Label, ins.Trend[2].Label})
}

func TestAggregate_Empty(t *testing.T) {
	ins := Aggregate(nil)

	assert.Zero(t, ins.Total)
	assert.Zero(t, ins.Days)
	assert.True(t, ins.LastDate.IsZero())
	assert.Empty(t, ChannelShares(ins))
}

func TestChannelShares(t *testing.T) {
	ins := Insight{Total: 100, ByChannel: map[string]float64{"Область": 25, "Город": 75, "Хорека": 0}}

	shares := ChannelShares(ins)

	require.Len(t, shares, 3)
	assert.Equal(t, "Город", shares[0].Channel)
	assert.InDelta(t, 0.75, shares[0].Share, 1e-9)
	assert.Equal(t, "Хорека", shares[2].Channel)
	assert.Zero(t, shares[2].Share)
}

func TestAggregate_MonthTotalsFollowLastDate(t *testing.T) {
	april := time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC)
	records := []types.SalesRecord{
		rec(30, "A", "Город", 100),
		{Date: april, DateLabel: "2024-04-02", Branch: "A", Channel: "Город", Sales: 7},
		{Date: april, DateLabel: "2024-04-02", Branch: "A", Channel: "Хорека", Sales: 3},
		{DateLabel: "итого", Branch: "A", Channel: "Город", Sales: 1000},
	}

	ins := Aggregate(records)

	assert.True(t, ins.LastDate.Equal(april))
	assert.Equal(t, 1110.0, ins.Total)
	assert.Equal(t, 10.0, ins.MonthTotal)
	assert.Equal(t, map[string]float64{"Город": 7, "Хорека": 3}, ins.MonthByChannel)
}
