package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestTrendOf(t *testing.T) {
	assert.Equal(t, TrendUp, TrendOf(0.01))
	assert.Equal(t, TrendDown, TrendOf(-3))
	assert.Equal(t, TrendFlat, TrendOf(0))
}

func TestThresholdPolicyHigherIsBetter(t *testing.T) {
	policy := ThresholdPolicy{Warning: 97, Critical: 93, HigherIsBetter: true}
	assert.Equal(t, StatusGood, policy.Classify(98))
	assert.Equal(t, StatusWarning, policy.Classify(97))
	assert.Equal(t, StatusWarning, policy.Classify(95))
	assert.Equal(t, StatusCritical, policy.Classify(93))
}

func TestThresholdPolicyLowerIsBetter(t *testing.T) {
	policy := ThresholdPolicy{Warning: 5, Critical: 10}
	assert.Equal(t, StatusGood, policy.Classify(4))
	assert.Equal(t, StatusWarning, policy.Classify(5))
	assert.Equal(t, StatusCritical, policy.Classify(12))
}

func TestBuildMetricCardFromPrior(t *testing.T) {
	card := BuildMetricCard(MetricInput{
		Key:        "total_revenue",
		Label:      "Total Revenue",
		Unit:       UnitCurrency,
		Value:      1250000,
		PriorValue: ptr(1000000),
	}, &ThresholdPolicy{Warning: 1000000, Critical: 800000, HigherIsBetter: true}, "en")

	assert.Equal(t, "$1,250,000", card.Display)
	assert.Equal(t, 250000.0, card.Delta)
	assert.Equal(t, 25.0, card.DeltaPercent)
	assert.Equal(t, TrendUp, card.Trend)
	assert.Equal(t, StatusGood, card.Status)
}

func TestBuildMetricCardExplicitDeltaWins(t *testing.T) {
	card := BuildMetricCard(MetricInput{Value: 10, PriorValue: ptr(5), Delta: ptr(-2)}, nil, "")
	assert.Equal(t, -2.0, card.Delta)
	assert.Equal(t, TrendDown, card.Trend)
	assert.Equal(t, StatusGood, card.Status, "no policy means good")
}

func TestBuildMetricCardWithoutComparison(t *testing.T) {
	card := BuildMetricCard(MetricInput{Value: 7, Unit: UnitCount}, &ThresholdPolicy{Warning: 5, Critical: 10}, "en")
	assert.Equal(t, TrendFlat, card.Trend)
	assert.Equal(t, 0.0, card.DeltaPercent)
	assert.Equal(t, StatusWarning, card.Status)
	assert.Equal(t, "7", card.Display)
}

func TestFormatMetricValue(t *testing.T) {
	assert.Equal(t, "1,234", FormatMetricValue(UnitCount, 1234, "en"))
	assert.Equal(t, "4.40", FormatMetricValue(UnitCount, 4.4, "en"))
	assert.Equal(t, "3.4%", FormatMetricValue(UnitPercent, 3.4, "en"))
	assert.Equal(t, "4.2h", FormatMetricValue(UnitHours, 4.2, ""))
	assert.Equal(t, "1,234", FormatMetricValue(UnitCount, 1234, "not a locale"))
}
