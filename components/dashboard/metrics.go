package dashboard

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Trend is the direction of a metric's change.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// StatusTier classifies a metric value against its threshold policy.
type StatusTier string

const (
	StatusGood     StatusTier = "good"
	StatusWarning  StatusTier = "warning"
	StatusCritical StatusTier = "critical"
)

// Metric units understood by FormatMetricValue.
const (
	UnitCount    = "count"
	UnitCurrency = "currency"
	UnitPercent  = "percent"
	UnitHours    = "hours"
)

// ThresholdPolicy is the caller-supplied per-metric threshold table.
// When HigherIsBetter is set, values at or below the thresholds degrade the tier;
// otherwise values at or above them do.
type ThresholdPolicy struct {
	Warning        float64 `json:"warning" yaml:"warning"`
	Critical       float64 `json:"critical" yaml:"critical"`
	HigherIsBetter bool    `json:"higher_is_better" yaml:"higher_is_better"`
}

// Classify returns the status tier for value.
func (p ThresholdPolicy) Classify(value float64) StatusTier {
	if p.HigherIsBetter {
		switch {
		case value <= p.Critical:
			return StatusCritical
		case value <= p.Warning:
			return StatusWarning
		default:
			return StatusGood
		}
	}
	switch {
	case value >= p.Critical:
		return StatusCritical
	case value >= p.Warning:
		return StatusWarning
	default:
		return StatusGood
	}
}

// TrendOf returns up for positive deltas, down for negative, flat otherwise.
func TrendOf(delta float64) Trend {
	switch {
	case delta > 0:
		return TrendUp
	case delta < 0:
		return TrendDown
	default:
		return TrendFlat
	}
}

// MetricInput is the precomputed scalar behind a metric card.
type MetricInput struct {
	Key        string
	Label      string
	Unit       string
	Value      float64
	PriorValue *float64
	Delta      *float64
}

// DeltaValue returns the explicit delta, or value minus prior when only the prior is known.
func (in MetricInput) DeltaValue() float64 {
	if in.Delta != nil {
		return *in.Delta
	}
	if in.PriorValue != nil {
		return in.Value - *in.PriorValue
	}
	return 0
}

// MetricCard is the render-ready summary of a single metric.
type MetricCard struct {
	Key          string     `json:"key"`
	Label        string     `json:"label"`
	Unit         string     `json:"unit,omitempty"`
	Value        float64    `json:"value"`
	Display      string     `json:"display"`
	Delta        float64    `json:"delta"`
	DeltaPercent float64    `json:"delta_percent"`
	Trend        Trend      `json:"trend"`
	Status       StatusTier `json:"status"`
}

// BuildMetricCard classifies a metric. A nil policy always yields StatusGood.
func BuildMetricCard(in MetricInput, policy *ThresholdPolicy, locale string) MetricCard {
	delta := in.DeltaValue()
	card := MetricCard{
		Key:     in.Key,
		Label:   in.Label,
		Unit:    in.Unit,
		Value:   in.Value,
		Display: FormatMetricValue(in.Unit, in.Value, locale),
		Delta:   delta,
		Trend:   TrendOf(delta),
		Status:  StatusGood,
	}
	if in.PriorValue != nil && *in.PriorValue != 0 {
		card.DeltaPercent = math.Round(delta/math.Abs(*in.PriorValue)*1000) / 10
	}
	if policy != nil {
		card.Status = policy.Classify(in.Value)
	}
	return card
}

// FormatMetricValue renders value for display using locale-aware digit grouping.
func FormatMetricValue(unit string, value float64, locale string) string {
	p := message.NewPrinter(localeTag(locale))
	switch unit {
	case UnitCurrency:
		return "$" + p.Sprintf("%d", int64(math.Round(value)))
	case UnitPercent:
		return p.Sprintf("%.1f%%", value)
	case UnitHours:
		return p.Sprintf("%.1fh", value)
	default:
		if value == math.Trunc(value) {
			return p.Sprintf("%d", int64(value))
		}
		return p.Sprintf("%.2f", value)
	}
}

func localeTag(locale string) language.Tag {
	if locale == "" {
		return language.English
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	return tag
}
