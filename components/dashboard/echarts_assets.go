package dashboard

import (
	"os"
	"strings"
)

const (
	// DefaultEChartsCDN is the public host serving the ECharts runtime and themes.
	DefaultEChartsCDN = "https://go-echarts.github.io/go-echarts-assets/assets/"
	// envEChartsCDN overrides the default assets host (e.g., to point at a self-hosted bucket).
	envEChartsCDN = "GO_DASHBOARD_ECHARTS_CDN"
)

// DefaultEChartsAssetsHost returns the default assets host, respecting GO_DASHBOARD_ECHARTS_CDN if set.
func DefaultEChartsAssetsHost() string {
	if host := strings.TrimSpace(os.Getenv(envEChartsCDN)); host != "" {
		return ensureTrailingSlash(host)
	}
	return DefaultEChartsCDN
}

func ensureTrailingSlash(value string) string {
	if value == "" {
		return ""
	}
	if strings.HasSuffix(value, "/") {
		return value
	}
	return value + "/"
}
