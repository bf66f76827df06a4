package dashboard

// Default route paths.
const (
	PathRoot               = "/"
	PathExecutiveOverview  = "/executive-overview-dashboard"
	PathOperationsCommand  = "/operations-command-center"
	PathProductPerformance = "/product-performance-dashboard"
	PathSalesAnalytics     = "/sales-analytics-dashboard"
	PageExecutiveOverview  = "executive_overview"
	PageOperationsCommand  = "operations_command_center"
	PageProductPerformance = "product_performance"
	PageSalesAnalytics     = "sales_analytics"
	TableProducts          = "products"
	TableSalesAttribution  = "sales_attribution"
	TableInventoryStatus   = "inventory_status"
)

// ProductTableSchema lists products; select-all covers the rendered page.
func ProductTableSchema() TableSchema {
	return TableSchema{
		ID:    TableProducts,
		Title: "Product Catalog",
		Columns: []Column{
			{Key: "name", Label: "Product", Kind: ColumnString, Searchable: true},
			{Key: "sku", Label: "SKU", Kind: ColumnString, Searchable: true},
			{Key: "category", Label: "Category", Kind: ColumnString, Searchable: true},
			{Key: "price", Label: "Price", Kind: ColumnNumber},
			{Key: "stock_level", Label: "Stock", Kind: ColumnNumber},
			{Key: "units_sold", Label: "Units Sold", Kind: ColumnNumber},
			{Key: "revenue", Label: "Revenue", Kind: ColumnNumber},
			{Key: "rating", Label: "Rating", Kind: ColumnNumber},
			{Key: "status", Label: "Status", Kind: ColumnStatus, Options: []string{"active", "low_stock", "discontinued"}},
		},
		DefaultSort:      "revenue",
		DefaultDirection: SortDescending,
		DefaultPageSize:  5,
		SelectionScope:   SelectionPage,
	}
}

// SalesAttributionTableSchema lists campaign attribution; select-all covers the rendered page.
func SalesAttributionTableSchema() TableSchema {
	return TableSchema{
		ID:    TableSalesAttribution,
		Title: "Sales Attribution",
		Columns: []Column{
			{Key: "campaign", Label: "Campaign", Kind: ColumnString, Searchable: true},
			{Key: "channel", Label: "Channel", Kind: ColumnString, Searchable: true},
			{Key: "region", Label: "Region", Kind: ColumnString, Searchable: true},
			{Key: "touchpoints", Label: "Touchpoints", Kind: ColumnNumber},
			{Key: "conversions", Label: "Conversions", Kind: ColumnNumber},
			{Key: "revenue", Label: "Revenue", Kind: ColumnNumber},
			{Key: "roas", Label: "ROAS", Kind: ColumnNumber},
			{Key: "status", Label: "Status", Kind: ColumnStatus, Options: []string{"active", "paused", "completed"}},
		},
		DefaultSort:      "revenue",
		DefaultDirection: SortDescending,
		DefaultPageSize:  5,
		SelectionScope:   SelectionPage,
	}
}

// InventoryStatusTableSchema lists stock positions; select-all covers the whole filtered set.
func InventoryStatusTableSchema() TableSchema {
	return TableSchema{
		ID:    TableInventoryStatus,
		Title: "Inventory Status",
		Columns: []Column{
			{Key: "product", Label: "Product", Kind: ColumnString, Searchable: true},
			{Key: "sku", Label: "SKU", Kind: ColumnString, Searchable: true},
			{Key: "warehouse", Label: "Warehouse", Kind: ColumnString, Searchable: true},
			{Key: "on_hand", Label: "On Hand", Kind: ColumnNumber},
			{Key: "reorder_point", Label: "Reorder Point", Kind: ColumnNumber},
			{Key: "days_of_supply", Label: "Days of Supply", Kind: ColumnNumber},
			{Key: "status", Label: "Status", Kind: ColumnStatus, Options: []string{"in_stock", "low_stock", "out_of_stock"}},
		},
		DefaultSort:      "on_hand",
		DefaultDirection: SortAscending,
		DefaultPageSize:  8,
		SelectionScope:   SelectionFiltered,
	}
}

func regionFilter() PageFilter {
	return PageFilter{
		Key:     "region",
		Label:   "Region",
		Field:   "region",
		Options: []string{"north_america", "europe", "apac"},
		Default: FilterAll,
	}
}

// DefaultPages returns the four analytics pages in navigation order.
func DefaultPages() []PageDefinition {
	return []PageDefinition{
		{
			Code:           PageExecutiveOverview,
			Title:          "Executive Overview",
			TitleLocalized: map[string]string{"es": "Resumen ejecutivo"},
			Description:    "Company-wide revenue, customers and conversion at a glance.",
			Path:           PathExecutiveOverview,
			Icon:           "layout-dashboard",
			Metrics: []MetricSpec{
				{Key: "total_revenue", Label: "Total Revenue", Unit: UnitCurrency, Policy: &ThresholdPolicy{Warning: 1000000, Critical: 800000, HigherIsBetter: true}},
				{Key: "active_customers", Label: "Active Customers", Unit: UnitCount, Policy: &ThresholdPolicy{Warning: 8000, Critical: 6000, HigherIsBetter: true}},
				{Key: "conversion_rate", Label: "Conversion Rate", Unit: UnitPercent, Policy: &ThresholdPolicy{Warning: 3, Critical: 2, HigherIsBetter: true}},
				{Key: "churn_rate", Label: "Churn Rate", Unit: UnitPercent, Policy: &ThresholdPolicy{Warning: 3, Critical: 5}},
			},
			Charts: []ChartSpec{
				{ID: "revenue_trend", Title: "Revenue Trend", Type: ChartLine, Dataset: "monthly_revenue", Adapter: ChartAdapter{X: "month", Y: "revenue", Series: "region"}},
				{ID: "revenue_by_region", Title: "Revenue by Region", Type: ChartPie, Dataset: "monthly_revenue", Adapter: ChartAdapter{X: "region", Y: "revenue"}},
			},
			Filters: []PageFilter{regionFilter()},
		},
		{
			Code:           PageOperationsCommand,
			Title:          "Operations Command Center",
			TitleLocalized: map[string]string{"es": "Centro de operaciones"},
			Description:    "Fulfillment throughput, incidents and stock positions by warehouse.",
			Path:           PathOperationsCommand,
			Icon:           "activity",
			Metrics: []MetricSpec{
				{Key: "fulfillment_rate", Label: "Fulfillment Rate", Unit: UnitPercent, Policy: &ThresholdPolicy{Warning: 97, Critical: 93, HigherIsBetter: true}},
				{Key: "avg_processing_hours", Label: "Avg Processing Time", Unit: UnitHours, Policy: &ThresholdPolicy{Warning: 4, Critical: 6}},
				{Key: "open_incidents", Label: "Open Incidents", Unit: UnitCount, Policy: &ThresholdPolicy{Warning: 5, Critical: 10}, Dataset: "incidents", Aggregate: AggregateCount},
				{Key: "on_time_delivery", Label: "On-time Delivery", Unit: UnitPercent, Policy: &ThresholdPolicy{Warning: 95, Critical: 90, HigherIsBetter: true}},
			},
			Charts: []ChartSpec{
				{ID: "warehouse_throughput", Title: "Orders per Hour", Type: ChartBar, Dataset: "warehouse_throughput", Adapter: ChartAdapter{X: "hour", Y: "orders", Series: "warehouse"}},
				{ID: "incident_severity", Title: "Incidents by Severity", Type: ChartPie, Dataset: "incidents", Adapter: ChartAdapter{X: "severity", Y: "count"}},
			},
			Tables: []TableBinding{
				{Schema: InventoryStatusTableSchema(), Dataset: "inventory"},
			},
			Filters: []PageFilter{
				{Key: "warehouse", Label: "Warehouse", Field: "warehouse", Options: []string{"north", "south", "east"}, Default: FilterAll},
			},
		},
		{
			Code:           PageProductPerformance,
			Title:          "Product Performance",
			TitleLocalized: map[string]string{"es": "Rendimiento de productos"},
			Description:    "Catalog revenue, ratings and stock health.",
			Path:           PathProductPerformance,
			Icon:           "package",
			Metrics: []MetricSpec{
				{Key: "units_sold", Label: "Units Sold", Unit: UnitCount, Dataset: "products", Field: "units_sold", Aggregate: AggregateSum},
				{Key: "avg_rating", Label: "Average Rating", Unit: UnitCount, Policy: &ThresholdPolicy{Warning: 4.2, Critical: 3.8, HigherIsBetter: true}, Dataset: "products", Field: "rating", Aggregate: AggregateAvg},
				{Key: "return_rate", Label: "Return Rate", Unit: UnitPercent, Policy: &ThresholdPolicy{Warning: 4, Critical: 6}},
				{Key: "active_skus", Label: "Active SKUs", Unit: UnitCount, Dataset: "products", Aggregate: AggregateCount},
			},
			Charts: []ChartSpec{
				{ID: "product_revenue", Title: "Revenue by Product", Type: ChartBar, Dataset: "products", Adapter: ChartAdapter{X: "name", Y: "revenue"}},
				{ID: "category_share", Title: "Category Share", Type: ChartPie, Dataset: "products", Adapter: ChartAdapter{X: "category", Y: "units_sold"}},
			},
			Tables: []TableBinding{
				{Schema: ProductTableSchema(), Dataset: "products"},
			},
			Filters: []PageFilter{
				{Key: "category", Label: "Category", Field: "category", Options: []string{"phones", "tablets", "wearables", "audio", "laptops"}, Default: FilterAll},
			},
		},
		{
			Code:           PageSalesAnalytics,
			Title:          "Sales Analytics",
			TitleLocalized: map[string]string{"es": "Análisis de ventas"},
			Description:    "Sales trend and campaign attribution by channel.",
			Path:           PathSalesAnalytics,
			Icon:           "trending-up",
			Metrics: []MetricSpec{
				{Key: "total_sales", Label: "Total Sales", Unit: UnitCurrency, Policy: &ThresholdPolicy{Warning: 750000, Critical: 600000, HigherIsBetter: true}},
				{Key: "avg_order_value", Label: "Avg Order Value", Unit: UnitCurrency},
				{Key: "win_rate", Label: "Win Rate", Unit: UnitPercent, Policy: &ThresholdPolicy{Warning: 25, Critical: 20, HigherIsBetter: true}},
				{Key: "attributed_revenue", Label: "Attributed Revenue", Unit: UnitCurrency, Dataset: "sales_attribution", Field: "revenue", Aggregate: AggregateSum},
			},
			Charts: []ChartSpec{
				{ID: "sales_trend", Title: "Sales Trend", Type: ChartArea, Dataset: "monthly_revenue", Adapter: ChartAdapter{X: "month", Y: "revenue", Series: "region"}},
				{ID: "channel_attribution", Title: "Revenue by Channel", Type: ChartBar, Dataset: "sales_attribution", Adapter: ChartAdapter{X: "channel", Y: "revenue"}},
			},
			Tables: []TableBinding{
				{Schema: SalesAttributionTableSchema(), Dataset: "sales_attribution"},
			},
			Filters: []PageFilter{regionFilter()},
		},
	}
}
