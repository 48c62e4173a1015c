package structs

type MetricConst string

const (
	MetricTradeExecuted  MetricConst = "tradeauto_trades_executed_total"
	MetricTradeSimulated MetricConst = "tradeauto_trades_simulated_total"
	MetricTradeSkipped   MetricConst = "tradeauto_trades_skipped_total"
	MetricTradeFailed    MetricConst = "tradeauto_trades_failed_total"

	MetricPublishPrimary  MetricConst = "tradeauto_publish_primary_total"
	MetricPublishFallback MetricConst = "tradeauto_publish_fallback_total"
	MetricPublishDirect   MetricConst = "tradeauto_publish_direct_total"
	MetricPublishLost     MetricConst = "tradeauto_publish_lost_total"
)

func (m MetricConst) ToString() string {
	return string(m)
}
