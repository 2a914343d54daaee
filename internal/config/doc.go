// Package config holds process configuration and the engine settings file.
//
// Process configuration comes from the environment (FromEnv). Engine settings
// (anomaly thresholds, score weights, list sizes, insight lines) come from an
// optional YAML file layered over metrics.DefaultSettings:
//
//	thresholds:
//	  ctr: {low: 0.02, high: 0.15}
//	  cpa: {high: 120}
//	weights: {roi: 0.4, roas: 0.3, conversion_rate: 0.2, ctr: 0.1}
//	campaign_weights: {roi: 0.4, roas: 0.3, conversion_rate: 0.3}
//	worst_n: 3
//	top_n: 2
//	cpa_alert: 80
//
// Ratios are fractions. An omitted field keeps its default; `.inf` disables
// an upper bound. Watch reloads the file on change.
package config
