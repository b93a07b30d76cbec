// Package alerts evaluates threshold rules against evaluated asset states
// and forwards high-severity anomalies. Firing and resolution events are
// delivered to Teams, Slack, PagerDuty or generic HTTP webhooks.
package alerts
