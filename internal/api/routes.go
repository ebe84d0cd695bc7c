package api

const (
	HealthCheckRoute = "/healthz"
	InfoRoute        = "/v1/info"
	MetricsRoute     = "/metrics"

	ResolveRoute = "/v1/resolve"
	ExplainRoute = "/v1/resolve/explain"
	DomainsRoute = "/v1/domains"

	WebhookRoute = "/v1/webhooks/github"

	AdminParent     = "/v1/admin/"
	ListAuditsRoute = AdminParent + "audit"
	ListRoutesRoute = AdminParent + "routes"

	TaskParent       = "/v1/tasks/"
	ListTasksRoute   = TaskParent
	TriggerTaskRoute = TaskParent + "{name}/trigger"
	LogsForTaskRoute = TaskParent + "{name}/logs"
)
