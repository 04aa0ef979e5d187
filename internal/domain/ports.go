package domain

// PodLocator answers placement questions from an API-object snapshot.
type PodLocator interface {
	// NodeFor returns the node of the first Pod matching namespace and name.
	NodeFor(namespace, pod string) (string, bool)
	// ClientsOnSameNode reports whether every client pod ran on one node.
	ClientsOnSameNode() bool
}

// MetricsSource is the metrics collaborator: it returns the formatted maximum of a
// named time series.
type MetricsSource interface {
	GetMaxValueByKey(series string, format func(float64) any) any
}
