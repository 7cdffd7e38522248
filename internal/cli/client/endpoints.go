package client

const (
	// Public API
	endpointNamespaces = "/_api/namespaces"
	endpointEntities   = "/_api/entities"

	// Authentication endpoints
	endpointLogin = "/_auth/login"

	// Admin endpoints, JWT protected
	endpointCreate = "/_admin/create"
)
