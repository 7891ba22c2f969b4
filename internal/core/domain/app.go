package domain

// App is an application/workflow definition on a Dify instance.
// Like datasets, apps are matched across instances by exact Name.
type App struct {
	// ID is the instance-local identifier.
	ID string

	// Name is the identity key for cross-instance matching.
	Name string

	// Mode is the app kind reported by the server (chat, workflow, ...).
	Mode string

	// UpdatedAt is the server-reported last modification timestamp, verbatim.
	UpdatedAt string
}
