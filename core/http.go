package core

// HTTPAdapter mounts the portal's routes on a transport.
type HTTPAdapter interface {
	RegisterRoutes(portal *Portal) error
}
