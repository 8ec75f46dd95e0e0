// Package connectors holds the remote data sources prcache fetches from.
// Each subpackage implements the source ports in internal/core/ports/driven
// for one hosting service; github is currently the only one.
package connectors
