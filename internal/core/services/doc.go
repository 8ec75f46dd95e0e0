// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The RefreshCoordinator is the centre of the package: it gates fetches
// through a single-flight state machine, applies cooldown and busy policy,
// and fans notifications out to subscribers.
package services
