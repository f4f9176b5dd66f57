// Package service provides application-level services orchestrating the
// matching engine, the stores and the event infrastructure.
package service
