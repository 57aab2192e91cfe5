// Package domain defines the core domain models for Gatewarden:
// token records with their append-only lifecycle history, user directory
// records, and the structured error taxonomy shared by all layers.
package domain
