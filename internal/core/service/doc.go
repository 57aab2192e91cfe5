// Package service provides the domain services for Gatewarden.
//
// Services contain the business logic of the token lifecycle and group
// membership evaluation. They define the storage interfaces they depend
// on; concrete implementations live under internal/storage.
package service
