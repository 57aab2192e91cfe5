// Package handler implements the HTTP API handlers for Gatewarden.
//
// Token lifecycle endpoints identify the calling user through the
// X-Auth-User header. Directory administration endpoints additionally
// require the configured admin bearer token.
package handler
