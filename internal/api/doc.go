// Package api exposes the HTTP surface: the sync trigger, the provider
// webhook receivers, contact search, and the health and metrics endpoints.
// Handlers stay thin; all domain behavior lives in the service packages.
package api
