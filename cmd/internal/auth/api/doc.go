// Package authapi exposes the HTTP authentication surface: login, logout,
// the current-user endpoint, and the route guards that protect the rest of
// the application.
package authapi
