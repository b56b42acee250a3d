// Package catalog contains the built-in integration definitions and helpers
// to load them into a directory.
package catalog
