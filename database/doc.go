// Package database provides connection management over Bun, health checks,
// query hooks, error classification, and the SQL command sets and routine
// scripts that back versioned repository commands.
package database
