// Package repoproxy wires catalog loading, proxy synthesis, and the database
// layer together. Init runs once per process; AsVersioned and AsVersionedRepo
// return dispatch proxies that route repository methods to their versioned
// SQL commands.
package repoproxy
