// Package giterror provides error inspection capabilities for GitHub API errors.
// It centralizes the logic for identifying the kind of failure behind an error
// returned by the REST executor or the GraphQL client, and for mapping that kind
// to CLI exit codes and HTTP status codes.
package giterror
