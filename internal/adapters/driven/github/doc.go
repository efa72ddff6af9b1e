// Package github implements a context source backed by files in GitHub
// repositories.
//
// A location names one file as "owner/repo/path/to/file", optionally
// pinned to a branch, tag or commit with an "@ref" suffix:
//
//	modelcontextprotocol/go-sdk/README.md
//	modelcontextprotocol/go-sdk/docs/README.md@main
//
// # Authentication
//
// A token is optional. Without one, requests are unauthenticated and
// GitHub allows 60 requests per hour; with a personal access token the
// limit is 5,000 per hour.
//
// # Rate Limiting
//
// The client combines two strategies:
//
//  1. Proactive throttling: a token bucket spaces requests out.
//
//  2. Reactive handling: X-RateLimit-Remaining and X-RateLimit-Reset are
//     tracked from every response. When the remaining quota drops below a
//     small buffer, the client waits for the reset time before continuing.
package github
