package sources

import (
	"context"

	"freebiewatch/app/freebie"
)

// Result is what an adapter hands back to the run pipeline. An adapter never
// fails the run: on any network or parse error Items is empty and Err carries
// the cause, so the caller can tell "no freebies found" from "source
// unreachable" without changing its control flow.
type Result struct {
	Items []freebie.Item
	Err   error
}

// Fetcher is the contract every storefront adapter satisfies.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) Result
}
