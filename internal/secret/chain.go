package secret

import (
	"context"
	"errors"
	"time"
)

// Chain asks channels in order and returns the first answer.
// All links share the request deadline: a slow link eats the time of the ones after it.
type Chain struct {
	links []Channel
}

// NewChain creates a chain, skipping nil links.
func NewChain(links ...Channel) *Chain {
	kept := make([]Channel, 0, len(links))

	for _, link := range links {
		if link != nil {
			kept = append(kept, link)
		}
	}

	return &Chain{links: kept}
}

// Request returns the first successful answer within the shared deadline.
func (c *Chain) Request(ctx context.Context, req Request) (map[string]string, error) {
	ctx, cancel := withDeadline(ctx, req.Timeout)
	defer cancel()

	var errs []error

	for _, link := range c.links {
		linkReq := req

		if deadline, ok := ctx.Deadline(); ok {
			linkReq.Timeout = time.Until(deadline)
			if linkReq.Timeout <= 0 {
				break
			}
		}

		found, err := link.Request(ctx, linkReq)
		if err == nil && len(found) > 0 {
			return found, nil
		}

		if err != nil && !errors.Is(err, ErrUnavailable) {
			errs = append(errs, err)
		}
	}

	return nil, errors.Join(append([]error{ErrUnavailable}, errs...)...)
}
