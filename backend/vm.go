package backend

import (
	"context"
	"net/url"

	"github.com/karsidev/karsi/types"
)

// FetchVMRecommendations merges the exclusive and load-balanced ec2
// feeds. Both requests run concurrently. The exclusive feed is
// required; the load-balanced feed is best-effort - when it fails the
// merged result carries exclusive data only, never an error.
func (c *Client) FetchVMRecommendations(ctx context.Context, f Filters) ([]types.VMRecommendation, error) {
	q := vmQuery(f)

	type lbResult struct {
		recos []types.VMRecommendation
		err   error
	}
	lbCh := make(chan lbResult, 1)

	go func() {
		var recos []types.VMRecommendation
		err := c.get(ctx, "/optimization/recommendations/ec2/load-balanced", q, &recos)
		lbCh <- lbResult{recos: recos, err: err}
	}()

	var exclusive []types.VMRecommendation
	if err := c.get(ctx, "/optimization/recommendations/ec2/exclusive", q, &exclusive); err != nil {
		// Drain the companion fetch before returning.
		<-lbCh
		return nil, err
	}

	lb := <-lbCh
	if lb.err != nil {
		c.logger.Warn().Err(lb.err).Msg("load-balanced feed failed, continuing with exclusive only")
		return exclusive, nil
	}

	return append(exclusive, lb.recos...), nil
}

func vmQuery(f Filters) url.Values {
	q := url.Values{}
	if f.Application != "" {
		q.Set("application", f.Application)
	}
	if f.Department != "" {
		q.Set("department", f.Department)
	}
	if f.Provider != "" {
		q.Set("provider", f.Provider)
	}
	return q
}
