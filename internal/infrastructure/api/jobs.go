package api

import (
	"context"

	"hirepath/internal/domain"
	"hirepath/internal/domain/job"
)

func (c *Client) Jobs(ctx context.Context, q PageQuery) (domain.Page[job.Job], error) {
	return fetchPage[job.Job](ctx, c, c.endpoints.Jobs, q)
}

func (c *Client) ActiveJobs(ctx context.Context, q PageQuery) (domain.Page[job.Job], error) {
	return fetchPage[job.Job](ctx, c, c.endpoints.ActiveJobs, q)
}

func (c *Client) MyJobs(ctx context.Context, q PageQuery) (domain.Page[job.Job], error) {
	return fetchPage[job.Job](ctx, c, c.endpoints.MyJobs, q)
}

func (c *Client) Job(ctx context.Context, id int64) (job.Job, error) {
	var out job.Job
	if err := c.get(ctx, withID(c.endpoints.Job, id), nil, &out); err != nil {
		return job.Job{}, err
	}
	return out, nil
}

func (c *Client) CreateJob(ctx context.Context, in job.Input) (job.Job, error) {
	var out job.Job
	if err := c.post(ctx, c.endpoints.Jobs, in.Normalized(), &out); err != nil {
		return job.Job{}, err
	}
	return out, nil
}

func (c *Client) UpdateJob(ctx context.Context, id int64, in job.Input) (job.Job, error) {
	var out job.Job
	if err := c.put(ctx, withID(c.endpoints.Job, id), in.Normalized(), &out); err != nil {
		return job.Job{}, err
	}
	return out, nil
}

func (c *Client) DeleteJob(ctx context.Context, id int64) error {
	return c.delete(ctx, withID(c.endpoints.Job, id))
}
