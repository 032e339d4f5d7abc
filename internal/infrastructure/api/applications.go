package api

import (
	"context"
	"encoding/json"

	"hirepath/internal/domain"
	"hirepath/internal/domain/application"
)

func (c *Client) Candidates(ctx context.Context, q PageQuery) (domain.Page[application.Record], error) {
	return fetchPage[application.Record](ctx, c, c.endpoints.Candidates, q)
}

func (c *Client) MyApplications(ctx context.Context, q PageQuery) (domain.Page[application.Record], error) {
	return fetchPage[application.Record](ctx, c, c.endpoints.MyApplications, q)
}

func (c *Client) Application(ctx context.Context, id int64) (application.Record, error) {
	var out application.Record
	if err := c.get(ctx, withID(c.endpoints.Application, id), nil, &out); err != nil {
		return application.Record{}, err
	}
	return out, nil
}

func (c *Client) Apply(ctx context.Context, in application.ApplyInput) (application.Record, error) {
	var out application.Record
	if err := c.post(ctx, c.endpoints.Apply, in, &out); err != nil {
		return application.Record{}, err
	}
	return out, nil
}

func (c *Client) Withdraw(ctx context.Context, id int64) error {
	var ack json.RawMessage
	return c.post(ctx, withID(c.endpoints.Withdraw, id), struct{}{}, &ack)
}

func (c *Client) UpdateStatus(ctx context.Context, id int64, upd application.StatusUpdate) (application.Record, error) {
	var out application.Record
	if err := c.patch(ctx, withID(c.endpoints.ApplicationState, id), upd, &out); err != nil {
		return application.Record{}, err
	}
	return out, nil
}

func (c *Client) GraduateStats(ctx context.Context) (application.GraduateStats, error) {
	var out application.GraduateStats
	if err := c.get(ctx, c.endpoints.GraduateStats, nil, &out); err != nil {
		return application.GraduateStats{}, err
	}
	return out, nil
}

func (c *Client) RecruiterStats(ctx context.Context) (application.RecruiterStats, error) {
	var out application.RecruiterStats
	if err := c.get(ctx, c.endpoints.RecruiterStats, nil, &out); err != nil {
		return application.RecruiterStats{}, err
	}
	return out, nil
}
