package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gofiber/fiber/v3/client"

	"hirepath/internal/domain/profile"
)

func (c *Client) Profile(ctx context.Context) (profile.Profile, error) {
	var out profile.Profile
	if err := c.get(ctx, c.endpoints.Profile, nil, &out); err != nil {
		return profile.Profile{}, err
	}
	return out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, patch profile.Patch) (profile.Profile, error) {
	var out profile.Profile
	if err := c.put(ctx, c.endpoints.ProfileUpdate, patch, &out); err != nil {
		return profile.Profile{}, err
	}
	return out, nil
}

func (c *Client) Company(ctx context.Context) (profile.Company, error) {
	var out profile.Company
	if err := c.get(ctx, c.endpoints.Company, nil, &out); err != nil {
		return profile.Company{}, err
	}
	return out, nil
}

func (c *Client) CreateCompany(ctx context.Context, in profile.CompanyInput) (profile.Company, error) {
	var out profile.Company
	if err := c.post(ctx, c.endpoints.CompanyCreate, in, &out); err != nil {
		return profile.Company{}, err
	}
	return out, nil
}

func (c *Client) SetJobRoles(ctx context.Context, ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	var ack json.RawMessage
	return c.put(ctx, c.endpoints.JobRoles, map[string][]int64{"target_job_roles": ids}, &ack)
}

// UploadResume sends the resume as a multipart "file" field. The content is buffered so the
// request can be replayed after a token refresh.
func (c *Client) UploadResume(ctx context.Context, name string, r io.Reader) (profile.ResumeFeedback, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return profile.ResumeFeedback{}, err
	}

	var out profile.ResumeFeedback
	err = c.do(ctx, request{
		method: http.MethodPost,
		path:   c.endpoints.ResumeUpload,
		auth:   true,
		files: func() []*client.File {
			return []*client.File{client.AcquireFile(
				client.SetFileName(name),
				client.SetFileFieldName("file"),
				client.SetFileReader(io.NopCloser(bytes.NewReader(data))),
			)}
		},
	}, &out)
	if err != nil {
		return profile.ResumeFeedback{}, err
	}
	return out, nil
}
