package api

import (
	"context"
	"encoding/json"
	"strings"

	"hirepath/internal/domain/skill"
)

func (c *Client) SkillCatalog(ctx context.Context, search string) ([]skill.Skill, error) {
	var query map[string]string
	if s := strings.TrimSpace(search); s != "" {
		query = map[string]string{"search": s}
	}
	page, err := fetchPage[skill.Skill](ctx, c, c.endpoints.SkillCatalog, PageQuery{Filters: query})
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (c *Client) PopularSkills(ctx context.Context) ([]skill.Skill, error) {
	page, err := fetchPage[skill.Skill](ctx, c, c.endpoints.SkillPopular, PageQuery{})
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (c *Client) AddSkill(ctx context.Context, id int64) error {
	var ack json.RawMessage
	return c.post(ctx, c.endpoints.SkillAdd, map[string]int64{"skill_id": id}, &ack)
}

func (c *Client) RemoveSkill(ctx context.Context, id int64) error {
	return c.delete(ctx, withID(c.endpoints.SkillRemove, id))
}

func (c *Client) SetSkills(ctx context.Context, ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	var ack json.RawMessage
	return c.post(ctx, c.endpoints.SkillSet, map[string][]int64{"skills": ids}, &ack)
}
