// Package tracker fetches tickets from a Jira issue tracker.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sprite-ai/testscope/internal/model"
	"github.com/sprite-ai/testscope/internal/upstream"
)

// Client reads issues through the Jira REST API v2.
type Client struct {
	api     *upstream.Client
	acField string
}

// New creates a Jira client. acceptanceField names the custom field that
// holds acceptance criteria; empty disables it.
func New(baseURL, acceptanceField string, opts ...upstream.Option) (*Client, error) {
	api, err := upstream.New("jira", baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{api: api, acField: acceptanceField}, nil
}

type issue struct {
	Key    string                     `json:"key"`
	Fields map[string]json.RawMessage `json:"fields"`
}

type issueFields struct {
	Summary     string `json:"summary"`
	Description string `json:"description"`
	Components  []struct {
		Name string `json:"name"`
	} `json:"components"`
}

// FetchTicket returns the issue with the given key.
func (c *Client) FetchTicket(ctx context.Context, id string) (model.Ticket, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Ticket{}, fmt.Errorf("ticket id is required")
	}

	var is issue
	u := c.api.URL("rest/api/2/issue/"+url.PathEscape(id), nil)
	if err := c.api.DoJSON(ctx, http.MethodGet, u, "get issue", nil, &is); err != nil {
		return model.Ticket{}, err
	}

	raw, err := json.Marshal(is.Fields)
	if err != nil {
		return model.Ticket{}, fmt.Errorf("get issue: %w", err)
	}
	var f issueFields
	if err := json.Unmarshal(raw, &f); err != nil {
		return model.Ticket{}, fmt.Errorf("get issue: decode fields: %w", err)
	}

	t := model.Ticket{
		ID:          is.Key,
		Title:       f.Summary,
		Description: f.Description,
		Components:  []string{},
	}
	if t.ID == "" {
		t.ID = id
	}
	for _, comp := range f.Components {
		if comp.Name != "" {
			t.Components = append(t.Components, comp.Name)
		}
	}
	if c.acField != "" {
		t.AcceptanceCriteria = ParseAcceptanceCriteria(is.Fields[c.acField])
	}
	return t, nil
}

type remoteLink struct {
	Object struct {
		URL   string `json:"url"`
		Title string `json:"title"`
	} `json:"object"`
}

// LinkedPullRequests returns the pull request URLs linked from an issue.
func (c *Client) LinkedPullRequests(ctx context.Context, id string) ([]string, error) {
	var links []remoteLink
	u := c.api.URL("rest/api/2/issue/"+url.PathEscape(id)+"/remotelink", nil)
	if err := c.api.DoJSON(ctx, http.MethodGet, u, "get remote links", nil, &links); err != nil {
		return nil, err
	}
	out := []string{}
	for _, l := range links {
		if strings.Contains(l.Object.URL, "/pull/") {
			out = append(out, l.Object.URL)
		}
	}
	return out, nil
}

// ParseAcceptanceCriteria reads a criteria field holding either text with
// one criterion per line or a list of strings. Bullet markers are removed.
func ParseAcceptanceCriteria(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var lines []string
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		lines = strings.Split(text, "\n")
	} else if err := json.Unmarshal(raw, &lines); err != nil {
		return nil
	}

	var out []string
	for _, l := range lines {
		l = strings.TrimSpace(l)
		l = strings.TrimLeft(l, "-*•# ")
		l = strings.TrimSpace(l)
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}
