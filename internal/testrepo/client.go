// Package testrepo reads and writes the TestRail test-case repository and
// caches complete inventories.
package testrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/sprite-ai/testscope/internal/model"
	"github.com/sprite-ai/testscope/internal/upstream"
)

const apiPrefix = "index.php?/api/v2/"

// maxPages bounds pagination against a misbehaving server.
var maxPages = 1000

// Section is a folder of the repository hierarchy.
type Section struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
	SuiteID  int64  `json:"suite_id,omitempty"`
	Depth    int    `json:"depth,omitempty"`
}

// Client talks to the TestRail API v2.
type Client struct {
	api *upstream.Client
}

// New creates a TestRail client. TestRail authenticates with basic auth
// using the user's email and an API key; pass upstream.WithBasicAuth.
func New(baseURL string, opts ...upstream.Option) (*Client, error) {
	api, err := upstream.New("testrail", baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{api: api}, nil
}

type page struct {
	Links struct {
		Next *string `json:"next"`
	} `json:"_links"`
	Sections []json.RawMessage `json:"sections"`
	Cases    []json.RawMessage `json:"cases"`
}

// list follows _links.next until it is empty and concatenates the items.
// Servers that answer with a bare array are read as a single page.
func (c *Client) list(ctx context.Context, endpoint, operation string, items func(page) []json.RawMessage) ([]json.RawMessage, error) {
	var all []json.RawMessage
	next := endpoint
	for i := 0; next != "" && i < maxPages; i++ {
		var raw json.RawMessage
		if err := c.api.DoJSON(ctx, http.MethodGet, c.api.URL(apiPrefix+next, nil), operation, nil, &raw); err != nil {
			return nil, err
		}
		if trimmed := strings.TrimSpace(string(raw)); strings.HasPrefix(trimmed, "[") {
			var arr []json.RawMessage
			if err := json.Unmarshal(raw, &arr); err != nil {
				return nil, fmt.Errorf("%s: decode response: %w", operation, err)
			}
			return append(all, arr...), nil
		}
		var p page
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("%s: decode response: %w", operation, err)
		}
		all = append(all, items(p)...)
		next = ""
		if p.Links.Next != nil {
			next = strings.TrimPrefix(*p.Links.Next, "/api/v2/")
		}
	}
	if next != "" {
		return nil, fmt.Errorf("%s: still paging after %d pages: %w", operation, maxPages, upstream.ErrUnavailable)
	}
	return all, nil
}

// FetchAllSections returns every section of a suite.
func (c *Client) FetchAllSections(ctx context.Context, projectID, suiteID int) ([]Section, error) {
	endpoint := fmt.Sprintf("get_sections/%d&suite_id=%d", projectID, suiteID)
	raw, err := c.list(ctx, endpoint, "get sections", func(p page) []json.RawMessage { return p.Sections })
	if err != nil {
		return nil, err
	}
	out := make([]Section, 0, len(raw))
	for _, r := range raw {
		var s Section
		if err := json.Unmarshal(r, &s); err != nil {
			return nil, fmt.Errorf("get sections: decode section: %w", err)
		}
		out = append(out, s)
	}
	return out, nil
}

// FetchAllTestCases returns every case of a suite, without section paths.
func (c *Client) FetchAllTestCases(ctx context.Context, projectID, suiteID int) ([]model.TestCase, error) {
	endpoint := fmt.Sprintf("get_cases/%d&suite_id=%d", projectID, suiteID)
	raw, err := c.list(ctx, endpoint, "get cases", func(p page) []json.RawMessage { return p.Cases })
	if err != nil {
		return nil, err
	}
	out := make([]model.TestCase, 0, len(raw))
	for _, r := range raw {
		tc, err := decodeCase(r)
		if err != nil {
			return nil, fmt.Errorf("get cases: %w", err)
		}
		out = append(out, tc)
	}
	return out, nil
}

// decodeCase maps TestRail fields onto a TestCase: refs is the reference
// field, priority_id the priority and custom_* fields go to CustomFields.
func decodeCase(raw json.RawMessage) (model.TestCase, error) {
	var fields map[string]any
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return model.TestCase{}, fmt.Errorf("decode case: %w", err)
	}
	var base struct {
		ID         int64   `json:"id"`
		Title      string  `json:"title"`
		SectionID  int64   `json:"section_id"`
		Refs       *string `json:"refs"`
		PriorityID int     `json:"priority_id"`
	}
	if err := json.Unmarshal(raw, &base); err != nil {
		return model.TestCase{}, fmt.Errorf("decode case: %w", err)
	}
	tc := model.TestCase{
		ID:        base.ID,
		Title:     base.Title,
		SectionID: base.SectionID,
		Priority:  base.PriorityID,
	}
	if base.Refs != nil {
		tc.Reference = *base.Refs
	}
	for k, v := range fields {
		if !strings.HasPrefix(k, "custom_") || v == nil {
			continue
		}
		if tc.CustomFields == nil {
			tc.CustomFields = make(map[string]any)
		}
		tc.CustomFields[k] = v
	}
	return tc, nil
}

// AddSection creates a section under parentID (nil for the suite root).
func (c *Client) AddSection(ctx context.Context, projectID, suiteID int, parentID *int64, name string) (Section, error) {
	if strings.TrimSpace(name) == "" {
		return Section{}, fmt.Errorf("section name is required")
	}
	body := map[string]any{"suite_id": suiteID, "name": name}
	if parentID != nil {
		body["parent_id"] = *parentID
	}
	var s Section
	u := c.api.URL(fmt.Sprintf("%sadd_section/%d", apiPrefix, projectID), nil)
	if err := c.api.DoJSON(ctx, http.MethodPost, u, "add section", body, &s); err != nil {
		return Section{}, err
	}
	return s, nil
}

// NewCase is the payload of AddCase.
type NewCase struct {
	Title        string         `json:"title" yaml:"title"`
	Reference    string         `json:"refs,omitempty" yaml:"refs"`
	Priority     int            `json:"priority_id,omitempty" yaml:"priority"`
	CustomFields map[string]any `json:"-" yaml:"custom"`
}

// AddCase creates a case in sectionID.
func (c *Client) AddCase(ctx context.Context, sectionID int64, nc NewCase) (model.TestCase, error) {
	if strings.TrimSpace(nc.Title) == "" {
		return model.TestCase{}, fmt.Errorf("case title is required")
	}
	body := map[string]any{"title": nc.Title}
	if nc.Reference != "" {
		body["refs"] = nc.Reference
	}
	if nc.Priority > 0 {
		body["priority_id"] = nc.Priority
	}
	keys := make([]string, 0, len(nc.CustomFields))
	for k := range nc.CustomFields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name := k
		if !strings.HasPrefix(name, "custom_") {
			name = "custom_" + name
		}
		body[name] = nc.CustomFields[k]
	}

	var raw json.RawMessage
	u := c.api.URL(fmt.Sprintf("%sadd_case/%d", apiPrefix, sectionID), nil)
	if err := c.api.DoJSON(ctx, http.MethodPost, u, "add case", body, &raw); err != nil {
		return model.TestCase{}, err
	}
	return decodeCase(raw)
}
