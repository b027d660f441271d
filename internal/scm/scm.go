// Package scm fetches pull requests and their changed files from GitHub.
package scm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/sprite-ai/testscope/internal/diff"
	"github.com/sprite-ai/testscope/internal/model"
	"github.com/sprite-ai/testscope/internal/upstream"
)

// PageSize is the number of files requested per page.
const PageSize = 100

// maxPages bounds pagination; GitHub stops listing files at 3000.
const maxPages = 30

// Ref identifies a pull request.
type Ref struct {
	Owner  string
	Repo   string
	Number int
}

func (r Ref) String() string {
	return fmt.Sprintf("%s/%s#%d", r.Owner, r.Repo, r.Number)
}

var (
	pullURL   = regexp.MustCompile(`^https?://[^/]+/([^/]+)/([^/]+)/pull/(\d+)`)
	shortPull = regexp.MustCompile(`^([\w.-]+)/([\w.-]+)#(\d+)$`)
)

// ParseRef accepts a pull request URL or the owner/repo#number form.
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	m := pullURL.FindStringSubmatch(s)
	if m == nil {
		m = shortPull.FindStringSubmatch(s)
	}
	if m == nil {
		return Ref{}, fmt.Errorf("invalid pull request reference %q", s)
	}
	n, err := strconv.Atoi(m[3])
	if err != nil || n <= 0 {
		return Ref{}, fmt.Errorf("invalid pull request number in %q", s)
	}
	return Ref{Owner: m[1], Repo: m[2], Number: n}, nil
}

// Client reads pull requests through the GitHub REST API.
type Client struct {
	api *upstream.Client
}

// New creates a GitHub client.
func New(baseURL string, opts ...upstream.Option) (*Client, error) {
	opts = append([]upstream.Option{upstream.WithHeader("Accept", "application/vnd.github+json")}, opts...)
	api, err := upstream.New("github", baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{api: api}, nil
}

type pull struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	State string `json:"state"`
	User  struct {
		Login string `json:"login"`
	} `json:"user"`
}

// FetchChangeRequest returns a pull request with its complete file list.
func (c *Client) FetchChangeRequest(ctx context.Context, ref string) (model.ChangeRequest, error) {
	r, err := ParseRef(ref)
	if err != nil {
		return model.ChangeRequest{}, err
	}

	base := fmt.Sprintf("repos/%s/%s/pulls/%d", url.PathEscape(r.Owner), url.PathEscape(r.Repo), r.Number)
	var p pull
	if err := c.api.DoJSON(ctx, http.MethodGet, c.api.URL(base, nil), "get pull request", nil, &p); err != nil {
		return model.ChangeRequest{}, err
	}

	files, err := c.files(ctx, base)
	if err != nil {
		return model.ChangeRequest{}, err
	}

	return model.ChangeRequest{
		Ref:          r.String(),
		Title:        p.Title,
		Description:  p.Body,
		Author:       p.User.Login,
		State:        p.State,
		ChangedFiles: diff.NormalizeEntries(files),
	}, nil
}

// files pages through the file list until a short page.
func (c *Client) files(ctx context.Context, base string) ([]json.RawMessage, error) {
	var all []json.RawMessage
	for page := 1; page <= maxPages; page++ {
		q := url.Values{
			"per_page": {strconv.Itoa(PageSize)},
			"page":     {strconv.Itoa(page)},
		}
		var batch []json.RawMessage
		if err := c.api.DoJSON(ctx, http.MethodGet, c.api.URL(base+"/files", q), "list pull request files", nil, &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < PageSize {
			break
		}
	}
	return all, nil
}
