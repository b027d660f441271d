package testrepo

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/sprite-ai/testscope/internal/model"
)

// Source supplies the complete test-case inventory of a suite.
type Source interface {
	FetchInventory(ctx context.Context, projectID, suiteID int) ([]model.TestCase, error)
}

// FetchInventory fetches sections and cases concurrently and sets every
// case's section path. Cases in unknown sections get an empty path.
func (c *Client) FetchInventory(ctx context.Context, projectID, suiteID int) ([]model.TestCase, error) {
	var (
		sections []Section
		cases    []model.TestCase
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sections, err = c.FetchAllSections(gctx, projectID, suiteID)
		return err
	})
	g.Go(func() error {
		var err error
		cases, err = c.FetchAllTestCases(gctx, projectID, suiteID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return AttachSectionPaths(cases, sections), nil
}

// AttachSectionPaths returns a copy of cases with section paths filled in.
func AttachSectionPaths(cases []model.TestCase, sections []Section) []model.TestCase {
	paths := BuildSectionPaths(sections)
	out := make([]model.TestCase, len(cases))
	for i, tc := range cases {
		tc.SectionPath = paths[tc.SectionID]
		if tc.SectionPath == nil {
			tc.SectionPath = []string{}
		}
		out[i] = tc
	}
	return out
}
