package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sprite-ai/testscope/internal/component"
	"github.com/sprite-ai/testscope/internal/model"
	"github.com/sprite-ai/testscope/internal/scoring"
)

// TicketSource fetches tickets from the issue tracker.
type TicketSource interface {
	FetchTicket(ctx context.Context, id string) (model.Ticket, error)
}

// LinkSource finds pull requests linked from a ticket.
type LinkSource interface {
	LinkedPullRequests(ctx context.Context, id string) ([]string, error)
}

// ChangeSource fetches change requests from source control.
type ChangeSource interface {
	FetchChangeRequest(ctx context.Context, ref string) (model.ChangeRequest, error)
}

// InventorySource fetches the complete test-case inventory of a suite.
type InventorySource interface {
	FetchInventory(ctx context.Context, projectID, suiteID int) ([]model.TestCase, error)
}

// ErrNoLinkedChange is returned when no change was given and the ticket
// links none.
var ErrNoLinkedChange = errors.New("ticket has no linked pull request")

// Request names the inputs of one remote analysis.
type Request struct {
	TicketID  string `json:"ticket"`
	ChangeRef string `json:"change"`
	SuiteID   int    `json:"suite_id,omitempty"`
}

// Service fetches remote inputs and builds reports.
type Service struct {
	Tickets   TicketSource
	Changes   ChangeSource
	Inventory InventorySource
	Table     *component.Table
	Vocab     *scoring.Vocabulary
	ProjectID int
	SuiteID   int
	Options   Options
	Logger    zerolog.Logger
}

// Analyze fetches the ticket, change and inventory concurrently and builds a
// report. A failure to fetch any of them fails the analysis.
func (s *Service) Analyze(ctx context.Context, req Request) (*Report, error) {
	if req.TicketID == "" {
		return nil, fmt.Errorf("ticket id is required")
	}
	suite := req.SuiteID
	if suite == 0 {
		suite = s.SuiteID
	}

	ref := req.ChangeRef
	if ref == "" {
		var err error
		if ref, err = s.linkedChange(ctx, req.TicketID); err != nil {
			return nil, err
		}
	}

	var (
		ticket    model.Ticket
		change    model.ChangeRequest
		inventory []model.TestCase
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if ticket, err = s.Tickets.FetchTicket(gctx, req.TicketID); err != nil {
			return fmt.Errorf("fetching ticket %s: %w", req.TicketID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if change, err = s.Changes.FetchChangeRequest(gctx, ref); err != nil {
			return fmt.Errorf("fetching change %s: %w", ref, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if inventory, err = s.Inventory.FetchInventory(gctx, s.ProjectID, suite); err != nil {
			return fmt.Errorf("fetching inventory for suite %d: %w", suite, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := Build(ticket, change, inventory, s.Table, s.Vocab, s.Options)
	s.Logger.Info().
		Str("report", report.ID).
		Str("ticket", ticket.ID).
		Str("change", change.Ref).
		Stringer("category", report.Classification.Category).
		Int("inventory", len(inventory)).
		Int("cases", len(report.Impact.AllCases)).
		Msg("analysis complete")
	return report, nil
}

func (s *Service) linkedChange(ctx context.Context, ticketID string) (string, error) {
	links, ok := s.Tickets.(LinkSource)
	if !ok {
		return "", ErrNoLinkedChange
	}
	refs, err := links.LinkedPullRequests(ctx, ticketID)
	if err != nil {
		return "", fmt.Errorf("fetching links of %s: %w", ticketID, err)
	}
	if len(refs) == 0 {
		return "", ErrNoLinkedChange
	}
	s.Logger.Debug().Str("ticket", ticketID).Str("change", refs[0]).Msg("using linked pull request")
	return refs[0], nil
}
