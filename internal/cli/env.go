package cli

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sprite-ai/testscope/internal/analysis"
	"github.com/sprite-ai/testscope/internal/component"
	"github.com/sprite-ai/testscope/internal/config"
	"github.com/sprite-ai/testscope/internal/logger"
	"github.com/sprite-ai/testscope/internal/scm"
	"github.com/sprite-ai/testscope/internal/scoring"
	"github.com/sprite-ai/testscope/internal/testrepo"
	"github.com/sprite-ai/testscope/internal/tracker"
	"github.com/sprite-ai/testscope/internal/upstream"
)

var errRemoteNotConfigured = errors.New("jira, github and testrail base URLs must be configured")

// env is what every command needs after flag parsing.
type env struct {
	cfg   *config.Config
	log   zerolog.Logger
	table *component.Table
	vocab *scoring.Vocabulary
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if p, _ := cmd.Flags().GetString("traceability"); p != "" {
		cfg.Traceability.Path = p
	}
	if p, _ := cmd.Flags().GetString("vocabulary"); p != "" {
		cfg.Vocabulary.Path = p
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &env{
		cfg:   cfg,
		log:   logger.New(cfg.Log.Level, cfg.Log.Format),
		table: component.Default(),
		vocab: scoring.DefaultVocabulary(),
	}
	if p := cfg.Traceability.Path; p != "" {
		if e.table, err = component.LoadFile(p); err != nil {
			return nil, fmt.Errorf("loading traceability table: %w", err)
		}
	}
	if p := cfg.Vocabulary.Path; p != "" {
		if e.vocab, err = scoring.LoadVocabulary(p); err != nil {
			return nil, fmt.Errorf("loading vocabulary: %w", err)
		}
	}
	e.log.Debug().
		Int("components", len(e.table.Entries)).
		Str("traceability", cfg.Traceability.Path).
		Msg("configuration loaded")
	return e, nil
}

func (e *env) options(all bool) analysis.Options {
	return analysis.Options{BaseHoursPerArea: e.cfg.Estimation.BaseHoursPerArea, All: all}
}

func (e *env) clientOptions(auth ...upstream.Option) []upstream.Option {
	return append([]upstream.Option{
		upstream.WithLogger(e.log),
		upstream.WithTimeout(e.cfg.HTTP.Timeout),
	}, auth...)
}

func (e *env) testRail() (*testrepo.Client, error) {
	c := e.cfg.TestRail
	if c.BaseURL == "" {
		return nil, errors.New("testrail.baseURL is not configured")
	}
	return testrepo.New(c.BaseURL, e.clientOptions(upstream.WithBasicAuth(c.User, c.APIKey))...)
}

// service wires the remote clients into an analysis service. The returned
// func releases the inventory cache.
func (e *env) service(all bool) (*analysis.Service, func(), error) {
	if !e.cfg.RemoteConfigured() {
		return nil, nil, errRemoteNotConfigured
	}

	jira := e.cfg.Jira
	jiraAuth := upstream.WithBearerToken(jira.Token)
	if jira.Email != "" {
		jiraAuth = upstream.WithBasicAuth(jira.Email, jira.Token)
	}
	tickets, err := tracker.New(jira.BaseURL, jira.AcceptanceCriteriaField, e.clientOptions(jiraAuth)...)
	if err != nil {
		return nil, nil, err
	}

	changes, err := scm.New(e.cfg.GitHub.BaseURL, e.clientOptions(upstream.WithBearerToken(e.cfg.GitHub.Token))...)
	if err != nil {
		return nil, nil, err
	}

	live, err := e.testRail()
	if err != nil {
		return nil, nil, err
	}

	var inventory analysis.InventorySource = live
	release := func() {}
	if e.cfg.Cache.Enabled {
		cache, err := testrepo.OpenCache(e.cfg.Cache.Path, e.cfg.Cache.TTL)
		if err != nil {
			e.log.Warn().Err(err).Str("path", e.cfg.Cache.Path).Msg("inventory cache disabled")
		} else {
			inventory = &testrepo.CachedSource{Live: live, Cache: cache, Logger: e.log}
			release = func() {
				if err := cache.Close(); err != nil {
					e.log.Warn().Err(err).Msg("closing inventory cache")
				}
			}
		}
	}

	return &analysis.Service{
		Tickets:   tickets,
		Changes:   changes,
		Inventory: inventory,
		Table:     e.table,
		Vocab:     e.vocab,
		ProjectID: e.cfg.TestRail.ProjectID,
		SuiteID:   e.cfg.TestRail.SuiteID,
		Options:   e.options(all),
		Logger:    e.log,
	}, release, nil
}
