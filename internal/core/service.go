package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/txnimport/internal/logging"
	"github.com/google/uuid"
)

// Deps are the collaborators of a Service. Mappings and Transactions are
// required; Categories and Runs may be nil.
type Deps struct {
	Mappings     MappingStore
	Transactions TransactionStore
	Categories   CategorySource
	Runs         RunRecorder
	Rules        RuleSet
	Dedup        DedupPolicy
}

// Service runs the import pipeline: open a file, settle a mapping,
// transform rows, commit the selection. It holds no per-import state;
// everything about one import lives in its Session.
type Service struct {
	mappings   MappingStore
	txns       TransactionStore
	categories CategorySource
	runs       RunRecorder
	rules      RuleSet
	dedup      DedupPolicy
}

// NewService creates a new import service.
func NewService(deps Deps) (*Service, error) {
	if deps.Mappings == nil {
		return nil, errors.New("mapping store is required")
	}
	if deps.Transactions == nil {
		return nil, errors.New("transaction store is required")
	}
	if err := deps.Rules.Validate(); err != nil {
		return nil, err
	}

	return &Service{
		mappings:   deps.Mappings,
		txns:       deps.Transactions,
		categories: deps.Categories,
		runs:       deps.Runs,
		rules:      deps.Rules.withDefaults(),
		dedup:      deps.Dedup,
	}, nil
}

// Rules returns the rule set in use.
func (s *Service) Rules() RuleSet {
	return s.rules
}

// Open ingests a file, finds its header and looks up a saved mapping for the
// layout. On a miss the session carries a suggested mapping and needs
// ApplyMapping before it can be transformed. configName labels the import;
// when empty the saved configuration's name or the file name is used.
func (s *Service) Open(ctx context.Context, fileName string, data []byte, configName string) (*Session, error) {
	logger := logging.WithFields(ctx, "file", fileName)

	matrix, err := Ingest(data, fileName)
	if err != nil {
		return nil, err
	}
	table, headerRow, err := BuildTable(matrix, s.rules.Header)
	if err != nil {
		return nil, err
	}

	sess := newSession(fileName, strings.TrimSpace(configName))
	sess.Table = table
	sess.HeaderRow = headerRow
	sess.Signature = Signature(table.Headers)

	saved, err := s.mappings.Find(ctx, sess.Signature)
	if err != nil {
		return nil, fmt.Errorf("look up mapping: %w", err)
	}

	switch {
	case saved != nil && saved.Mapping.Validate(len(table.Headers)) == nil:
		sess.Mapping = saved.Mapping
		sess.MappingSource = MappingSaved
		if sess.ConfigName == "" {
			sess.ConfigName = saved.Name
		}
	default:
		if saved != nil {
			logger.Warn("saved mapping does not fit layout, ignoring", "config", saved.Name)
		}
		sess.Suggested = SuggestMapping(table.Headers, s.rules.Columns)
		if sess.Similar, err = s.SimilarConfigurations(ctx, table.Headers); err != nil {
			logger.Warn("similar configurations unavailable", "error", err)
		}
	}
	if sess.ConfigName == "" {
		sess.ConfigName = defaultConfigName(fileName)
	}

	logger.Info("import opened",
		"session", sess.ID,
		"header_row", headerRow,
		"columns", len(table.Headers),
		"rows", len(table.Rows),
		"mapping", string(sess.MappingSource),
	)
	return sess, nil
}

// ApplyMapping validates a manual mapping, saves it for the session's layout
// and attaches it to the session. Any previous transformation is discarded.
func (s *Service) ApplyMapping(ctx context.Context, sess *Session, mapping ColumnMapping) error {
	if err := mapping.Validate(len(sess.Table.Headers)); err != nil {
		return err
	}
	mapping.AmountMode = mapping.Mode()

	if err := s.mappings.Save(ctx, sess.ConfigName, sess.Signature, mapping); err != nil {
		return fmt.Errorf("save mapping: %w", err)
	}

	sess.Mapping = mapping
	sess.MappingSource = MappingManual
	sess.Candidates, sess.Selected, sess.Transformed = nil, nil, false
	sess.Stats = TransformStats{}

	logging.WithFields(ctx, "session", sess.ID).Info("mapping saved",
		"config", sess.ConfigName, "mode", string(mapping.Mode()))
	return nil
}

// Transform converts the session's rows into candidates, all selected.
// The category list is optional: if it cannot be read the guessed keys are
// used as they are.
func (s *Service) Transform(ctx context.Context, sess *Session) (TransformStats, error) {
	if !sess.HasMapping() {
		return TransformStats{}, ErrNoMapping
	}
	logger := logging.WithFields(ctx, "session", sess.ID)

	var cats []Category
	if s.categories != nil {
		var err error
		cats, err = s.categories.Categories(ctx)
		if err != nil {
			logger.Warn("category list unavailable, using raw keys", "error", err)
			cats = nil
		}
	}

	tr, err := NewTransformer(sess.Mapping, sess.ConfigName, NewClassifier(s.rules, cats))
	if err != nil {
		return TransformStats{}, err
	}
	cands, stats, err := tr.Transform(ctx, sess.Table)
	if err != nil {
		return stats, err
	}
	sess.setCandidates(cands, stats)

	logger.Info("rows transformed",
		"tag", tr.Tag(),
		"kept", stats.Kept,
		"dropped", stats.Dropped(),
		"both_sides", stats.BothSides,
	)
	return stats, nil
}

// Commit stores the session's selected candidates, skipping duplicates, and
// records the run. On a store failure the partial counts are returned with
// the error.
func (s *Service) Commit(ctx context.Context, sess *Session) (CommitResult, error) {
	if !sess.Transformed {
		return CommitResult{}, ErrNotTransformed
	}
	logger := logging.WithFields(ctx, "session", sess.ID)

	start := time.Now()
	res, err := s.txns.BulkCreate(ctx, sess.Selection(), s.dedup)
	if err != nil {
		logger.Error("commit aborted", "error", err, "added", res.Added, "skipped", res.Skipped)
		return res, fmt.Errorf("commit: %w", err)
	}

	if s.runs != nil {
		run := ImportRun{
			ID:         uuid.NewString(),
			ConfigName: sess.ConfigName,
			Signature:  sess.Signature,
			FileName:   sess.FileName,
			Added:      res.Added,
			Skipped:    res.Skipped,
			Dropped:    sess.Stats.Dropped(),
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.runs.RecordRun(ctx, run); err != nil {
			// the transactions are stored; a missing history entry is not fatal
			logger.Warn("record import run failed", "error", err)
		}
	}

	logger.Info("import committed",
		"added", res.Added,
		"skipped", res.Skipped,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// Import runs Open, an optional ApplyMapping and Transform in one call.
// Without a saved mapping and without an explicit one it fails with
// ErrNoMapping and returns the session so the caller can show the suggestion.
func (s *Service) Import(ctx context.Context, fileName string, data []byte, configName string, mapping *ColumnMapping) (*Session, error) {
	sess, err := s.Open(ctx, fileName, data, configName)
	if err != nil {
		return nil, err
	}
	if mapping != nil {
		if err := s.ApplyMapping(ctx, sess, *mapping); err != nil {
			return sess, err
		}
	}
	if !sess.HasMapping() {
		return sess, ErrNoMapping
	}
	if _, err := s.Transform(ctx, sess); err != nil {
		return sess, err
	}
	return sess, nil
}

func defaultConfigName(fileName string) string {
	base := filepath.Base(fileName)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." {
		return "import"
	}
	return name
}
