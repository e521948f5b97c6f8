// Package workspace implements the client-side controller for one open
// document under analysis: clause extraction and caching, selection,
// cross-document similarity, word-level comparison, tags, risk assessment
// and the per-user clause library. The controller composes the service
// gateways around a single mutable session; every asynchronous result is
// stamped and discarded when the session has moved on.
package workspace

import (
	"context"
	"fmt"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/clauselens/workbench-cli/internal/faults"
	"github.com/clauselens/workbench-cli/internal/model"
	"github.com/clauselens/workbench-cli/internal/store"
	"github.com/clauselens/workbench-cli/internal/tagcache"
	"github.com/clauselens/workbench-cli/pkg/authsvc"
	"github.com/clauselens/workbench-cli/pkg/docstore"
	"github.com/clauselens/workbench-cli/pkg/extractor"
	"github.com/clauselens/workbench-cli/pkg/library"
	"github.com/clauselens/workbench-cli/pkg/riskscore"
	"github.com/clauselens/workbench-cli/pkg/similarity"
	"github.com/clauselens/workbench-cli/pkg/tagsvc"
)

// Controller orchestrates the workspace in response to user actions. It is
// constructed with every collaborator injected so multiple workspaces can
// coexist (and tests can swap in fakes); there is no ambient global state.
type Controller struct {
	session *Session

	docs    docstore.Client
	extract extractor.Client
	similar similarity.Client
	tags    tagsvc.Client
	risk    riskscore.Client
	library library.Client
	auth    authsvc.Client

	journal  store.Store     // optional
	tagCache *tagcache.Cache // optional

	mu        sync.Mutex
	journalID string

	pending sync.WaitGroup
}

// New creates a Controller with all dependencies. journal and tagCache may
// be nil.
func New(
	docsClient docstore.Client,
	extractClient extractor.Client,
	similarClient similarity.Client,
	tagsClient tagsvc.Client,
	riskClient riskscore.Client,
	libraryClient library.Client,
	authClient authsvc.Client,
	journal store.Store,
	tagCache *tagcache.Cache,
) *Controller {
	return &Controller{
		session:  NewSession(),
		docs:     docsClient,
		extract:  extractClient,
		similar:  similarClient,
		tags:     tagsClient,
		risk:     riskClient,
		library:  libraryClient,
		auth:     authClient,
		journal:  journal,
		tagCache: tagCache,
	}
}

// Session exposes the underlying session for snapshotting.
func (c *Controller) Session() *Session {
	return c.session
}

// Snapshot returns the current view model.
func (c *Controller) Snapshot() ViewModel {
	return c.session.Snapshot()
}

// Wait blocks until all in-flight fan-out operations have completed and
// either applied or discarded their results.
func (c *Controller) Wait() {
	c.pending.Wait()
}

// record journals an action, best effort.
func (c *Controller) record(ctx context.Context, action model.SessionAction, detail string, actionErr error) {
	if c.journal == nil {
		return
	}
	c.mu.Lock()
	journalID := c.journalID
	c.mu.Unlock()
	if journalID == "" {
		return
	}
	errMsg := ""
	if actionErr != nil {
		errMsg = actionErr.Error()
	}
	if _, err := c.journal.RecordAction(ctx, journalID, action, detail, errMsg); err != nil {
		zap.L().Warn("workspace: journal write failed", zap.String("action", string(action)), zap.Error(err))
	}
}

// Open opens a workspace for the document. The session is reset before any
// fetch begins, then the cached clause list, the document's tags and its
// risk assessment are fetched as independent operations: any of them may
// fail without blocking the others.
func (c *Controller) Open(ctx context.Context, documentID string) (ViewModel, error) {
	info, err := c.docs.GetDocument(ctx, documentID)
	if err != nil {
		return ViewModel{}, eris.Wrap(err, "workspace: open document")
	}

	doc := model.Document{
		ID:                 info.ID,
		Name:               info.Name,
		MimeClassification: info.MimeType,
	}
	st := c.session.Open(doc)
	log := zap.L().With(zap.String("document", doc.ID))
	log.Info("workspace: opened", zap.String("name", doc.Name))

	if c.journal != nil {
		rec, jerr := c.journal.CreateSession(ctx, doc)
		if jerr != nil {
			log.Warn("workspace: journal session create failed", zap.Error(jerr))
		} else {
			c.mu.Lock()
			c.journalID = rec.ID
			c.mu.Unlock()
		}
	}
	c.record(ctx, model.ActionOpen, doc.Name, nil)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		resp, cerr := c.docs.CachedClauses(gctx, documentID)
		if cerr != nil {
			// A loader failure is presented as the extraction affordance,
			// not an error state, and is never retried automatically.
			log.Warn("workspace: cached clause load failed", zap.Error(cerr))
			c.session.SetCachedClauses(st, nil)
			return nil
		}
		c.session.SetCachedClauses(st, normalizeCached(resp.Clauses))
		return nil
	})

	g.Go(func() error {
		tags, terr := c.tags.List(gctx, documentID)
		if terr != nil {
			log.Warn("workspace: tag load failed", zap.Error(terr))
			return nil
		}
		if c.session.SetTags(st, tags) && c.tagCache != nil {
			c.tagCache.Put(documentID, tags)
		}
		return nil
	})

	g.Go(func() error {
		assessment, rerr := c.risk.Assessment(gctx, documentID)
		if rerr != nil {
			log.Warn("workspace: risk load failed", zap.Error(rerr))
			c.session.SetRiskNotice(st, "could not load risk score")
			return nil
		}
		c.session.SetRisk(st, normalizeRisk(assessment))
		return nil
	})

	_ = g.Wait()

	return c.session.Snapshot(), nil
}

// Close discards the workspace. In-flight results are dropped by the
// staleness check when they complete.
func (c *Controller) Close(ctx context.Context) {
	c.session.Close()
	c.mu.Lock()
	journalID := c.journalID
	c.journalID = ""
	c.mu.Unlock()
	if c.journal != nil && journalID != "" {
		if err := c.journal.CloseSession(ctx, journalID); err != nil {
			zap.L().Warn("workspace: journal session close failed", zap.Error(err))
		}
	}
}

// Extract runs a first extraction for the open document and installs the
// result as a fresh clause generation.
func (c *Controller) Extract(ctx context.Context) (ViewModel, error) {
	return c.runExtraction(ctx, model.ActionExtract, c.extract.Extract)
}

// Reextract forces a fresh extraction. This is destructive: clause numbers
// are renumbered, so the prior selection and comparison state are
// invalidated with the replacement. Callers confirm with the user first.
func (c *Controller) Reextract(ctx context.Context) (ViewModel, error) {
	return c.runExtraction(ctx, model.ActionReextract, c.extract.Reextract)
}

func (c *Controller) runExtraction(ctx context.Context, action model.SessionAction, call func(context.Context, string) (*extractor.ExtractResponse, error)) (ViewModel, error) {
	if !c.session.IsOpen() {
		return ViewModel{}, faults.NewNotFound("open workspace")
	}
	doc := c.session.Document()
	st := c.session.CurrentStamp()

	resp, err := call(ctx, doc.ID)
	if err != nil {
		c.record(ctx, action, doc.ID, err)
		// The remote service's message travels to the caller verbatim.
		return ViewModel{}, err
	}

	clauses := normalizeExtracted(resp.Clauses)
	if _, ok := c.session.ReplaceClauses(st, clauses); !ok {
		zap.L().Info("workspace: discarding stale extraction result", zap.String("document", doc.ID))
		return c.session.Snapshot(), nil
	}

	c.record(ctx, action, fmt.Sprintf("%d clauses", len(clauses)), nil)
	zap.L().Info("workspace: extraction complete",
		zap.String("document", doc.ID),
		zap.Int("clauses", len(clauses)),
	)
	return c.session.Snapshot(), nil
}

// Select makes the clause with the given number the active selection. The
// selected clause's display fields are available synchronously in the
// returned value; the similarity search and the library save-status check
// fan out concurrently and update the view independently. Failure of one
// never blocks the other.
func (c *Controller) Select(ctx context.Context, clauseNumber int) (model.Clause, error) {
	clause, st, err := c.session.Select(clauseNumber)
	if err != nil {
		return model.Clause{}, err
	}
	c.record(ctx, model.ActionSelect, fmt.Sprintf("clause %d", clauseNumber), nil)

	doc := c.session.Document()
	log := zap.L().With(zap.String("document", doc.ID), zap.Int("clause", clauseNumber))

	// The fan-out outlives the triggering call: an HTTP handler's request
	// context is canceled as soon as the handler returns, and the results
	// are meant to arrive afterwards. Staleness stamps are the cancellation
	// discipline here, not the caller's context.
	fanCtx := context.WithoutCancel(ctx)

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()

		g, gctx := errgroup.WithContext(fanCtx)

		g.Go(func() error {
			resp, serr := c.similar.FindSimilar(gctx, clause.Title, st.DocumentID)
			if serr != nil {
				log.Warn("workspace: similarity search failed", zap.Error(serr))
				c.session.SetSimilarityNotice(st, faults.RemoteMessage(serr))
				return nil
			}
			matches := normalizeMatches(resp.Files)
			if !c.session.SetMatches(st, matches) {
				log.Debug("workspace: discarding stale similarity result")
			}
			return nil
		})

		g.Go(func() error {
			saved, lerr := c.library.Status(gctx, st.DocumentID, clauseNumber)
			if lerr != nil {
				log.Warn("workspace: save-status check failed", zap.Error(lerr))
				return nil
			}
			if !c.session.SetSaved(st, saved) {
				log.Debug("workspace: discarding stale save-status result")
			}
			return nil
		})

		_ = g.Wait()
	}()

	return clause, nil
}

// SetComparisonTarget makes the similar file with the given ID the active
// comparison target, replacing any prior one.
func (c *Controller) SetComparisonTarget(fileID string) (model.SimilarFileMatch, error) {
	return c.session.SetComparison(fileID)
}

// ComparisonView is the rendered two-panel comparison between the selected
// clause and the comparison target.
type ComparisonView struct {
	Source     model.Clause           `json:"source"`
	Target     model.SimilarFileMatch `json:"target"`
	Diff       DiffResult             `json:"diff"`
	SourceHTML string                 `json:"source_html"`
	TargetHTML string                 `json:"target_html"`
}

// Compare renders the word-level comparison between the selected clause and
// the active comparison target.
func (c *Controller) Compare(ctx context.Context) (*ComparisonView, error) {
	selected, ok := c.session.Selected()
	if !ok {
		return nil, faults.NewNotFound("selected clause")
	}
	target, ok := c.session.Comparison()
	if !ok {
		return nil, faults.NewNotFound("comparison target")
	}

	diff := Diff(selected.Content, target.ClauseContent)
	c.record(ctx, model.ActionCompare,
		fmt.Sprintf("clause %d vs %s", selected.ClauseNumber, target.FileID), nil)

	return &ComparisonView{
		Source:     selected,
		Target:     target,
		Diff:       diff,
		SourceHTML: HTML(diff.Left),
		TargetHTML: HTML(diff.Right),
	}, nil
}

// AddTag adds a tag to the open document. A name outside the service's
// master vocabulary is a Rejected outcome and leaves the tag set unchanged.
// On success the complete updated set is written to the session and to the
// outer per-file tag summary cache.
func (c *Controller) AddTag(ctx context.Context, tagName string) ([]string, error) {
	if !c.session.IsOpen() {
		return nil, faults.NewNotFound("open workspace")
	}
	doc := c.session.Document()
	st := c.session.CurrentStamp()

	tags, err := c.tags.Add(ctx, doc.ID, tagName)
	if err != nil {
		c.record(ctx, model.ActionTagAdd, tagName, err)
		return nil, err
	}

	c.session.SetTags(st, tags)
	if c.tagCache != nil {
		c.tagCache.Put(doc.ID, tags)
	}
	c.record(ctx, model.ActionTagAdd, tagName, nil)
	return tags, nil
}

// TagRemoval is the caller-supplied confirmation that the user agreed to
// remove a tag. The controller never removes a tag without one.
type TagRemoval struct {
	tagName string
}

// ConfirmTagRemoval creates the confirmation token for removing a tag.
func ConfirmTagRemoval(tagName string) TagRemoval {
	return TagRemoval{tagName: tagName}
}

// RemoveTag removes a confirmed tag from the open document and writes the
// updated set back to the session and the tag summary cache.
func (c *Controller) RemoveTag(ctx context.Context, removal TagRemoval) ([]string, error) {
	if removal.tagName == "" {
		return nil, faults.NewRejected("tag removal requires user confirmation")
	}
	if !c.session.IsOpen() {
		return nil, faults.NewNotFound("open workspace")
	}
	doc := c.session.Document()
	st := c.session.CurrentStamp()

	tags, err := c.tags.Remove(ctx, doc.ID, removal.tagName)
	if err != nil {
		c.record(ctx, model.ActionTagRemove, removal.tagName, err)
		return nil, err
	}

	c.session.SetTags(st, tags)
	if c.tagCache != nil {
		c.tagCache.Put(doc.ID, tags)
	}
	c.record(ctx, model.ActionTagRemove, removal.tagName, nil)
	return tags, nil
}

// LoadRisk fetches the document's risk assessment and merges it into the
// view model. Risk is independent of clause extraction; a failure degrades
// to a visible notice without blocking the rest of the workspace.
func (c *Controller) LoadRisk(ctx context.Context) (*model.RiskAssessment, error) {
	if !c.session.IsOpen() {
		return nil, faults.NewNotFound("open workspace")
	}
	doc := c.session.Document()
	st := c.session.CurrentStamp()

	assessment, err := c.risk.Assessment(ctx, doc.ID)
	if err != nil {
		c.session.SetRiskNotice(st, "could not load risk score")
		c.record(ctx, model.ActionRisk, doc.ID, err)
		return nil, err
	}

	risk := normalizeRisk(assessment)
	c.session.SetRisk(st, risk)
	c.record(ctx, model.ActionRisk, fmt.Sprintf("score %d", risk.RiskScore), nil)
	return risk, nil
}

// SaveClause stores the selected clause in the user's library. When the
// session holds no resolved identity it is resolved through the
// authentication service first. Saving the same clause twice is reported
// via AlreadySaved, never as an error or a duplicate.
func (c *Controller) SaveClause(ctx context.Context) (*library.SaveResult, error) {
	selected, ok := c.session.Selected()
	if !ok {
		return nil, faults.NewNotFound("selected clause")
	}
	doc := c.session.Document()
	st := c.session.CurrentStamp()

	identity := c.session.Identity()
	if identity == "" {
		status, err := c.auth.Status(ctx)
		if err != nil {
			return nil, eris.Wrap(err, "workspace: resolve identity")
		}
		if !status.Linked || status.Email == "" {
			return nil, faults.NewAuthRequired("account is not linked to the document store")
		}
		identity = status.Email
		c.session.SetIdentity(identity)
	}

	result, err := c.library.Save(ctx, identity, doc.ID, selected.ClauseNumber)
	if err != nil {
		c.record(ctx, model.ActionSave, fmt.Sprintf("clause %d", selected.ClauseNumber), err)
		return nil, err
	}

	c.session.SetSaved(st, true)
	c.record(ctx, model.ActionSave, fmt.Sprintf("clause %d", selected.ClauseNumber), nil)
	return result, nil
}

// AccountStatus reports the link state and identity of the current session.
func (c *Controller) AccountStatus(ctx context.Context) (*authsvc.AccountStatus, error) {
	status, err := c.auth.Status(ctx)
	if err != nil {
		return nil, err
	}
	if status.Linked && status.Email != "" {
		c.session.SetIdentity(status.Email)
	}
	return status, nil
}

// normalizeCached converts document store wire clauses into the canonical
// shape. Response-shape variance is resolved here, once, at the boundary.
func normalizeCached(clauses []docstore.Clause) []model.Clause {
	out := make([]model.Clause, 0, len(clauses))
	for _, wc := range clauses {
		title, content := wc.Normalize()
		out = append(out, model.Clause{
			ClauseNumber:  wc.ClauseNumber,
			SectionNumber: wc.SectionNumber,
			Title:         title,
			Content:       content,
		})
	}
	return out
}

// normalizeExtracted converts extractor wire clauses into the canonical
// shape.
func normalizeExtracted(clauses []extractor.Clause) []model.Clause {
	out := make([]model.Clause, 0, len(clauses))
	for _, wc := range clauses {
		title, content := wc.Normalize()
		out = append(out, model.Clause{
			ClauseNumber:  wc.ClauseNumber,
			SectionNumber: wc.SectionNumber,
			Title:         title,
			Content:       content,
		})
	}
	return out
}

// normalizeMatches converts similarity wire matches into the canonical
// shape. Unknown match types degrade to similar.
func normalizeMatches(files []similarity.FileMatch) []model.SimilarFileMatch {
	out := make([]model.SimilarFileMatch, 0, len(files))
	for _, f := range files {
		matchType := model.MatchSimilar
		if f.MatchType == string(model.MatchExact) {
			matchType = model.MatchExact
		}
		out = append(out, model.SimilarFileMatch{
			FileID:        f.FileID,
			FileName:      f.FileName,
			SectionNumber: f.SectionNumber,
			ClauseTitle:   f.ClauseTitle,
			ClauseContent: f.ClauseContent,
			MatchType:     matchType,
		})
	}
	return out
}

// normalizeRisk converts the risk service response into the canonical
// shape. Unknown levels degrade to MEDIUM so the view always renders one of
// the three buckets.
func normalizeRisk(a *riskscore.Assessment) *model.RiskAssessment {
	level := model.RiskLevel(a.RiskLevel)
	switch level {
	case model.RiskLevelLow, model.RiskLevelMedium, model.RiskLevelHigh:
	default:
		level = model.RiskLevelMedium
	}
	return &model.RiskAssessment{
		RiskScore:      a.RiskScore,
		RiskLevel:      level,
		GoodClauses:    a.GoodClauses,
		CautionClauses: a.CautionClauses,
		MissingClauses: a.MissingClauses,
		ClauseCount:    a.ClauseCount,
	}
}
