package workspace

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/clauselens/workbench-cli/pkg/authsvc"
	"github.com/clauselens/workbench-cli/pkg/docstore"
	"github.com/clauselens/workbench-cli/pkg/extractor"
	"github.com/clauselens/workbench-cli/pkg/library"
	"github.com/clauselens/workbench-cli/pkg/riskscore"
	"github.com/clauselens/workbench-cli/pkg/similarity"
)

// --- Docstore Mock ---

type mockDocstoreClient struct {
	mock.Mock
}

func (m *mockDocstoreClient) GetDocument(ctx context.Context, documentID string) (*docstore.DocumentInfo, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*docstore.DocumentInfo), args.Error(1)
}

func (m *mockDocstoreClient) GetContent(ctx context.Context, documentID string) ([]byte, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockDocstoreClient) CachedClauses(ctx context.Context, documentID string) (*docstore.ClausesResponse, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*docstore.ClausesResponse), args.Error(1)
}

// --- Extractor Mock ---

type mockExtractorClient struct {
	mock.Mock
}

func (m *mockExtractorClient) Extract(ctx context.Context, documentID string) (*extractor.ExtractResponse, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extractor.ExtractResponse), args.Error(1)
}

func (m *mockExtractorClient) Reextract(ctx context.Context, documentID string) (*extractor.ExtractResponse, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*extractor.ExtractResponse), args.Error(1)
}

// --- Similarity Mock ---

type mockSimilarityClient struct {
	mock.Mock
}

func (m *mockSimilarityClient) FindSimilar(ctx context.Context, clauseTitle, excludeDocumentID string) (*similarity.SearchResponse, error) {
	args := m.Called(ctx, clauseTitle, excludeDocumentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*similarity.SearchResponse), args.Error(1)
}

// --- Tag Service Mock ---

type mockTagClient struct {
	mock.Mock
}

func (m *mockTagClient) List(ctx context.Context, documentID string) ([]string, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockTagClient) Add(ctx context.Context, documentID, tagName string) ([]string, error) {
	args := m.Called(ctx, documentID, tagName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockTagClient) Remove(ctx context.Context, documentID, tagName string) ([]string, error) {
	args := m.Called(ctx, documentID, tagName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// --- Risk Score Mock ---

type mockRiskClient struct {
	mock.Mock
}

func (m *mockRiskClient) Assessment(ctx context.Context, documentID string) (*riskscore.Assessment, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*riskscore.Assessment), args.Error(1)
}

// --- Library Mock ---

type mockLibraryClient struct {
	mock.Mock
}

func (m *mockLibraryClient) Save(ctx context.Context, identity, documentID string, clauseNumber int) (*library.SaveResult, error) {
	args := m.Called(ctx, identity, documentID, clauseNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*library.SaveResult), args.Error(1)
}

func (m *mockLibraryClient) Status(ctx context.Context, documentID string, clauseNumber int) (bool, error) {
	args := m.Called(ctx, documentID, clauseNumber)
	return args.Bool(0), args.Error(1)
}

// --- Auth Mock ---

type mockAuthClient struct {
	mock.Mock
}

func (m *mockAuthClient) Status(ctx context.Context) (*authsvc.AccountStatus, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authsvc.AccountStatus), args.Error(1)
}

// fixture bundles the mocks behind a ready-to-use controller.
type fixture struct {
	docs    *mockDocstoreClient
	extract *mockExtractorClient
	similar *mockSimilarityClient
	tags    *mockTagClient
	risk    *mockRiskClient
	library *mockLibraryClient
	auth    *mockAuthClient
	ctrl    *Controller
}

func newFixture() *fixture {
	f := &fixture{
		docs:    &mockDocstoreClient{},
		extract: &mockExtractorClient{},
		similar: &mockSimilarityClient{},
		tags:    &mockTagClient{},
		risk:    &mockRiskClient{},
		library: &mockLibraryClient{},
		auth:    &mockAuthClient{},
	}
	f.ctrl = New(f.docs, f.extract, f.similar, f.tags, f.risk, f.library, f.auth, nil, nil)
	return f
}

// openQuiet sets up the background fetches Open always fans out, so tests
// that only care about later operations can open a document in one call.
func (f *fixture) openQuiet(docID, name string) {
	f.docs.On("GetDocument", mock.Anything, docID).
		Return(&docstore.DocumentInfo{ID: docID, Name: name, MimeType: "application/pdf"}, nil).Once()
	f.docs.On("CachedClauses", mock.Anything, docID).
		Return(&docstore.ClausesResponse{}, nil).Once()
	f.tags.On("List", mock.Anything, docID).
		Return([]string{}, nil).Once()
	f.risk.On("Assessment", mock.Anything, docID).
		Return(&riskscore.Assessment{RiskScore: 50, RiskLevel: "MEDIUM"}, nil).Once()
}
