package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"StockQuiz/internal/domain"
)

func TestCollect_EnforcesCap(t *testing.T) {
	searcher := new(MockSearcher)
	extractor := new(MockExtractor)

	var results []domain.ArticleSummary
	for i := range 10 {
		results = append(results, summary("https://press.example.com", fmt.Sprintf("https://news.example.com/%d", i)))
	}
	searcher.On("Search", mock.Anything, "삼성전자 주가", domain.RecencyDay).Return(results, nil)
	extractor.On("Extract", mock.Anything, mock.AnythingOfType("string")).
		Return(domain.Article{Title: "t", Body: "b"}, nil)

	c := NewCollector(CollectorDeps{
		Searcher:      searcher,
		Extractor:     extractor,
		MaxArticles:   3,
		Recency:       domain.RecencyDay,
		KeywordSuffix: " 주가",
	})

	collection, err := c.Collect(context.Background(), "삼성전자")
	require.NoError(t, err)

	extractor.AssertNumberOfCalls(t, "Extract", 3)
	assert.Equal(t, 3, collection.Len())
	searcher.AssertExpectations(t)
}

func TestCollect_SkipsGroupsWithoutPermalinkAndFailures(t *testing.T) {
	searcher := new(MockSearcher)
	extractor := new(MockExtractor)

	searcher.On("Search", mock.Anything, "kw", domain.RecencyAny).Return([]domain.ArticleSummary{
		summary("https://press/a", "https://news/1"),
		summary("https://press/only"),
		summary("https://press/b", "https://news/2"),
		summary("https://press/c", "https://news/3"),
	}, nil)

	extractor.On("Extract", mock.Anything, "https://news/1").Return(domain.Article{Title: "T1", Body: "B1", URL: "https://news/1"}, nil)
	extractor.On("Extract", mock.Anything, "https://news/2").Return(domain.Article{}, fmt.Errorf("%w: layout drift", domain.ErrExtraction))
	extractor.On("Extract", mock.Anything, "https://news/3").Return(domain.Article{Title: "T3", Body: "B3", URL: "https://news/3"}, nil)

	c := NewCollector(CollectorDeps{Searcher: searcher, Extractor: extractor, MaxArticles: 0})

	collection, err := c.Collect(context.Background(), "kw")
	require.NoError(t, err)

	assert.Equal(t, []string{"T1", "T3"}, collection.Titles)
	assert.Equal(t, []string{"B1", "B3"}, collection.Contents)
	assert.Equal(t, []string{"https://news/1", "https://news/3"}, collection.Links)
	extractor.AssertNumberOfCalls(t, "Extract", 3)
}

func TestCollect_ParallelKeepsSearchOrder(t *testing.T) {
	searcher := new(MockSearcher)
	extractor := new(MockExtractor)

	var results []domain.ArticleSummary
	for i := range 6 {
		link := fmt.Sprintf("https://news/%d", i)
		results = append(results, summary("https://press", link))
		// Earlier links answer slower so completion order is reversed.
		extractor.On("Extract", mock.Anything, link).
			After(time.Duration(6-i)*10*time.Millisecond).
			Return(domain.Article{Title: fmt.Sprintf("T%d", i), Body: fmt.Sprintf("B%d", i), URL: link}, nil)
	}
	searcher.On("Search", mock.Anything, "kw", domain.RecencyAny).Return(results, nil)

	c := NewCollector(CollectorDeps{Searcher: searcher, Extractor: extractor, Workers: 4})

	collection, err := c.Collect(context.Background(), "kw")
	require.NoError(t, err)

	require.Equal(t, 6, collection.Len())
	for i := range 6 {
		assert.Equal(t, fmt.Sprintf("T%d", i), collection.Titles[i])
		assert.Equal(t, fmt.Sprintf("B%d", i), collection.Contents[i])
		assert.Equal(t, fmt.Sprintf("https://news/%d", i), collection.Links[i])
	}
}

func TestCollect_PacesRequests(t *testing.T) {
	searcher := new(MockSearcher)
	extractor := new(MockExtractor)

	searcher.On("Search", mock.Anything, "kw", domain.RecencyAny).Return([]domain.ArticleSummary{
		summary("p", "https://news/1"),
		summary("p", "https://news/2"),
		summary("p", "https://news/3"),
	}, nil)
	extractor.On("Extract", mock.Anything, mock.Anything).Return(domain.Article{Title: "t", Body: "b"}, nil)

	c := NewCollector(CollectorDeps{Searcher: searcher, Extractor: extractor, Delay: 50 * time.Millisecond, Workers: 3})

	start := time.Now()
	_, err := c.Collect(context.Background(), "kw")
	require.NoError(t, err)

	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestCollect_SequentialPausesAfterSlowFetch(t *testing.T) {
	searcher := new(MockSearcher)
	extractor := new(MockExtractor)

	searcher.On("Search", mock.Anything, "kw", domain.RecencyAny).Return([]domain.ArticleSummary{
		summary("p", "https://news/1"),
		summary("p", "https://news/2"),
		summary("p", "https://news/3"),
	}, nil)
	// Each fetch outlasts the delay, so start-to-start spacing alone would not pause at all.
	extractor.On("Extract", mock.Anything, mock.Anything).
		After(60*time.Millisecond).
		Return(domain.Article{Title: "t", Body: "b"}, nil)

	c := NewCollector(CollectorDeps{Searcher: searcher, Extractor: extractor, Delay: 40 * time.Millisecond, Workers: 1})

	start := time.Now()
	collection, err := c.Collect(context.Background(), "kw")
	require.NoError(t, err)

	assert.Equal(t, 3, collection.Len())
	// 3 fetches of 60ms plus 2 pauses of 40ms.
	assert.GreaterOrEqual(t, time.Since(start), 250*time.Millisecond)
}

func TestCollect_NoResults(t *testing.T) {
	searcher := new(MockSearcher)
	extractor := new(MockExtractor)

	searcher.On("Search", mock.Anything, "없음", domain.RecencyAny).Return([]domain.ArticleSummary{}, nil)

	c := NewCollector(CollectorDeps{Searcher: searcher, Extractor: extractor})

	collection, err := c.Collect(context.Background(), "없음")
	require.NoError(t, err)

	assert.Empty(t, collection.Titles)
	assert.Empty(t, collection.Contents)
	assert.Empty(t, collection.Links)
	extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestCollect_SearchFailure(t *testing.T) {
	searcher := new(MockSearcher)
	searcher.On("Search", mock.Anything, "kw", domain.RecencyAny).Return(nil, fmt.Errorf("%w: layout", domain.ErrParse))

	c := NewCollector(CollectorDeps{Searcher: searcher, Extractor: new(MockExtractor)})

	_, err := c.Collect(context.Background(), "kw")
	assert.True(t, errors.Is(err, domain.ErrParse), "got %v", err)
}

func TestCollect_Cancelled(t *testing.T) {
	searcher := new(MockSearcher)
	extractor := new(MockExtractor)

	searcher.On("Search", mock.Anything, "kw", domain.RecencyAny).Return([]domain.ArticleSummary{
		summary("p", "https://news/1"),
		summary("p", "https://news/2"),
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	extractor.On("Extract", mock.Anything, "https://news/1").
		Run(func(mock.Arguments) { cancel() }).
		Return(domain.Article{}, context.Canceled)
	extractor.On("Extract", mock.Anything, "https://news/2").Return(domain.Article{}, context.Canceled).Maybe()

	c := NewCollector(CollectorDeps{Searcher: searcher, Extractor: extractor, Delay: time.Second})

	_, err := c.Collect(ctx, "kw")
	assert.ErrorIs(t, err, context.Canceled)
}
