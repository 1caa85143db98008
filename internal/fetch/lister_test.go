package fetch

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"fedcite/internal/federalregister"
	"fedcite/internal/models"
)

type fakeLister struct {
	mu      sync.Mutex
	queries []federalregister.Query
	failOn  string
}

func (f *fakeLister) ListDocuments(ctx context.Context, q federalregister.Query) ([]models.Document, int, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if q.From == f.failOn {
		return nil, 0, errors.New("boom")
	}
	return []models.Document{{DocumentNumber: q.From, PublicationDate: q.From}}, 1, nil
}

func TestFetchCorpusQueriesEveryQuarter(t *testing.T) {
	f := &fakeLister{}
	docs, err := NewLister(f, 2, nil).FetchCorpus(context.Background(), Years(2019, 2021))
	require.NoError(t, err)
	require.Len(t, docs, 12)
	require.Len(t, f.queries, 12)

	var ranges []string
	for _, q := range f.queries {
		if q.From[:4] == "2020" {
			ranges = append(ranges, q.From+".."+q.To)
		}
	}
	sort.Strings(ranges)
	require.Equal(t, []string{
		"2020-01-01..2020-03-31",
		"2020-04-01..2020-06-30",
		"2020-07-01..2020-09-30",
		"2020-10-01..2020-12-31",
	}, ranges)
}

func TestFetchCorpusFailsOnListingError(t *testing.T) {
	f := &fakeLister{failOn: "2020-07-01"}
	_, err := NewLister(f, 4, nil).FetchCorpus(context.Background(), Years(2020, 2020))
	require.ErrorContains(t, err, "list year 2020")
}

func TestYears(t *testing.T) {
	require.Equal(t, []int{1994, 1995, 1996}, Years(1994, 1996))
	require.Empty(t, Years(2000, 1999))
}
