package reference

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadStringMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agency_hash.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"12": "Agriculture Department", "7": 99, "3": null}`), 0o644))

	m, err := LoadStringMap(path)
	require.NoError(t, err)
	require.Equal(t, map[string]string{"12": "Agriculture Department", "7": "99"}, m)
}

func TestLoadStringMapMissingFile(t *testing.T) {
	_, err := LoadStringMap(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestLoadCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "all_doc_info.json")
	body := `[{"document_number":"2020-00001","publication_date":"2020-01-02","type":"Rule",
	  "agencies":[{"raw_name":"FOREST SERVICE","id":9,"parent_id":12}],"regulation_id_numbers":["0596-AD00"]}]`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	docs, err := LoadCorpus(path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, 2020, docs[0].Year())
	require.True(t, docs[0].HasType("rule"))
	require.Equal(t, 12, *docs[0].Agencies[0].ParentID)
}
