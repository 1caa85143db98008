package federalregister

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"fedcite/internal/models"
)

const DefaultPerPage = 1000

// Fields requested for every listed document.
var Fields = []string{
	"agencies", "title", "type", "document_number", "publication_date",
	"body_html_url", "citation", "full_text_xml_url", "html_url", "json_url",
	"pdf_url", "raw_text_url", "regulation_id_numbers", "significant",
	"subtype", "topics", "volume",
}

// Query selects documents by inclusive publication date range (YYYY-MM-DD).
type Query struct {
	From    string
	To      string
	PerPage int
}

type listPage struct {
	Count       int               `json:"count"`
	TotalPages  int               `json:"total_pages"`
	NextPageURL string            `json:"next_page_url"`
	Results     []models.Document `json:"results"`
}

func (c *Client) queryURL(q Query) string {
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	v := url.Values{}
	v.Set("per_page", strconv.Itoa(perPage))
	for _, f := range Fields {
		v.Add("fields[]", f)
	}
	v.Set("conditions[publication_date][gte]", q.From)
	v.Set("conditions[publication_date][lte]", q.To)
	return c.baseURL + "?" + v.Encode()
}

// ListDocuments returns every document in the range, following
// next_page_url until the API stops returning one, and the count the API
// reported for the query.
func (c *Client) ListDocuments(ctx context.Context, q Query) ([]models.Document, int, error) {
	var (
		docs  []models.Document
		count int
	)
	next := c.queryURL(q)
	for page := 1; next != ""; page++ {
		body, err := c.get(ctx, next)
		if err != nil {
			return nil, 0, fmt.Errorf("list %s..%s page %d: %w", q.From, q.To, page, err)
		}
		var p listPage
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, 0, fmt.Errorf("decode %s..%s page %d: %w", q.From, q.To, page, err)
		}
		if page == 1 {
			count = p.Count
		}
		docs = append(docs, p.Results...)
		next = p.NextPageURL
	}
	return docs, count, nil
}
