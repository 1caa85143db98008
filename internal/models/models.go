package models

import (
	"fmt"
	"strings"
)

type Agency struct {
	RawName  string `json:"raw_name"`
	Name     string `json:"name,omitempty"`
	ID       *int   `json:"id,omitempty"`
	ParentID *int   `json:"parent_id,omitempty"`
	Slug     string `json:"slug,omitempty"`
	URL      string `json:"url,omitempty"`
	JSONURL  string `json:"json_url,omitempty"`
}

// Document is one entry of the Federal Register listing API, restricted to
// the fields requested by the listing client.
type Document struct {
	DocumentNumber      string   `json:"document_number"`
	Title               string   `json:"title"`
	Type                string   `json:"type"`
	Subtype             string   `json:"subtype,omitempty"`
	PublicationDate     string   `json:"publication_date"`
	Agencies            []Agency `json:"agencies"`
	RegulationIDNumbers []string `json:"regulation_id_numbers"`
	Topics              []string `json:"topics,omitempty"`
	Citation            string   `json:"citation,omitempty"`
	Significant         *bool    `json:"significant,omitempty"`
	Volume              int      `json:"volume,omitempty"`
	RawTextURL          string   `json:"raw_text_url,omitempty"`
	PDFURL              string   `json:"pdf_url,omitempty"`
	HTMLURL             string   `json:"html_url,omitempty"`
	BodyHTMLURL         string   `json:"body_html_url,omitempty"`
	FullTextXMLURL      string   `json:"full_text_xml_url,omitempty"`
	JSONURL             string   `json:"json_url,omitempty"`
}

// Year returns the publication year, or 0 when the date is malformed.
func (d Document) Year() int {
	if len(d.PublicationDate) < 4 {
		return 0
	}
	var y int
	if _, err := fmt.Sscanf(d.PublicationDate[:4], "%d", &y); err != nil {
		return 0
	}
	return y
}

func (d Document) HasType(t string) bool {
	return strings.EqualFold(strings.TrimSpace(d.Type), strings.TrimSpace(t))
}

// PromptChunk is a token-bounded block of citation candidates from one document.
type PromptChunk struct {
	DocumentID string `json:"document_id"`
	Index      int    `json:"index"`
	Body       string `json:"body"`
}

func (c PromptChunk) CustomID() string {
	return fmt.Sprintf("%s_%d", c.DocumentID, c.Index)
}

// DocumentIDFromCustomID returns the text before the first underscore.
func DocumentIDFromCustomID(customID string) string {
	if i := strings.Index(customID, "_"); i >= 0 {
		return customID[:i]
	}
	return customID
}

// ExtractedRecord is one citation object recovered from a model completion.
// Empty strings and a nil Authors slice mean the value is missing.
type ExtractedRecord struct {
	CustomID            string   `json:"custom_id"`
	DocumentID          string   `json:"docid"`
	Citation            string   `json:"citation,omitempty"`
	Title               string   `json:"title,omitempty"`
	Authors             []string `json:"authors,omitempty"`
	Year                string   `json:"year,omitempty"`
	Journal             string   `json:"journal,omitempty"`
	Publisher           string   `json:"publisher,omitempty"`
	Location            string   `json:"location,omitempty"`
	Volume              string   `json:"volume,omitempty"`
	Pages               string   `json:"pages,omitempty"`
	DOI                 string   `json:"doi,omitempty"`
	URL                 string   `json:"url,omitempty"`
	EtAlFlag            bool     `json:"et_al_flag"`
	NonPersonAuthorFlag bool     `json:"non_person_author_flag"`
	Fields              []string `json:"fields,omitempty"`
}

// NormalizedRecord is the terminal row of the dataset.
type NormalizedRecord struct {
	ExtractedRecord
	Agencies            []string `json:"agencies"`
	RegulationIDNumbers []string `json:"regulation_id_numbers"`
}
