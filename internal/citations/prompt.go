package citations

const SystemInstruction = "You are an assistant that extracts academic references from text."

const fence = "```"

// ExtractionPrompt is sent as the first user turn of every request, ahead of
// the chunk body. Its token count is charged against the chunk budget.
const ExtractionPrompt = `Extract academic references from the text below and return them using the json format below. 
The json object should have the following keys: "citation", "title", "authors", "year", "journal", "publisher", "location", "volume", "pages", "doi", and "url". Where the citation key should contain the full citation of the paper.
If there is not enough information to completely fill out the json, return as much as possible. If the author is "et. al." or not a person (e.g. "EPA"), flag the citation with "et_al_flag" or "non_person_author_flag" respectively.
If available, provide the first and last name of each author. If there are multiple authors, format the authors as a python list of strings.
If there are no references in the text, DO NOT return anything. 

Json format to be precisely followed:
` + fence + `json
{
    "citation": "Author1, Author2, (Year). Title of the paper. Location: Journal Publisher, Volume, Pages. DOI. URL"
    "title": "Title of the paper",
    "authors": ["FirstName Lastname 1","FirstName LastName 2"],
    "year": "Year",
    "journal": "Journal",
    "publisher": "Publisher",
    "location": "Location",
    "volume": "Volume",
    "pages": "Pages",
    "doi": "DOI",
    "url": "URL"
    "et_al_flag": "True/False"
    "non_person_author_flag": "True/False"
}
` + fence + `
`
