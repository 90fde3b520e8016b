package sift

// Heading levels assigned by the outline extractor, largest font first.
const (
	LevelH1 = "H1"
	LevelH2 = "H2"
	LevelH3 = "H3"
)

// Heading is a single outline entry: a text line classified as H1-H3.
type Heading struct {
	Level string `json:"level"`
	Text  string `json:"text"`
	Page  int    `json:"page"`
}

// Outline is the heading structure of one document. Headings appear in
// reading order (page, then line order within the page).
type Outline struct {
	Title    string    `json:"title"`
	Headings []Heading `json:"outline"`
}

// Chunk is a ranked unit of document text: a window of words from one page
// of one document.
type Chunk struct {
	Document      string `json:"document"`
	DocumentTitle string `json:"document_title"`
	Page          int    `json:"page_number"`
	Text          string `json:"text"`
}

// ScoredChunk is a Chunk with its relevance to a query. Score is the boosted
// cosine similarity rounded to 4 decimals; BaseScore is the raw similarity;
// Boost is the multiplier that was applied (1.0 when no rule matched).
type ScoredChunk struct {
	Chunk
	Score     float64 `json:"relevance_score"`
	BaseScore float64 `json:"base_score"`
	Boost     float64 `json:"boost_factor"`
}
