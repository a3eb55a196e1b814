package wiki

type summaryResponse struct {
	Title        string `json:"title"`
	Extract      string `json:"extract"`
	WikibaseItem string `json:"wikibase_item"`
	ContentURLs  struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}
