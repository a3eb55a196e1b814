package sec

import "encoding/json"

// directoryRow is one row of EDGAR's company_tickers.json. cik_str is a
// bare number in the published file; json.Number tolerates either form.
type directoryRow struct {
	CIK    json.Number `json:"cik_str"`
	Ticker string      `json:"ticker"`
	Title  string      `json:"title"`
}

// submissionsResponse is the subset of the per-company submissions payload
// the filings reader consumes. EDGAR publishes the recent filings as
// parallel arrays zipped positionally.
type submissionsResponse struct {
	CIK     string  `json:"cik"`
	Name    string  `json:"name"`
	Filings filings `json:"filings"`
}

type filings struct {
	Recent recentFilings `json:"recent"`
}

type recentFilings struct {
	Form        []string `json:"form"`
	FilingDate  []string `json:"filingDate"`
	Description []string `json:"primaryDocDescription"`
}
