package utils

import (
	"strings"
)

// Company names and social handles mapped to Yahoo Finance tickers.
// An empty value means the name is known but has no listed ticker.
var companyTickers = map[string]string{
	"apple":      "AAPL",
	"@apple":     "AAPL",
	"microsoft":  "MSFT",
	"@microsoft": "MSFT",
	"google":     "GOOGL",
	"@google":    "GOOGL",
	"alphabet":   "GOOGL",
	"amazon":     "AMZN",
	"@amazon":    "AMZN",
	"meta":       "META",
	"@meta":      "META",
	"facebook":   "META",
	"tesla":      "TSLA",
	"@tesla":     "TSLA",
	"@elonmusk":  "TSLA",
	"netflix":    "NFLX",
	"@netflix":   "NFLX",
	"nvidia":     "NVDA",
	"@nvidia":    "NVDA",
	"intel":      "INTC",
	"ibm":        "IBM",
	"oracle":     "ORCL",
	"adobe":      "ADBE",
	"salesforce": "CRM",
	"cisco":      "CSCO",
	"broadcom":   "AVGO",
	"amd":        "AMD",
	"sony":       "SONY",
	"tsmc":       "TSM",
	"accenture":  "ACN",

	// India (NSE listings)
	"reliance": "RELIANCE.NS",
	"jio":      "RELIANCE.NS",
	"tcs":      "TCS.NS",
	"infosys":  "INFY.NS",
	"wipro":    "WIPRO.NS",
	"hdfc":     "HDFCBANK.NS",
	"icici":    "ICICIBANK.NS",

	// Private partnerships
	"ey":       "",
	"deloitte": "",
	"pwc":      "",
}

// LookupTicker resolves a company name or handle to its market ticker.
// Matching is case-insensitive and ignores surrounding whitespace.
// ok is false for unknown names and for names with no listed ticker.
func LookupTicker(name string) (ticker string, ok bool) {
	ticker, known := companyTickers[strings.ToLower(strings.TrimSpace(name))]
	if !known || ticker == "" {
		return "", false
	}
	return ticker, true
}

// IsHandle reports whether the query names a social account (@handle).
func IsHandle(query string) bool {
	return strings.HasPrefix(strings.TrimSpace(query), "@")
}
