// Package custom runs user-authored scraping configs.
//
// A ScrapingConfig holds URL templates and CSS selectors for one site.
// Source turns it into a providers.Source: listings, details, chapter
// lists and chapter content are fetched and extracted with goquery, or
// forwarded to an existing source when the config is based on one.
// RunTest walks a config end to end and reports which step breaks.
package custom
