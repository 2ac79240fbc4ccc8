// Package platform maps target URLs onto a closed set of known marketplaces
// and carries the per-marketplace extraction configuration (selector sets,
// search URL templates, currency hints).
package platform

import (
	"net/url"
	"strings"
)

// SelectorSet lists the CSS selectors tried, in order, for each field.
// Selector lists are configuration: supporting a new storefront layout means
// adding selectors, not code.
type SelectorSet struct {
	Title       []string
	Price       []string
	Rating      []string
	ReviewCount []string
	Images      []string
}

// Profile describes one marketplace variant. The classifier selects a
// profile exactly once per target; everything downstream dispatches on the
// profile, never on name strings.
type Profile interface {
	Name() string
	Selectors() SelectorSet
	// SearchURL builds a product search URL for competitor lookups.
	SearchURL(query string) string
}

// Known marketplace profiles.
type amazonProfile struct{}
type ebayProfile struct{}
type shopifyProfile struct{ host string }
type genericProfile struct {
	name string
	host string
}

// Amazon, EBay and Shopify return the canonical profile for each supported
// marketplace; Generic is the fallback for everything else.
func Amazon() Profile             { return amazonProfile{} }
func EBay() Profile               { return ebayProfile{} }
func Shopify(host string) Profile { return shopifyProfile{host: host} }

func Generic(name, host string) Profile {
	return genericProfile{name: name, host: host}
}

func (amazonProfile) Name() string { return "Amazon" }

func (amazonProfile) Selectors() SelectorSet {
	return SelectorSet{
		Title: []string{"#productTitle", "#title", "h1.a-size-large"},
		Price: []string{
			".a-price .a-offscreen",
			".a-price-whole",
			"#priceblock_dealprice",
			"#priceblock_ourprice",
		},
		Rating:      []string{"#acrPopover", "span[data-hook='rating-out-of-text']", ".a-icon-alt"},
		ReviewCount: []string{"#acrCustomerReviewText", "span[data-hook='total-review-count']"},
		Images:      []string{"#landingImage", "#altImages ul li img"},
	}
}

func (amazonProfile) SearchURL(query string) string {
	return "https://www.amazon.com/s?k=" + url.QueryEscape(query)
}

func (ebayProfile) Name() string { return "eBay" }

func (ebayProfile) Selectors() SelectorSet {
	return SelectorSet{
		Title:       []string{"h1.x-item-title__mainTitle", "h1#itemTitle", "h1"},
		Price:       []string{".x-price-primary", "#prcIsum", "span[itemprop='price']"},
		Rating:      []string{".review--start--rating", ".ebay-review-start-rating"},
		ReviewCount: []string{".review--count", "a[href='#reviews'] span"},
		Images:      []string{".ux-image-carousel-item img", "#icImg"},
	}
}

func (ebayProfile) SearchURL(query string) string {
	return "https://www.ebay.com/sch/i.html?_nkw=" + url.QueryEscape(query)
}

func (p shopifyProfile) Name() string { return "Shopify" }

func (p shopifyProfile) Selectors() SelectorSet {
	return SelectorSet{
		Title:       []string{"h1.product__title", "h1.product-single__title", ".product-title", "h1"},
		Price:       []string{".price__regular .price-item", ".product__price", ".price", "span.money"},
		Rating:      []string{".spr-starrating", ".jdgm-prev-badge__stars"},
		ReviewCount: []string{".spr-badge-caption", ".jdgm-prev-badge__text"},
		Images:      []string{".product__media img", ".product-single__photo img"},
	}
}

func (p shopifyProfile) SearchURL(query string) string {
	host := p.host
	if host == "" {
		host = "www.shopify.com"
	}
	return "https://" + host + "/search?q=" + url.QueryEscape(query)
}

func (p genericProfile) Name() string { return p.name }

func (p genericProfile) Selectors() SelectorSet {
	return SelectorSet{
		Title: []string{"h1", "title", ".product-title", "[itemprop='name']"},
		Price: []string{
			"[itemprop='price']",
			".price",
			".product-price",
			"[class*='price']",
			"[id*='price']",
		},
		Rating:      []string{"[itemprop='ratingValue']", ".rating", "[class*='rating']"},
		ReviewCount: []string{"[itemprop='reviewCount']", ".review-count", "[class*='review']"},
		Images:      []string{".product-image img", "[itemprop='image']", "img"},
	}
}

func (p genericProfile) SearchURL(query string) string {
	host := p.host
	if host == "" {
		return "https://www.google.com/search?tbm=shop&q=" + url.QueryEscape(query)
	}
	return "https://" + host + "/search?q=" + url.QueryEscape(query)
}

const unknownPlatform = "Unknown Platform"

// domainTable maps second-level-domain substrings to marketplace names.
var domainTable = []struct {
	substr string
	name   string
}{
	{"amazon", "Amazon"},
	{"ebay", "eBay"},
	{"myshopify", "Shopify"},
	{"shopify", "Shopify"},
	{"etsy", "Etsy"},
	{"aliexpress", "AliExpress"},
	{"daraz", "Daraz"},
}

// currencyTable maps TLD / path hints to a currency code. First match wins.
var currencyTable = []struct {
	suffix   string
	currency string
}{
	{".co.uk", "GBP"},
	{".de", "EUR"},
	{".fr", "EUR"},
	{".it", "EUR"},
	{".es", "EUR"},
	{".nl", "EUR"},
	{".ca", "CAD"},
	{".com.au", "AUD"},
	{".co.jp", "JPY"},
	{".in", "INR"},
	{".pk", "PKR"},
	{".com.bd", "BDT"},
	{".lk", "LKR"},
	{".np", "NPR"},
}

// BaseCurrency is the common currency all prices are normalized to.
const BaseCurrency = "USD"

// Classify maps a URL to a marketplace profile and a currency hint. It is a
// total function: malformed or unrecognized input degrades to a Generic
// profile named "Unknown Platform" and the base currency, never an error.
func Classify(rawURL string) (Profile, string) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		// Bare hostnames parse with an empty Host; retry with a scheme.
		u, err = url.Parse("https://" + strings.TrimSpace(rawURL))
		if err != nil || u.Host == "" {
			return Generic(unknownPlatform, ""), BaseCurrency
		}
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	currency := currencyHint(host)

	for _, entry := range domainTable {
		if strings.Contains(host, entry.substr) {
			switch entry.name {
			case "Amazon":
				return Amazon(), currency
			case "eBay":
				return EBay(), currency
			case "Shopify":
				return Shopify(host), currency
			default:
				return Generic(entry.name, host), currency
			}
		}
	}

	// Derive a readable name from the second-level domain label.
	labels := strings.Split(host, ".")
	if len(labels) < 2 || labels[0] == "" {
		return Generic(unknownPlatform, host), currency
	}
	name := strings.ToUpper(labels[0][:1]) + labels[0][1:]
	return Generic(name, host), currency
}

// ByName returns the profile for a marketplace name, used when fanning out
// to rival platforms by name rather than by URL.
func ByName(name string) Profile {
	switch name {
	case "Amazon":
		return Amazon()
	case "eBay":
		return EBay()
	case "Shopify":
		return Shopify("")
	default:
		return Generic(name, "")
	}
}

func currencyHint(host string) string {
	for _, entry := range currencyTable {
		if strings.HasSuffix(host, entry.suffix) {
			return entry.currency
		}
	}
	return BaseCurrency
}
