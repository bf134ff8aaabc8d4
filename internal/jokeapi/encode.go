package jokeapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// anyCategory is the path token the API uses when no category filter
// applies.
const anyCategory = "Any"

// requestURL renders the full GET URL for these options and the
// requested amount of jokes.
func (o Options) requestURL(base string, amount int) string {
	return base + o.pathSegment() + o.queryString(amount)
}

// pathSegment renders the selected categories comma-joined in
// declaration order, regardless of the order they were supplied in.
// Duplicates collapse.
func (o Options) pathSegment() string {
	if len(o.Categories) == 0 {
		return anyCategory
	}

	var selected [len(categoryNames)]bool
	for _, c := range o.Categories {
		if c >= 0 && int(c) < len(selected) {
			selected[c] = true
		}
	}

	var names []string
	for c, ok := range selected {
		if ok {
			names = append(names, categoryNames[c])
		}
	}
	return strings.Join(names, ",")
}

// queryString renders the applicable parameters in the API's fixed
// order: lang, blacklistFlags, safe-mode, contains, type, idRange,
// amount. Amount is always emitted.
func (o Options) queryString(amount int) string {
	params := make([]string, 0, 7)

	if o.Language != LanguageEnglish && o.Language != LanguageUnknown {
		params = append(params, "lang="+o.Language.Code())
	}
	if o.Blacklist != 0 {
		params = append(params, "blacklistFlags="+o.Blacklist.String())
	}
	if o.Safe {
		params = append(params, "safe-mode=true")
	}
	if o.Contains != "" {
		params = append(params, "contains="+url.QueryEscape(o.Contains))
	}
	if v := o.Type.apiValue(); v != "" {
		params = append(params, "type="+v)
	}
	if r := o.IDRange; r != nil && r.Min <= r.Max {
		if r.Min == r.Max {
			params = append(params, "idRange="+strconv.Itoa(r.Min))
		} else {
			params = append(params, fmt.Sprintf("idRange=%d-%d", r.Min, r.Max))
		}
	}
	params = append(params, "amount="+strconv.Itoa(amount))

	if len(params) == 0 {
		return ""
	}
	return "?" + strings.Join(params, "&")
}
