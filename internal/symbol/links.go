package symbol

import "strings"

// Link is a named external quote page.
type Link struct {
	Name string
	URL  string
}

// Links returns quote pages for s on Baidu Gushitong, Eastmoney and Baidu search.
func (s Symbol) Links() []Link {
	full := strings.ToUpper(string(s.Exchange)) + s.Code // sz.000001 -> SZ000001
	return []Link{
		{Name: "Baidu Gushitong", URL: "https://gushitong.baidu.com/stock/ab-" + s.Code},
		{Name: "Eastmoney", URL: "https://quote.eastmoney.com/concept/" + full + ".html?from=data"},
		{Name: "Baidu Search", URL: "https://www.baidu.com/s?wd=" + s.Code},
	}
}
