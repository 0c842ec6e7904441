package relay

import (
	"net/url"
	"strings"
)

// DefaultCredentialParam is used when no host suffix in the table
// matches.
const DefaultCredentialParam = "api_key"

// defaultHostParamTable is the fixed set of entries the implementation
// provides out of the box. Operators may extend it at construction
// time via Handler's paramTable field without touching this code.
var defaultHostParamTable = map[string]string{
	"openweathermap.org": "appid",
	"newsapi.org":        "apiKey",
	"alphavantage.co":    "apikey",
	"googleapis.com":     "key",
}

// credentialParamName picks the query-parameter name to inject the
// credential under, by suffix-matching host against table, falling
// back to DefaultCredentialParam.
func credentialParamName(table map[string]string, host string) string {
	host = strings.ToLower(host)
	for suffix, param := range table {
		if strings.HasSuffix(host, suffix) {
			return param
		}
	}
	return DefaultCredentialParam
}

// buildUpstreamURL joins baseURL and path, then appends the
// credential as a query parameter under the name picked by
// credentialParamName. The join is string concatenation, not
// re-encoding: an existing query string in path is preserved
// character-for-character and the credential parameter is appended
// after it.
func buildUpstreamURL(table map[string]string, baseURL, path, credential string) (string, error) {
	parsedBase, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}

	full := strings.TrimSuffix(baseURL, "/") + path
	param := credentialParamName(table, parsedBase.Host)

	sep := "?"
	if strings.Contains(full, "?") {
		sep = "&"
	}
	return full + sep + param + "=" + url.QueryEscape(credential), nil
}
