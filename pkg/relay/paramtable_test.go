package relay

import "testing"

func TestCredentialParamName(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"api.openweathermap.org", "appid"},
		{"newsapi.org", "apiKey"},
		{"www.alphavantage.co", "apikey"},
		{"maps.googleapis.com", "key"},
		{"example.com", DefaultCredentialParam},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			if got := credentialParamName(defaultHostParamTable, tt.host); got != tt.want {
				t.Fatalf("credentialParamName(%q) = %q, want %q", tt.host, got, tt.want)
			}
		})
	}
}

func TestBuildUpstreamURLAppendsToExistingQuery(t *testing.T) {
	got, err := buildUpstreamURL(defaultHostParamTable, "https://api.openweathermap.org", "/data/2.5/weather?q=Tokyo", "APIKEY1")
	if err != nil {
		t.Fatalf("buildUpstreamURL() error = %v", err)
	}
	want := "https://api.openweathermap.org/data/2.5/weather?q=Tokyo&appid=APIKEY1"
	if got != want {
		t.Fatalf("buildUpstreamURL() = %q, want %q", got, want)
	}
}

func TestBuildUpstreamURLNoExistingQuery(t *testing.T) {
	got, err := buildUpstreamURL(defaultHostParamTable, "https://example.com", "/v1/data", "NEW")
	if err != nil {
		t.Fatalf("buildUpstreamURL() error = %v", err)
	}
	want := "https://example.com/v1/data?api_key=NEW"
	if got != want {
		t.Fatalf("buildUpstreamURL() = %q, want %q", got, want)
	}
}
