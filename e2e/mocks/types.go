package mocks

// Bar is one trading day served by the mock provider.
type Bar struct {
	Date   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// barPayload mirrors the provider's string-encoded daily bar.
type barPayload struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// dailyPayload mirrors a successful TIME_SERIES_DAILY response. An empty series
// is still written as an empty object.
type dailyPayload struct {
	MetaData   map[string]string     `json:"Meta Data"`
	TimeSeries map[string]barPayload `json:"Time Series (Daily)"`
}

// Failure describes an injected provider failure for a symbol.
type Failure struct {
	// Status, when non-zero, is returned as the HTTP status with no body.
	Status int
	// ErrorMessage is returned in the "Error Message" member with HTTP 200.
	ErrorMessage string
	// Note is returned in the "Note" member with no series, as when throttled.
	Note string
	// RawBody, when set, is written verbatim.
	RawBody string
}
