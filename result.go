package finasync

// Status is the status of a tool outcome.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is the outcome of a tool call: either a success with a payload or an
// error with a free-text message. Transient and permanent failures are not
// distinguished.
type Result struct {
	Status       Status            `json:"status"`
	Data         string            `json:"data,omitempty"`
	Price        *float64          `json:"price,omitempty"`
	ImagePath    string            `json:"image_path,omitempty"`
	Location     string            `json:"location,omitempty"`
	Cache        map[string]string `json:"cache,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
}

// Success returns a successful result carrying data.
func Success(data string) Result { return Result{Status: StatusSuccess, Data: data} }

// Failure collapses err into an error result.
func Failure(err error) Result {
	return Result{Status: StatusError, ErrorMessage: err.Error()}
}

// OK reports whether the result is a success.
func (r Result) OK() bool { return r.Status == StatusSuccess }

// Map returns the result as a generic map, the shape function calls answer with.
func (r Result) Map() map[string]any {
	m := map[string]any{"status": string(r.Status)}
	if r.Data != "" {
		m["data"] = r.Data
	}
	if r.Price != nil {
		m["price"] = *r.Price
	}
	if r.ImagePath != "" {
		m["image_path"] = r.ImagePath
	}
	if r.Location != "" {
		m["location"] = r.Location
	}
	if r.Cache != nil {
		cache := make(map[string]any, len(r.Cache))
		for k, v := range r.Cache {
			cache[k] = v
		}
		m["cache"] = cache
	}
	if r.ErrorMessage != "" {
		m["error_message"] = r.ErrorMessage
	}
	return m
}
