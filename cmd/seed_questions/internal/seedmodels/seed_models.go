package seedmodels

// SeedSubject groups the seed records of one subject. Records use the same
// loose field names the legacy decoder accepts.
type SeedSubject struct {
	Subject   string                   `json:"subject"`
	Questions []map[string]interface{} `json:"questions"`
}
