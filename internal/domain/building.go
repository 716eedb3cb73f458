package domain

// Building is static campus reference data. It is read-only through the API
// and feeds the chat assistant prompt.
type Building struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	ShortName   string  `json:"shortName"`
	Departments string  `json:"departments"`
	Description string  `json:"description"`
	Facilities  string  `json:"facilities"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	OpenHours   string  `json:"openHours"`
	Phone       string  `json:"phone"`
}

// BuildingRepository defines data access for buildings
type BuildingRepository interface {
	List() ([]*Building, error)
}
