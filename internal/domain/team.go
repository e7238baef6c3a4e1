package domain

// Team is a competing team as provisioned from the competition file.
//
// A Team is uniquely identified by ID. The ID never changes once check
// history references it.
type Team struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}
