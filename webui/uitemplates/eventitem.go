package uitemplates

// EventItem is the shared display row for an event in list contexts.
type EventItem struct {
	ID       string
	Title    string
	Category string
	Date     string
	Location string
	ImageURL string
	ShowLink string
}
