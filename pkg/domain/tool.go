package domain

// ToolCall represents a request from the engine to the host to perform a
// side-effect (search, booking). Compatible with OpenAI/MCP tool call schemas.
type ToolCall struct {
	ID   string         `json:"id"`             // Unique ID for this specific call
	Name string         `json:"name"`           // Function name to call
	Args map[string]any `json:"args,omitempty"` // Arguments for the function
}

// ToolResult represents the output of a side-effect returned by the dispatcher.
type ToolResult struct {
	ID      string `json:"id"` // Must match the ToolCall.ID
	Content string `json:"content,omitempty"`
	IsError bool   `json:"is_error,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Tool defines metadata about a tool exposed to the language model.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Tool names known to the Action handler. The Search phase binds the full set,
// the Book phase binds only booking creation.
const (
	ToolResolveLocation = "resolve_location"
	ToolSearchFlights   = "search_flights"
	ToolSearchHotels    = "search_hotels"
	ToolGetUserBookings = "get_user_bookings"
	ToolCancelBooking   = "cancel_booking"
	ToolModifyBooking   = "modify_booking"
	ToolCreateBooking   = "create_booking"
)

// SearchTools lists the tools available during the Search phase.
func SearchTools() []Tool {
	return []Tool{
		{Name: ToolResolveLocation, Description: "Convert a city name to an IATA code"},
		{Name: ToolSearchFlights, Description: "Search flights between two IATA codes"},
		{Name: ToolSearchHotels, Description: "Search hotels for an IATA city code"},
		{Name: ToolGetUserBookings, Description: "List the user's existing bookings"},
		{Name: ToolCancelBooking, Description: "Cancel a booking (confirm with the user first)"},
		{Name: ToolModifyBooking, Description: "Modify booking dates (confirm with the user first)"},
	}
}

// BookingTools lists the tools available during the Book phase.
func BookingTools() []Tool {
	return []Tool{
		{Name: ToolCreateBooking, Description: "Create a booking from selected offers and passenger info"},
	}
}
