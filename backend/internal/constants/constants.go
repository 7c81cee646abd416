package constants

// Owner constants
const (
	// DefaultOwnerName is the person the network is centred on when no owner ID is configured
	DefaultOwnerName = "Alice"
)

// Viewport constants
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 800

	// WorkingAreaHalfExtent bounds the spatial index around the viewport centre.
	// Nodes drifting outside it are not indexed for collision.
	WorkingAreaHalfExtent = 10000.0
)

// Frame loop constants
const (
	DefaultFrameRate = 30
	MinFrameRate     = 1
	MaxFrameRate     = 120
)

// Graph data constants
const (
	// MaxNetworkDepth caps person sub-network queries
	MaxNetworkDepth = 5
	// InteractionSummaryLength is the summary length used in interaction labels
	InteractionSummaryLength = 30

	DefaultSearchLimit = 20
	MaxSearchLimit     = 100

	// MaxPathLength caps shortest-path searches between two entities
	MaxPathLength     = 6
	DefaultPathLength = 3
	// MaxPaths is how many paths a path search returns at most
	MaxPaths = 10

	DefaultRecommendationLimit = 5
	MaxRecommendationLimit     = 20

	// InsightsTopN is the length of each ranking in the insights summary
	InsightsTopN = 10
)

// Websocket message types
const (
	MessagePointerDown  = "pointerdown"
	MessagePointerMove  = "pointermove"
	MessagePointerUp    = "pointerup"
	MessagePointerLeave = "pointerleave"
	MessageWheel        = "wheel"

	EventSessionCreated = "session_created"
	EventClick          = "click"
	EventDragStart      = "drag_start"
	EventDragEnd        = "drag_end"
	EventSelection      = "selection"
	EventError          = "error"
)
