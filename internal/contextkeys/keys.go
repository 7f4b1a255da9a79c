package contextkeys

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SellerID is the context key for the authenticated seller's ID.
	SellerID contextKey = "sellerID"
	// SellerEmail is the context key for the authenticated seller's email.
	SellerEmail contextKey = "sellerEmail"
	// SellerRole is the context key for the authenticated seller's role.
	SellerRole contextKey = "sellerRole"
)
