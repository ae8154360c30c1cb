package model

// All lists every persisted model in dependency order.
func All() []any {
	return []any{
		&User{},
		&Publication{},
		&Cart{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&ChatConversation{},
		&ChatMessage{},
		&NewsletterSubscription{},
		&BlogPost{},
		&Comment{},
		&Bookmark{},
		&HealingRequest{},
		&Question{},
	}
}
