package assistant

import (
	"fmt"
	"strings"
)

// SystemPrompt opens every conversation.
const SystemPrompt = "You are a helpful assistant for L'Oréal customers. You can only answer questions about L'Oréal products, skincare, haircare, makeup, beauty tips, and cosmetics. If someone asks about topics unrelated to L'Oréal or beauty (like sports, politics, etc.) politely decline and redirect to asking about L'Oréal-related queries. Remember the user's name if they tell you, and refer to previous conversations naturally. Be personable and build rapport. When mentioning specific L'Oréal product names, wrap them in ** symbols like **True Match Foundation** to highlight them."

// Product names a product handed to the routine prompts.
type Product struct {
	Name  string
	Brand string
}

// RoutinePrompt asks for a routine built from products, names wrapped in ** so replies echo the highlight.
func RoutinePrompt(products []Product) string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, fmt.Sprintf("**%s** by %s", p.Name, p.Brand))
	}
	return fmt.Sprintf("I have selected these L'Oréal products: %s. Can you create a personalized beauty routine for me using these products? Please include the order of application, timing (morning/evening), and any tips for best results.",
		strings.Join(names, ", "))
}

// RoutineSummary is what the visitor sees in the transcript for the routine request.
func RoutineSummary(products []Product) string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return "Generate a routine with my selected products: " + strings.Join(names, ", ")
}
